package models

// FieldKey identifies one attribute of an in-progress event or keeper.
type FieldKey string

// Field key constants.
const (
	FieldChildName   FieldKey = "childName"
	FieldEventName   FieldKey = "eventName"
	FieldDate        FieldKey = "date"
	FieldTime        FieldKey = "time"
	FieldLocation    FieldKey = "location"
	FieldDescription FieldKey = "description"
)

// RequiredFieldOrder is the order the extractor walks when deciding which
// required field is still missing.
var RequiredFieldOrder = []FieldKey{FieldEventName, FieldDate, FieldTime, FieldLocation}

// SystemPromptFieldOrder is the canonical collection order the assistant's
// system prompt instructs the model to follow. It intentionally differs from
// RequiredFieldOrder; the two serve different consumers.
var SystemPromptFieldOrder = []FieldKey{FieldChildName, FieldTime, FieldEventName, FieldDate, FieldLocation}

// ParsedFields is the tri-state field set tracked across chat turns. A nil
// pointer means the attribute was never mentioned; a pointer to "" means the
// user explicitly cleared it. The distinction matters for Merge.
type ParsedFields struct {
	ChildName   *string `json:"childName,omitempty"`
	EventName   *string `json:"eventName,omitempty"`
	Date        *string `json:"date,omitempty"` // yyyy-MM-dd
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsKeeper    *bool   `json:"isKeeper,omitempty"`
	TimeVague   *bool   `json:"timeVague,omitempty"`
	NoTimeYet   *bool   `json:"noTimeYet,omitempty"`
	IsAllDay    *bool   `json:"isAllDay,omitempty"`
}

// String returns a pointer to s, for building ParsedFields literals.
func String(s string) *string {
	return &s
}

// Bool returns a pointer to b, for building ParsedFields literals.
func Bool(b bool) *bool {
	return &b
}

// Get returns the value stored under key and whether one is present. A stored
// empty string counts as present.
func (f ParsedFields) Get(key FieldKey) (string, bool) {
	p := f.ptr(key)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set stores value under key. Unknown keys are ignored.
func (f *ParsedFields) Set(key FieldKey, value string) {
	if p := f.ptr(key); p != nil {
		*p = &value
	}
}

// Has reports whether key holds a non-empty value.
func (f ParsedFields) Has(key FieldKey) bool {
	v, ok := f.Get(key)
	return ok && v != ""
}

// HasAny reports whether any of the given keys holds a non-empty value.
func (f ParsedFields) HasAny(keys ...FieldKey) bool {
	for _, key := range keys {
		if f.Has(key) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no attribute at all is present, including boolean
// flags.
func (f ParsedFields) IsEmpty() bool {
	return f.ChildName == nil && f.EventName == nil && f.Date == nil &&
		f.Time == nil && f.Location == nil && f.Description == nil &&
		f.IsKeeper == nil && f.TimeVague == nil && f.NoTimeYet == nil &&
		f.IsAllDay == nil
}

// Merge folds delta into f using the presence-preferring rule: any attribute
// delta provides (including an explicit empty string) replaces f's value, and
// any attribute delta omits keeps f's value. Neither receiver is mutated.
func (f ParsedFields) Merge(delta ParsedFields) ParsedFields {
	out := f
	if delta.ChildName != nil {
		out.ChildName = delta.ChildName
	}
	if delta.EventName != nil {
		out.EventName = delta.EventName
	}
	if delta.Date != nil {
		out.Date = delta.Date
	}
	if delta.Time != nil {
		out.Time = delta.Time
	}
	if delta.Location != nil {
		out.Location = delta.Location
	}
	if delta.Description != nil {
		out.Description = delta.Description
	}
	if delta.IsKeeper != nil {
		out.IsKeeper = delta.IsKeeper
	}
	if delta.TimeVague != nil {
		out.TimeVague = delta.TimeVague
	}
	if delta.NoTimeYet != nil {
		out.NoTimeYet = delta.NoTimeYet
	}
	if delta.IsAllDay != nil {
		out.IsAllDay = delta.IsAllDay
	}
	return out
}

// ptr maps a key to the address of its field, nil for unknown keys.
func (f *ParsedFields) ptr(key FieldKey) **string {
	switch key {
	case FieldChildName:
		return &f.ChildName
	case FieldEventName:
		return &f.EventName
	case FieldDate:
		return &f.Date
	case FieldTime:
		return &f.Time
	case FieldLocation:
		return &f.Location
	case FieldDescription:
		return &f.Description
	default:
		return nil
	}
}
