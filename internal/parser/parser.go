// Package parser classifies assistant replies as structured or conversational.
//
// A structured reply embeds a JSON object with an "event" key; everything
// else is surfaced verbatim as conversational text.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hearthplan/hearth/internal/models"
)

// Kind classifies a parsed assistant reply.
type Kind string

// Reply kind constants.
const (
	KindJSON Kind = "json"
	KindText Kind = "text"
)

// Error variables for invalid reply classification.
var (
	ErrEmptyReply       = errors.New("assistant reply is empty")
	ErrPayloadNotObject = errors.New("event payload is not a JSON object")
)

// Result is the outcome of scanning an assistant reply. KindJSON results
// carry the decoded event payload; KindText results carry the original
// reply text.
type Result struct {
	Kind  Kind
	Event *models.Event
	Text  string
}

// fencedJSONRe matches a fenced code block tagged json (case-insensitive).
var fencedJSONRe = regexp.MustCompile("(?is)```json\\s*(.+?)```")

// ExtractStructured scans reply for an embedded event object, in strict
// precedence order: a fenced json block, the whole reply, then the substring
// from the first "{". Each candidate must parse as JSON and contain an
// "event" key, otherwise scanning falls through to the next level. When all
// levels fail the reply is classified as conversational text.
//
// A candidate whose "event" value is present but not a non-null object is an
// error, not a silent downgrade, so callers can show a diagnostic instead of
// a malformed event.
func ExtractStructured(reply string) (Result, error) {
	if m := fencedJSONRe.FindStringSubmatch(reply); m != nil {
		if res, ok, err := tryEventObject(m[1]); ok || err != nil {
			return res, err
		}
	}

	if res, ok, err := tryEventObject(reply); ok || err != nil {
		return res, err
	}

	if idx := strings.Index(reply, "{"); idx >= 0 {
		if res, ok, err := tryEventObject(reply[idx:]); ok || err != nil {
			return res, err
		}
	}

	if strings.TrimSpace(reply) == "" {
		return Result{}, ErrEmptyReply
	}
	slog.Debug("parser.ExtractStructured: no event object found, classifying as text", "length", len(reply))
	return Result{Kind: KindText, Text: reply}, nil
}

// tryEventObject attempts to parse candidate as a JSON object holding an
// "event" key. The middle return reports whether the candidate matched; a
// false match with a nil error means fall through to the next level.
func tryEventObject(candidate string) (Result, bool, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &envelope); err != nil {
		return Result{}, false, nil
	}
	raw, ok := envelope["event"]
	if !ok {
		return Result{}, false, nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		slog.Error("parser.tryEventObject: event key present but payload is not an object", "payload", trimmed)
		return Result{}, false, ErrPayloadNotObject
	}

	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return Result{}, false, fmt.Errorf("malformed event payload: %w", err)
	}
	slog.Debug("parser.tryEventObject: decoded structured event", "eventName", event.EventName)
	return Result{Kind: KindJSON, Event: &event}, true, nil
}
