package parser

import (
	"errors"
	"testing"
)

func TestExtractStructuredFencedBlock(t *testing.T) {
	reply := "Here you go!\n```json\n{\"event\": {\"eventName\": \"Soccer practice\", \"date\": \"2026-06-03\", \"time\": \"5:00 PM\"}}\n```\nAnything else?"

	result, err := ExtractStructured(reply)
	if err != nil {
		t.Fatalf("ExtractStructured returned error: %v", err)
	}
	if result.Kind != KindJSON {
		t.Fatalf("expected KindJSON, got %s", result.Kind)
	}
	if result.Event == nil || result.Event.EventName != "Soccer practice" {
		t.Errorf("unexpected event payload: %+v", result.Event)
	}
	if result.Event.Date != "2026-06-03" || result.Event.Time != "5:00 PM" {
		t.Errorf("unexpected event fields: %+v", result.Event)
	}
}

func TestExtractStructuredWholeReply(t *testing.T) {
	reply := `{"event": {"eventName": "Dentist appointment", "childName": "Maya"}}`

	result, err := ExtractStructured(reply)
	if err != nil {
		t.Fatalf("ExtractStructured returned error: %v", err)
	}
	if result.Kind != KindJSON || result.Event.ChildName != "Maya" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExtractStructuredEmbeddedObject(t *testing.T) {
	reply := `All set! {"event": {"eventName": "Recital"}}`

	result, err := ExtractStructured(reply)
	if err != nil {
		t.Fatalf("ExtractStructured returned error: %v", err)
	}
	if result.Kind != KindJSON || result.Event.EventName != "Recital" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExtractStructuredTextFallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain prose", "What time does practice start?"},
		{"json without event key", `{"notEvent": 1}`},
		{"prose with braces but no event", `Use {curly} braces carefully.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExtractStructured(tt.reply)
			if err != nil {
				t.Fatalf("ExtractStructured returned error: %v", err)
			}
			if result.Kind != KindText {
				t.Fatalf("expected KindText, got %s", result.Kind)
			}
			if result.Text != tt.reply {
				t.Errorf("expected original text back, got %q", result.Text)
			}
		})
	}
}

func TestExtractStructuredNonObjectEventIsError(t *testing.T) {
	for _, reply := range []string{
		`{"event": "yes"}`,
		`{"event": null}`,
		`{"event": [1, 2]}`,
	} {
		_, err := ExtractStructured(reply)
		if !errors.Is(err, ErrPayloadNotObject) {
			t.Errorf("ExtractStructured(%q) error = %v, want ErrPayloadNotObject", reply, err)
		}
	}
}

func TestExtractStructuredEmptyReply(t *testing.T) {
	for _, reply := range []string{"", "   \n"} {
		_, err := ExtractStructured(reply)
		if !errors.Is(err, ErrEmptyReply) {
			t.Errorf("ExtractStructured(%q) error = %v, want ErrEmptyReply", reply, err)
		}
	}
}

func TestExtractStructuredFencedTakesPrecedence(t *testing.T) {
	// The fenced block wins over a later bare object.
	reply := "```json\n{\"event\": {\"eventName\": \"From fence\"}}\n```\n{\"event\": {\"eventName\": \"From body\"}}"

	result, err := ExtractStructured(reply)
	if err != nil {
		t.Fatalf("ExtractStructured returned error: %v", err)
	}
	if result.Event == nil || result.Event.EventName != "From fence" {
		t.Errorf("expected fenced block to win, got %+v", result.Event)
	}
}

func TestExtractStructuredMalformedFenceFallsThrough(t *testing.T) {
	// An unparsable fence falls through; the embedded object is still found.
	reply := "```json\nnot json at all\n```\nso anyway {\"event\": {\"eventName\": \"Recovered\"}}"

	result, err := ExtractStructured(reply)
	if err != nil {
		t.Fatalf("ExtractStructured returned error: %v", err)
	}
	if result.Kind != KindJSON || result.Event.EventName != "Recovered" {
		t.Errorf("expected embedded object after bad fence, got %+v", result)
	}
}
