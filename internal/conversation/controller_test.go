package conversation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hearthplan/hearth/internal/models"
)

func TestControllerStartsInIntro(t *testing.T) {
	c := NewController()
	defer c.Stop()

	if c.Mode() != models.ModeIntro {
		t.Errorf("expected initial mode INTRO, got %s", c.Mode())
	}
	if !c.Fields().IsEmpty() {
		t.Error("expected empty tracked fields on a new controller")
	}
}

func TestControllerTransitionTo(t *testing.T) {
	c := NewController()
	defer c.Stop()

	c.TransitionTo(models.ModeFlow)
	if c.Mode() != models.ModeFlow {
		t.Errorf("expected FLOW, got %s", c.Mode())
	}

	// Invalid modes are ignored.
	c.TransitionTo(models.ConversationMode("BOGUS"))
	if c.Mode() != models.ModeFlow {
		t.Errorf("expected FLOW to survive invalid transition, got %s", c.Mode())
	}
}

func TestControllerShouldEnterFlow(t *testing.T) {
	c := NewController()
	defer c.Stop()

	tests := []struct {
		name   string
		text   string
		fields models.ParsedFields
		want   bool
	}{
		{"extracted time", "soccer at 5pm", models.ParsedFields{Time: models.String("5:00 PM")}, true},
		{"trigger keyword", "remind me about the field trip", models.ParsedFields{}, true},
		{"curly apostrophe trigger", "don’t forget the recital", models.ParsedFields{}, true},
		{"small talk", "hi there!", models.ParsedFields{}, false},
		{"child name alone is not event-bearing", "this is about Maya", models.ParsedFields{ChildName: models.String("Maya")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ShouldEnterFlow(tt.text, tt.fields); got != tt.want {
				t.Errorf("ShouldEnterFlow(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestControllerDetectSignup(t *testing.T) {
	c := NewController()
	defer c.Stop()

	if !c.DetectSignup("I want to sign up") {
		t.Error("expected sign-up trigger to match")
	}
	if !c.DetectSignup("how do I create an account?") {
		t.Error("expected account trigger to match")
	}
	if c.DetectSignup("soccer practice at 5pm") {
		t.Error("expected no sign-up trigger on scheduling text")
	}
}

func TestControllerMergeFieldsAccumulates(t *testing.T) {
	c := NewController()
	defer c.Stop()

	c.MergeFields(models.ParsedFields{EventName: models.String("Soccer practice")})
	c.MergeFields(models.ParsedFields{Time: models.String("5:00 PM")})

	fields := c.Fields()
	if v, _ := fields.Get(models.FieldEventName); v != "Soccer practice" {
		t.Errorf("expected eventName retained across merges, got %q", v)
	}
	if v, _ := fields.Get(models.FieldTime); v != "5:00 PM" {
		t.Errorf("expected time merged in, got %q", v)
	}
}

func TestControllerLastRequestedField(t *testing.T) {
	c := NewController()
	defer c.Stop()

	if _, ok := c.LastRequestedField(); ok {
		t.Error("expected no last-requested field initially")
	}
	c.SetLastRequestedField(models.FieldTime)
	key, ok := c.LastRequestedField()
	if !ok || key != models.FieldTime {
		t.Errorf("expected time, got %s ok=%v", key, ok)
	}
	c.SetLastRequestedField("")
	if _, ok := c.LastRequestedField(); ok {
		t.Error("expected last-requested field cleared")
	}
}

func TestControllerIntroNudgeFires(t *testing.T) {
	c := NewController()
	defer c.Stop()

	fired := make(chan struct{})
	c.ScheduleIntroNudge(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected nudge to fire in INTRO mode")
	}
}

func TestControllerIntroNudgeSuppressedAfterTransition(t *testing.T) {
	c := NewController()
	defer c.Stop()

	var fired atomic.Bool
	c.ScheduleIntroNudge(20*time.Millisecond, func() { fired.Store(true) })
	c.TransitionTo(models.ModeFlow)

	time.Sleep(80 * time.Millisecond)
	if fired.Load() {
		t.Error("expected nudge to be cancelled when leaving INTRO")
	}
}

func TestControllerIntroNudgeRescheduleReplaces(t *testing.T) {
	c := NewController()
	defer c.Stop()

	var first, second atomic.Bool
	c.ScheduleIntroNudge(30*time.Millisecond, func() { first.Store(true) })
	c.ScheduleIntroNudge(10*time.Millisecond, func() { second.Store(true) })

	time.Sleep(100 * time.Millisecond)
	if first.Load() {
		t.Error("expected replaced nudge not to fire")
	}
	if !second.Load() {
		t.Error("expected replacement nudge to fire")
	}
}

func TestControllerScheduleIntroNudgeOutsideIntroIsNoop(t *testing.T) {
	c := NewController()
	defer c.Stop()

	c.TransitionTo(models.ModeFlow)
	var fired atomic.Bool
	c.ScheduleIntroNudge(10*time.Millisecond, func() { fired.Store(true) })

	time.Sleep(60 * time.Millisecond)
	if fired.Load() {
		t.Error("expected no nudge outside INTRO")
	}
}

func TestControllerReset(t *testing.T) {
	c := NewController()
	defer c.Stop()

	c.MergeFields(models.ParsedFields{EventName: models.String("Soccer practice")})
	c.SetLastRequestedField(models.FieldDate)
	c.TransitionTo(models.ModeConfirmation)

	c.Reset()

	if c.Mode() != models.ModeIntro {
		t.Errorf("expected INTRO after reset, got %s", c.Mode())
	}
	if !c.Fields().IsEmpty() {
		t.Error("expected tracked fields cleared after reset")
	}
	if _, ok := c.LastRequestedField(); ok {
		t.Error("expected last-requested field cleared after reset")
	}
}
