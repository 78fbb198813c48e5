// Package conversation implements the conversational mode state machine.
//
// A Controller owns the accumulated field set for the event currently being
// built, the active conversational mode, the last field the user was asked
// about, and at most one pending intro-nudge timer. It is an explicitly
// constructed instance; callers share one per session and all mutation goes
// through its methods.
package conversation

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hearthplan/hearth/internal/models"
)

// flowTriggerKeywords move the conversation out of INTRO even when no field
// was extracted locally.
var flowTriggerKeywords = []string{"remind", "remember", "don't forget", "make sure"}

// signupTriggerKeywords detect an explicit sign-up request.
var signupTriggerKeywords = []string{"sign up", "signup", "create an account", "register"}

// Controller tracks the in-progress event across chat turns.
type Controller struct {
	mu            sync.Mutex
	mode          models.ConversationMode
	fields        models.ParsedFields
	lastRequested models.FieldKey
	timer         *NudgeTimer
	nudgeID       string
}

// NewController creates a Controller in INTRO mode with a clean field set.
func NewController() *Controller {
	slog.Debug("Controller.NewController: creating controller")
	return &Controller{
		mode:  models.ModeIntro,
		timer: NewNudgeTimer(),
	}
}

// Mode returns the active conversational mode.
func (c *Controller) Mode() models.ConversationMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// TransitionTo sets the active mode. Leaving INTRO cancels any pending intro
// nudge; cancelling with none pending is a no-op.
func (c *Controller) TransitionTo(mode models.ConversationMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !models.IsValidMode(mode) {
		slog.Warn("Controller.TransitionTo: ignoring invalid mode", "mode", mode)
		return
	}
	if c.mode == models.ModeIntro && mode != models.ModeIntro {
		c.cancelNudgeLocked()
	}
	slog.Info("Controller.TransitionTo: mode transition", "from", c.mode, "to", mode)
	c.mode = mode
}

// ShouldEnterFlow reports whether the turn carries event-bearing content:
// any core field present in fields, or a trigger keyword in text.
func (c *Controller) ShouldEnterFlow(text string, fields models.ParsedFields) bool {
	if fields.HasAny(models.FieldEventName, models.FieldDate, models.FieldTime, models.FieldLocation) {
		return true
	}
	lower := strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	for _, kw := range flowTriggerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DetectSignup reports whether text contains an explicit sign-up trigger.
func (c *Controller) DetectSignup(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range signupTriggerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MergeFields folds a turn's extraction delta into the tracked field set
// using the presence-preferring rule: provided values win, absent keys never
// clear prior values.
func (c *Controller) MergeFields(delta models.ParsedFields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = c.fields.Merge(delta)
	slog.Debug("Controller.MergeFields: merged turn delta",
		"hasEventName", c.fields.Has(models.FieldEventName),
		"hasDate", c.fields.Has(models.FieldDate),
		"hasTime", c.fields.Has(models.FieldTime),
		"hasLocation", c.fields.Has(models.FieldLocation))
}

// Fields returns a snapshot of the tracked field set.
func (c *Controller) Fields() models.ParsedFields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// SetLastRequestedField records which field the user was just asked about,
// so a bare follow-up like "3pm" can be attributed to it. An empty key
// clears the record.
func (c *Controller) SetLastRequestedField(key models.FieldKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRequested = key
}

// LastRequestedField returns the field the user was last asked about, and
// whether one is recorded.
func (c *Controller) LastRequestedField() (models.FieldKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRequested, c.lastRequested != ""
}

// ScheduleIntroNudge schedules callback to run after delay, but only while
// the conversation is still in INTRO. Scheduling replaces any pending nudge.
// The mode is re-checked when the timer fires, so a nudge scheduled in INTRO
// never fires after the mode has moved on.
func (c *Controller) ScheduleIntroNudge(delay time.Duration, callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != models.ModeIntro {
		slog.Debug("Controller.ScheduleIntroNudge: not in INTRO, skipping", "mode", c.mode)
		return
	}
	c.cancelNudgeLocked()

	var id string
	id = c.timer.ScheduleAfter(delay, func() {
		c.mu.Lock()
		live := c.mode == models.ModeIntro && c.nudgeID == id
		if live {
			c.nudgeID = ""
		}
		c.mu.Unlock()
		if live {
			callback()
		} else {
			slog.Debug("Controller intro nudge suppressed at fire time", "id", id)
		}
	})
	c.nudgeID = id
	slog.Debug("Controller.ScheduleIntroNudge: nudge scheduled", "id", id, "delay", delay)
}

// Reset returns the controller to a clean slate: INTRO mode, empty tracked
// fields, no last-requested field, no pending nudge. Called after a
// finalized event or keeper has been emitted.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelNudgeLocked()
	c.mode = models.ModeIntro
	c.fields = models.ParsedFields{}
	c.lastRequested = ""
	slog.Info("Controller.Reset: controller reset to clean slate")
}

// Stop releases the controller's timer resources.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudgeID = ""
	c.timer.Stop()
}

// cancelNudgeLocked cancels the pending intro nudge. Caller holds c.mu.
func (c *Controller) cancelNudgeLocked() {
	if c.nudgeID != "" {
		c.timer.Cancel(c.nudgeID)
		c.nudgeID = ""
	}
}
