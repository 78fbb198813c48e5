// Package flow wires the extractor, parser, and conversation controller
// together per user turn.
//
// The Orchestrator receives raw user text, updates the controller's tracked
// fields, calls the external model, parses the reply, and either finalizes
// an event/keeper record or continues the conversation. All failures are
// caught here and converted to transcript messages; no error leaves a
// dangling thinking placeholder behind.
package flow

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hearthplan/hearth/internal/conversation"
	"github.com/hearthplan/hearth/internal/extract"
	"github.com/hearthplan/hearth/internal/models"
	"github.com/hearthplan/hearth/internal/parser"
	"github.com/hearthplan/hearth/internal/prompts"
	"github.com/hearthplan/hearth/internal/store"
)

// thinkingContent is the transient placeholder shown while awaiting a reply.
const thinkingContent = "Thinking..."

// introNudgeContent is the scheduled INTRO nudge message.
const introNudgeContent = "Still there? Tell me about something coming up for your family and I'll put it on the calendar."

// ModelClient is the external model transport collaborator.
type ModelClient interface {
	SendMessage(ctx context.Context, threadID, text string) (string, error)
}

// Orchestrator coordinates one user turn end to end.
type Orchestrator struct {
	controller *conversation.Controller
	model      ModelClient
	store      store.Store
	prompts    *prompts.Generator
	detector   EventDetector
	threadID   string
	inFlight   atomic.Bool
}

// NewOrchestrator creates an Orchestrator with the default keyword event
// detector.
func NewOrchestrator(controller *conversation.Controller, model ModelClient, st store.Store, gen *prompts.Generator) *Orchestrator {
	slog.Debug("Orchestrator.NewOrchestrator: creating orchestrator")
	return &Orchestrator{
		controller: controller,
		model:      model,
		store:      st,
		prompts:    gen,
		detector:   KeywordEventDetector{},
	}
}

// SetEventDetector replaces the new-event classifier.
func (o *Orchestrator) SetEventDetector(d EventDetector) {
	o.detector = d
}

// StartSession opens a conversation thread and schedules the cancellable
// INTRO nudge. Returns the thread identifier.
func (o *Orchestrator) StartSession(nudgeDelay time.Duration) string {
	o.threadID = models.NewThreadID()
	o.controller.ScheduleIntroNudge(nudgeDelay, func() {
		msg := models.ChatMessage{
			ID:      models.NewMessageID(),
			Sender:  models.SenderAssistant,
			Content: introNudgeContent,
			Time:    time.Now(),
		}
		if err := o.store.AddMessage(msg); err != nil {
			slog.Warn("Orchestrator intro nudge: failed to append message", "error", err)
		}
	})
	slog.Info("Orchestrator.StartSession: session started", "threadID", o.threadID, "nudgeDelay", nudgeDelay)
	return o.threadID
}

// ThreadID returns the active thread identifier, empty when no session is
// open.
func (o *Orchestrator) ThreadID() string {
	return o.threadID
}

// HandleTurn processes one user turn. Empty input is silently ignored.
// A missing thread fails with models.ErrNoActiveThread; an overlapping turn
// is rejected with models.ErrTurnInFlight rather than corrupting tracked
// state. Transport and parse failures are converted to transcript messages
// and do not fail the turn.
func (o *Orchestrator) HandleTurn(ctx context.Context, userText string) error {
	if strings.TrimSpace(userText) == "" {
		slog.Debug("Orchestrator.HandleTurn: ignoring empty input")
		return nil
	}
	if o.threadID == "" {
		slog.Error("Orchestrator.HandleTurn: no active thread")
		return models.ErrNoActiveThread
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		slog.Warn("Orchestrator.HandleTurn: rejecting overlapping turn")
		return models.ErrTurnInFlight
	}
	defer o.inFlight.Store(false)

	// Turn-local snapshot; merged results are written back through the
	// controller's own methods only.
	snapshot := o.controller.Fields()

	if snapshot.IsEmpty() && o.detector.IsNewEvent(userText) {
		slog.Debug("Orchestrator.HandleTurn: starting a fresh event", "threadID", o.threadID)
	}

	if err := o.store.AddMessage(models.ChatMessage{
		ID:      models.NewMessageID(),
		Sender:  models.SenderUser,
		Content: userText,
		Time:    time.Now(),
	}); err != nil {
		slog.Error("Orchestrator.HandleTurn: failed to append user message", "error", err)
	}

	// The thinking placeholder must be visible before the model call begins
	// and removed exactly once, before the turn's final message is appended.
	thinkingID := models.NewMessageID()
	if err := o.store.AddMessage(models.ChatMessage{
		ID:      thinkingID,
		Sender:  models.SenderAssistant,
		Content: thinkingContent,
		Type:    "thinking",
		Time:    time.Now(),
	}); err != nil {
		slog.Error("Orchestrator.HandleTurn: failed to append thinking placeholder", "error", err)
	}
	thinkingRemoved := false
	removeThinking := func() {
		if thinkingRemoved {
			return
		}
		thinkingRemoved = true
		if err := o.store.RemoveMessageByID(thinkingID); err != nil {
			slog.Warn("Orchestrator.HandleTurn: failed to remove thinking placeholder", "error", err, "id", thinkingID)
		}
	}
	defer removeThinking()

	delta := extract.Fields(userText)
	if extract.ClassifyKeeper(userText) {
		delta.IsKeeper = models.Bool(true)
	}

	// A bare follow-up like "3pm" that matched nothing is attributed to the
	// field the user was last asked about.
	if delta.IsEmpty() {
		if lastField, ok := o.controller.LastRequestedField(); ok {
			delta.Set(lastField, strings.TrimSpace(userText))
			o.controller.SetLastRequestedField("")
			slog.Debug("Orchestrator.HandleTurn: attributed bare follow-up", "field", lastField)
		}
	}

	o.controller.MergeFields(delta)
	merged := snapshot.Merge(delta)

	if o.controller.DetectSignup(userText) {
		o.controller.TransitionTo(models.ModeSignup)
	} else if o.controller.Mode() == models.ModeIntro && o.controller.ShouldEnterFlow(userText, merged) {
		o.controller.TransitionTo(models.ModeFlow)
	}

	// The model receives only the natural-language turn, never the merged
	// field set.
	reply, err := o.model.SendMessage(ctx, o.threadID, userText)
	if err != nil {
		category, userMsg := ClassifyTransportError(err)
		slog.Error("Orchestrator.HandleTurn: model call failed", "error", err, "category", category, "threadID", o.threadID)
		removeThinking()
		o.appendAssistantText(userMsg)
		return nil
	}

	result, err := parser.ExtractStructured(reply)
	if err != nil {
		slog.Error("Orchestrator.HandleTurn: reply failed validation", "error", err, "threadID", o.threadID)
		removeThinking()
		o.appendAssistantText("I got a reply I couldn't make sense of. Could you tell me that again?")
		return nil
	}

	if result.Kind == parser.KindJSON {
		o.finalizeRecord(result.Event, removeThinking)
		return nil
	}

	removeThinking()
	o.appendAssistantText(result.Text)

	// Record which field the next bare follow-up should fill.
	if o.controller.Mode() == models.ModeFlow {
		if next, ok := extract.NextRequiredField(o.controller.Fields()); ok {
			o.controller.SetLastRequestedField(next)
		}
	}
	return nil
}

// NextQuestion returns a generated follow-up question for the first missing
// required field, and records that field as last-requested. ok is false when
// every required field is already collected.
func (o *Orchestrator) NextQuestion() (string, bool) {
	fields := o.controller.Fields()
	next, ok := extract.NextRequiredField(fields)
	if !ok {
		return "", false
	}

	var names []string
	if children, err := o.store.GetChildren(); err == nil {
		for _, c := range children {
			names = append(names, c.Name)
		}
	}
	eventName, _ := fields.Get(models.FieldEventName)
	isKeeper := fields.IsKeeper != nil && *fields.IsKeeper

	question := o.prompts.NextPrompt(next, names, eventName, isKeeper)
	o.controller.SetLastRequestedField(next)
	return question, true
}

// finalizeRecord merges tracked fields over the model's event payload,
// emits the record, appends a structured confirmation, and resets the
// controller to a clean slate. Tracked fields win on conflicting keys
// because locally confirmed data is more trusted than the model's echo.
func (o *Orchestrator) finalizeRecord(payload *models.Event, removeThinking func()) {
	tracked := o.controller.Fields()

	record := *payload
	record.ID = models.NewRecordID()
	if v, ok := tracked.Get(models.FieldChildName); ok {
		record.ChildName = v
	}
	if v, ok := tracked.Get(models.FieldEventName); ok {
		record.EventName = v
	}
	if v, ok := tracked.Get(models.FieldDate); ok {
		record.Date = v
	}
	if v, ok := tracked.Get(models.FieldTime); ok {
		record.Time = v
	}
	if v, ok := tracked.Get(models.FieldLocation); ok {
		record.Location = v
	}
	if v, ok := tracked.Get(models.FieldDescription); ok {
		record.Notes = v
	}
	if tracked.IsAllDay != nil {
		record.IsAllDay = *tracked.IsAllDay
	}
	if tracked.NoTimeYet != nil {
		record.NoTimeYet = *tracked.NoTimeYet
	}

	if err := record.Validate(); err != nil {
		// Still emitted; the display layer shows placeholders for gaps.
		slog.Warn("Orchestrator.finalizeRecord: record missing required fields", "error", err, "id", record.ID)
	}

	isKeeper := tracked.IsKeeper != nil && *tracked.IsKeeper
	var storeErr error
	if isKeeper {
		storeErr = o.store.AddKeeper(models.Keeper{
			ID:        record.ID,
			ChildName: record.ChildName,
			EventName: record.EventName,
			Date:      record.Date,
			Time:      record.Time,
			Location:  record.Location,
			Notes:     record.Notes,
			IsAllDay:  record.IsAllDay,
			NoTimeYet: record.NoTimeYet,
		})
	} else {
		storeErr = o.store.AddEvent(record)
	}
	if storeErr != nil {
		slog.Error("Orchestrator.finalizeRecord: failed to store record", "error", storeErr, "id", record.ID, "isKeeper", isKeeper)
	}

	o.controller.TransitionTo(models.ModeConfirmation)

	// Placeholder off, confirmation on, in that order.
	removeThinking()

	if err := o.store.AddMessage(models.ChatMessage{
		ID:     models.NewMessageID(),
		Sender: models.SenderAssistant,
		Type:   models.MessageTypeEventConfirmation,
		Event:  &record,
		Time:   time.Now(),
	}); err != nil {
		slog.Error("Orchestrator.finalizeRecord: failed to append confirmation", "error", err)
	}

	slog.Info("Orchestrator.finalizeRecord: record finalized", "id", record.ID, "isKeeper", isKeeper, "eventName", record.EventName)
	o.controller.Reset()
}

// appendAssistantText appends a plain assistant message to the transcript.
func (o *Orchestrator) appendAssistantText(content string) {
	if err := o.store.AddMessage(models.ChatMessage{
		ID:      models.NewMessageID(),
		Sender:  models.SenderAssistant,
		Content: content,
		Time:    time.Now(),
	}); err != nil {
		slog.Error("Orchestrator.appendAssistantText: failed to append message", "error", err)
	}
}
