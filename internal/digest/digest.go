// Package digest provides the scheduled daily agenda message for Hearth.
//
// A cron job summarizes the day's stored events and keepers into a single
// assistant message at the start of each day.
package digest

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hearthplan/hearth/internal/models"
	"github.com/hearthplan/hearth/internal/store"
)

// DefaultCron posts the digest every morning at 7am.
const DefaultCron = "0 7 * * *"

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Digest builds and posts the daily agenda message.
type Digest struct {
	store store.Store
	now   func() time.Time
}

// NewDigest creates a Digest over the given store.
func NewDigest(st store.Store) *Digest {
	return &Digest{store: st, now: time.Now}
}

// Schedule registers the digest on the scheduler with the given cron
// expression (DefaultCron when empty).
func (d *Digest) Schedule(s *Scheduler, expr string) error {
	if expr == "" {
		expr = DefaultCron
	}
	slog.Info("Digest.Schedule: scheduling daily agenda", "cron", expr)
	return s.AddJob(expr, d.Run)
}

// Run posts today's agenda to the transcript. Days with nothing scheduled
// stay quiet.
func (d *Digest) Run() {
	today := d.now().Format(models.DateLayout)

	events, err := d.store.GetEvents()
	if err != nil {
		slog.Error("Digest.Run: failed to load events", "error", err)
		return
	}
	keepers, err := d.store.GetKeepers()
	if err != nil {
		slog.Error("Digest.Run: failed to load keepers", "error", err)
		return
	}

	var lines []string
	for _, e := range events {
		if e.Date == today {
			lines = append(lines, eventLine(e))
		}
	}
	for _, k := range keepers {
		if k.Date == today {
			lines = append(lines, keeperLine(k))
		}
	}
	if len(lines) == 0 {
		slog.Debug("Digest.Run: nothing scheduled today", "date", today)
		return
	}

	content := "Here's what's on for today:\n" + strings.Join(lines, "\n")
	msg := models.ChatMessage{
		ID:      models.NewMessageID(),
		Sender:  models.SenderAssistant,
		Content: content,
		Time:    d.now(),
	}
	if err := d.store.AddMessage(msg); err != nil {
		slog.Error("Digest.Run: failed to append digest message", "error", err)
		return
	}
	slog.Info("Digest.Run: daily agenda posted", "date", today, "items", len(lines))
}

// eventLine formats one event for the digest.
func eventLine(e models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "• %s", orTBD(e.EventName))
	if e.ChildName != "" {
		fmt.Fprintf(&b, " for %s", e.ChildName)
	}
	if e.IsAllDay {
		b.WriteString(" (all day)")
	} else if e.Time != "" {
		fmt.Fprintf(&b, " at %s", e.Time)
	}
	if e.Location != "" {
		fmt.Fprintf(&b, " (%s)", e.Location)
	}
	return b.String()
}

// keeperLine formats one keeper for the digest.
func keeperLine(k models.Keeper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "• Don't forget: %s", orTBD(k.EventName))
	if k.ChildName != "" {
		fmt.Fprintf(&b, " (%s)", k.ChildName)
	}
	if k.Time != "" {
		fmt.Fprintf(&b, " by %s", k.Time)
	}
	return b.String()
}

func orTBD(s string) string {
	if s == "" {
		return "TBD"
	}
	return s
}
