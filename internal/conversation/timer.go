// Package conversation provides timer support for scheduled nudge messages.
package conversation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// timerEntry tracks information about a scheduled timer
type timerEntry struct {
	timer       *time.Timer
	scheduledAt time.Time
	expiresAt   time.Time
}

// NudgeTimer schedules cancellable one-shot callbacks using Go's standard
// time package.
type NudgeTimer struct {
	timers map[string]*timerEntry
	mu     sync.Mutex
	nextID int64
}

// NewNudgeTimer creates a new NudgeTimer.
func NewNudgeTimer() *NudgeTimer {
	slog.Debug("Creating NudgeTimer")
	return &NudgeTimer{
		timers: make(map[string]*timerEntry),
	}
}

// ScheduleAfter schedules a function to run after a delay and returns the
// timer's ID for later cancellation.
func (t *NudgeTimer) ScheduleAfter(delay time.Duration, fn func()) string {
	t.mu.Lock()
	t.nextID++
	id := fmt.Sprintf("nudge_%d", t.nextID)
	t.mu.Unlock()

	now := time.Now()
	timer := time.AfterFunc(delay, func() {
		slog.Debug("NudgeTimer executing scheduled function", "id", id)
		fn()
		t.mu.Lock()
		delete(t.timers, id)
		t.mu.Unlock()
	})

	t.mu.Lock()
	t.timers[id] = &timerEntry{
		timer:       timer,
		scheduledAt: now,
		expiresAt:   now.Add(delay),
	}
	t.mu.Unlock()

	slog.Debug("NudgeTimer ScheduleAfter succeeded", "id", id, "delay", delay)
	return id
}

// Cancel cancels a scheduled function by ID. Cancelling an unknown or
// already-fired timer is a no-op.
func (t *NudgeTimer) Cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, exists := t.timers[id]; exists {
		entry.timer.Stop()
		delete(t.timers, id)
		slog.Debug("NudgeTimer Cancel succeeded", "id", id)
		return
	}
	slog.Debug("NudgeTimer Cancel: timer not found", "id", id)
}

// Stop cancels all scheduled timers.
func (t *NudgeTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	slog.Debug("NudgeTimer stopping all timers", "count", len(t.timers))
	for _, entry := range t.timers {
		entry.timer.Stop()
	}
	t.timers = make(map[string]*timerEntry)
}
