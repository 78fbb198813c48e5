package conversation

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNudgeTimerScheduleAfter(t *testing.T) {
	timer := NewNudgeTimer()
	defer timer.Stop()

	fired := make(chan struct{})
	id := timer.ScheduleAfter(10*time.Millisecond, func() { close(fired) })
	if id == "" {
		t.Fatal("expected a non-empty timer ID")
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled function did not fire")
	}
}

func TestNudgeTimerCancel(t *testing.T) {
	timer := NewNudgeTimer()
	defer timer.Stop()

	var fired atomic.Bool
	id := timer.ScheduleAfter(20*time.Millisecond, func() { fired.Store(true) })
	timer.Cancel(id)

	time.Sleep(80 * time.Millisecond)
	if fired.Load() {
		t.Error("cancelled timer fired anyway")
	}

	// Cancelling again, or cancelling nonsense, is a no-op.
	timer.Cancel(id)
	timer.Cancel("nudge_999")
}

func TestNudgeTimerStopCancelsAll(t *testing.T) {
	timer := NewNudgeTimer()

	var fired atomic.Int32
	timer.ScheduleAfter(20*time.Millisecond, func() { fired.Add(1) })
	timer.ScheduleAfter(25*time.Millisecond, func() { fired.Add(1) })
	timer.Stop()

	time.Sleep(80 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("expected no timers to fire after Stop, got %d", n)
	}
}
