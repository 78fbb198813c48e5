package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hearthplan/hearth/internal/models"
	"github.com/hearthplan/hearth/internal/store"
)

func fixedNow() time.Time {
	return time.Date(2026, 6, 3, 7, 0, 0, 0, time.UTC)
}

func TestDigestRunPostsTodayOnly(t *testing.T) {
	st := store.NewInMemoryStore()
	require.NoError(t, st.AddEvent(models.Event{ID: "e1", ChildName: "Maya", EventName: "Soccer practice", Date: "2026-06-03", Time: "5:00 PM", Location: "the park"}))
	require.NoError(t, st.AddEvent(models.Event{ID: "e2", EventName: "Dentist", Date: "2026-06-04"}))
	require.NoError(t, st.AddKeeper(models.Keeper{ID: "k1", ChildName: "Leo", EventName: "Permission slip", Date: "2026-06-03", Time: "3:00 PM"}))

	d := &Digest{store: st, now: fixedNow}
	d.Run()

	messages, err := st.GetMessages()
	require.NoError(t, err)
	require.Len(t, messages, 1)

	msg := messages[0]
	require.Equal(t, models.SenderAssistant, msg.Sender)
	require.Contains(t, msg.Content, "Soccer practice for Maya at 5:00 PM (the park)")
	require.Contains(t, msg.Content, "Don't forget: Permission slip (Leo) by 3:00 PM")
	require.NotContains(t, msg.Content, "Dentist")
}

func TestDigestRunQuietWhenNothingScheduled(t *testing.T) {
	st := store.NewInMemoryStore()
	require.NoError(t, st.AddEvent(models.Event{ID: "e1", EventName: "Dentist", Date: "2026-06-04"}))

	d := &Digest{store: st, now: fixedNow}
	d.Run()

	messages, err := st.GetMessages()
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestDigestRunAllDayEvent(t *testing.T) {
	st := store.NewInMemoryStore()
	require.NoError(t, st.AddEvent(models.Event{ID: "e1", EventName: "Field trip", Date: "2026-06-03", IsAllDay: true}))

	d := &Digest{store: st, now: fixedNow}
	d.Run()

	messages, err := st.GetMessages()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0].Content, "Field trip (all day)")
}

func TestSchedulerRejectsInvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	require.Error(t, s.AddJob("not a cron expr", func() {}))
	require.NoError(t, s.AddJob("0 7 * * *", func() {}))
}

func TestDigestScheduleUsesDefaultCron(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	d := NewDigest(store.NewInMemoryStore())
	require.NoError(t, d.Schedule(s, ""))
}
