package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lomoval/ai-calendar/internal/rabbit"
	"github.com/lomoval/ai-calendar/internal/storage"
	memorystorage "github.com/lomoval/ai-calendar/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

type publisher struct {
	messages []rabbit.Message
	err      error
}

func (p *publisher) Publish(body []byte) error {
	if p.err != nil {
		return p.err
	}
	m, err := rabbit.ParseMessage(body)
	if err != nil {
		return err
	}
	p.messages = append(p.messages, m)
	return nil
}

func addEvents(t *testing.T, s storage.Storage, events ...storage.Event) {
	t.Helper()
	for i := range events {
		require.NoError(t, s.AddEvent(context.Background(), &events[i]))
	}
}

func TestRemind(t *testing.T) {
	ctx := context.Background()
	s := memorystorage.New()
	addEvents(t, s,
		storage.Event{Name: "past", Date: "2030-01-01", Time: "09:00"},
		storage.Event{Name: "soon", Date: "2030-01-01", Time: "10:10"},
		storage.Event{Name: "later", Date: "2030-01-01", Time: "10:30"},
		storage.Event{Name: "tomorrow", Date: "2030-01-02", Time: "10:10"},
	)
	p := &publisher{}

	now := time.Date(2030, 1, 1, 9, 50, 0, 0, time.UTC)
	sch := New(Config{RemindBefore: 15 * time.Minute}, s, p, time.UTC)
	sch.now = func() time.Time { return now }
	sch.last = now

	now = now.Add(5 * time.Minute)
	sent, err := sch.Remind(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, p.messages, 1)
	require.Equal(t, rabbit.KindReminder, p.messages[0].Kind)
	require.Equal(t, "soon", p.messages[0].Event.Name)

	sent, err = sch.Remind(ctx)
	require.NoError(t, err)
	require.Zero(t, sent, "reminder must not repeat")

	now = now.Add(20 * time.Minute)
	sent, err = sch.Remind(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Equal(t, "later", p.messages[1].Event.Name)
}

func TestRemindPublishError(t *testing.T) {
	s := memorystorage.New()
	addEvents(t, s, storage.Event{Name: "soon", Date: "2030-01-01", Time: "10:00"})
	p := &publisher{err: errors.New("connection closed")}

	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	sch := New(Config{}, s, p, time.UTC)
	sch.now = func() time.Time { return now }
	sch.last = now
	now = now.Add(time.Hour)

	_, err := sch.Remind(context.Background())
	require.ErrorIs(t, err, p.err)
}

func TestCleanup(t *testing.T) {
	s := memorystorage.New()
	addEvents(t, s,
		storage.Event{Name: "old", Date: "2028-12-31", Time: "09:00"},
		storage.Event{Name: "kept", Date: "2029-01-01", Time: "09:00"},
		storage.Event{Name: "future", Date: "2030-02-01", Time: "09:00"},
	)

	sch := New(Config{RetentionDays: 365}, s, &publisher{}, time.UTC)
	sch.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	removed, err := sch.Cleanup(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	events, err := s.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestStartIncorrectSchedule(t *testing.T) {
	sch := New(Config{Reminders: "every minute"}, memorystorage.New(), &publisher{}, time.UTC)
	require.Error(t, sch.Start(context.Background()))
}
