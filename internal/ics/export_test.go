package ics_test

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/lomoval/ai-calendar/internal/ics"
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	events := []storage.Event{
		{ID: 1, Name: "Standup", Date: "2030-01-01", Time: "09:30", Duration: 15},
		{ID: 2, Name: "Broken", Date: "2030-01-01", Time: "late"},
		{ID: 3, Name: "Retro", Date: "2030-01-02", Time: "16:00", Duration: 60},
	}
	stamp := time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC)

	out := ics.Export(events, time.UTC, stamp, "localhost")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	vevents := cal.Events()
	require.Len(t, vevents, 2)

	require.Equal(t, "event-1@localhost", vevents[0].Id())
	require.Equal(t, "Standup", vevents[0].GetProperty(ical.ComponentPropertySummary).Value)
	start, err := vevents[0].GetStartAt()
	require.NoError(t, err)
	require.True(t, start.Equal(time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC)))
	end, err := vevents[0].GetEndAt()
	require.NoError(t, err)
	require.True(t, end.Equal(time.Date(2030, 1, 1, 9, 45, 0, 0, time.UTC)))

	require.Equal(t, "event-3@localhost", vevents[1].Id())
}
