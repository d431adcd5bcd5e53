package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/lomoval/ai-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
)

const productID = "-//lomoval//ai-calendar//EN"

// Export renders events as an iCalendar feed. Event wall-clock times are
// read in loc. Events with an unparsable date or time are skipped.
func Export(events []storage.Event, loc *time.Location, stamp time.Time, host string) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		start, err := e.Start(loc)
		if err != nil {
			log.WithField("event", e.ID).Warnf("skipping event in ics export: %v", err)
			continue
		}
		end, _ := e.End(loc)

		ve := cal.AddEvent(fmt.Sprintf("event-%d@%s", e.ID, host))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(e.Name)
	}
	return cal.Serialize()
}
