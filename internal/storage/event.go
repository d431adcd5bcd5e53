package storage

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is a scheduled occurrence. Duration is in minutes.
type Event struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Date     string `json:"date" db:"date"`
	Time     string `json:"time" db:"time"`
	Duration int    `json:"duration" db:"duration"`
}

// Start returns the start of the event in loc.
func (e Event) Start(loc *time.Location) (time.Time, error) {
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("incorrect start of event %d: %w", e.ID, err)
	}
	return start, nil
}

func (e Event) End(loc *time.Location) (time.Time, error) {
	start, err := e.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(e.Duration) * time.Minute), nil
}
