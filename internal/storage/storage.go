package storage

import (
	"context"
	"errors"
)

var ErrNotFoundEvent = errors.New("event not found")

type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	AddEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, id int64) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, id int64, e Event) (Event, error)
	// RemoveEvent deletes the event. Removing an unknown id is not an error.
	RemoveEvent(ctx context.Context, id int64) error
	// RemoveBefore deletes events dated strictly before date (YYYY-MM-DD).
	RemoveBefore(ctx context.Context, date string) (int64, error)
}
