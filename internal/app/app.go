package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/ai-calendar/internal/rabbit"
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/lomoval/ai-calendar/internal/validator"
	log "github.com/sirupsen/logrus"
)

// Publisher receives change notifications. May be nil.
type Publisher interface {
	Publish(body []byte) error
}

type App struct {
	Storage   storage.Storage
	publisher Publisher
	now       func() time.Time
}

func New(storage storage.Storage, publisher Publisher) *App {
	return &App{Storage: storage, publisher: publisher, now: time.Now}
}

func (a *App) ListEvents(ctx context.Context) ([]storage.Event, error) {
	return a.Storage.ListEvents(ctx)
}

func (a *App) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	return a.Storage.GetEvent(ctx, id)
}

func (a *App) CreateEvent(ctx context.Context, e storage.Event) (storage.Event, error) {
	if err := validator.ValidateEvent(e); err != nil {
		return storage.Event{}, err
	}
	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, err
	}
	a.notify(rabbit.KindCreated, e)
	return e, nil
}

func (a *App) UpdateEvent(ctx context.Context, id int64, e storage.Event) (storage.Event, error) {
	if err := validator.ValidateEvent(e); err != nil {
		return storage.Event{}, err
	}
	updated, err := a.Storage.UpdateEvent(ctx, id, e)
	if err != nil {
		return storage.Event{}, err
	}
	a.notify(rabbit.KindUpdated, updated)
	return updated, nil
}

// RemoveEvent fails with storage.ErrNotFoundEvent when there is nothing to remove.
func (a *App) RemoveEvent(ctx context.Context, id int64) error {
	e, err := a.Storage.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := a.Storage.RemoveEvent(ctx, id); err != nil {
		return err
	}
	a.notify(rabbit.KindRemoved, e)
	return nil
}

func (a *App) notify(kind string, e storage.Event) {
	if a.publisher == nil {
		return
	}
	body, err := rabbit.NewMessage(kind, e, a.now()).Marshal()
	if err == nil {
		err = a.publisher.Publish(body)
	}
	if err != nil {
		log.WithField("event", e.ID).Errorf("%v", fmt.Errorf("failed to publish %s notification: %w", kind, err))
	}
}
