package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lomoval/ai-calendar/internal/rabbit"
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	// Reminders and Cleanup are cron specs.
	Reminders string
	Cleanup   string
	// RemindBefore is how long before the start a reminder is sent.
	RemindBefore time.Duration
	// RetentionDays is how long past events are kept. Zero disables cleanup.
	RetentionDays int
}

type Publisher interface {
	Publish(body []byte) error
}

type Scheduler struct {
	config    Config
	storage   storage.Storage
	publisher Publisher
	location  *time.Location
	now       func() time.Time

	mu   sync.Mutex
	last time.Time
}

func New(config Config, storage storage.Storage, publisher Publisher, location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}
	s := &Scheduler{
		config:    config,
		storage:   storage,
		publisher: publisher,
		location:  location,
		now:       time.Now,
	}
	s.last = s.now()
	return s
}

// Start runs the jobs until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.location))
	if _, err := c.AddFunc(s.config.Reminders, func() {
		if _, err := s.Remind(ctx); err != nil {
			log.Errorf("failed to send reminders: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("incorrect reminders schedule %q: %w", s.config.Reminders, err)
	}
	if s.config.RetentionDays > 0 {
		if _, err := c.AddFunc(s.config.Cleanup, func() {
			if _, err := s.Cleanup(ctx); err != nil {
				log.Errorf("failed to remove old events: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("incorrect cleanup schedule %q: %w", s.config.Cleanup, err)
		}
	}

	c.Start()
	log.Info("scheduler is running...")
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Remind publishes a reminder for every event whose reminder time falls
// after the previous run and not later than now.
func (s *Scheduler) Remind(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	events, err := s.storage.ListEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get events: %w", err)
	}

	sent := 0
	for _, e := range events {
		start, err := e.Start(s.location)
		if err != nil {
			log.Warnf("skip event: %v", err)
			continue
		}
		remindAt := start.Add(-s.config.RemindBefore)
		if !remindAt.After(s.last) || remindAt.After(now) {
			continue
		}
		body, err := rabbit.NewMessage(rabbit.KindReminder, e, now).Marshal()
		if err != nil {
			return sent, fmt.Errorf("failed to prepare reminder for event %d: %w", e.ID, err)
		}
		log.Debugf("send reminder: %v", e)
		if err := s.publisher.Publish(body); err != nil {
			return sent, fmt.Errorf("failed to publish reminder for event %d: %w", e.ID, err)
		}
		sent++
	}
	s.last = now
	return sent, nil
}

// Cleanup removes events dated before the retention period.
func (s *Scheduler) Cleanup(ctx context.Context) (int64, error) {
	before := s.now().In(s.location).AddDate(0, 0, -s.config.RetentionDays).Format(storage.DateLayout)
	removed, err := s.storage.RemoveBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to remove events before %s: %w", before, err)
	}
	log.WithField("before", before).Infof("removed %d old events", removed)
	return removed, nil
}
