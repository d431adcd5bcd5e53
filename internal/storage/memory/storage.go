package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lomoval/ai-calendar/internal/storage"
)

type Storage struct {
	mu    sync.RWMutex
	data  map[int64]storage.Event
	idSeq int64
}

func New() *Storage {
	return &Storage{data: make(map[int64]storage.Event)}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	e.ID = s.idSeq
	s.data[e.ID] = *e
	return nil
}

func (s *Storage) GetEvent(_ context.Context, id int64) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return e, nil
}

func (s *Storage) ListEvents(_ context.Context) ([]storage.Event, error) {
	s.mu.RLock()
	events := make([]storage.Event, 0, len(s.data))
	for _, e := range s.data {
		events = append(events, e)
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (s *Storage) UpdateEvent(_ context.Context, id int64, e storage.Event) (storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	e.ID = id
	s.data[id] = e
	return e, nil
}

func (s *Storage) RemoveEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *Storage) RemoveBefore(_ context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, e := range s.data {
		if e.Date < date {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}
