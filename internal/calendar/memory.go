package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is a Repository backed by a map. It serves local
// development without Google credentials and the engine/service tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]Event
	nextID int
}

// NewInMemoryRepository creates an empty in-memory calendar.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{events: make(map[string]Event)}
}

// List returns events overlapping the window, ordered by start time, the
// same contract the Google API provides with orderBy=startTime.
func (r *InMemoryRepository) List(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Event
	for _, ev := range r.events {
		if ev.End.IsZero() {
			if ev.Start.Before(timeMin) {
				continue
			}
		} else if !ev.End.After(timeMin) {
			continue
		}
		if !timeMax.IsZero() && !ev.Start.Before(timeMax) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Insert stores the event and assigns an id.
func (r *InMemoryRepository) Insert(ctx context.Context, ev Event) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	ev.ID = fmt.Sprintf("evt-%d", r.nextID)
	r.events[ev.ID] = ev
	return &ev, nil
}

// Update replaces the stored event with the given id.
func (r *InMemoryRepository) Update(ctx context.Context, id string, ev Event) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return nil, fmt.Errorf("calendar: event %s not found", id)
	}
	ev.ID = id
	r.events[id] = ev
	return &ev, nil
}

// Delete removes the event with the given id.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return fmt.Errorf("calendar: event %s not found", id)
	}
	delete(r.events, id)
	return nil
}

// Len reports how many events are stored. Test helper.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
