package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
)

type EventsRepo struct {
	s *Store
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orgs[e.OrganizationID]; !ok {
		return event.Event{}, organization.ErrNotFound
	}

	r.s.nextEventID++
	e.ID = r.s.nextEventID
	r.s.events[e.ID] = e
	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]event.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		if f.OrganizationID != nil && e.OrganizationID != *f.OrganizationID {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id int64) (event.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return e, nil
}

func (r *EventsRepo) Update(ctx context.Context, e event.Event) (event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[e.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	if _, ok := r.s.orgs[e.OrganizationID]; !ok {
		return event.Event{}, organization.ErrNotFound
	}

	r.s.events[e.ID] = e
	return e, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return event.ErrNotFound
	}
	r.s.deleteEventLocked(id)
	return nil
}
