// Package events manages events and the caller's registrations for them.
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/cache"
	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/registration"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/observability"
)

type EventStore interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id int64) (event.Event, error)
	List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error)
	Update(ctx context.Context, e event.Event) (event.Event, error)
	Delete(ctx context.Context, id int64) error
}

type RegistrationStore interface {
	Create(ctx context.Context, reg registration.Registration) (registration.Registration, error)
	List(ctx context.Context, f registration.ListFilter) ([]registration.Registration, error)
	Get(ctx context.Context, orgID, eventID, userID int64) (registration.Registration, error)
	Delete(ctx context.Context, userID, eventID int64) error
}

type Gate interface {
	RequireRole(ctx context.Context, p auth.Principal, orgID int64, min role.PermissionLevel) error
}

type Service struct {
	events EventStore
	regs   RegistrationStore
	gate   Gate
	list   *cache.Cache[[]event.Event]
	prom   *observability.Prom
}

func NewService(events EventStore, regs RegistrationStore, gate Gate, listTTL time.Duration, prom *observability.Prom) *Service {
	return &Service{
		events: events,
		regs:   regs,
		gate:   gate,
		list:   cache.New[[]event.Event](listTTL),
		prom:   prom,
	}
}

func listCacheKey(f event.ListEventsFilter) string {
	org := "all"
	if f.OrganizationID != nil {
		org = strconv.FormatInt(*f.OrganizationID, 10)
	}
	return "events:list:v1:org=" + org
}

// List is served from a short-lived cache. Cascading deletes from outside
// this service show up once the entry expires.
func (s *Service) List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error) {
	key := listCacheKey(f)

	if cached, ok := s.list.Get(key); ok {
		s.prom.CacheLookup("events_list", true)
		return cached, nil
	}
	s.prom.CacheLookup("events_list", false)

	out, err := s.events.List(ctx, f)
	if err != nil {
		return nil, err
	}

	s.list.Set(key, out)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (event.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error) {
	if err := s.gate.RequireRole(ctx, p, req.OrganizationID, role.Admin); err != nil {
		return event.Event{}, err
	}

	e, err := s.events.Create(ctx, event.NewFromCreateRequest(req))
	if err != nil {
		return event.Event{}, err
	}

	s.list.Clear()
	return e, nil
}

// Update needs admin on the event's organization, and also on the target
// organization when the event is being moved.
func (s *Service) Update(ctx context.Context, p auth.Principal, id int64, req event.UpdateEventRequest) (event.Event, error) {
	if err := req.Validate(); err != nil {
		return event.Event{}, err
	}

	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		return event.Event{}, err
	}

	if err := s.gate.RequireRole(ctx, p, current.OrganizationID, role.Admin); err != nil {
		return event.Event{}, err
	}

	if dest, ok := req.OrganizationID.Get(); ok && dest != current.OrganizationID {
		if err := s.gate.RequireRole(ctx, p, dest, role.Admin); err != nil {
			return event.Event{}, err
		}
	}

	updated := req.Apply(current)
	updated.DateTime = updated.DateTime.UTC()

	e, err := s.events.Update(ctx, updated)
	if err != nil {
		return event.Event{}, err
	}

	s.list.Clear()
	return e, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id int64) error {
	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gate.RequireRole(ctx, p, current.OrganizationID, role.Admin); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.list.Clear()
	return nil
}

// Register signs the caller up; the organization is taken from the event.
func (s *Service) Register(ctx context.Context, p auth.Principal, eventID int64) (registration.Registration, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return registration.Registration{}, err
	}

	return s.regs.Create(ctx, registration.New(p.UserID, e.ID, e.OrganizationID))
}

// Registrations lists the caller's own registrations; f.UserID is ignored.
func (s *Service) Registrations(ctx context.Context, p auth.Principal, f registration.ListFilter) ([]registration.Registration, error) {
	f.UserID = p.UserID
	return s.regs.List(ctx, f)
}

// Registration answers not found before forbidden, so a caller may learn that
// someone else's registration exists but never read it.
func (s *Service) Registration(ctx context.Context, p auth.Principal, orgID, eventID, userID int64) (registration.Registration, error) {
	reg, err := s.regs.Get(ctx, orgID, eventID, userID)
	if err != nil {
		return registration.Registration{}, err
	}

	if reg.UserID != p.UserID {
		return registration.Registration{}, fmt.Errorf("registration belongs to another user: %w", apperr.ErrForbidden)
	}
	return reg, nil
}

func (s *Service) Unregister(ctx context.Context, p auth.Principal, eventID int64) error {
	return s.regs.Delete(ctx, p.UserID, eventID)
}
