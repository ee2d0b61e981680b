package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/registration"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
)

type RegistrationsRepo struct {
	s *Store
}

func (r *RegistrationsRepo) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[reg.UserID]; !ok {
		return registration.Registration{}, user.ErrNotFound
	}
	if _, ok := r.s.events[reg.EventID]; !ok {
		return registration.Registration{}, event.ErrNotFound
	}

	k := regKey{reg.UserID, reg.EventID}
	if _, exists := r.s.regs[k]; exists {
		return registration.Registration{}, registration.ErrAlreadyRegistered
	}
	r.s.regs[k] = reg
	return reg, nil
}

func (r *RegistrationsRepo) List(ctx context.Context, f registration.ListFilter) ([]registration.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]registration.Registration, 0)
	for k, reg := range r.s.regs {
		if k.userID != f.UserID {
			continue
		}
		if f.OrganizationID != nil && reg.OrganizationID != *f.OrganizationID {
			continue
		}
		if f.EventID != nil && reg.EventID != *f.EventID {
			continue
		}

		if f.IncludeEventDetails {
			e := r.s.events[reg.EventID]
			reg.Event = &registration.EventSummary{Name: e.Name, Location: e.Location, DateTime: e.DateTime}
		}
		out = append(out, reg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RegistrationTime.Equal(out[j].RegistrationTime) {
			return out[i].EventID < out[j].EventID
		}
		return out[i].RegistrationTime.Before(out[j].RegistrationTime)
	})
	return out, nil
}

func (r *RegistrationsRepo) Get(ctx context.Context, orgID, eventID, userID int64) (registration.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reg, ok := r.s.regs[regKey{userID, eventID}]
	if !ok || reg.OrganizationID != orgID {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}

func (r *RegistrationsRepo) Delete(ctx context.Context, userID, eventID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := regKey{userID, eventID}
	if _, ok := r.s.regs[k]; !ok {
		return registration.ErrNotFound
	}
	delete(r.s.regs, k)
	return nil
}
