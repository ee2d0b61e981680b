// Package memory is an in-process store with the same semantics as the
// postgres repos, cascades included. It backs tests and STORE=memory.
package memory

import (
	"sort"
	"sync"

	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/registration"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
)

type roleKey struct {
	userID int64
	orgID  int64
}

type regKey struct {
	userID  int64
	eventID int64
}

type Store struct {
	mu sync.RWMutex

	nextUserID  int64
	nextOrgID   int64
	nextEventID int64

	users       map[int64]user.User
	emails      map[string]int64
	credentials map[int64]string
	orgs        map[int64]organization.Organization
	roles       map[roleKey]role.PermissionLevel
	events      map[int64]event.Event
	regs        map[regKey]registration.Registration
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]user.User),
		emails:      make(map[string]int64),
		credentials: make(map[int64]string),
		orgs:        make(map[int64]organization.Organization),
		roles:       make(map[roleKey]role.PermissionLevel),
		events:      make(map[int64]event.Event),
		regs:        make(map[regKey]registration.Registration),
	}
}

func (s *Store) Users() *UsersRepo                 { return &UsersRepo{s: s} }
func (s *Store) Roles() *RolesRepo                 { return &RolesRepo{s: s} }
func (s *Store) Organizations() *OrganizationsRepo { return &OrganizationsRepo{s: s} }
func (s *Store) Events() *EventsRepo               { return &EventsRepo{s: s} }
func (s *Store) Registrations() *RegistrationsRepo { return &RegistrationsRepo{s: s} }

// the helpers below assume s.mu is held for writing

func (s *Store) deleteUserLocked(id int64) {
	u := s.users[id]
	delete(s.emails, u.Email)
	delete(s.users, id)
	delete(s.credentials, id)

	for k := range s.roles {
		if k.userID == id {
			delete(s.roles, k)
		}
	}
	for k := range s.regs {
		if k.userID == id {
			delete(s.regs, k)
		}
	}
	for oid, o := range s.orgs {
		if o.CreatedByUserID == id {
			o.CreatedByUserID = 0
			s.orgs[oid] = o
		}
	}
}

func (s *Store) deleteEventLocked(id int64) {
	delete(s.events, id)
	for k := range s.regs {
		if k.eventID == id {
			delete(s.regs, k)
		}
	}
}

func (s *Store) deleteOrgLocked(id int64) {
	delete(s.orgs, id)
	for k := range s.roles {
		if k.orgID == id {
			delete(s.roles, k)
		}
	}
	for eid, e := range s.events {
		if e.OrganizationID == id {
			s.deleteEventLocked(eid)
		}
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
