package memory

import (
	"context"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
)

type OrganizationsRepo struct {
	s *Store
}

func (r *OrganizationsRepo) CreateWithAdmin(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[o.CreatedByUserID]; !ok {
		return organization.Organization{}, user.ErrNotFound
	}

	r.s.nextOrgID++
	o.ID = r.s.nextOrgID
	r.s.orgs[o.ID] = o
	r.s.roles[roleKey{o.CreatedByUserID, o.ID}] = role.Admin

	return o, nil
}

func (r *OrganizationsRepo) GetByID(ctx context.Context, id int64) (organization.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orgs[id]
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	return o, nil
}

func (r *OrganizationsRepo) List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var q string
	if f.Query != nil {
		q = strings.ToLower(strings.TrimSpace(*f.Query))
	}

	out := make([]organization.Organization, 0)
	for _, id := range sortedKeys(r.s.orgs) {
		o := r.s.orgs[id]

		if q != "" && !strings.Contains(strings.ToLower(o.Name), q) && !strings.Contains(strings.ToLower(o.Description), q) {
			continue
		}
		if f.Category != nil && o.Category != *f.Category {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrganizationsRepo) Update(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.orgs[o.ID]
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}

	o.CreatedByUserID = current.CreatedByUserID
	r.s.orgs[o.ID] = o
	return o, nil
}

func (r *OrganizationsRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orgs[id]; !ok {
		return organization.ErrNotFound
	}
	r.s.deleteOrgLocked(id)
	return nil
}
