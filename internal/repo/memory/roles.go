package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
)

type RolesRepo struct {
	s *Store
}

func (r *RolesRepo) GetRole(ctx context.Context, userID, orgID int64) (role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	level, ok := r.s.roles[roleKey{userID, orgID}]
	if !ok {
		return role.Role{}, role.ErrNotFound
	}
	return role.Role{UserID: userID, OrganizationID: orgID, PermissionLevel: level}, nil
}

func (r *RolesRepo) ListByUser(ctx context.Context, userID int64) ([]role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]role.Role, 0)
	for k, level := range r.s.roles {
		if k.userID == userID {
			out = append(out, role.Role{UserID: k.userID, OrganizationID: k.orgID, PermissionLevel: level})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrganizationID < out[j].OrganizationID })
	return out, nil
}

func (r *RolesRepo) ListMembers(ctx context.Context, orgID int64) ([]role.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]role.Member, 0)
	for k, level := range r.s.roles {
		if k.orgID != orgID {
			continue
		}
		u := r.s.users[k.userID]
		out = append(out, role.Member{
			UserID:          k.userID,
			OrganizationID:  k.orgID,
			Name:            u.FirstName + " " + u.LastName,
			PermissionLevel: level,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *RolesRepo) AddRole(ctx context.Context, rl role.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[rl.UserID]; !ok {
		return user.ErrNotFound
	}
	if _, ok := r.s.orgs[rl.OrganizationID]; !ok {
		return organization.ErrNotFound
	}

	k := roleKey{rl.UserID, rl.OrganizationID}
	if _, exists := r.s.roles[k]; exists {
		return role.ErrAlreadyMember
	}
	r.s.roles[k] = rl.PermissionLevel
	return nil
}

func (r *RolesRepo) UpdateRole(ctx context.Context, rl role.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := roleKey{rl.UserID, rl.OrganizationID}
	if _, ok := r.s.roles[k]; !ok {
		return role.ErrNotFound
	}
	r.s.roles[k] = rl.PermissionLevel
	return nil
}

func (r *RolesRepo) DeleteRole(ctx context.Context, userID, orgID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := roleKey{userID, orgID}
	if _, ok := r.s.roles[k]; !ok {
		return role.ErrNotFound
	}
	delete(r.s.roles, k)
	return nil
}
