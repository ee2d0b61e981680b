// Package authz decides whether a principal may act on an organization.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
)

type RoleFinder interface {
	GetRole(ctx context.Context, userID, orgID int64) (role.Role, error)
}

type Gate struct {
	roles RoleFinder
}

func NewGate(roles RoleFinder) *Gate {
	return &Gate{roles: roles}
}

// RequireRole fails with apperr.ErrForbidden when the principal has no role
// in the organization or one that ranks below min.
func (g *Gate) RequireRole(ctx context.Context, p auth.Principal, orgID int64, min role.PermissionLevel) error {
	r, err := g.roles.GetRole(ctx, p.UserID, orgID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("no role in organization %d: %w", orgID, apperr.ErrForbidden)
		}
		return fmt.Errorf("role lookup: %w", err)
	}

	if !r.PermissionLevel.Satisfies(min) {
		return fmt.Errorf("%s role required in organization %d: %w", min, orgID, apperr.ErrForbidden)
	}
	return nil
}

func (g *Gate) RequireAdmin(ctx context.Context, p auth.Principal, orgID int64) error {
	return g.RequireRole(ctx, p, orgID, role.Admin)
}

// CanRemoveMember allows members to leave on their own, and admins to remove
// anyone.
func (g *Gate) CanRemoveMember(ctx context.Context, p auth.Principal, orgID, targetUserID int64) error {
	if p.UserID == targetUserID {
		return nil
	}
	return g.RequireAdmin(ctx, p, orgID)
}
