package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/stretchr/testify/assert"
)

type fakeRoles map[[2]int64]role.PermissionLevel

func (f fakeRoles) GetRole(ctx context.Context, userID, orgID int64) (role.Role, error) {
	level, ok := f[[2]int64{userID, orgID}]
	if !ok {
		return role.Role{}, role.ErrNotFound
	}
	return role.Role{UserID: userID, OrganizationID: orgID, PermissionLevel: level}, nil
}

const (
	orgA = int64(10)
	orgB = int64(20)

	adminA     = int64(1)
	volunteerA = int64(2)
	outsider   = int64(3)
)

var roles = fakeRoles{
	{adminA, orgA}:     role.Admin,
	{volunteerA, orgA}: role.Volunteer,
	{adminA, orgB}:     role.Volunteer,
	{outsider, orgB}:   role.PermissionLevel("owner"),
}

func TestRequireRole(t *testing.T) {
	g := NewGate(roles)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  int64
		orgID   int64
		min     role.PermissionLevel
		allowed bool
	}{
		{"admin needs admin", adminA, orgA, role.Admin, true},
		{"admin needs volunteer", adminA, orgA, role.Volunteer, true},
		{"volunteer needs admin", volunteerA, orgA, role.Admin, false},
		{"volunteer needs volunteer", volunteerA, orgA, role.Volunteer, true},
		{"no role", outsider, orgA, role.Volunteer, false},
		{"admin elsewhere is volunteer here", adminA, orgB, role.Admin, false},
		{"unknown stored level", outsider, orgB, role.Volunteer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.RequireRole(ctx, auth.Principal{UserID: tt.userID}, tt.orgID, tt.min)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrForbidden)
		})
	}
}

func TestCanRemoveMember(t *testing.T) {
	g := NewGate(roles)
	ctx := context.Background()

	assert.NoError(t, g.CanRemoveMember(ctx, auth.Principal{UserID: volunteerA}, orgA, volunteerA), "self removal")
	assert.NoError(t, g.CanRemoveMember(ctx, auth.Principal{UserID: adminA}, orgA, volunteerA), "admin removes member")
	assert.ErrorIs(t, g.CanRemoveMember(ctx, auth.Principal{UserID: volunteerA}, orgA, adminA), apperr.ErrForbidden)
	assert.ErrorIs(t, g.CanRemoveMember(ctx, auth.Principal{UserID: outsider}, orgA, volunteerA), apperr.ErrForbidden)
}

type brokenRoles struct{}

func (brokenRoles) GetRole(ctx context.Context, userID, orgID int64) (role.Role, error) {
	return role.Role{}, errors.New("db down")
}

func TestRequireRoleStoreFailure(t *testing.T) {
	err := NewGate(brokenRoles{}).RequireAdmin(context.Background(), auth.Principal{UserID: 1}, orgA)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrForbidden)
}
