package role

import (
	"fmt"

	"github.com/geocoder89/volunteerhub/internal/apperr"
)

// PermissionLevel is a closed set. Compare levels with Rank, never by string.
type PermissionLevel string

const (
	Volunteer PermissionLevel = "volunteer"
	Admin     PermissionLevel = "admin"
)

// Rank orders levels; unknown levels rank 0 and satisfy nothing.
func (l PermissionLevel) Rank() int {
	switch l {
	case Volunteer:
		return 1
	case Admin:
		return 2
	default:
		return 0
	}
}

func (l PermissionLevel) IsValid() bool {
	return l.Rank() > 0
}

// Satisfies reports whether l meets the minimum level.
func (l PermissionLevel) Satisfies(min PermissionLevel) bool {
	return l.IsValid() && min.IsValid() && l.Rank() >= min.Rank()
}

func Parse(s string) (PermissionLevel, bool) {
	l := PermissionLevel(s)
	return l, l.IsValid()
}

type Role struct {
	UserID          int64           `json:"user_id"`
	OrganizationID  int64           `json:"organization_id"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

// Member is a role joined with the member's display name.
type Member struct {
	UserID          int64           `json:"user_id"`
	OrganizationID  int64           `json:"organization_id"`
	Name            string          `json:"name"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

var (
	ErrNotFound      = fmt.Errorf("role %w", apperr.ErrNotFound)
	ErrAlreadyMember = fmt.Errorf("user already has a role in this organization: %w", apperr.ErrConflict)
)

type AddMemberRequest struct {
	// nil means "add myself"
	UserID          *int64 `json:"user_id" binding:"omitempty,gt=0"`
	PermissionLevel string `json:"permission_level" binding:"required,permission_level"`
}

type UpdateMemberRequest struct {
	PermissionLevel string `json:"permission_level" binding:"required,permission_level"`
}
