// Package organizations manages organizations and their memberships. Every
// mutation goes through the authorization gate first.
package organizations

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
)

type OrganizationStore interface {
	CreateWithAdmin(ctx context.Context, o organization.Organization) (organization.Organization, error)
	GetByID(ctx context.Context, id int64) (organization.Organization, error)
	List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, error)
	Update(ctx context.Context, o organization.Organization) (organization.Organization, error)
	Delete(ctx context.Context, id int64) error
}

type RoleStore interface {
	ListByUser(ctx context.Context, userID int64) ([]role.Role, error)
	ListMembers(ctx context.Context, orgID int64) ([]role.Member, error)
	AddRole(ctx context.Context, r role.Role) error
	UpdateRole(ctx context.Context, r role.Role) error
	DeleteRole(ctx context.Context, userID, orgID int64) error
}

type Gate interface {
	RequireRole(ctx context.Context, p auth.Principal, orgID int64, min role.PermissionLevel) error
	CanRemoveMember(ctx context.Context, p auth.Principal, orgID, targetUserID int64) error
}

type Service struct {
	orgs  OrganizationStore
	roles RoleStore
	gate  Gate
}

func NewService(orgs OrganizationStore, roles RoleStore, gate Gate) *Service {
	return &Service{orgs: orgs, roles: roles, gate: gate}
}

// Create makes the caller the organization's first admin.
func (s *Service) Create(ctx context.Context, p auth.Principal, req organization.CreateOrganizationRequest) (organization.Organization, error) {
	c := category.Category(req.Category)
	if !c.IsValid() {
		return organization.Organization{}, fmt.Errorf("unknown category %q: %w", req.Category, apperr.ErrInvalidInput)
	}

	return s.orgs.CreateWithAdmin(ctx, organization.Organization{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Category:        c,
		CreatedByUserID: p.UserID,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (organization.Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, error) {
	return s.orgs.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id int64, req organization.UpdateOrganizationRequest) (organization.Organization, error) {
	if err := req.Validate(); err != nil {
		return organization.Organization{}, err
	}

	current, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return organization.Organization{}, err
	}

	if err := s.gate.RequireRole(ctx, p, id, role.Admin); err != nil {
		return organization.Organization{}, err
	}

	return s.orgs.Update(ctx, req.Apply(current))
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if _, err := s.orgs.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.gate.RequireRole(ctx, p, id, role.Admin); err != nil {
		return err
	}

	return s.orgs.Delete(ctx, id)
}

func (s *Service) Members(ctx context.Context, orgID int64) ([]role.Member, error) {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.roles.ListMembers(ctx, orgID)
}

// AddMember: an admin may add anyone at any level; anyone else may only add
// themselves as a volunteer.
func (s *Service) AddMember(ctx context.Context, p auth.Principal, orgID int64, req role.AddMemberRequest) (role.Role, error) {
	level, ok := role.Parse(req.PermissionLevel)
	if !ok {
		return role.Role{}, fmt.Errorf("unknown permission level %q: %w", req.PermissionLevel, apperr.ErrInvalidInput)
	}

	target := p.UserID
	if req.UserID != nil {
		target = *req.UserID
	}

	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return role.Role{}, err
	}

	if target != p.UserID || level != role.Volunteer {
		if err := s.gate.RequireRole(ctx, p, orgID, role.Admin); err != nil {
			return role.Role{}, err
		}
	}

	r := role.Role{UserID: target, OrganizationID: orgID, PermissionLevel: level}
	if err := s.roles.AddRole(ctx, r); err != nil {
		return role.Role{}, err
	}
	return r, nil
}

func (s *Service) UpdateMember(ctx context.Context, p auth.Principal, orgID, userID int64, req role.UpdateMemberRequest) (role.Role, error) {
	level, ok := role.Parse(req.PermissionLevel)
	if !ok {
		return role.Role{}, fmt.Errorf("unknown permission level %q: %w", req.PermissionLevel, apperr.ErrInvalidInput)
	}

	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return role.Role{}, err
	}

	if err := s.gate.RequireRole(ctx, p, orgID, role.Admin); err != nil {
		return role.Role{}, err
	}

	r := role.Role{UserID: userID, OrganizationID: orgID, PermissionLevel: level}
	if err := s.roles.UpdateRole(ctx, r); err != nil {
		return role.Role{}, err
	}
	return r, nil
}

func (s *Service) RemoveMember(ctx context.Context, p auth.Principal, orgID, userID int64) error {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return err
	}

	if err := s.gate.CanRemoveMember(ctx, p, orgID, userID); err != nil {
		return err
	}

	return s.roles.DeleteRole(ctx, userID, orgID)
}

// Roles lists the caller's memberships across organizations.
func (s *Service) Roles(ctx context.Context, p auth.Principal) ([]role.Role, error) {
	return s.roles.ListByUser(ctx, p.UserID)
}
