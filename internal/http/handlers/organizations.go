package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const orgTimeout = 3 * time.Second

type OrganizationService interface {
	Create(ctx context.Context, p auth.Principal, req organization.CreateOrganizationRequest) (organization.Organization, error)
	Get(ctx context.Context, id int64) (organization.Organization, error)
	List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, error)
	Update(ctx context.Context, p auth.Principal, id int64, req organization.UpdateOrganizationRequest) (organization.Organization, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error

	Members(ctx context.Context, orgID int64) ([]role.Member, error)
	AddMember(ctx context.Context, p auth.Principal, orgID int64, req role.AddMemberRequest) (role.Role, error)
	UpdateMember(ctx context.Context, p auth.Principal, orgID, userID int64, req role.UpdateMemberRequest) (role.Role, error)
	RemoveMember(ctx context.Context, p auth.Principal, orgID, userID int64) error
}

type OrganizationsHandler struct {
	orgs OrganizationService
}

func NewOrganizationsHandler(orgs OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{orgs: orgs}
}

func (h *OrganizationsHandler) ListOrganizations(ctx *gin.Context) {
	var f organization.ListFilter

	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		f.Query = &q
	}

	if raw := ctx.Query("category"); raw != "" {
		c := category.Category(raw)
		if !c.IsValid() {
			RespondBadRequest(ctx, "Unknown category", gin.H{"param": "category", "value": raw})
			return
		}
		f.Category = &c
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	orgs, err := h.orgs.List(cctx, f)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": orgs,
		"count": len(orgs),
	})
}

func (h *OrganizationsHandler) CreateOrganization(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	var req organization.CreateOrganizationRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), orgTimeout)
	defer cancel()

	org, err := h.orgs.Create(cctx, p, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, org)
}

func (h *OrganizationsHandler) GetOrganization(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	org, err := h.orgs.Get(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, org)
}

func (h *OrganizationsHandler) UpdateOrganization(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req organization.UpdateOrganizationRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), orgTimeout)
	defer cancel()

	org, err := h.orgs.Update(cctx, p, id, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, org)
}

func (h *OrganizationsHandler) DeleteOrganization(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), orgTimeout)
	defer cancel()

	if err := h.orgs.Delete(cctx, p, id); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *OrganizationsHandler) ListMembers(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	members, err := h.orgs.Members(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": members,
		"count": len(members),
	})
}

// AddMember: an admin may add anyone at any level, everyone else may only
// join as a volunteer.
func (h *OrganizationsHandler) AddMember(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req role.AddMemberRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), orgTimeout)
	defer cancel()

	r, err := h.orgs.AddMember(cctx, p, id, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, r)
}

func (h *OrganizationsHandler) UpdateMember(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	orgID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	var req role.UpdateMemberRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), orgTimeout)
	defer cancel()

	r, err := h.orgs.UpdateMember(cctx, p, orgID, userID, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, r)
}

func (h *OrganizationsHandler) RemoveMember(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	orgID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), orgTimeout)
	defer cancel()

	if err := h.orgs.RemoveMember(cctx, p, orgID, userID); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
