package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/domain/registration"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type RegistrationService interface {
	Register(ctx context.Context, p auth.Principal, eventID int64) (registration.Registration, error)
	Registrations(ctx context.Context, p auth.Principal, f registration.ListFilter) ([]registration.Registration, error)
	Registration(ctx context.Context, p auth.Principal, orgID, eventID, userID int64) (registration.Registration, error)
	Unregister(ctx context.Context, p auth.Principal, eventID int64) error
}

type RegistrationHandler struct {
	regs RegistrationService
}

func NewRegistrationHandler(regs RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{regs: regs}
}

// Register signs the caller up; the organization is taken from the event.
func (h *RegistrationHandler) Register(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	var req registration.CreateRegistrationRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	reg, err := h.regs.Register(cctx, p, req.EventID)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

func (h *RegistrationHandler) ListMine(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	orgID, ok := queryID(ctx, "organization_id")
	if !ok {
		return
	}

	eventID, ok := queryID(ctx, "event_id")
	if !ok {
		return
	}

	details, ok := queryBool(ctx, "include_event_details")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	regs, err := h.regs.Registrations(cctx, p, registration.ListFilter{
		OrganizationID:      orgID,
		EventID:             eventID,
		IncludeEventDetails: details,
	})
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": regs,
		"count": len(regs),
	})
}

func (h *RegistrationHandler) GetRegistration(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	orgID, ok := pathID(ctx, "organizationId")
	if !ok {
		return
	}
	eventID, ok := pathID(ctx, "eventId")
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	reg, err := h.regs.Registration(cctx, p, orgID, eventID, userID)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

func (h *RegistrationHandler) Cancel(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	eventID, ok := pathID(ctx, "eventId")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.regs.Unregister(cctx, p, eventID); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
