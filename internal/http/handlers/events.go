package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type EventService interface {
	List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error)
	Get(ctx context.Context, id int64) (event.Event, error)
	Create(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error)
	Update(ctx context.Context, p auth.Principal, id int64, req event.UpdateEventRequest) (event.Event, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error
}

type EventsHandler struct {
	events EventService
}

func NewEventsHandler(events EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	orgID, ok := queryID(ctx, "organization_id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	events, err := h.events.List(cctx, event.ListEventsFilter{OrganizationID: orgID})
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": events,
		"count": len(events),
	})
}

func (h *EventsHandler) GetEventByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	e, err := h.events.Get(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	var req event.CreateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	e, err := h.events.Create(cctx, p, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req event.UpdateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	e, err := h.events.Update(cctx, p, id, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.events.Delete(cctx, p, id); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
