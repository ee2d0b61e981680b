package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Users(ctx context.Context, f user.ListFilter) ([]user.User, error)
	User(ctx context.Context, id int64) (user.User, error)
	UpdateProfile(ctx context.Context, p auth.Principal, userID int64, req user.UpdateProfileRequest) (user.User, error)
}

type RoleLister interface {
	Roles(ctx context.Context, p auth.Principal) ([]role.Role, error)
}

type UsersHandler struct {
	users UserService
	roles RoleLister
}

func NewUsersHandler(users UserService, roles RoleLister) *UsersHandler {
	return &UsersHandler{users: users, roles: roles}
}

// ListUsers supports ?query= (email or name) and ?availability=.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	f := user.ListFilter{
		Query:        queryString(ctx, "query"),
		Availability: queryString(ctx, "availability"),
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.users.Users(cctx, f)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.User(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, p, id, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// ListRoles returns the caller's roles across all organizations.
func (h *UsersHandler) ListRoles(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	roles, err := h.roles.Roles(cctx, p)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": roles,
		"count": len(roles),
	})
}
