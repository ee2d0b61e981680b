package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/volunteerhub/internal/actorctx"
	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Small interface so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (auth.Principal, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth rejects the request with one fixed 401 body whatever the reason
// (no token, bad signature, expired, wrong purpose, deleted user).
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.sessions.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthenticated) {
				abortWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "session lookup failed",
				"err", err,
				"request_id", RequestIDFrom(c),
			)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
			return
		}

		c.Set(ctxPrincipal, p)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), p.UserID))
		c.Next()
	}
}
