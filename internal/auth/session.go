package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
)

const SessionCookieName = "session"

// Principal is the authenticated caller. It is passed explicitly to every
// service call that needs an identity.
type Principal struct {
	UserID int64
	Email  string
}

// Keep this small interface so tests can fake it easily.
type TokenDecoder interface {
	Decode(token string) (Claims, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type Resolver struct {
	tokens TokenDecoder
	users  UserFinder
}

func NewResolver(tokens TokenDecoder, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve never tells the caller which check failed: missing token, bad
// signature, expiry, wrong purpose and a deleted user all map to
// apperr.ErrUnauthenticated. Only store failures surface as other errors.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (Principal, error) {
	raw := TokenFromRequest(req)

	if raw == "" {
		return Principal{}, apperr.ErrUnauthenticated
	}

	claims, err := r.tokens.Decode(raw)

	if err != nil || claims.Purpose != PurposeSession {
		return Principal{}, apperr.ErrUnauthenticated
	}

	u, err := r.users.GetByID(ctx, claims.Subject)

	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Principal{}, apperr.ErrUnauthenticated
		}
		return Principal{}, fmt.Errorf("resolve session user: %w", err)
	}

	return Principal{UserID: u.ID, Email: u.Email}, nil
}

// TokenFromRequest prefers a Bearer Authorization header and falls back to
// the session cookie. Headers with another scheme or an empty token are
// ignored so a proxy-added Basic header does not hide the cookie.
func TokenFromRequest(req *http.Request) string {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(req.Header.Get("Authorization")), " ")

	if ok && strings.EqualFold(scheme, "Bearer") {
		if tok := strings.TrimSpace(raw); tok != "" {
			return tok
		}
	}

	c, err := req.Cookie(SessionCookieName)

	if err != nil {
		return ""
	}

	return c.Value
}
