package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	getByIDFn func(ctx context.Context, id int64) (user.User, error)
}

func (f fakeUsers) GetByID(ctx context.Context, id int64) (user.User, error) {
	return f.getByIDFn(ctx, id)
}

func usersWith(known ...user.User) fakeUsers {
	return fakeUsers{getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
		for _, u := range known {
			if u.ID == id {
				return u, nil
			}
		}
		return user.User{}, user.ErrNotFound
	}}
}

func TestResolveBearerHeader(t *testing.T) {
	m := NewManager(testSecret, time.Hour)
	r := NewResolver(m, usersWith(user.User{ID: 3, Email: "a@example.com"}))

	tok, _, err := m.IssueSession(3)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	p, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 3, Email: "a@example.com"}, p)
}

func TestResolveCookie(t *testing.T) {
	m := NewManager(testSecret, time.Hour)
	r := NewResolver(m, usersWith(user.User{ID: 3, Email: "a@example.com"}))

	tok, _, err := m.IssueSession(3)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})

	p, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.UserID)
}

func TestResolveUnauthenticated(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(testSecret, time.Hour).WithClock(fixedClock(now))
	r := NewResolver(m, usersWith(user.User{ID: 3, Email: "a@example.com"}))

	reset, _, err := m.IssueReset(3)
	require.NoError(t, err)

	expired, err := m.Issue(Claims{Subject: 3, ExpiresAt: now.Add(-time.Second)})
	require.NoError(t, err)

	deleted, _, err := m.IssueSession(99)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"garbage", "Bearer junk"},
		{"reset token", "Bearer " + reset},
		{"expired", "Bearer " + expired},
		{"user gone", "Bearer " + deleted},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			_, err := r.Resolve(context.Background(), req)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}

func TestResolveStoreFailureIsNotUnauthenticated(t *testing.T) {
	m := NewManager(testSecret, time.Hour)
	boom := errors.New("connection reset")
	r := NewResolver(m, fakeUsers{getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
		return user.User{}, boom
	}})

	tok, _, err := m.IssueSession(3)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	_, err = r.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenFromRequestPrefersHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer from-header")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})

	assert.Equal(t, "from-header", TokenFromRequest(req))
}

func TestResolveCookieWithUnusableHeader(t *testing.T) {
	m := NewManager(testSecret, time.Hour)
	r := NewResolver(m, usersWith(user.User{ID: 3, Email: "a@example.com"}))

	tok, _, err := m.IssueSession(3)
	require.NoError(t, err)

	for _, header := range []string{"Basic Zm9vOmJhcg==", "Bearer ", "Bearer", "Token abc"} {
		t.Run(header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.Header.Set("Authorization", header)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})

			p, err := r.Resolve(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, int64(3), p.UserID)
		})
	}
}
