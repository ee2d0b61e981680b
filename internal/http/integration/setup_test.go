package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/volunteerhub/internal/app"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		Port:            8080,
		Store:           config.StorePostgres,
		JWTSecret:       "integration-secret-at-least-32-bytes",
		SessionTTL:      time.Hour,
		BcryptCost:      4,
		MaxBodyBytes:    1 << 20,
		RateLimit:       1000,
		AuthRateLimit:   1000,
		RateLimitWindow: time.Minute,
		EventsCacheTTL:  time.Second,
	}
}

// setupRouter needs a disposable database; the test is skipped when
// TEST_DB_DSN is not set.
func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	resetDB(t, pool)

	cfg := testConfig()
	cfg.DBURL = dsn

	a := app.New(app.Options{
		Config: cfg,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stores: app.PostgresStores(pool, nil),
	})
	t.Cleanup(a.Accounts.Wait)

	return a.Router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE event_registrations, events, roles, organizations, credentials, user_interests, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func doJSON(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doLogin(router http.Handler, email, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {email}, "password": {password}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
	return out
}

func signup(t *testing.T, router http.Handler, email string) string {
	t.Helper()

	body := `{"email":"` + email + `","first_name":"Sam","last_name":"Doe","interests":["animal_welfare","disaster_relief"],"password":"password123"}`
	w := doJSON(router, http.MethodPost, "/api/auth/signup", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup got status %d, body=%s", w.Code, w.Body.String())
	}

	w = doLogin(router, email, "password123")
	if w.Code != http.StatusOK {
		t.Fatalf("login got status %d, body=%s", w.Code, w.Body.String())
	}

	return mustReadJSON[struct {
		AccessToken string `json:"access_token"`
	}](t, w).AccessToken
}
