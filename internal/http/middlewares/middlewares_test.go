package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	p   auth.Principal
	err error
}

func (f fakeResolver) Resolve(ctx context.Context, r *http.Request) (auth.Principal, error) {
	return f.p, f.err
}

func whoami(c *gin.Context) {
	p, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, p.Email)
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		resolver   fakeResolver
		wantStatus int
		wantBody   string
	}{
		{
			name:       "principal is exposed to the handler",
			resolver:   fakeResolver{p: auth.Principal{UserID: 7, Email: "a@x.com"}},
			wantStatus: http.StatusOK,
			wantBody:   "a@x.com",
		},
		{
			name:       "unauthenticated",
			resolver:   fakeResolver{err: apperr.ErrUnauthenticated},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":{"code":"unauthorized","message":"Not authenticated","requestId":"req-1"}}`,
		},
		{
			name:       "store failure is not reported as 401",
			resolver:   fakeResolver{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":{"code":"internal_error","message":"Something went wrong","requestId":"req-1"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.RequestID())
			r.GET("/me", middlewares.NewAuthMiddleware(tt.resolver).RequireAuth(), whoami)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("X-Request-Id", "req-1")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Body.String(); got != tt.wantBody {
				t.Fatalf("expected body %s, got %s", tt.wantBody, got)
			}
		})
	}
}

func TestRequestIDGeneratedWhenMissingOrOversized(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, middlewares.RequestIDFrom(c)) })

	for _, header := range []string{"", strings.Repeat("x", 500)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("X-Request-Id", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		id := w.Header().Get("X-Request-Id")
		if id == "" || id == header || w.Body.String() != id {
			t.Fatalf("expected a generated request id, got header %q body %q", id, w.Body.String())
		}
	}
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type countingMetrics struct{ hits map[string]int }

func (m *countingMetrics) RateLimitHit(limiter string) { m.hits[limiter]++ }

func TestRateLimitMemory(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := middlewares.NewRateLimiter(2, time.Minute)
	middlewares.SetClock(limiter, clock.now)
	metrics := &countingMetrics{hits: map[string]int{}}

	r := gin.New()
	r.Use(middlewares.RateLimit("auth", limiter, middlewares.KeyByIP, metrics))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
	if metrics.hits["auth"] != 1 {
		t.Fatalf("expected one rate limit hit, got %d", metrics.hits["auth"])
	}

	clock.advance(time.Minute + time.Second)

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("expected a fresh window after expiry, got %d", w.Code)
	}
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.counts[key]++
	return f.counts[key], window / 2, nil
}

func TestRedisLimiter(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	limiter := middlewares.NewRedisLimiter(counter, "auth", 1, time.Minute)

	ok, _, err := limiter.Allow(context.Background(), "1.2.3.4")
	if err != nil || !ok {
		t.Fatalf("first hit should pass, ok=%v err=%v", ok, err)
	}

	ok, retry, err := limiter.Allow(context.Background(), "1.2.3.4")
	if err != nil || ok {
		t.Fatalf("second hit should be limited, ok=%v err=%v", ok, err)
	}
	if retry != 30*time.Second {
		t.Fatalf("expected retry after 30s, got %s", retry)
	}
	if counter.counts["ratelimit:auth:1.2.3.4"] != 2 {
		t.Fatalf("unexpected keys %v", counter.counts)
	}
}

func TestRateLimitFailsOpenWhenStoreIsDown(t *testing.T) {
	limiter := middlewares.NewRedisLimiter(&fakeCounter{err: errors.New("connection refused")}, "api", 1, time.Minute)

	r := gin.New()
	r.Use(middlewares.RateLimit("api", limiter, middlewares.KeyByUserOrIP, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		allowAny  bool
		origin    string
		wantAllow string
	}{
		{"listed origin", []string{"https://app.example"}, false, "https://app.example", "https://app.example"},
		{"unlisted origin", []string{"https://app.example"}, false, "https://evil.example", ""},
		{"empty list in dev", nil, true, "http://localhost:3000", "http://localhost:3000"},
		{"empty list in prod", nil, false, "http://localhost:3000", ""},
		{"list wins over dev wildcard", []string{"https://app.example"}, true, "http://localhost:3000", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.CORSMiddleware(tt.allowed, tt.allowAny))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Fatalf("expected allow origin %q, got %q", tt.wantAllow, got)
			}
		})
	}
}

func TestRequireContentType(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireContentType(gin.MIMEJSON, gin.MIMEPOSTForm))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		ct   string
		body string
		want int
	}{
		{"application/json; charset=utf-8", "{}", http.StatusOK},
		{"application/x-www-form-urlencoded", "a=b", http.StatusOK},
		{"text/plain", "hi", http.StatusUnsupportedMediaType},
		{"", "hi", http.StatusUnsupportedMediaType},
		{"", "", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		if tt.ct != "" {
			req.Header.Set("Content-Type", tt.ct)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Fatalf("content type %q body %q: expected %d, got %d", tt.ct, tt.body, tt.want, w.Code)
		}
	}
}

func TestMaxBodyBytesRejectsDeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(4))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}
