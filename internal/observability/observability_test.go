package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/volunteerhub/internal/actorctx"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestObserveDBClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("users.create", func() error {
		return &pgconn.PgError{Code: "23505"}
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")))
}

func TestObserveDBNoRowsIsNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("users.get", func() error { return pgx.ErrNoRows })
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.Equal(t, 0, testutil.CollectAndCount(p.DbErrorsTotal))
}

func TestNilPromIsUsable(t *testing.T) {
	var p *Prom

	called := false
	err := p.ObserveDB("op", func() error {
		called = true
		return errors.New("boom")
	})

	assert.True(t, called)
	assert.Error(t, err)
	assert.NotPanics(t, func() {
		p.AuthOutcome("login", "ok")
		p.RateLimitHit("auth")
		p.CacheLookup("events", true)
	})
}

func TestGinMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/api/events/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events/12", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/api/events/:id", "204")))
}

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", rec["trace_id"])
	assert.Equal(t, "b7ad6b7169203331", rec["span_id"])
}

func TestLoggerAddsActingUser(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.InfoContext(actorctx.WithUserID(context.Background(), 42), "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, 42.0, rec["user_id"])
}

func TestLoggerLevelByEnv(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Debug("hidden")
	assert.Zero(t, buf.Len())

	newLogger(&buf, "dev").Debug("shown")
	assert.NotZero(t, buf.Len())
}
