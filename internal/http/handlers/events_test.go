package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/http/handlers"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

var caller = auth.Principal{UserID: 1, Email: "admin@example.com"}

// Fake implementation of handlers.EventService

type fakeEventService struct {
	listFn   func(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error)
	getFn    func(ctx context.Context, id int64) (event.Event, error)
	createFn func(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error)
	updateFn func(ctx context.Context, p auth.Principal, id int64, req event.UpdateEventRequest) (event.Event, error)
	deleteFn func(ctx context.Context, p auth.Principal, id int64) error
}

func (f *fakeEventService) List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeEventService) Get(ctx context.Context, id int64) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return event.Event{}, nil
}

func (f *fakeEventService) Create(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p, req)
	}
	return event.Event{}, nil
}

func (f *fakeEventService) Update(ctx context.Context, p auth.Principal, id int64, req event.UpdateEventRequest) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, p, id, req)
	}
	return event.Event{}, nil
}

func (f *fakeEventService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, p, id)
	}
	return nil
}

type staticResolver struct{}

func (staticResolver) Resolve(ctx context.Context, r *http.Request) (auth.Principal, error) {
	return caller, nil
}

// small helper which mounts one handler per test, behind auth when asked
func setupRouter(method, path string, h gin.HandlerFunc, authed bool) *gin.Engine {
	r := gin.New()

	if authed {
		r.Handle(method, path, middlewares.NewAuthMiddleware(staticResolver{}).RequireAuth(), h)
		return r
	}

	r.Handle(method, path, h)
	return r
}

func sampleEvent(id int64) event.Event {
	return event.Event{
		ID:             id,
		Name:           "Food drive",
		Location:       "Hall",
		DateTime:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		OrganizationID: 5,
	}
}

func TestCreateEventHandler(t *testing.T) {
	validBody := `{"name":"Food drive","location":"Hall","date_time":"2026-03-01T09:00:00Z","organization_id":5}`

	tests := []struct {
		name           string
		body           string
		setUp          func(*fakeEventService)
		wantStatusCode int
	}{
		{
			name: "success",
			body: validBody,
			setUp: func(f *fakeEventService) {
				f.createFn = func(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error) {
					if p != caller {
						return event.Event{}, errors.New("principal not passed through")
					}
					e := event.NewFromCreateRequest(req)
					e.ID = 10
					return e, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error",
			body:           `{"name": ""}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_an_admin",
			body: validBody,
			setUp: func(f *fakeEventService) {
				f.createFn = func(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, fmt.Errorf("admin required: %w", apperr.ErrForbidden)
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "unknown_organization",
			body: validBody,
			setUp: func(f *fakeEventService) {
				f.createFn = func(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, organization.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "store_error",
			body: validBody,
			setUp: func(f *fakeEventService) {
				f.createFn = func(ctx context.Context, p auth.Principal, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{}
			if tt.setUp != nil {
				tt.setUp(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodPost, "/events", h.CreateEvent, true)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateEventHandler_RequiresPrincipal(t *testing.T) {
	h := handlers.NewEventsHandler(&fakeEventService{})
	r := setupRouter(http.MethodPost, "/events", h.CreateEvent, false)

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestListEventsHandler(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantOrg *int64
		want    int
	}{
		{name: "all", query: "", want: http.StatusOK},
		{name: "by_organization", query: "?organization_id=5", wantOrg: ptr(int64(5)), want: http.StatusOK},
		{name: "bad_organization", query: "?organization_id=abc", want: http.StatusBadRequest},
		{name: "non_positive_organization", query: "?organization_id=0", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got event.ListEventsFilter
			svc := &fakeEventService{
				listFn: func(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error) {
					got = f
					return []event.Event{sampleEvent(1)}, nil
				},
			}

			r := setupRouter(http.MethodGet, "/events", handlers.NewEventsHandler(svc).ListEvents, false)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil))

			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			if (got.OrganizationID == nil) != (tt.wantOrg == nil) ||
				(got.OrganizationID != nil && *got.OrganizationID != *tt.wantOrg) {
				t.Fatalf("unexpected filter %+v", got)
			}
		})
	}
}

func TestGetEventByIDHandler(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "found", path: "/events/1", want: http.StatusOK},
		{name: "not_found", path: "/events/2", err: event.ErrNotFound, want: http.StatusNotFound},
		{name: "bad_id", path: "/events/abc", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{
				getFn: func(ctx context.Context, id int64) (event.Event, error) {
					if tt.err != nil {
						return event.Event{}, tt.err
					}
					return sampleEvent(id), nil
				},
			}

			r := setupRouter(http.MethodGet, "/events/:id", handlers.NewEventsHandler(svc).GetEventByID, false)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetEventByIDHandler_ETagNotModified(t *testing.T) {
	svc := &fakeEventService{
		getFn: func(ctx context.Context, id int64) (event.Event, error) {
			return sampleEvent(id), nil
		},
	}
	r := setupRouter(http.MethodGet, "/events/:id", handlers.NewEventsHandler(svc).GetEventByID, false)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/events/1", nil))

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	for _, ifNoneMatch := range []string{etag, "W/" + etag, `"other", ` + etag, "*"} {
		req := httptest.NewRequest(http.MethodGet, "/events/1", nil)
		req.Header.Set("If-None-Match", ifNoneMatch)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotModified {
			t.Fatalf("If-None-Match %q: got status %d, want 304", ifNoneMatch, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Fatalf("304 must not carry a body")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/events/1", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("stale ETag: got status %d, want 200", w.Code)
	}
}

func TestUpdateEventHandler(t *testing.T) {
	var got event.UpdateEventRequest
	svc := &fakeEventService{
		updateFn: func(ctx context.Context, p auth.Principal, id int64, req event.UpdateEventRequest) (event.Event, error) {
			got = req
			return req.Apply(sampleEvent(id)), nil
		},
	}
	r := setupRouter(http.MethodPut, "/events/:id", handlers.NewEventsHandler(svc).UpdateEvent, true)

	req := httptest.NewRequest(http.MethodPut, "/events/1", bytes.NewBufferString(`{"location":"Park"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if got.Name.IsSet() || !got.Location.IsSet() {
		t.Fatalf("only location should be present in the patch: %+v", got)
	}
}

func TestDeleteEventHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "deleted", want: http.StatusNoContent},
		{name: "forbidden", err: apperr.ErrForbidden, want: http.StatusForbidden},
		{name: "missing", err: event.ErrNotFound, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{
				deleteFn: func(ctx context.Context, p auth.Principal, id int64) error { return tt.err },
			}
			r := setupRouter(http.MethodDelete, "/events/:id", handlers.NewEventsHandler(svc).DeleteEvent, true)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/1", nil))

			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
