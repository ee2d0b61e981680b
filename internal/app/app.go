// Package app assembles the services and the HTTP router from a set of
// stores, so the binary and the end to end tests wire things the same way.
package app

import (
	"log/slog"
	"time"

	"github.com/geocoder89/volunteerhub/internal/account"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/authz"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/events"
	httpx "github.com/geocoder89/volunteerhub/internal/http"
	"github.com/geocoder89/volunteerhub/internal/http/handlers"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/geocoder89/volunteerhub/internal/notifications"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/geocoder89/volunteerhub/internal/organizations"
	"github.com/geocoder89/volunteerhub/internal/repo/memory"
	"github.com/geocoder89/volunteerhub/internal/repo/postgres"
	"github.com/geocoder89/volunteerhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type RoleStore interface {
	organizations.RoleStore
	authz.RoleFinder
}

type Stores struct {
	Users         account.UserStore
	Roles         RoleStore
	Organizations organizations.OrganizationStore
	Events        events.EventStore
	Registrations events.RegistrationStore
}

func PostgresStores(pool *pgxpool.Pool, prom *observability.Prom) Stores {
	return Stores{
		Users:         postgres.NewUsersRepo(pool, prom),
		Roles:         postgres.NewRolesRepo(pool, prom),
		Organizations: postgres.NewOrganizationsRepo(pool, prom),
		Events:        postgres.NewEventsRepo(pool, prom),
		Registrations: postgres.NewRegistrationsRepo(pool, prom),
	}
}

func MemoryStores(s *memory.Store) Stores {
	return Stores{
		Users:         s.Users(),
		Roles:         s.Roles(),
		Organizations: s.Organizations(),
		Events:        s.Events(),
		Registrations: s.Registrations(),
	}
}

type Options struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Stores   Stores

	// Delivery defaults to a circuit-broken LogNotifier.
	Delivery notifications.ResetDelivery

	// Limiters default to in-process counters.
	APILimiter  middlewares.Limiter
	AuthLimiter middlewares.Limiter

	Checks []handlers.Check
}

type App struct {
	Router   *gin.Engine
	Accounts *account.Service
	Tokens   *auth.Manager
}

func New(o Options) *App {
	cfg := o.Config

	tokens := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)

	delivery := o.Delivery
	if delivery == nil {
		delivery = notifications.NewProtectedNotifier(
			notifications.NewLogNotifier(o.Log),
			notifications.ProtectedNotifierConfig{
				Timeout:          5 * time.Second,
				FailureThreshold: 5,
				Cooldown:         30 * time.Second,
				HalfOpenMaxCalls: 1,
			},
		)
	}

	apiLimiter := o.APILimiter
	if apiLimiter == nil {
		apiLimiter = middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	}
	authLimiter := o.AuthLimiter
	if authLimiter == nil {
		authLimiter = middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.RateLimitWindow)
	}

	gate := authz.NewGate(o.Stores.Roles)

	accounts := account.NewService(
		o.Stores.Users,
		security.NewHasher(cfg.BcryptCost),
		tokens,
		delivery,
		o.Log,
		o.Prom,
	)
	orgs := organizations.NewService(o.Stores.Organizations, o.Stores.Roles, gate)
	evs := events.NewService(o.Stores.Events, o.Stores.Registrations, gate, cfg.EventsCacheTTL, o.Prom)

	router := httpx.NewRouter(httpx.Deps{
		Config:        cfg,
		Log:           o.Log,
		Prom:          o.Prom,
		Gatherer:      o.Gatherer,
		Sessions:      auth.NewResolver(tokens, o.Stores.Users),
		Accounts:      accounts,
		Organizations: orgs,
		Roles:         orgs,
		Events:        evs,
		Registrations: evs,
		APILimiter:    apiLimiter,
		AuthLimiter:   authLimiter,
		Checks:        o.Checks,
	})

	return &App{Router: router, Accounts: accounts, Tokens: tokens}
}
