package http

import (
	"log/slog"

	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/http/handlers"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Services is everything the handlers call into.
type Services interface {
	handlers.AccountService
	handlers.UserService
}

type Deps struct {
	Config config.Config
	Log    *slog.Logger

	// Prom and Gatherer may be nil; /metrics is then not mounted.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Sessions      middlewares.SessionResolver
	Accounts      Services
	Organizations handlers.OrganizationService
	Roles         handlers.RoleLister
	Events        handlers.EventService
	Registrations handlers.RegistrationService

	// APILimiter applies to every /api route, AuthLimiter additionally to
	// the credential endpoints.
	APILimiter  middlewares.Limiter
	AuthLimiter middlewares.Limiter

	Checks []handlers.Check
}

func NewRouter(d Deps) *gin.Engine {
	if !d.Config.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidators()

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Config.SecureCookies()))
	r.Use(middlewares.CORSMiddleware(d.Config.AllowedOrigins, d.Config.IsLocal()))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))

	// ops
	health := handlers.NewHealthHandler(d.Checks...)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	requireAuth := middlewares.NewAuthMiddleware(d.Sessions).RequireAuth()
	publicLimit := middlewares.RateLimit("api", d.APILimiter, middlewares.KeyByIP, d.Prom)
	userLimit := middlewares.RateLimit("api", d.APILimiter, middlewares.KeyByUserOrIP, d.Prom)
	authLimit := middlewares.RateLimit("auth", d.AuthLimiter, middlewares.KeyByIP, d.Prom)
	jsonBody := middlewares.RequireJSON()
	formBody := middlewares.RequireContentType(gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm)

	api := r.Group("/api")

	public := api.Group("", publicLimit)
	private := api.Group("", requireAuth, userLimit, jsonBody)

	// auth
	authHandler := handlers.NewAuthHandler(d.Accounts, handlers.CookieSettings{
		Secure: d.Config.SecureCookies(),
		TTL:    d.Config.SessionTTL,
	})

	public.POST("/auth/signup", authLimit, jsonBody, authHandler.SignUp)
	public.POST("/auth/login", authLimit, formBody, authHandler.Login)
	public.POST("/auth/logout", authHandler.Logout)
	public.POST("/auth/request-reset", authLimit, jsonBody, authHandler.RequestReset)
	public.POST("/auth/reset-password", authLimit, jsonBody, authHandler.ResetPassword)
	private.GET("/auth/me", authHandler.Me)
	private.DELETE("/auth/delete-account", authHandler.DeleteAccount)

	// users and roles
	usersHandler := handlers.NewUsersHandler(d.Accounts, d.Roles)
	private.GET("/users", usersHandler.ListUsers)
	private.GET("/users/:id", usersHandler.GetUser)
	private.PUT("/users/:id", usersHandler.UpdateUser)
	private.GET("/roles", usersHandler.ListRoles)

	// organizations and membership
	orgsHandler := handlers.NewOrganizationsHandler(d.Organizations)
	public.GET("/organization", orgsHandler.ListOrganizations)
	public.GET("/organization/:id", orgsHandler.GetOrganization)
	private.POST("/organization", orgsHandler.CreateOrganization)
	private.PUT("/organization/:id", orgsHandler.UpdateOrganization)
	private.DELETE("/organization/:id", orgsHandler.DeleteOrganization)
	private.GET("/organization/:id/users", orgsHandler.ListMembers)
	private.POST("/organization/:id/users", orgsHandler.AddMember)
	private.PUT("/organization/:id/users/:userId", orgsHandler.UpdateMember)
	private.DELETE("/organization/:id/users/:userId", orgsHandler.RemoveMember)

	// events
	eventsHandler := handlers.NewEventsHandler(d.Events)
	public.GET("/events", eventsHandler.ListEvents)
	public.GET("/events/:id", eventsHandler.GetEventByID)
	private.POST("/events", eventsHandler.CreateEvent)
	private.PUT("/events/:id", eventsHandler.UpdateEvent)
	private.DELETE("/events/:id", eventsHandler.DeleteEvent)

	// event registrations
	registrationHandler := handlers.NewRegistrationHandler(d.Registrations)
	private.GET("/event-registrations", registrationHandler.ListMine)
	private.GET("/event-registrations/:organizationId/:eventId/:userId", registrationHandler.GetRegistration)
	private.POST("/event-registrations", registrationHandler.Register)
	private.DELETE("/event-registrations/:eventId", registrationHandler.Cancel)

	return r
}
