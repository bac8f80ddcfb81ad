// Package router assembles the Fiber application: middleware chain, public
// endpoints and the permission-gated API.
package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/imob-crm/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/imob-crm/internal/i18n"
	"github.com/seu-repo/imob-crm/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/internal/service/health"
	"github.com/seu-repo/imob-crm/pkg/config"
)

// Deps is everything the routes need. Health, Hub and Breakers are optional.
type Deps struct {
	Config     *config.Config
	Auth       ports.AuthService
	Policy     ports.Policy
	CRM        ports.CRMService
	Tasks      ports.TaskService
	Users      ports.UserService
	Reports    ports.ReportService
	Health     *health.Service
	Hub        handlers.Streamer
	Breakers   *circuitbreaker.Manager
	Translator *i18n.Translator
	Location   *time.Location
	Log        *zap.Logger
}

func New(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		BodyLimit:    cfg.HTTP.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(d.Log, d.Translator),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.Logging.Level == "debug" {
		app.Use(fiberlogger.New())
	}
	if cfg.CORS.Enabled {
		if len(cfg.CORS.AllowedOrigins) == 0 {
			app.Use(middleware.DefaultCORS())
		} else {
			app.Use(middleware.NewCORS(cfg.CORS))
		}
	}
	app.Use(middleware.Metrics())
	if cfg.RateLimiting.Enabled && !cfg.RateLimiting.ByUser {
		app.Use(middleware.RateLimit(cfg.RateLimiting))
	}
	if cfg.CircuitBreaker.Enabled && d.Breakers != nil {
		app.Use(middleware.CircuitBreaker(d.Breakers))
	}

	if d.Health != nil {
		health.NewFiberHandler(d.Health).RegisterRoutes(app)
	}
	if cfg.Prometheus.Enabled {
		path := cfg.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(path, func(c *fiber.Ctx) error {
			metrics(c.Context())
			return nil
		})
	}

	requireAuth := middleware.AuthRequired(d.Auth)
	can := func(action ports.Action, resource ports.Resource) fiber.Handler {
		return middleware.RequirePermission(d.Policy, action, resource)
	}

	v1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(d.Auth, d.Translator, d.Log)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/password/setup", authHandler.SetupPassword)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Post("/logout", requireAuth, authHandler.Logout)

	protected := v1.Group("", requireAuth)
	if cfg.RateLimiting.Enabled && cfg.RateLimiting.ByUser {
		protected.Use(middleware.RateLimit(cfg.RateLimiting))
	}

	leads := handlers.NewLeadHandler(d.CRM, d.Translator, d.Log)
	protected.Get("/leads", can(ports.ActionView, ports.ResourceLeads), leads.List)
	protected.Get("/leads/pipeline", can(ports.ActionView, ports.ResourceLeads), leads.Pipeline)
	protected.Post("/leads", can(ports.ActionCreate, ports.ResourceLeads), leads.Create)
	protected.Get("/leads/:id", can(ports.ActionView, ports.ResourceLeads), leads.Get)
	protected.Put("/leads/:id", can(ports.ActionUpdate, ports.ResourceLeads), leads.Update)
	protected.Delete("/leads/:id", can(ports.ActionDelete, ports.ResourceLeads), leads.Delete)
	protected.Patch("/leads/:id/status", can(ports.ActionUpdate, ports.ResourceLeads), leads.Move)
	protected.Post("/leads/:id/convert", can(ports.ActionConvert, ports.ResourceLeads), leads.Convert)

	protected.Get("/clients", can(ports.ActionView, ports.ResourceClients), leads.ListClients)
	protected.Get("/clients/:id", can(ports.ActionView, ports.ResourceClients), leads.GetClient)
	protected.Put("/clients/:id", can(ports.ActionUpdate, ports.ResourceClients), leads.UpdateClient)
	protected.Delete("/clients/:id", can(ports.ActionDelete, ports.ResourceClients), leads.DeleteClient)

	tasks := handlers.NewTaskHandler(d.Tasks, d.Location, d.Translator, d.Log)
	protected.Get("/tasks", can(ports.ActionView, ports.ResourceTasks), tasks.List)
	protected.Get("/tasks/upcoming", can(ports.ActionView, ports.ResourceTasks), tasks.Upcoming)
	protected.Get("/tasks/by-date", can(ports.ActionView, ports.ResourceTasks), tasks.ByDate)
	protected.Post("/tasks", can(ports.ActionCreate, ports.ResourceTasks), tasks.Create)
	protected.Get("/tasks/:id", can(ports.ActionView, ports.ResourceTasks), tasks.Get)
	protected.Put("/tasks/:id", can(ports.ActionUpdate, ports.ResourceTasks), tasks.Update)
	protected.Delete("/tasks/:id", can(ports.ActionDelete, ports.ResourceTasks), tasks.Delete)
	protected.Patch("/tasks/:id/status", can(ports.ActionUpdate, ports.ResourceTasks), tasks.SetStatus)
	protected.Get("/tasks/:id/calendar", can(ports.ActionView, ports.ResourceTasks), tasks.Calendar)

	users := handlers.NewUserHandler(d.Users, d.Translator, d.Log)
	admin := protected.Group("/admin")
	admin.Get("/roles", can(ports.ActionView, ports.ResourceRoles), users.Roles)
	admin.Get("/users", can(ports.ActionView, ports.ResourceUsers), users.List)
	admin.Post("/users", can(ports.ActionCreate, ports.ResourceUsers), users.Create)
	admin.Get("/users/:id", can(ports.ActionView, ports.ResourceUsers), users.Get)
	admin.Put("/users/:id", can(ports.ActionUpdate, ports.ResourceUsers), users.Update)
	admin.Patch("/users/:id/role", can(ports.ActionUpdate, ports.ResourceRoles), users.ChangeRole)
	admin.Patch("/users/:id/status", can(ports.ActionUpdate, ports.ResourceUsers), users.ChangeStatus)
	admin.Post("/users/:id/password", can(ports.ActionUpdate, ports.ResourceSettings), users.ResetPassword)
	admin.Patch("/users/:id/two-factor", can(ports.ActionUpdate, ports.ResourceSettings), users.SetTwoFactor)
	admin.Delete("/users/:id", can(ports.ActionDelete, ports.ResourceUsers), users.Delete)

	if d.Reports != nil {
		reports := handlers.NewReportHandler(d.Reports, d.Log)
		protected.Get("/reports/dashboard", can(ports.ActionView, ports.ResourceDashboard), reports.Dashboard)
		protected.Get("/reports/export/:type", can(ports.ActionExport, ports.ResourceReports), reports.Export)
	}

	if d.Hub != nil {
		events := handlers.NewEventsHandler(d.Hub, d.Log)
		app.Get("/ws/events", requireAuth, events.Upgrade, events.Stream())
	}

	return app
}
