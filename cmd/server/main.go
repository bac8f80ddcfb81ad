package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/http/fiber/router"
	"github.com/seu-repo/imob-crm/internal/adapter/queue"
	wsAdapter "github.com/seu-repo/imob-crm/internal/adapter/websocket"
	"github.com/seu-repo/imob-crm/internal/bootstrap"
	"github.com/seu-repo/imob-crm/internal/i18n"
	"github.com/seu-repo/imob-crm/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/service/auth"
	"github.com/seu-repo/imob-crm/internal/service/crm"
	"github.com/seu-repo/imob-crm/internal/service/email"
	"github.com/seu-repo/imob-crm/internal/service/events"
	"github.com/seu-repo/imob-crm/internal/service/health"
	"github.com/seu-repo/imob-crm/internal/service/notification"
	"github.com/seu-repo/imob-crm/internal/service/report"
	"github.com/seu-repo/imob-crm/internal/service/task"
	"github.com/seu-repo/imob-crm/internal/service/user"
	"github.com/seu-repo/imob-crm/pkg/config"
	applogger "github.com/seu-repo/imob-crm/pkg/logger"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := applogger.New(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Imob CRM",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	shutdownTracer, err := telemetry.InitTracer(cfg.App, cfg.OpenTelemetry)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. Open Storage (snapshots, id allocator) and load the collections
	storage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()
	store := storage.Store

	// 5. Initialize Cache (sessions, revoked tokens)
	sessionCache := storage.Cache(cfg)
	defer sessionCache.Close()

	// 6. Initialize Message Queue (domain events)
	messageQueue, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()
	publisher := events.NewQueuePublisher(messageQueue, cfg.Queue.Subject, logger)

	breakers := circuitbreaker.NewManager(cfg.CircuitBreaker, logger)
	loc := cfg.Region.Location()

	translator, err := i18n.New(cfg.Region.Locale)
	if err != nil {
		logger.Fatal("Failed to load translations", zap.Error(err))
	}

	// 7. Initialize Services (Business Logic Layer)
	authService := auth.NewService(store.Users(), sessionCache, cfg.JWT, cfg.Cache.UserSessionTTL, logger)
	policy := auth.NewPolicy(logger)
	crmService := crm.NewService(store.Leads(), store.Clients(), storage.IDs, publisher, logger)
	taskService := task.NewService(store.Tasks(), storage.IDs, publisher, loc, logger)
	userService := user.NewService(store.Users(), storage.IDs, authService, publisher, logger)
	reportService := report.NewService(store.Leads(), store.Clients(), store.Tasks(), store.Users(), loc, logger)

	emailService, err := email.NewService(&email.Config{
		EmailConfig:   cfg.Notification.Email,
		AppName:       cfg.App.Name,
		BaseURL:       cfg.App.PublicURL,
		InvitationTTL: cfg.JWT.SetupTokenDuration,
	}, breakers, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service", zap.Error(err))
	}

	// 8. Initialize WebSocket Hub (live domain events)
	wsHub := wsAdapter.NewHub(logger)
	go wsHub.Run(ctx)

	// 9. Start the notification dispatcher (e-mails + websocket fan-out)
	dispatcher := notification.NewDispatcher(
		messageQueue,
		publisher.Subject(),
		store.Users(),
		store.Clients(),
		authService,
		emailService,
		wsHub,
		cfg.App.PublicURL,
		logger,
	)
	if err := dispatcher.Start(); err != nil {
		logger.Fatal("Failed to start notification dispatcher", zap.Error(err))
	}

	// 10. Seed the first administrator
	if _, err := bootstrap.SeedAdmin(ctx, cfg.Seed, store.Users(), userService, logger); err != nil {
		logger.Fatal("Failed to seed administrator", zap.Error(err))
	}

	healthService := health.NewService(&health.Config{
		Version:  cfg.App.Version,
		Storage:  store,
		Cache:    sessionCache,
		Breakers: breakers,
	}, logger)

	// 11. Initialize Fiber HTTP Server
	app := router.New(router.Deps{
		Config:     cfg,
		Auth:       authService,
		Policy:     policy,
		CRM:        crmService,
		Tasks:      taskService,
		Users:      userService,
		Reports:    reportService,
		Health:     healthService,
		Hub:        wsHub,
		Breakers:   breakers,
		Translator: translator,
		Location:   loc,
		Log:        logger,
	})

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	logger.Info("Server exited gracefully")
}
