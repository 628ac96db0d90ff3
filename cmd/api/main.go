package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/dispatch-service/internal/api/http"
	"github.com/spec-kit/dispatch-service/internal/api/http/handlers"
	"github.com/spec-kit/dispatch-service/internal/config"
	"github.com/spec-kit/dispatch-service/internal/directory"
	"github.com/spec-kit/dispatch-service/internal/events"
	"github.com/spec-kit/dispatch-service/internal/notification"
	"github.com/spec-kit/dispatch-service/internal/observability"
	"github.com/spec-kit/dispatch-service/internal/repository"
	"github.com/spec-kit/dispatch-service/internal/scoring"
	"github.com/spec-kit/dispatch-service/internal/service"
	"github.com/spec-kit/dispatch-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	dir := directory.NewSeededDirectory(cfg.Directory.EmailDomain)
	requestRepo := repository.NewMemoryRequestRepository()
	gateway := scoring.NewClient(cfg.Scoring, logger, metrics)

	transport := notification.NewLogTransport(logger)
	notifier := notification.NewService(transport, dir, logger, metrics, cfg.Notification)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		RequestRepo: requestRepo,
		Gateway:     gateway,
		Notifier:    notifier,
		Directory:   dir,
		Dispatcher:  dispatcher,
		Logger:      logger,
		ScoringCfg:  cfg.Scoring,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Scoring.BaseURL, dir),
		Requests:  handlers.NewRequestsHandler(assignmentService),
		Employees: handlers.NewEmployeesHandler(dir),
	})

	logger.Info("starting server",
		zap.String("addr", cfg.App.Addr()),
		zap.String("scoring_url", cfg.Scoring.BaseURL),
		zap.Int("engineers", dir.Size()))

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
