package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	httptransport "github.com/nxzen/ticketdesk/internal/api/http"
	"github.com/nxzen/ticketdesk/internal/api/http/handlers"
	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/config"
	"github.com/nxzen/ticketdesk/internal/events"
	"github.com/nxzen/ticketdesk/internal/notify"
	"github.com/nxzen/ticketdesk/internal/observability"
	"github.com/nxzen/ticketdesk/internal/persistence"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
	"github.com/nxzen/ticketdesk/internal/storage"
	"github.com/nxzen/ticketdesk/internal/web"
	"github.com/nxzen/ticketdesk/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	updateRepo := repository.NewTicketUpdateRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	templateCache := repository.NewTemplateCache(templateRepo, redis.Client,
		time.Duration(cfg.Redis.CacheTTLSec)*time.Second, logger)

	store, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		logger.Fatal("failed to init attachment storage", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)

	mailer := notify.NewMailer(cfg.Mail, logger)
	mailWorker := worker.NewNotificationWorker(mailer, logger, 256)
	mailWorker.Start()
	defer mailWorker.Shutdown()

	notifications := notify.NewNotificationService(
		ticketRepo, departmentRepo, userRepo, settingsRepo,
		mailWorker, cfg.Mail.DefaultFrom, logger)
	notifications.Register(dispatcher)

	authService := auth.NewService(cfg.Auth, userRepo, settingsRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.Tokens(), userRepo, cfg.Web.CookieName)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UpdateRepo:     updateRepo,
		AttachmentRepo: attachmentRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
	}, dispatcher)
	departmentService := service.NewDepartmentService(departmentRepo, userRepo)
	templateService := service.NewTemplateService(templateRepo, templateCache, departmentRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	engine := html.New(cfg.Web.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		Views:   engine,
	})

	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis, cfg.App.Version),
		Users:          handlers.NewUsersHandler(authService, settingsService, userRepo),
		Tickets:        handlers.NewTicketsHandler(ticketService, settingsService),
		Updates:        handlers.NewUpdatesHandler(ticketService, attachmentRepo, store),
		Departments:    handlers.NewDepartmentsHandler(departmentService, templateService),
		Templates:      handlers.NewTemplatesHandler(templateService),
		AuthMiddleware: authMiddleware,
	})

	pages := web.NewPageHandler(ticketService, departmentService, templateService,
		settingsService, userRepo, authService, cfg.Web.CookieName)
	web.RegisterRoutes(app, pages, authMiddleware)

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
