package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/skillbridge/skillbridge-api/internal/api/http"
	"github.com/skillbridge/skillbridge-api/internal/api/http/handlers"
	"github.com/skillbridge/skillbridge-api/internal/auth"
	"github.com/skillbridge/skillbridge-api/internal/config"
	"github.com/skillbridge/skillbridge-api/internal/events"
	"github.com/skillbridge/skillbridge-api/internal/observability"
	"github.com/skillbridge/skillbridge-api/internal/persistence"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	"github.com/skillbridge/skillbridge-api/internal/service"
	"github.com/skillbridge/skillbridge-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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
	bookingRepo := repository.NewBookingRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	profileRepo := repository.NewTutorProfileRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification))

	clock := service.SystemClock{}
	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo, Logger: logger})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo: bookingRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
	})
	reviewService := service.NewReviewService(service.ReviewDependencies{
		ReviewRepo:  reviewRepo,
		BookingRepo: bookingRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
	})
	tutorService := service.NewTutorService(service.TutorDependencies{
		ProfileRepo:  profileRepo,
		UserRepo:     userRepo,
		ReviewRepo:   reviewRepo,
		CategoryRepo: categoryRepo,
		Logger:       logger,
	})
	categoryService := service.NewCategoryService(service.CategoryDependencies{
		CategoryRepo: categoryRepo,
		Cache:        redis,
		TTL:          cfg.Cache.TTL(),
		Logger:       logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:    userRepo,
		BookingRepo: bookingRepo,
		ReviewRepo:  reviewRepo,
		Metrics:     metrics,
		Logger:      logger,
	})

	completion, err := worker.NewCompletionWorker(
		cfg.Completion,
		service.NewCompletionService(bookingRepo, dispatcher, clock, logger),
		logger.Named("completion"),
	)
	if err != nil {
		logger.Fatal("failed to schedule completion worker", zap.Error(err))
	}
	completion.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, *cfg, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Bookings:       handlers.NewBookingsHandler(bookingService, reviewService),
		Tutors:         handlers.NewTutorsHandler(tutorService, reviewService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
		AuthRateLimit:  httptransport.NewRateLimiter(redis.Client, cfg.RateLimit, "auth", logger).Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	completion.Stop()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
