package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mongo-tracing/internal/config"
	"mongo-tracing/internal/di"
	httpadapter "mongo-tracing/internal/orders/adapter/http"
	"mongo-tracing/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(os.Args[2:], cfg.Auth, os.Stdout, os.Stderr))
	}
	logger.Info("Orders API - starting application...")

	appLogger := logger.NewLoggerWithConfig(cfg.Log.Level, cfg.Log.Format, nil)
	appLogger.Info("Application configuration loaded successfully")

	container := di.NewContainer(cfg, appLogger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err = container.Initialize(initCtx)
	cancelInit()
	if err != nil {
		closeContainer(container, cfg.Server.ShutdownTimeout)
		appLogger.Fatalf("Failed to initialize services: %v", err)
	}
	appLogger.Info("All services initialized successfully")

	app := newApp(cfg, container, appLogger)

	serverShutdown := make(chan error, 1)
	go func() {
		appLogger.Infof("Starting HTTP server on %s", cfg.Server.Addr())
		serverShutdown <- app.Listen(cfg.Server.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		cancel()
		appLogger.Info("HTTP server stopped")
	}

	closeContainer(container, cfg.Server.ShutdownTimeout)
	appLogger.Info("Application stopped gracefully.")
}

func newApp(cfg *config.Config, container *di.Container, appLogger logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Orders API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code, message = fe.Code, fe.Message
			}
			if code >= fiber.StatusInternalServerError {
				logger.WithContext(c.UserContext()).WithError(err).Error("HTTP error")
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, traceparent, tracestate, X-Request-ID",
		ExposeHeaders: httpadapter.HeaderRequestID,
	}))

	middlewareCfg := httpadapter.MiddlewareConfig{Logger: appLogger}
	if container.Telemetry != nil {
		middlewareCfg.TracerProvider = container.Telemetry.TracerProvider
	}
	app.Use(httpadapter.RequestContext(middlewareCfg))
	if cfg.Server.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:               cfg.Server.RateLimit,
			Expiration:        time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/health"
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.Get(fiber.HeaderXForwardedFor, c.IP())
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded. Please try again later.",
				})
			},
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.WithContext(healthCtx).WithError(err).Error("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "MongoDB is unreachable",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Orders API is running",
			"timestamp": time.Now().UTC(),
			"database":  cfg.Mongo.Database,
		})
	})

	container.RegisterRoutes(app)
	return app
}

func closeContainer(container *di.Container, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := container.Close(ctx); err != nil {
		logger.WithComponent("main").WithError(err).Error("Failed to close container")
	}
}
