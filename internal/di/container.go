package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"mongo-tracing/internal/auth"
	"mongo-tracing/internal/config"
	"mongo-tracing/internal/orders"
	"mongo-tracing/internal/orders/adapter/persistence/redisstore"
	"mongo-tracing/internal/orders/domain/repository"
	"mongo-tracing/internal/shared/database"
	"mongo-tracing/internal/shared/logger"
	"mongo-tracing/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Container owns the service's shared dependencies and their lifecycle.
type Container struct {
	mu       sync.RWMutex
	services map[reflect.Type]interface{}

	Config       *config.Config
	Logger       logger.Logger
	Telemetry    *telemetry.Providers
	Database     *database.Manager
	Redis        *redis.Client
	Auth         *auth.AuthModule
	OrdersModule *orders.OrdersModule
}

// NewContainer creates a container holding cfg and log. Nothing is
// connected until the Initialize methods run.
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if log == nil {
		log = logger.Default()
	}
	c := &Container{
		services: make(map[reflect.Type]interface{}),
		Config:   cfg,
		Logger:   log,
	}
	c.Register(cfg)
	return c
}

// Initialize runs every initializer in dependency order.
func (c *Container) Initialize(ctx context.Context) error {
	if err := c.InitializeAuth(); err != nil {
		return err
	}
	if err := c.InitializeTelemetry(ctx); err != nil {
		return err
	}
	if err := c.InitializeDatabase(ctx); err != nil {
		return err
	}
	if err := c.InitializeRedis(ctx); err != nil {
		return err
	}
	return c.InitializeOrders(ctx)
}

// InitializeAuth creates the token service when auth is enabled.
func (c *Container) InitializeAuth() error {
	if !c.Config.Auth.Enabled {
		c.Logger.Warn("Auth disabled, the orders API is public")
		return nil
	}
	module, err := auth.NewAuthModule(c.Config.Auth, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	c.mu.Lock()
	c.Auth = module
	c.mu.Unlock()
	c.Register(module)
	return nil
}

// InitializeTelemetry creates the trace and meter providers.
func (c *Container) InitializeTelemetry(ctx context.Context) error {
	providers, err := telemetry.NewProviders(ctx, c.Config.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	c.mu.Lock()
	c.Telemetry = providers
	c.mu.Unlock()
	c.Register(providers)

	c.Logger.Infof("Telemetry initialized (exporter=%s)", c.Config.Telemetry.Exporter)
	return nil
}

// InitializeDatabase connects to MongoDB.
func (c *Container) InitializeDatabase(ctx context.Context) error {
	tp, _ := c.providers()
	client, err := database.Connect(ctx, c.Config.Mongo, tp, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	manager := database.NewManager(client, c.Logger)

	c.mu.Lock()
	c.Database = manager
	c.mu.Unlock()
	c.Register(manager)
	return nil
}

// InitializeRedis connects the checkpoint store's Redis when enabled.
func (c *Container) InitializeRedis(ctx context.Context) error {
	if !c.Config.Redis.Enabled {
		c.Logger.Info("Redis disabled, change feed checkpoints are not kept")
		return nil
	}
	client, err := database.ConnectRedis(ctx, c.Config.Redis, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	c.mu.Lock()
	c.Redis = client
	c.mu.Unlock()
	c.Register(client)
	return nil
}

// InitializeOrders builds and starts the orders module.
func (c *Container) InitializeOrders(ctx context.Context) error {
	c.mu.RLock()
	manager, redisClient := c.Database, c.Redis
	c.mu.RUnlock()
	if manager == nil {
		return errors.New("database must be initialized before the orders module")
	}

	var checkpoints repository.CheckpointStore
	if redisClient != nil {
		checkpoints = redisstore.NewCheckpointStore(redisClient, c.Config.Redis.KeyPrefix, c.Config.Redis.CheckpointTTL, c.Logger)
	}

	db, err := manager.Database(c.Config.Mongo.Database)
	if err != nil {
		return fmt.Errorf("failed to open database %q: %w", c.Config.Mongo.Database, err)
	}

	tp, mp := c.providers()
	module := orders.NewOrdersModule(c.Config.Orders, orders.Dependencies{
		Database:       db,
		Client:         manager.Client(),
		Checkpoints:    checkpoints,
		TracerProvider: tp,
		MeterProvider:  mp,
		Logger:         c.Logger,
	})
	if err := module.Start(ctx); err != nil {
		return fmt.Errorf("failed to start orders module: %w", err)
	}

	c.mu.Lock()
	c.OrdersModule = module
	c.mu.Unlock()
	c.Register(module)
	return nil
}

// providers returns the configured providers, or nils so callers fall back
// to the globals.
func (c *Container) providers() (trace.TracerProvider, metric.MeterProvider) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Telemetry == nil {
		return nil, nil
	}
	return c.Telemetry.TracerProvider, c.Telemetry.MeterProvider
}

// RegisterRoutes registers the routes of every initialized module, behind
// the auth checks when auth is enabled.
func (c *Container) RegisterRoutes(router fiber.Router) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Auth != nil {
		c.Auth.Protect(router)
	}
	if c.OrdersModule != nil {
		c.OrdersModule.RegisterRoutes(router)
	}
}

// Register registers a service instance under its dynamic type.
func (c *Container) Register(service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[reflect.TypeOf(service)] = service
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if service, exists := c.services[serviceType]; exists {
		return service, nil
	}
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	service, err := c.Resolve(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service is not of expected type %T", zero)
	}
	return typed, nil
}

// HealthCheck pings the database, and Redis when it is configured.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	manager, redisClient := c.Database, c.Redis
	c.mu.RUnlock()

	if manager == nil {
		return errors.New("database not initialized")
	}
	if err := manager.HealthCheck(ctx); err != nil {
		return err
	}
	if redisClient != nil {
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close stops modules, then disconnects Redis and the database, then flushes
// telemetry, so spans from the shutdown itself are exported.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	module, manager, redisClient, providers := c.OrdersModule, c.Database, c.Redis, c.Telemetry
	c.OrdersModule, c.Database, c.Redis, c.Telemetry, c.Auth = nil, nil, nil, nil, nil
	c.services = make(map[reflect.Type]interface{})
	c.mu.Unlock()

	c.Logger.Info("Closing DI Container resources...")
	var errs []error
	if module != nil {
		if err := module.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop orders module: %w", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if manager != nil {
		if err := manager.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if providers != nil {
		if err := providers.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down telemetry: %w", err))
		}
	}
	c.Logger.Info("DI Container resources closed.")
	return errors.Join(errs...)
}
