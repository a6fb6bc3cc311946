package orders

import (
	"context"

	"mongo-tracing/internal/config"
	"mongo-tracing/internal/mongotrace"
	httpadapter "mongo-tracing/internal/orders/adapter/http"
	mongodbpersistence "mongo-tracing/internal/orders/adapter/persistence/mongodb"
	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	"mongo-tracing/internal/orders/usecase"
	"mongo-tracing/internal/shared/eventbus"
	"mongo-tracing/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the shared services the module is built from.
type Dependencies struct {
	Database mongotrace.DatabaseInterface
	Client   mongodbpersistence.ClientInterface
	// Checkpoints is optional. Without it the change feed does not resume
	// across restarts.
	Checkpoints    repository.CheckpointStore
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Logger         logger.Logger
}

// OrdersModule wires the orders collection, repository, usecase and handlers.
type OrdersModule struct {
	Config       config.OrdersConfig
	Collection   *mongotrace.InstrumentedCollection[model.Order]
	Repository   *mongodbpersistence.OrderRepository
	Usecase      usecase.OrderUsecase
	ChangeFeed   *usecase.ChangeFeed
	EventBus     *eventbus.EventBus
	OrderHandler *httpadapter.OrderHandler
	WatchHandler *httpadapter.WatchHandler
	Logger       logger.Logger
}

// NewOrdersModule creates the module. Nothing touches the database until
// Start is called.
func NewOrdersModule(cfg config.OrdersConfig, deps Dependencies) *OrdersModule {
	log := deps.Logger.WithComponent("orders")
	log.Info("Initializing Orders Module...")

	coll := mongotrace.NewCollection[model.Order](deps.Database, cfg.Collection,
		mongotrace.WithTracerProvider(deps.TracerProvider),
		mongotrace.WithMeterProvider(deps.MeterProvider),
	)
	repo := mongodbpersistence.NewOrderRepository(deps.Client, coll, deps.Logger)
	bus := eventbus.NewEventBus(deps.Logger)
	feed := usecase.NewChangeFeed(repo, bus, deps.Checkpoints, coll.Namespace(), deps.Logger)
	uc := usecase.NewOrderUsecase(repo, deps.Logger)

	log.Infof("Orders module bound to %s", coll.Namespace())

	return &OrdersModule{
		Config:       cfg,
		Collection:   coll,
		Repository:   repo,
		Usecase:      uc,
		ChangeFeed:   feed,
		EventBus:     bus,
		OrderHandler: httpadapter.NewOrderHandler(uc, deps.Logger),
		WatchHandler: httpadapter.NewWatchHandler(feed, deps.Logger),
		Logger:       log,
	}
}

// Start ensures indexes and opens the change feed as configured. A change
// feed that cannot be opened, for example on a standalone server, is logged
// and leaves watchers without events; it does not fail startup.
func (m *OrdersModule) Start(ctx context.Context) error {
	if m.Config.EnsureIndexes {
		if _, err := m.Repository.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	if m.Config.WatchEnabled {
		if err := m.ChangeFeed.Start(ctx); err != nil {
			m.Logger.WithError(err).Warn("order change feed disabled")
		}
	}
	return nil
}

// RegisterRoutes registers the REST API under /v1 and the watch socket.
func (m *OrdersModule) RegisterRoutes(router fiber.Router) {
	m.OrderHandler.RegisterRoutes(router.Group("/v1"))
	m.WatchHandler.RegisterRoutes(router)
	m.Logger.Info("Orders routes registered")
}

// Stop closes the change feed.
func (m *OrdersModule) Stop(ctx context.Context) error {
	m.Logger.Info("Stopping Orders Module...")
	return m.ChangeFeed.Stop(ctx)
}
