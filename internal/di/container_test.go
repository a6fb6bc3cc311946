package di

import (
	"context"
	"io"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"mongo-tracing/internal/config"
	"mongo-tracing/internal/shared/database"
	"mongo-tracing/internal/shared/logger"
	"mongo-tracing/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newTestContainer() *Container {
	cfg := config.DefaultConfig()
	cfg.Orders.WatchEnabled = false
	return NewContainer(cfg, logger.NewLoggerWithConfig("error", "json", io.Discard))
}

func TestContainer_RegisterAndResolve(t *testing.T) {
	c := newTestContainer()

	cfg, err := GetService[*config.Config](c)
	require.NoError(t, err)
	assert.Same(t, c.Config, cfg)

	_, err = GetService[*database.Manager](c)
	assert.EqualError(t, err, "service of type *database.Manager not registered")

	_, err = c.Resolve(reflect.TypeOf(""))
	assert.Error(t, err)
}

func TestContainer_RequiresDatabase(t *testing.T) {
	c := newTestContainer()

	assert.EqualError(t, c.InitializeOrders(context.Background()), "database must be initialized before the orders module")
	assert.EqualError(t, c.HealthCheck(context.Background()), "database not initialized")
}

func TestContainer_TelemetryLifecycle(t *testing.T) {
	c := newTestContainer()
	ctx := context.Background()

	require.NoError(t, c.InitializeTelemetry(ctx))
	providers, err := GetService[*telemetry.Providers](c)
	require.NoError(t, err)
	assert.Same(t, c.Telemetry, providers)

	require.NoError(t, c.Close(ctx))
	assert.Nil(t, c.Telemetry)
	_, err = GetService[*telemetry.Providers](c)
	assert.Error(t, err)
}

func TestContainer_CloseDisconnectsDatabase(t *testing.T) {
	c := newTestContainer()
	client, err := mongo.Connect(context.Background(), database.ClientOptions(c.Config.Mongo, nil))
	require.NoError(t, err)
	c.Database = database.NewManager(client, c.Logger)

	require.NoError(t, c.Close(context.Background()))
	assert.Nil(t, c.Database)
	assert.Error(t, client.Ping(context.Background(), nil))
}

func TestContainer_Orders(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock).DatabaseName("shop"))

	mt.Run("initializes orders and serves routes", func(mt *mtest.T) {
		c := newTestContainer()
		c.Database = database.NewManager(mt.Client, c.Logger)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(t, c.InitializeOrders(context.Background()))
		require.NotNil(t, c.OrdersModule)
		assert.Equal(t, "shop.orders", c.OrdersModule.Collection.Namespace())

		app := fiber.New()
		c.RegisterRoutes(app)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}))
		resp, err := app.Test(httptest.NewRequest("GET", "/v1/orders/count", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(t, c.HealthCheck(context.Background()))
	})
}

func TestContainer_RedisDisabledIsNoop(t *testing.T) {
	c := newTestContainer()

	require.NoError(t, c.InitializeRedis(context.Background()))
	assert.Nil(t, c.Redis)
}

func TestContainer_RedisUnreachable(t *testing.T) {
	c := newTestContainer()
	c.Config.Redis.Enabled = true
	c.Config.Redis.Addr = "127.0.0.1:1"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.InitializeRedis(ctx)
	assert.ErrorContains(t, err, "failed to initialize redis")
	assert.Nil(t, c.Redis)
}

func TestContainer_AuthProtectsRoutes(t *testing.T) {
	c := newTestContainer()
	c.Config.Auth.Enabled = true
	c.Config.Auth.JWTSecret = "test-secret-key-32-characters-long-12345"
	require.NoError(t, c.InitializeAuth())
	require.NotNil(t, c.Auth)

	app := fiber.New()
	c.RegisterRoutes(app)
	app.Get("/v1/orders", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestContainer_AuthRejectsShortSecret(t *testing.T) {
	c := newTestContainer()
	c.Config.Auth.Enabled = true

	assert.ErrorContains(t, c.InitializeAuth(), "failed to initialize auth")
	assert.Nil(t, c.Auth)
}
