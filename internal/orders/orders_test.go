package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"mongo-tracing/internal/config"
	"mongo-tracing/internal/mongotrace"
	"mongo-tracing/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestModule(mt *mtest.T, cfg config.OrdersConfig) (*OrdersModule, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return NewOrdersModule(cfg, Dependencies{
		Database:       mt.DB,
		Client:         mt.Client,
		TracerProvider: tp,
		Logger:         logger.NewLoggerWithConfig("error", "json", io.Discard),
	}), exporter
}

func shopDatabase() *mtest.Options {
	return mtest.NewOptions().DatabaseName("shop")
}

func TestOrdersModule(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.RunOpts("binds the configured collection", shopDatabase(), func(mt *mtest.T) {
		m, _ := newTestModule(mt, config.OrdersConfig{Collection: "orders_v2"})
		assert.Equal(t, "shop.orders_v2", m.Collection.Namespace())
	})

	mt.RunOpts("start ensures indexes", shopDatabase(), func(mt *mtest.T) {
		m, exporter := newTestModule(mt, config.OrdersConfig{Collection: "orders", EnsureIndexes: true})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(t, m.Start(context.Background()))

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "createIndexes", started.CommandName)
		require.Len(t, exporter.GetSpans(), 1)
		assert.Equal(t, "create_indexes", exporter.GetSpans()[0].Name)
		assert.False(t, m.ChangeFeed.Running())
		require.NoError(t, m.Stop(context.Background()))
	})

	mt.RunOpts("start survives a server without change streams", shopDatabase(), func(mt *mtest.T) {
		m, _ := newTestModule(mt, config.OrdersConfig{Collection: "orders", WatchEnabled: true})
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    40573,
			Name:    "Location40573",
			Message: "The $changeStream stage is only supported on replica sets",
		}))

		require.NoError(t, m.Start(context.Background()))

		assert.False(t, m.ChangeFeed.Running())
		require.NoError(t, m.Stop(context.Background()))
	})

	mt.RunOpts("routes reach the collection", shopDatabase(), func(mt *mtest.T) {
		m, exporter := newTestModule(mt, config.OrdersConfig{Collection: "orders"})
		app := fiber.New()
		m.RegisterRoutes(app)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(9)}}))

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/orders/count?status=paid", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		var body map[string]int64
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, int64(9), body["count"])

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, mongotrace.ScopeName, spans[0].InstrumentationScope.Name)
	})
}
