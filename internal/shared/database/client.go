package database

import (
	"context"
	"fmt"

	"mongo-tracing/internal/config"
	"mongo-tracing/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel/trace"
)

// ClientOptions builds driver options from cfg. With command monitoring
// enabled every wire command gets its own span from tp, nested under the
// collection span that issued it.
func ClientOptions(cfg config.MongoConfig, tp trace.TracerProvider) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	if cfg.CommandMonitoring && tp != nil {
		opts.SetMonitor(otelmongo.NewMonitor(otelmongo.WithTracerProvider(tp)))
	}
	return opts
}

// Connect creates a client and verifies the deployment answers a ping.
func Connect(ctx context.Context, cfg config.MongoConfig, tp trace.TracerProvider, log logger.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, ClientOptions(cfg, tp))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"database":           cfg.Database,
		"app_name":           cfg.AppName,
		"command_monitoring": cfg.CommandMonitoring,
	}).Info("Connected to MongoDB")

	return client, nil
}
