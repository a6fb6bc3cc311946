package database

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mongo-tracing/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// maxDatabaseNameLength is the server limit on database name size in bytes.
const maxDatabaseNameLength = 63

// Manager owns the MongoDB client and hands out cached database handles.
type Manager struct {
	client    *mongo.Client
	databases map[string]*mongo.Database
	mu        sync.RWMutex
	logger    logger.Logger
	closed    bool
}

// NewManager creates a manager over an already connected client.
func NewManager(client *mongo.Client, logger logger.Logger) *Manager {
	return &Manager{
		client:    client,
		databases: make(map[string]*mongo.Database),
		logger:    logger,
	}
}

// Client returns the underlying client.
func (m *Manager) Client() *mongo.Client {
	return m.client
}

// Database returns the handle for name, creating and caching it on first use.
// Handles are cheap; the server creates the database on the first write.
func (m *Manager) Database(name string) (*mongo.Database, error) {
	if err := ValidateDatabaseName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if db, exists := m.databases[name]; exists {
		m.mu.RUnlock()
		return db, nil
	}
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, mongo.ErrClientDisconnected
	}

	// Double-check locking pattern
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.databases[name]; exists {
		return db, nil
	}
	if m.closed {
		return nil, mongo.ErrClientDisconnected
	}

	db := m.client.Database(name)
	m.databases[name] = db

	m.logger.WithFields(map[string]interface{}{
		"database": name,
	}).Debug("Created database handle")

	return db, nil
}

// ListDatabaseNames lists the databases on the deployment, skipping the
// server's own admin, config and local databases.
func (m *Manager) ListDatabaseNames(ctx context.Context) ([]string, error) {
	names, err := m.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}

	userDatabases := make([]string, 0, len(names))
	for _, name := range names {
		switch name {
		case "admin", "config", "local":
			continue
		}
		userDatabases = append(userDatabases, name)
	}
	return userDatabases, nil
}

// HealthCheck pings the primary.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

// Close forgets cached handles and disconnects the client.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.databases = make(map[string]*mongo.Database)

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	m.logger.Info("Closed MongoDB client")
	return nil
}

// ConnectionCount returns the number of cached database handles.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.databases)
}

// ValidateDatabaseName applies the server's naming rules for databases.
func ValidateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if len(name) > maxDatabaseNameLength {
		return fmt.Errorf("database name too long (max %d bytes)", maxDatabaseNameLength)
	}

	if i := strings.IndexAny(name, "/\\. \"$*<>:|?\x00"); i >= 0 {
		return fmt.Errorf("database name contains invalid character %q", name[i])
	}

	return nil
}
