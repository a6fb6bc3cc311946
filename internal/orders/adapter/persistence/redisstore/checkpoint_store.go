package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mongo-tracing/internal/orders/domain/repository"
	"mongo-tracing/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// CheckpointStore keeps change stream resume tokens in Redis, one key per
// feed. Tokens are stored as raw BSON.
type CheckpointStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

var _ repository.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates a store writing keys under prefix. A zero ttl
// keeps checkpoints until they are overwritten.
func NewCheckpointStore(client redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *CheckpointStore {
	return &CheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithComponent("orders-checkpoints"),
	}
}

// Key returns the Redis key used for feed.
func (s *CheckpointStore) Key(feed string) string {
	return fmt.Sprintf("%s:checkpoint:%s", s.prefix, feed)
}

// Load returns the saved token for feed, or nil when none was saved.
func (s *CheckpointStore) Load(ctx context.Context, feed string) (bson.Raw, error) {
	data, err := s.client.Get(ctx, s.Key(feed)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", feed, err)
	}

	token := bson.Raw(data)
	if err := token.Validate(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warnf("discarding corrupt checkpoint for %s", feed)
		return nil, nil
	}
	return token, nil
}

// Save overwrites the token for feed.
func (s *CheckpointStore) Save(ctx context.Context, feed string, token bson.Raw) error {
	if err := s.client.Set(ctx, s.Key(feed), []byte(token), s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", feed, err)
	}
	return nil
}
