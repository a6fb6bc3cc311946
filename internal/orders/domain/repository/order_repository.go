package repository

import (
	"context"

	"mongo-tracing/internal/orders/domain/model"

	"go.mongodb.org/mongo-driver/bson"
)

// UpdateResult reports how many orders a status change touched.
type UpdateResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// ListOptions narrows List. A zero Status lists every order.
type ListOptions struct {
	Status model.Status
	Limit  int64
	Skip   int64
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// CreateBatch inserts all orders in one transaction or none of them.
	CreateBatch(ctx context.Context, orders []*model.Order) ([]string, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, opts ListOptions) ([]*model.Order, error)
	Count(ctx context.Context, status model.Status) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Customers(ctx context.Context) ([]string, error)
	TotalsByStatus(ctx context.Context) ([]model.StatusTotal, error)
	EnsureIndexes(ctx context.Context) ([]string, error)
	// Watch streams change events until ctx is done. The returned channel
	// is closed when the stream ends. A non-empty resumeAfter starts the
	// stream right after the event that produced that token.
	Watch(ctx context.Context, resumeAfter bson.Raw) (<-chan model.ChangeEvent, error)
}

// CheckpointStore keeps the last resume token a change feed handled.
type CheckpointStore interface {
	// Load returns nil with no error when nothing was saved under feed.
	Load(ctx context.Context, feed string) (bson.Raw, error)
	Save(ctx context.Context, feed string, token bson.Raw) error
}
