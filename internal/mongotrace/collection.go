package mongotrace

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionInterface is the driver surface the facade forwards to.
// *mongo.Collection satisfies it as is.
type CollectionInterface interface {
	Name() string

	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOneAndDelete(ctx context.Context, filter interface{}, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult
	FindOneAndReplace(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.FindOneAndReplaceOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult

	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateByID(ctx context.Context, id interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)

	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	EstimatedDocumentCount(ctx context.Context, opts ...*options.EstimatedDocumentCountOptions) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)

	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	Watch(ctx context.Context, pipeline interface{}, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error)

	Indexes() mongo.IndexView
	Drop(ctx context.Context) error
}

// DatabaseInterface is the database handle a facade is built from.
// *mongo.Database satisfies it as is.
type DatabaseInterface interface {
	Name() string
	Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection
}

var (
	_ CollectionInterface = (*mongo.Collection)(nil)
	_ DatabaseInterface   = (*mongo.Database)(nil)
)

// CollectionInfo holds the identity captured when a facade is created.
type CollectionInfo struct {
	DatabaseName string
}

// InstrumentedCollection forwards every operation to the wrapped collection
// and records one client span per call. T is the document type used by the
// typed insert, replace and decode operations.
//
// The facade holds only immutable identity data and is safe for concurrent use.
type InstrumentedCollection[T any] struct {
	info  CollectionInfo
	inner CollectionInterface
	inst  *instrumentation
}

// NewCollection returns a facade for the named collection of db. The name is
// not validated here; the driver reports problems on the first real operation.
func NewCollection[T any](db DatabaseInterface, name string, opts ...Option) *InstrumentedCollection[T] {
	return Wrap[T](db.Name(), db.Collection(name), opts...)
}

// Wrap returns a facade over an existing collection handle that belongs to
// the database called databaseName.
func Wrap[T any](databaseName string, coll CollectionInterface, opts ...Option) *InstrumentedCollection[T] {
	return &InstrumentedCollection[T]{
		info:  CollectionInfo{DatabaseName: databaseName},
		inner: coll,
		inst:  newInstrumentation(opts...),
	}
}

// Info returns the identity captured at construction.
func (c *InstrumentedCollection[T]) Info() CollectionInfo {
	return c.info
}

// DatabaseName returns the database name captured at construction.
func (c *InstrumentedCollection[T]) DatabaseName() string {
	return c.info.DatabaseName
}

// Name returns the collection name as reported by the wrapped handle.
func (c *InstrumentedCollection[T]) Name() string {
	return c.inner.Name()
}

// Namespace returns "<database>.<collection>".
func (c *InstrumentedCollection[T]) Namespace() string {
	return c.info.DatabaseName + "." + c.inner.Name()
}

// Unwrap returns the wrapped collection handle.
func (c *InstrumentedCollection[T]) Unwrap() CollectionInterface {
	return c.inner
}
