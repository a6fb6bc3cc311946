package mongotrace

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndex forwards to IndexView.CreateOne and returns the index name.
func (c *InstrumentedCollection[T]) CreateIndex(ctx context.Context, model mongo.IndexModel, opts ...*options.CreateIndexesOptions) (string, error) {
	return instrument(ctx, c, opCreateIndex, func(ctx context.Context) (string, error) {
		return c.inner.Indexes().CreateOne(ctx, model, opts...)
	})
}

// CreateIndexWithSession forwards to IndexView.CreateOne inside sess.
func (c *InstrumentedCollection[T]) CreateIndexWithSession(ctx context.Context, sess mongo.Session, model mongo.IndexModel, opts ...*options.CreateIndexesOptions) (string, error) {
	return instrument(ctx, c, opCreateIndexWithSession, func(ctx context.Context) (string, error) {
		return c.inner.Indexes().CreateOne(inSession(ctx, sess), model, opts...)
	})
}

// CreateIndexes forwards to IndexView.CreateMany.
func (c *InstrumentedCollection[T]) CreateIndexes(ctx context.Context, models []mongo.IndexModel, opts ...*options.CreateIndexesOptions) ([]string, error) {
	return instrument(ctx, c, opCreateIndexes, func(ctx context.Context) ([]string, error) {
		return c.inner.Indexes().CreateMany(ctx, models, opts...)
	})
}

// CreateIndexesWithSession forwards to IndexView.CreateMany inside sess.
func (c *InstrumentedCollection[T]) CreateIndexesWithSession(ctx context.Context, sess mongo.Session, models []mongo.IndexModel, opts ...*options.CreateIndexesOptions) ([]string, error) {
	return instrument(ctx, c, opCreateIndexesWithSession, func(ctx context.Context) ([]string, error) {
		return c.inner.Indexes().CreateMany(inSession(ctx, sess), models, opts...)
	})
}

// ListIndexes forwards to IndexView.List.
func (c *InstrumentedCollection[T]) ListIndexes(ctx context.Context, opts ...*options.ListIndexesOptions) (*mongo.Cursor, error) {
	return instrument(ctx, c, opListIndexes, func(ctx context.Context) (*mongo.Cursor, error) {
		return c.inner.Indexes().List(ctx, opts...)
	})
}

// ListIndexesWithSession forwards to IndexView.List inside sess.
func (c *InstrumentedCollection[T]) ListIndexesWithSession(ctx context.Context, sess mongo.Session, opts ...*options.ListIndexesOptions) (*mongo.Cursor, error) {
	return instrument(ctx, c, opListIndexesWithSession, func(ctx context.Context) (*mongo.Cursor, error) {
		return c.inner.Indexes().List(inSession(ctx, sess), opts...)
	})
}

// ListIndexSpecifications forwards to IndexView.ListSpecifications.
func (c *InstrumentedCollection[T]) ListIndexSpecifications(ctx context.Context, opts ...*options.ListIndexesOptions) ([]*mongo.IndexSpecification, error) {
	return instrument(ctx, c, opListIndexSpecs, func(ctx context.Context) ([]*mongo.IndexSpecification, error) {
		return c.inner.Indexes().ListSpecifications(ctx, opts...)
	})
}

// ListIndexSpecificationsWithSession forwards to IndexView.ListSpecifications inside sess.
func (c *InstrumentedCollection[T]) ListIndexSpecificationsWithSession(ctx context.Context, sess mongo.Session, opts ...*options.ListIndexesOptions) ([]*mongo.IndexSpecification, error) {
	return instrument(ctx, c, opListIndexSpecsWithSession, func(ctx context.Context) ([]*mongo.IndexSpecification, error) {
		return c.inner.Indexes().ListSpecifications(inSession(ctx, sess), opts...)
	})
}

// DropIndex forwards to IndexView.DropOne.
func (c *InstrumentedCollection[T]) DropIndex(ctx context.Context, name string, opts ...*options.DropIndexesOptions) (bson.Raw, error) {
	return instrument(ctx, c, opDropIndex, func(ctx context.Context) (bson.Raw, error) {
		return c.inner.Indexes().DropOne(ctx, name, opts...)
	})
}

// DropIndexWithSession forwards to IndexView.DropOne inside sess.
func (c *InstrumentedCollection[T]) DropIndexWithSession(ctx context.Context, sess mongo.Session, name string, opts ...*options.DropIndexesOptions) (bson.Raw, error) {
	return instrument(ctx, c, opDropIndexWithSession, func(ctx context.Context) (bson.Raw, error) {
		return c.inner.Indexes().DropOne(inSession(ctx, sess), name, opts...)
	})
}

// DropIndexes forwards to IndexView.DropAll.
func (c *InstrumentedCollection[T]) DropIndexes(ctx context.Context, opts ...*options.DropIndexesOptions) (bson.Raw, error) {
	return instrument(ctx, c, opDropIndexes, func(ctx context.Context) (bson.Raw, error) {
		return c.inner.Indexes().DropAll(ctx, opts...)
	})
}

// DropIndexesWithSession forwards to IndexView.DropAll inside sess.
func (c *InstrumentedCollection[T]) DropIndexesWithSession(ctx context.Context, sess mongo.Session, opts ...*options.DropIndexesOptions) (bson.Raw, error) {
	return instrument(ctx, c, opDropIndexesWithSession, func(ctx context.Context) (bson.Raw, error) {
		return c.inner.Indexes().DropAll(inSession(ctx, sess), opts...)
	})
}

// Drop forwards to Collection.Drop.
func (c *InstrumentedCollection[T]) Drop(ctx context.Context) error {
	return instrumentErr(ctx, c, opDrop, func(ctx context.Context) error {
		return c.inner.Drop(ctx)
	})
}

// DropWithSession forwards to Collection.Drop inside sess.
func (c *InstrumentedCollection[T]) DropWithSession(ctx context.Context, sess mongo.Session) error {
	return instrumentErr(ctx, c, opDropWithSession, func(ctx context.Context) error {
		return c.inner.Drop(inSession(ctx, sess))
	})
}
