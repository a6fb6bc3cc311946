package mongotrace

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertOne forwards to Collection.InsertOne.
func (c *InstrumentedCollection[T]) InsertOne(ctx context.Context, doc T, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return instrument(ctx, c, opInsertOne, func(ctx context.Context) (*mongo.InsertOneResult, error) {
		return c.inner.InsertOne(ctx, doc, opts...)
	})
}

// InsertOneWithSession forwards to Collection.InsertOne inside sess.
func (c *InstrumentedCollection[T]) InsertOneWithSession(ctx context.Context, sess mongo.Session, doc T, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return instrument(ctx, c, opInsertOneWithSession, func(ctx context.Context) (*mongo.InsertOneResult, error) {
		return c.inner.InsertOne(inSession(ctx, sess), doc, opts...)
	})
}

// InsertMany forwards to Collection.InsertMany. An empty docs slice is passed
// through and rejected by the driver.
func (c *InstrumentedCollection[T]) InsertMany(ctx context.Context, docs []T, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	return instrument(ctx, c, opInsertMany, func(ctx context.Context) (*mongo.InsertManyResult, error) {
		return c.inner.InsertMany(ctx, documents(docs), opts...)
	})
}

// InsertManyWithSession forwards to Collection.InsertMany inside sess.
func (c *InstrumentedCollection[T]) InsertManyWithSession(ctx context.Context, sess mongo.Session, docs []T, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	return instrument(ctx, c, opInsertManyWithSession, func(ctx context.Context) (*mongo.InsertManyResult, error) {
		return c.inner.InsertMany(inSession(ctx, sess), documents(docs), opts...)
	})
}

// ReplaceOne forwards to Collection.ReplaceOne.
func (c *InstrumentedCollection[T]) ReplaceOne(ctx context.Context, filter interface{}, replacement T, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opReplaceOne, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.ReplaceOne(ctx, filter, replacement, opts...)
	})
}

// ReplaceOneWithSession forwards to Collection.ReplaceOne inside sess.
func (c *InstrumentedCollection[T]) ReplaceOneWithSession(ctx context.Context, sess mongo.Session, filter interface{}, replacement T, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opReplaceOneWithSession, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.ReplaceOne(inSession(ctx, sess), filter, replacement, opts...)
	})
}

// UpdateOne forwards to Collection.UpdateOne. A filter that matches nothing
// is a successful call with MatchedCount zero.
func (c *InstrumentedCollection[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opUpdateOne, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.UpdateOne(ctx, filter, update, opts...)
	})
}

// UpdateOneWithSession forwards to Collection.UpdateOne inside sess.
func (c *InstrumentedCollection[T]) UpdateOneWithSession(ctx context.Context, sess mongo.Session, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opUpdateOneWithSession, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.UpdateOne(inSession(ctx, sess), filter, update, opts...)
	})
}

// UpdateMany forwards to Collection.UpdateMany.
func (c *InstrumentedCollection[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opUpdateMany, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.UpdateMany(ctx, filter, update, opts...)
	})
}

// UpdateManyWithSession forwards to Collection.UpdateMany inside sess.
func (c *InstrumentedCollection[T]) UpdateManyWithSession(ctx context.Context, sess mongo.Session, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opUpdateManyWithSession, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.UpdateMany(inSession(ctx, sess), filter, update, opts...)
	})
}

// UpdateByID forwards to Collection.UpdateByID.
func (c *InstrumentedCollection[T]) UpdateByID(ctx context.Context, id interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opUpdateByID, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.UpdateByID(ctx, id, update, opts...)
	})
}

// UpdateByIDWithSession forwards to Collection.UpdateByID inside sess.
func (c *InstrumentedCollection[T]) UpdateByIDWithSession(ctx context.Context, sess mongo.Session, id interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return instrument(ctx, c, opUpdateByIDWithSession, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.inner.UpdateByID(inSession(ctx, sess), id, update, opts...)
	})
}

// DeleteOne forwards to Collection.DeleteOne.
func (c *InstrumentedCollection[T]) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return instrument(ctx, c, opDeleteOne, func(ctx context.Context) (*mongo.DeleteResult, error) {
		return c.inner.DeleteOne(ctx, filter, opts...)
	})
}

// DeleteOneWithSession forwards to Collection.DeleteOne inside sess.
func (c *InstrumentedCollection[T]) DeleteOneWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return instrument(ctx, c, opDeleteOneWithSession, func(ctx context.Context) (*mongo.DeleteResult, error) {
		return c.inner.DeleteOne(inSession(ctx, sess), filter, opts...)
	})
}

// DeleteMany forwards to Collection.DeleteMany.
func (c *InstrumentedCollection[T]) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return instrument(ctx, c, opDeleteMany, func(ctx context.Context) (*mongo.DeleteResult, error) {
		return c.inner.DeleteMany(ctx, filter, opts...)
	})
}

// DeleteManyWithSession forwards to Collection.DeleteMany inside sess.
func (c *InstrumentedCollection[T]) DeleteManyWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return instrument(ctx, c, opDeleteManyWithSession, func(ctx context.Context) (*mongo.DeleteResult, error) {
		return c.inner.DeleteMany(inSession(ctx, sess), filter, opts...)
	})
}

// BulkWrite forwards to Collection.BulkWrite. The whole batch is one span.
func (c *InstrumentedCollection[T]) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	return instrument(ctx, c, opBulkWrite, func(ctx context.Context) (*mongo.BulkWriteResult, error) {
		return c.inner.BulkWrite(ctx, models, opts...)
	})
}

// BulkWriteWithSession forwards to Collection.BulkWrite inside sess.
func (c *InstrumentedCollection[T]) BulkWriteWithSession(ctx context.Context, sess mongo.Session, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	return instrument(ctx, c, opBulkWriteWithSession, func(ctx context.Context) (*mongo.BulkWriteResult, error) {
		return c.inner.BulkWrite(inSession(ctx, sess), models, opts...)
	})
}

// documents widens typed documents to the slice type the driver expects.
// A nil slice stays nil.
func documents[T any](docs []T) []interface{} {
	if docs == nil {
		return nil
	}
	out := make([]interface{}, len(docs))
	for i := range docs {
		out[i] = docs[i]
	}
	return out
}
