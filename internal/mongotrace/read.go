package mongotrace

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOne forwards to Collection.FindOne.
func (c *InstrumentedCollection[T]) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOne, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOne(ctx, filter, opts...)
	})
}

// FindOneWithSession forwards to Collection.FindOne inside sess.
func (c *InstrumentedCollection[T]) FindOneWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneWithSession, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOne(inSession(ctx, sess), filter, opts...)
	})
}

// FindOneDecoded runs FindOne and decodes the match into a T. A missing
// document is reported as mongo.ErrNoDocuments, exactly as the driver does.
func (c *InstrumentedCollection[T]) FindOneDecoded(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (T, error) {
	return instrument(ctx, c, opFindOne, func(ctx context.Context) (T, error) {
		return decodeOne[T](c.inner.FindOne(ctx, filter, opts...))
	})
}

// FindOneDecodedWithSession is FindOneDecoded inside sess.
func (c *InstrumentedCollection[T]) FindOneDecodedWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.FindOneOptions) (T, error) {
	return instrument(ctx, c, opFindOneWithSession, func(ctx context.Context) (T, error) {
		return decodeOne[T](c.inner.FindOne(inSession(ctx, sess), filter, opts...))
	})
}

// Find forwards to Collection.Find.
func (c *InstrumentedCollection[T]) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return instrument(ctx, c, opFind, func(ctx context.Context) (*mongo.Cursor, error) {
		return c.inner.Find(ctx, filter, opts...)
	})
}

// FindWithSession forwards to Collection.Find inside sess.
func (c *InstrumentedCollection[T]) FindWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return instrument(ctx, c, opFindWithSession, func(ctx context.Context) (*mongo.Cursor, error) {
		return c.inner.Find(inSession(ctx, sess), filter, opts...)
	})
}

// FindAll runs Find and drains the cursor into a slice of T. The span covers
// the query and every getMore needed to exhaust the cursor.
func (c *InstrumentedCollection[T]) FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	return instrument(ctx, c, opFind, func(ctx context.Context) ([]T, error) {
		cur, err := c.inner.Find(ctx, filter, opts...)
		return decodeAll[T](ctx, cur, err)
	})
}

// FindAllWithSession is FindAll inside sess.
func (c *InstrumentedCollection[T]) FindAllWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	return instrument(ctx, c, opFindWithSession, func(ctx context.Context) ([]T, error) {
		sctx := inSession(ctx, sess)
		cur, err := c.inner.Find(sctx, filter, opts...)
		return decodeAll[T](sctx, cur, err)
	})
}

// FindOneAndDelete forwards to Collection.FindOneAndDelete.
func (c *InstrumentedCollection[T]) FindOneAndDelete(ctx context.Context, filter interface{}, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneAndDelete, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOneAndDelete(ctx, filter, opts...)
	})
}

// FindOneAndDeleteWithSession forwards to Collection.FindOneAndDelete inside sess.
func (c *InstrumentedCollection[T]) FindOneAndDeleteWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneAndDeleteWithSession, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOneAndDelete(inSession(ctx, sess), filter, opts...)
	})
}

// FindOneAndReplace forwards to Collection.FindOneAndReplace.
func (c *InstrumentedCollection[T]) FindOneAndReplace(ctx context.Context, filter interface{}, replacement T, opts ...*options.FindOneAndReplaceOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneAndReplace, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOneAndReplace(ctx, filter, replacement, opts...)
	})
}

// FindOneAndReplaceWithSession forwards to Collection.FindOneAndReplace inside sess.
func (c *InstrumentedCollection[T]) FindOneAndReplaceWithSession(ctx context.Context, sess mongo.Session, filter interface{}, replacement T, opts ...*options.FindOneAndReplaceOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneAndReplaceWithSession, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOneAndReplace(inSession(ctx, sess), filter, replacement, opts...)
	})
}

// FindOneAndUpdate forwards to Collection.FindOneAndUpdate.
func (c *InstrumentedCollection[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneAndUpdate, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOneAndUpdate(ctx, filter, update, opts...)
	})
}

// FindOneAndUpdateWithSession forwards to Collection.FindOneAndUpdate inside sess.
func (c *InstrumentedCollection[T]) FindOneAndUpdateWithSession(ctx context.Context, sess mongo.Session, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	return instrumentResult(ctx, c, opFindOneAndUpdateWithSession, func(ctx context.Context) *mongo.SingleResult {
		return c.inner.FindOneAndUpdate(inSession(ctx, sess), filter, update, opts...)
	})
}

// CountDocuments forwards to Collection.CountDocuments.
func (c *InstrumentedCollection[T]) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return instrument(ctx, c, opCountDocuments, func(ctx context.Context) (int64, error) {
		return c.inner.CountDocuments(ctx, filter, opts...)
	})
}

// CountDocumentsWithSession forwards to Collection.CountDocuments inside sess.
func (c *InstrumentedCollection[T]) CountDocumentsWithSession(ctx context.Context, sess mongo.Session, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return instrument(ctx, c, opCountDocumentsWithSession, func(ctx context.Context) (int64, error) {
		return c.inner.CountDocuments(inSession(ctx, sess), filter, opts...)
	})
}

// EstimatedDocumentCount forwards to Collection.EstimatedDocumentCount.
func (c *InstrumentedCollection[T]) EstimatedDocumentCount(ctx context.Context, opts ...*options.EstimatedDocumentCountOptions) (int64, error) {
	return instrument(ctx, c, opEstimatedDocumentCount, func(ctx context.Context) (int64, error) {
		return c.inner.EstimatedDocumentCount(ctx, opts...)
	})
}

// EstimatedDocumentCountWithSession forwards to Collection.EstimatedDocumentCount inside sess.
func (c *InstrumentedCollection[T]) EstimatedDocumentCountWithSession(ctx context.Context, sess mongo.Session, opts ...*options.EstimatedDocumentCountOptions) (int64, error) {
	return instrument(ctx, c, opEstimatedDocumentCountWithSession, func(ctx context.Context) (int64, error) {
		return c.inner.EstimatedDocumentCount(inSession(ctx, sess), opts...)
	})
}

// Distinct forwards to Collection.Distinct.
func (c *InstrumentedCollection[T]) Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error) {
	return instrument(ctx, c, opDistinct, func(ctx context.Context) ([]interface{}, error) {
		return c.inner.Distinct(ctx, fieldName, filter, opts...)
	})
}

// DistinctWithSession forwards to Collection.Distinct inside sess.
func (c *InstrumentedCollection[T]) DistinctWithSession(ctx context.Context, sess mongo.Session, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error) {
	return instrument(ctx, c, opDistinctWithSession, func(ctx context.Context) ([]interface{}, error) {
		return c.inner.Distinct(inSession(ctx, sess), fieldName, filter, opts...)
	})
}

// Aggregate forwards to Collection.Aggregate.
func (c *InstrumentedCollection[T]) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	return instrument(ctx, c, opAggregate, func(ctx context.Context) (*mongo.Cursor, error) {
		return c.inner.Aggregate(ctx, pipeline, opts...)
	})
}

// AggregateWithSession forwards to Collection.Aggregate inside sess.
func (c *InstrumentedCollection[T]) AggregateWithSession(ctx context.Context, sess mongo.Session, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	return instrument(ctx, c, opAggregateWithSession, func(ctx context.Context) (*mongo.Cursor, error) {
		return c.inner.Aggregate(inSession(ctx, sess), pipeline, opts...)
	})
}

// Watch forwards to Collection.Watch. The span covers opening the change
// stream, not the lifetime of the subscription.
func (c *InstrumentedCollection[T]) Watch(ctx context.Context, pipeline interface{}, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error) {
	return instrument(ctx, c, opWatch, func(ctx context.Context) (*mongo.ChangeStream, error) {
		return c.inner.Watch(ctx, pipeline, opts...)
	})
}

// WatchWithSession forwards to Collection.Watch inside sess.
func (c *InstrumentedCollection[T]) WatchWithSession(ctx context.Context, sess mongo.Session, pipeline interface{}, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error) {
	return instrument(ctx, c, opWatchWithSession, func(ctx context.Context) (*mongo.ChangeStream, error) {
		return c.inner.Watch(inSession(ctx, sess), pipeline, opts...)
	})
}

func decodeOne[T any](res *mongo.SingleResult) (T, error) {
	var doc T
	err := res.Decode(&doc)
	return doc, err
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
