package mongotrace

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// MockCollection is a testify mock of CollectionInterface.
type MockCollection struct {
	mock.Mock
}

var _ CollectionInterface = (*MockCollection)(nil)

func (m *MockCollection) Name() string {
	return m.Called().String(0)
}

func (m *MockCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return m.Called(ctx, filter, opts).Get(0).(*mongo.SingleResult)
}

func (m *MockCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	args := m.Called(ctx, filter, opts)
	return cursorArg(args), args.Error(1)
}

func (m *MockCollection) FindOneAndDelete(ctx context.Context, filter interface{}, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {
	return m.Called(ctx, filter, opts).Get(0).(*mongo.SingleResult)
}

func (m *MockCollection) FindOneAndReplace(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.FindOneAndReplaceOptions) *mongo.SingleResult {
	return m.Called(ctx, filter, replacement, opts).Get(0).(*mongo.SingleResult)
}

func (m *MockCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	return m.Called(ctx, filter, update, opts).Get(0).(*mongo.SingleResult)
}

func (m *MockCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	args := m.Called(ctx, document, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.InsertOneResult), args.Error(1)
}

func (m *MockCollection) InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	args := m.Called(ctx, documents, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.InsertManyResult), args.Error(1)
}

func (m *MockCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, replacement, opts)
	return updateArg(args), args.Error(1)
}

func (m *MockCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, update, opts)
	return updateArg(args), args.Error(1)
}

func (m *MockCollection) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, filter, update, opts)
	return updateArg(args), args.Error(1)
}

func (m *MockCollection) UpdateByID(ctx context.Context, id interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := m.Called(ctx, id, update, opts)
	return updateArg(args), args.Error(1)
}

func (m *MockCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	args := m.Called(ctx, filter, opts)
	return deleteArg(args), args.Error(1)
}

func (m *MockCollection) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	args := m.Called(ctx, filter, opts)
	return deleteArg(args), args.Error(1)
}

func (m *MockCollection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	args := m.Called(ctx, models, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.BulkWriteResult), args.Error(1)
}

func (m *MockCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollection) EstimatedDocumentCount(ctx context.Context, opts ...*options.EstimatedDocumentCountOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollection) Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error) {
	args := m.Called(ctx, fieldName, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interface{}), args.Error(1)
}

func (m *MockCollection) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	args := m.Called(ctx, pipeline, opts)
	return cursorArg(args), args.Error(1)
}

func (m *MockCollection) Watch(ctx context.Context, pipeline interface{}, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error) {
	args := m.Called(ctx, pipeline, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.ChangeStream), args.Error(1)
}

func (m *MockCollection) Indexes() mongo.IndexView {
	return mongo.IndexView{}
}

func (m *MockCollection) Drop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func cursorArg(args mock.Arguments) *mongo.Cursor {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*mongo.Cursor)
}

func updateArg(args mock.Arguments) *mongo.UpdateResult {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*mongo.UpdateResult)
}

func deleteArg(args mock.Arguments) *mongo.DeleteResult {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*mongo.DeleteResult)
}

// stubSession stands in for a driver session. Only its identity is used.
type stubSession struct {
	mongo.Session
	id string
}

// inSessionCtx matches a context that carries sess.
func inSessionCtx(sess mongo.Session) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return mongo.SessionFromContext(ctx) == sess
	})
}

// withoutSession matches a context that carries no session.
func withoutSession() interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return mongo.SessionFromContext(ctx) == nil
	})
}

type order struct {
	ID     string `bson:"_id"`
	Status string `bson:"status"`
	Total  int    `bson:"total"`
}

func newSpanRecorder() (*tracetest.InMemoryExporter, Option) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return exporter, WithTracerProvider(tp)
}

func newMockedOrders(collName string) (*InstrumentedCollection[order], *MockCollection, *tracetest.InMemoryExporter) {
	inner := &MockCollection{}
	inner.On("Name").Return(collName).Maybe()
	exporter, opt := newSpanRecorder()
	return Wrap[order]("shop", inner, opt), inner, exporter
}
