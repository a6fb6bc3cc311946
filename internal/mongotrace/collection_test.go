package mongotrace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestWrap_CapturesIdentity(t *testing.T) {
	coll, inner, _ := newMockedOrders("orders")

	assert.Equal(t, CollectionInfo{DatabaseName: "shop"}, coll.Info())
	assert.Equal(t, "shop", coll.DatabaseName())
	assert.Equal(t, "orders", coll.Name())
	assert.Equal(t, "shop.orders", coll.Namespace())
	assert.Same(t, inner, coll.Unwrap())
}

func TestWrap_EmptyNamesAreAccepted(t *testing.T) {
	coll, _, _ := newMockedOrders("")

	assert.Equal(t, "", coll.Name())
	assert.Equal(t, "shop.", coll.Namespace())
}

func TestInstrumentedCollection_SpanCarriesCollectionAttributes(t *testing.T) {
	coll, inner, exporter := newMockedOrders("orders")
	inner.On("CountDocuments", mock.Anything, bson.D{}, mock.Anything).Return(int64(3), nil).Once()

	n, err := coll.CountDocuments(context.Background(), bson.D{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "count_documents", span.Name)
	assert.Equal(t, trace.SpanKindClient, span.SpanKind)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, AttrDBName, "shop")
	assertSpanHasAttribute(t, span, AttrDBSystem, SystemMongoDB)
	assertSpanHasAttribute(t, span, AttrDBCollection, "orders")
	assertSpanHasAttribute(t, span, AttrOtelKind, KindClient)
	inner.AssertExpectations(t)
}

func TestInstrumentedCollection_CollectionNameIsReadPerCall(t *testing.T) {
	inner := &MockCollection{}
	inner.On("Name").Return("orders").Once()
	inner.On("Name").Return("orders_v2")
	inner.On("Drop", mock.Anything).Return(nil)
	exporter, opt := newSpanRecorder()
	coll := Wrap[order]("shop", inner, opt)

	require.NoError(t, coll.Drop(context.Background()))
	require.NoError(t, coll.Drop(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assertSpanHasAttribute(t, spans[0], AttrDBCollection, "orders")
	assertSpanHasAttribute(t, spans[1], AttrDBCollection, "orders_v2")
}

func TestInstrumentedCollection_SpanIsChildOfCallerSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	inner := &MockCollection{}
	inner.On("Name").Return("orders")
	inner.On("EstimatedDocumentCount", mock.Anything, mock.Anything).Return(int64(10), nil)
	coll := Wrap[order]("shop", inner, WithTracerProvider(tp))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "handler")
	_, err := coll.EstimatedDocumentCount(ctx)
	require.NoError(t, err)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "estimated_document_count", spans[0].Name)
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, parent.SpanContext().TraceID(), spans[0].SpanContext.TraceID())
}

func TestInstrumentedCollection_ContextSeenByDriverCarriesSpan(t *testing.T) {
	coll, inner, exporter := newMockedOrders("orders")
	var seen trace.SpanContext
	inner.On("DeleteOne", mock.Anything, bson.M{"_id": "o-1"}, mock.Anything).
		Run(func(args mock.Arguments) {
			seen = trace.SpanContextFromContext(args.Get(0).(context.Context))
		}).
		Return(&mongo.DeleteResult{DeletedCount: 1}, nil)

	_, err := coll.DeleteOne(context.Background(), bson.M{"_id": "o-1"})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, spans[0].SpanContext.SpanID(), seen.SpanID())
}

func TestInstrumentedCollection_FailedCallMarksSpan(t *testing.T) {
	coll, inner, exporter := newMockedOrders("orders")
	boom := errors.New("connection reset")
	inner.On("DeleteMany", mock.Anything, bson.D{}, mock.Anything).Return(nil, boom)

	res, err := coll.DeleteMany(context.Background(), bson.D{})
	assert.Nil(t, res)
	assert.Same(t, boom, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "connection reset", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestInstrumentedCollection_NoDocumentsIsNotAFailure(t *testing.T) {
	coll, inner, exporter := newMockedOrders("orders")
	inner.On("FindOne", mock.Anything, bson.M{"_id": "missing"}, mock.Anything).
		Return(mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil))

	res := coll.FindOne(context.Background(), bson.M{"_id": "missing"})
	assert.ErrorIs(t, res.Err(), mongo.ErrNoDocuments)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)
}

func TestInstrumentedCollection_ConcurrentCallsEachGetASpan(t *testing.T) {
	coll, inner, exporter := newMockedOrders("orders")
	inner.On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := coll.CountDocuments(context.Background(), bson.D{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	spans := exporter.GetSpans()
	require.Len(t, spans, workers)
	ids := make(map[trace.SpanID]struct{}, workers)
	for _, span := range spans {
		assertSpanHasAttribute(t, span, AttrDBCollection, "orders")
		ids[span.SpanContext.SpanID()] = struct{}{}
	}
	assert.Len(t, ids, workers)
}

func TestInstrumentedCollection_UsesGlobalTracerProviderByDefault(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	inner := &MockCollection{}
	inner.On("Name").Return("orders")
	inner.On("Drop", mock.Anything).Return(nil)
	coll := Wrap[order]("shop", inner, WithTracerProvider(nil))

	require.NoError(t, coll.Drop(context.Background()))
	require.Len(t, exporter.GetSpans(), 1)
	assert.Equal(t, "drop", exporter.GetSpans()[0].Name)
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()
	found := false
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) && attr.Value.AsString() == expectedValue {
			found = true
			break
		}
	}
	assert.True(t, found, "Span should have attribute %s=%s", key, expectedValue)
}

// assertOnlyCoreAttributes checks that span carries the four connection
// attributes and nothing else, so no filter, document or session leaks in.
func assertOnlyCoreAttributes(t *testing.T, span tracetest.SpanStub, dbName, collName string) {
	t.Helper()
	got := make(map[string]string, len(span.Attributes))
	for _, attr := range span.Attributes {
		got[string(attr.Key)] = attr.Value.Emit()
	}
	assert.Equal(t, map[string]string{
		AttrDBName:       dbName,
		AttrDBSystem:     SystemMongoDB,
		AttrDBCollection: collName,
		AttrOtelKind:     KindClient,
	}, got, "span %s", span.Name)
}
