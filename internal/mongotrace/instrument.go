package mongotrace

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope of the tracer and meter.
const ScopeName = "mongo-tracing/internal/mongotrace"

// Span attribute keys and their fixed values.
const (
	AttrDBName       = "db.name"
	AttrDBSystem     = "db.system"
	AttrDBCollection = "db.collection"
	AttrOtelKind     = "otel.kind"

	SystemMongoDB = "mongodb"
	KindClient    = "client"
)

// Metric names and the attributes only metrics carry.
const (
	MetricOperationDuration = "db.client.operation.duration"

	attrDBOperation = "db.operation"
	attrOutcome     = "outcome"

	outcomeOK    = "ok"
	outcomeError = "error"
)

type instrumentation struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
}

func newInstrumentation(opts ...Option) *instrumentation {
	cfg := newConfig(opts...)

	duration, err := cfg.meterProvider.Meter(ScopeName).Float64Histogram(
		MetricOperationDuration,
		metric.WithDescription("Duration of MongoDB collection operations."),
		metric.WithUnit("s"),
	)
	if err != nil {
		duration, _ = noop.NewMeterProvider().Meter(ScopeName).Float64Histogram(MetricOperationDuration)
	}

	return &instrumentation{
		tracer:   cfg.tracerProvider.Tracer(ScopeName),
		duration: duration,
	}
}

// call is one in-flight traced operation.
type call struct {
	op    string
	span  trace.Span
	attrs []attribute.KeyValue
	start time.Time
}

func (c *InstrumentedCollection[T]) start(ctx context.Context, op string) (context.Context, *call) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrDBName, c.info.DatabaseName),
		attribute.String(AttrDBSystem, SystemMongoDB),
		attribute.String(AttrDBCollection, c.inner.Name()),
		attribute.String(AttrOtelKind, KindClient),
	}

	ctx, span := c.inst.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, &call{op: op, span: span, attrs: attrs, start: time.Now()}
}

func (c *InstrumentedCollection[T]) finish(ctx context.Context, cl *call, err error) {
	outcome := outcomeOK
	if failed(err) {
		outcome = outcomeError
		cl.span.RecordError(err)
		cl.span.SetStatus(codes.Error, err.Error())
	} else {
		cl.span.SetStatus(codes.Ok, "")
	}

	attrs := make([]attribute.KeyValue, 0, len(cl.attrs)+2)
	attrs = append(attrs, cl.attrs[:3]...)
	attrs = append(attrs,
		attribute.String(attrDBOperation, cl.op),
		attribute.String(attrOutcome, outcome),
	)
	c.inst.duration.Record(ctx, time.Since(cl.start).Seconds(), metric.WithAttributes(attrs...))

	cl.span.End()
}

// failed reports whether err marks the span as a failed operation.
// An empty single-document result is an answer, not a failure.
func failed(err error) bool {
	return err != nil && !errors.Is(err, mongo.ErrNoDocuments)
}

// instrument runs fn inside a span and returns its results untouched.
func instrument[T, R any](ctx context.Context, c *InstrumentedCollection[T], op string, fn func(context.Context) (R, error)) (R, error) {
	ctx, cl := c.start(ctx, op)
	res, err := fn(ctx)
	c.finish(ctx, cl, err)
	return res, err
}

// instrumentErr is instrument for operations that only return an error.
func instrumentErr[T any](ctx context.Context, c *InstrumentedCollection[T], op string, fn func(context.Context) error) error {
	ctx, cl := c.start(ctx, op)
	err := fn(ctx)
	c.finish(ctx, cl, err)
	return err
}

// instrumentResult is instrument for operations whose error travels inside a
// *mongo.SingleResult.
func instrumentResult[T any](ctx context.Context, c *InstrumentedCollection[T], op string, fn func(context.Context) *mongo.SingleResult) *mongo.SingleResult {
	ctx, cl := c.start(ctx, op)
	res := fn(ctx)
	var err error
	if res != nil {
		err = res.Err()
	}
	c.finish(ctx, cl, err)
	return res
}

// inSession binds sess to ctx so the driver runs the operation inside it.
func inSession(ctx context.Context, sess mongo.Session) context.Context {
	return mongo.NewSessionContext(ctx, sess)
}
