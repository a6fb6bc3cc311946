package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"mongo-tracing/internal/shared/logger"
	"mongo-tracing/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

const tracerName = "mongo-tracing/internal/orders/adapter/http"

// MiddlewareConfig configures RequestContext. Zero values fall back to the
// global tracer provider and propagator.
type MiddlewareConfig struct {
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
	Logger         logger.Logger
}

// RequestContext starts a server span for every request, continuing any
// trace found in the incoming headers, and stores the request id and span in
// the fiber user context. Database spans started from c.UserContext() become
// children of the request span.
func RequestContext(cfg MiddlewareConfig) fiber.Handler {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	tracer := cfg.TracerProvider.Tracer(tracerName)
	log := cfg.Logger.WithComponent("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		ctx := cfg.Propagator.Extract(c.UserContext(), propagation.HeaderCarrier(nethttp.Header(c.GetReqHeaders())))
		ctx = utils.WithComponent(utils.WithRequestID(ctx, requestID), "http")
		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(c.Method()),
				semconv.URLPath(c.Path()),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			semconv.HTTPRoute(route),
			semconv.HTTPResponseStatusCode(status),
		)
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}

		log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")

		return err
	}
}
