package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"mongo-tracing/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Constants for configuration
const (
	// Log formats
	logFormatJSON = "json"

	// Environment types
	envProduction = "production"
	envProd       = "prod"

	// Timestamp format
	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Field names shared by every log line that carries request or trace data.
const (
	FieldRequestID  = "request_id"
	FieldSubject    = "subject"
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldDatabase   = "database"
	FieldCollection = "collection"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithError(err error) Logger
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// LogrusLogger implements the Logger interface using logrus
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger configured from LOG_LEVEL, LOG_FORMAT and
// ENVIRONMENT.
func NewLogger() Logger {
	format := os.Getenv("LOG_FORMAT")
	if env := os.Getenv("ENVIRONMENT"); env == envProduction || env == envProd {
		format = logFormatJSON
	}
	return NewLoggerWithConfig(os.Getenv("LOG_LEVEL"), format, os.Stdout)
}

// NewLoggerWithConfig creates a logger with an explicit level, format and
// output. Unknown levels fall back to info; a nil output means stdout.
func NewLoggerWithConfig(level string, format string, out io.Writer) Logger {
	logger := logrus.New()
	logger.SetLevel(parseLevel(level))
	logger.SetFormatter(newFormatter(format))
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	return &LogrusLogger{
		entry: logrus.NewEntry(logger),
	}
}

// Debug logs a debug message
func (l *LogrusLogger) Debug(args ...interface{}) {
	l.entry.Debug(args...)
}

// Info logs an info message
func (l *LogrusLogger) Info(args ...interface{}) {
	l.entry.Info(args...)
}

// Warn logs a warning message
func (l *LogrusLogger) Warn(args ...interface{}) {
	l.entry.Warn(args...)
}

// Error logs an error message
func (l *LogrusLogger) Error(args ...interface{}) {
	l.entry.Error(args...)
}

// Fatal logs a fatal message and exits
func (l *LogrusLogger) Fatal(args ...interface{}) {
	l.entry.Fatal(args...)
}

// Debugf logs a formatted debug message
func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Infof logs a formatted info message
func (l *LogrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warnf logs a formatted warning message
func (l *LogrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Errorf logs a formatted error message
func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Fatalf logs a formatted fatal message and exits
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

// WithError attaches err under the standard logrus error key.
func (l *LogrusLogger) WithError(err error) Logger {
	return &LogrusLogger{
		entry: l.entry.WithError(err),
	}
}

// WithFields adds structured fields to the logger
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

// WithContext adds request values and the active span's ids to the logger.
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	fields := logrus.Fields{}

	addContextField(ctx, contextkeys.RequestIDKey, FieldRequestID, fields)
	addContextField(ctx, contextkeys.SubjectKey, FieldSubject, fields)
	addContextField(ctx, contextkeys.ComponentKey, FieldComponent, fields)
	addContextField(ctx, contextkeys.OperationKey, FieldOperation, fields)
	addContextField(ctx, contextkeys.DatabaseKey, FieldDatabase, fields)
	addContextField(ctx, contextkeys.CollectionKey, FieldCollection, fields)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields[FieldTraceID] = sc.TraceID().String()
		fields[FieldSpanID] = sc.SpanID().String()
	}

	return &LogrusLogger{
		entry: l.entry.WithContext(ctx).WithFields(fields),
	}
}

// addContextField extracts a value from context and adds it to fields if present
func addContextField(ctx context.Context, key interface{}, fieldName string, fields logrus.Fields) {
	if val := ctx.Value(key); val != nil {
		if strVal, ok := val.(string); ok && strVal != "" {
			fields[fieldName] = strVal
		}
	}
}

// WithComponent adds component name to the logger
func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{
		entry: l.entry.WithField(FieldComponent, component),
	}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func newFormatter(format string) logrus.Formatter {
	if strings.ToLower(format) == logFormatJSON {
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}

	// Text formatter for development
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: textTimestamp,
	}
}

// Global logger instance
var defaultLogger Logger

// Initialize default logger
func init() {
	defaultLogger = NewLogger()
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

// Info logs an info message using the default logger
func Info(args ...interface{}) {
	defaultLogger.Info(args...)
}

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

// Fatalf logs a formatted fatal message using the default logger
func Fatalf(format string, args ...interface{}) {
	defaultLogger.Fatalf(format, args...)
}

// WithContext creates a logger with context information
func WithContext(ctx context.Context) Logger {
	return defaultLogger.WithContext(ctx)
}

// WithComponent creates a logger with component information
func WithComponent(component string) Logger {
	return defaultLogger.WithComponent(component)
}
