package utils

import (
	"context"
	"errors"

	"mongo-tracing/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRequestIDNotFound   = errors.New("requestID not found in context")
	ErrRequestIDNotString  = errors.New("requestID in context is not a string")
	ErrDatabaseNotFound    = errors.New("database not found in context")
	ErrDatabaseNotString   = errors.New("database in context is not a string")
	ErrCollectionNotFound  = errors.New("collection not found in context")
	ErrCollectionNotString = errors.New("collection in context is not a string")
	ErrSubjectNotFound     = errors.New("subject not found in context")
	ErrSubjectNotString    = errors.New("subject in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, missing, wrongType error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", missing
	}
	s, ok := val.(string)
	if !ok {
		return "", wrongType
	}
	return s, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetDatabaseFromContext retrieves the database name from the context.
func GetDatabaseFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.DatabaseKey, ErrDatabaseNotFound, ErrDatabaseNotString)
}

// GetCollectionFromContext retrieves the collection name from the context.
func GetCollectionFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.CollectionKey, ErrCollectionNotFound, ErrCollectionNotString)
}

// GetSubjectFromContext retrieves the authenticated subject from the context.
func GetSubjectFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.SubjectKey, ErrSubjectNotFound, ErrSubjectNotString)
}

// WithSubject returns a context carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextkeys.SubjectKey, subject)
}

// WithRequestID returns a context carrying requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithComponent returns a context carrying the component name.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation returns a context carrying the operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// WithNamespace returns a context carrying the database and collection a
// repository call targets.
func WithNamespace(ctx context.Context, database, collection string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.DatabaseKey, database)
	return context.WithValue(ctx, contextkeys.CollectionKey, collection)
}

// GetRequestIDOrDefault returns the request ID or def when none is set.
func GetRequestIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetRequestIDFromContext(ctx); err == nil {
		return id
	}
	return def
}

// HasRequestID reports whether ctx carries a request ID.
func HasRequestID(ctx context.Context) bool {
	_, err := GetRequestIDFromContext(ctx)
	return err == nil
}
