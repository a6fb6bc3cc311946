package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "mongo-tracing context key " + string(c)
}

// RequestIDKey carries the id assigned to an inbound HTTP request.
const RequestIDKey = contextKey("requestID")

// ComponentKey carries the name of the component handling a request.
const ComponentKey = contextKey("component")

// OperationKey carries the name of the repository operation in progress.
const OperationKey = contextKey("operation")

// DatabaseKey is the key for the MongoDB database name in context.Context
const DatabaseKey = contextKey("database")

// CollectionKey is the key for the MongoDB collection name in context.Context
const CollectionKey = contextKey("collection")

// SubjectKey carries the subject of the bearer token that authenticated a
// request.
const SubjectKey = contextKey("subject")
