// Package mongotrace wraps MongoDB collection handles so that every operation
// produces exactly one OpenTelemetry client span before it is forwarded to the
// driver.
//
// The wrapper adds no behavior of its own. Filters, documents, options and
// sessions reach the driver untouched, and the driver's results and errors are
// returned as they are. Each span carries the same four attributes:
//
//	db.name       the database the collection was obtained from
//	db.system     "mongodb"
//	db.collection the delegate's collection name, read on every call
//	otel.kind     "client"
//
// Payload arguments are never recorded on spans.
//
// Typical use:
//
//	orders := mongotrace.NewCollection[Order](client.Database("shop"), "orders")
//	n, err := orders.CountDocuments(ctx, bson.D{})
//
// Operations whose name ends in WithSession run inside the given session. A
// mongo.Session must not be used by two operations at the same time; the
// caller owns that exclusivity for the duration of the call.
package mongotrace
