package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Change stream operation types forwarded to watchers.
const (
	ChangeInsert  = "insert"
	ChangeUpdate  = "update"
	ChangeReplace = "replace"
	ChangeDelete  = "delete"
)

// DocumentKey is the documentKey part of a change stream event.
type DocumentKey struct {
	ID primitive.ObjectID `bson:"_id"`
}

// ChangeEvent is the subset of a change stream document the service uses.
// FullDocument is nil for deletes and for updates watched without
// updateLookup. ResumeToken is the event _id and resumes a stream right
// after this event.
type ChangeEvent struct {
	ResumeToken   bson.Raw    `json:"-" bson:"_id"`
	OperationType string      `json:"operationType" bson:"operationType"`
	DocumentKey   DocumentKey `json:"-" bson:"documentKey"`
	FullDocument  *Order      `json:"order,omitempty" bson:"fullDocument,omitempty"`
	ReceivedAt    time.Time   `json:"receivedAt" bson:"-"`
}

// OrderID returns the hex id of the changed order.
func (e ChangeEvent) OrderID() string {
	return e.DocumentKey.ID.Hex()
}
