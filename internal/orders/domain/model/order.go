package model

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusNew       Status = "new"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusNew, StatusPaid, StatusShipped, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts a query or body value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Item is one order line.
type Item struct {
	SKU       string  `json:"sku" bson:"sku"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unitPrice" bson:"unit_price"`
}

// Order is the document stored in the orders collection.
type Order struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Customer  string             `json:"customer" bson:"customer"`
	Items     []Item             `json:"items" bson:"items"`
	Total     float64            `json:"total" bson:"total"`
	Status    Status             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// ComputeTotal returns the sum of quantity times unit price over all items.
func (o *Order) ComputeTotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}

// Prepare fills server-side fields before the first insert.
func (o *Order) Prepare(now time.Time) {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.Status == "" {
		o.Status = StatusNew
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now.UTC()
	}
	o.Total = o.ComputeTotal()
}

// ValidationIssue describes one rejected field.
type ValidationIssue struct {
	Field   string
	Message string
	Value   interface{}
}

// Validate returns every problem found in o. An empty result means o is valid.
func (o *Order) Validate() []ValidationIssue {
	var issues []ValidationIssue
	if strings.TrimSpace(o.Customer) == "" {
		issues = append(issues, ValidationIssue{Field: "customer", Message: "customer is required"})
	}
	if len(o.Items) == 0 {
		issues = append(issues, ValidationIssue{Field: "items", Message: "at least one item is required"})
	}
	for i, it := range o.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.SKU) == "" {
			issues = append(issues, ValidationIssue{Field: field + ".sku", Message: "sku is required"})
		}
		if it.Quantity <= 0 {
			issues = append(issues, ValidationIssue{Field: field + ".quantity", Message: "quantity must be positive", Value: it.Quantity})
		}
		if it.UnitPrice < 0 {
			issues = append(issues, ValidationIssue{Field: field + ".unitPrice", Message: "unit price must not be negative", Value: it.UnitPrice})
		}
	}
	if o.Status != "" && !o.Status.Valid() {
		issues = append(issues, ValidationIssue{Field: "status", Message: "must be one of new, paid, shipped, cancelled", Value: o.Status})
	}
	return issues
}

// StatusTotal is one row of the per-status revenue report.
type StatusTotal struct {
	Status Status  `json:"status" bson:"_id"`
	Orders int64   `json:"orders" bson:"orders"`
	Total  float64 `json:"total" bson:"total"`
}
