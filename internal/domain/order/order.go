package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of a stored order. Deleted orders are removed
// from the store entirely and have no status.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusEdited    Status = "EDITED"
	StatusCancelled Status = "CANCELLED"
)

// Item is a single line of a sale. Skus prefixed CUSTOM- denote ad-hoc,
// non-inventory lines.
type Item struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price,omitempty"`
	Qty   int     `json:"qty"`
}

// User identifies the staff member who recorded the sale.
type User struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Customer identifies a loyalty-program customer attached to a sale.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Order is one completed or in-progress sale. OrderID and Timestamp are
// immutable once assigned.
type Order struct {
	OrderID         string    `json:"orderId"`
	Timestamp       time.Time `json:"timestamp"`
	Status          Status    `json:"status"`
	Items           []Item    `json:"items"`
	Total           float64   `json:"total"`
	User            User      `json:"user"`
	CustomerDetails *Customer `json:"customerDetails,omitempty"`
	PaymentMethod   string    `json:"paymentMethod,omitempty"`
}

// State is the durable dataset of the order service, persisted as one JSON
// document. Counters maps a YYYYMMDD day key to the last issued sequence
// number for that day; it grows unboundedly and is never pruned.
type State struct {
	Orders   []Order        `json:"orders"`
	Counters map[string]int `json:"lastOrderCounters"`
}

// Store provides serialized access to the durable State.
//
// Update runs fn under an exclusive lock and persists the mutated state
// before releasing it; an error from fn aborts the mutation. View runs fn
// under a shared lock against a consistent snapshot; fn must not retain or
// mutate the state it is given.
type Store interface {
	Update(fn func(*State) error) error
	View(fn func(State))
}

// ErrNotFound is returned for an unknown order id. Per the published
// contract it also covers cancelling an already-cancelled order.
var ErrNotFound = errors.New("order not found")

// ErrEmptyItems is returned when an order is created without line items.
var ErrEmptyItems = errors.New("order requires at least one item")

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	SKU string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for sku %s", e.SKU)
}

// NormalizeID restores the leading '#' that clients commonly strip from
// order ids when building URLs.
func NormalizeID(id string) string {
	if id == "" || id[0] == '#' {
		return id
	}
	return "#" + id
}
