// Package store persists validated orders for audit and export. The tax
// engine never depends on persistence succeeding; computation results are
// produced independently of it.
package store

import (
	"context"
	"time"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
)

// StoredOrder is the durable record of one ingested order plus its source
// tag.
type StoredOrder struct {
	OrderID   string    `json:"order_id"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Timestamp string    `json:"timestamp"`
	Subtotal  float64   `json:"subtotal"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// FromOrder builds the stored record for a validated order.
func FromOrder(o model.Order, source string) StoredOrder {
	return StoredOrder{
		OrderID:   o.ID,
		Longitude: o.Longitude,
		Latitude:  o.Latitude,
		Timestamp: o.Timestamp,
		Subtotal:  o.Subtotal,
		Source:    source,
	}
}

// OrderFilter specifies criteria for listing stored orders.
type OrderFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the order persistence interface.
type Store interface {
	// SaveOrders persists a batch of orders in one transaction.
	SaveOrders(ctx context.Context, orders []StoredOrder) error
	// ListOrders returns stored orders, newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]StoredOrder, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
