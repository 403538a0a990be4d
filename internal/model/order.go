// Package model defines the order and tax result types shared across the service.
package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Order sources recorded against persisted orders.
const (
	SourceCreateOrder = "create_order_block"
	SourceCSVOrders   = "csv_orders_block"
)

// Order is a validated point-of-sale order ready for tax computation.
type Order struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Subtotal  float64 `json:"subtotal"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Validate checks the invariants the tax engine relies on: a non-empty id
// and finite numeric fields. Ingestion layers must call this before handing
// an order to the engine.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return eris.New("order: id is required")
	}
	for _, v := range []float64{o.Latitude, o.Longitude, o.Subtotal} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return eris.Errorf("order %s: latitude, longitude and subtotal must be finite numbers", o.ID)
		}
	}
	return nil
}
