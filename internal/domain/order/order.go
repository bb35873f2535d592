// Package order provides the read-only order history model. The client only
// ever reads orders; every transition happens server-side.
package order

import "github.com/shopie/shopie-cli/internal/domain/catalog"

// Status is the server-side order state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
)

// Order is a placed order as returned by the backend.
type Order struct {
	ID     int64   `json:"id"`
	Total  float64 `json:"total"`
	Date   string  `json:"date,omitempty"`
	Status Status  `json:"statut"`
	Items  []Line  `json:"orderItems,omitempty"`
}

// Line is one product line of an order.
type Line struct {
	ID       int64            `json:"id"`
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantite"`
	Price    float64          `json:"prix"`
}
