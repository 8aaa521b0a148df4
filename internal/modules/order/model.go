package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Order is a customer order placed through a mall owner (the tenant itself
// or one of its agents). Every line item was authorized and priced by the
// authorization engine at placement time.
type Order struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	OwnerType     string    `json:"owner_type"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OrderNumber   string    `json:"order_number"`
	Status        Status    `json:"status"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Total         float64   `json:"total"`
	Currency      string    `json:"currency"`
	Notes         string    `json:"notes,omitempty"`
	Items         []*Item   `json:"items,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Item is a single authorized line item within an order. UnitPrice is the
// engine's effective price at placement time, not the variant's base price.
type Item struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
	CreatedAt time.Time `json:"created_at"`
}

// LineInput describes one requested line at placement time.
type LineInput struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest is the payload for creating a new order.
type PlaceOrderRequest struct {
	TenantID      string       `json:"tenant_id"`
	OwnerType     string       `json:"owner_type"`
	OwnerID       string       `json:"owner_id"`
	CustomerName  string       `json:"customer_name,omitempty"`
	CustomerEmail string       `json:"customer_email,omitempty"`
	Currency      string       `json:"currency,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Items         []*LineInput `json:"items"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
