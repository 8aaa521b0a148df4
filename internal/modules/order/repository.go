package order

import "context"

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists the order and all its items atomically.
	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListOrdersByOwner(ctx context.Context, tenantID, ownerType, ownerID string, status string) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
