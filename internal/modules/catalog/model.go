package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable product in a mall's catalog. AgentCanDelegate is the
// hard product-level switch: when false, no agent may resell or re-delegate
// any of its variants, regardless of per-owner configuration.
type Product struct {
	ID               uuid.UUID `json:"id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category"`
	AgentCanDelegate bool      `json:"agent_can_delegate"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Variant is a concrete SKU of a product. A variant is delegatable only if
// both its own and its product's AgentCanDelegate flags are true.
type Variant struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	BasePrice        float64   `json:"base_price"`
	Currency         string    `json:"currency"`
	AgentCanDelegate bool      `json:"agent_can_delegate"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateProductRequest is the payload for creating a catalog product.
type CreateProductRequest struct {
	TenantID         string `json:"tenant_id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Category         string `json:"category"`
	AgentCanDelegate *bool  `json:"agent_can_delegate,omitempty"` // defaults to true
}

// CreateVariantRequest is the payload for adding a variant to a product.
type CreateVariantRequest struct {
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	BasePrice        float64 `json:"base_price"`
	Currency         string  `json:"currency,omitempty"`
	AgentCanDelegate *bool   `json:"agent_can_delegate,omitempty"` // defaults to true
}
