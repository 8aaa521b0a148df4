package authorization

import (
	"time"

	"github.com/google/uuid"
)

// OwnerType identifies which kind of node in the reseller tree a
// configuration row or evaluation belongs to.
type OwnerType string

const (
	OwnerTenant OwnerType = "TENANT"
	OwnerAgent  OwnerType = "AGENT"
)

// SelfConfig is an owner's explicit configuration for selling a variant
// directly to end customers. A missing row means "inherit": sellable at the
// variant's base price. SelfPrice nil means no price override.
type SelfConfig struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	OwnerType   OwnerType `json:"owner_type"`
	OwnerID     uuid.UUID `json:"owner_id"`
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	CanSellSelf bool      `json:"can_sell_self"`
	SelfPrice   *float64  `json:"self_price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChildrenConfig is an owner's configuration for delegating a product or
// variant to its sub-agents. VariantID nil marks a product-level row, which
// carries only CanDelegateProduct; variant-level rows carry the variant
// toggle plus the price guidance for downstream agents.
type ChildrenConfig struct {
	ID                  uuid.UUID  `json:"id"`
	TenantID            uuid.UUID  `json:"tenant_id"`
	OwnerType           OwnerType  `json:"owner_type"`
	OwnerID             uuid.UUID  `json:"owner_id"`
	ProductID           uuid.UUID  `json:"product_id"`
	VariantID           *uuid.UUID `json:"variant_id,omitempty"`
	CanDelegateProduct  bool       `json:"can_delegate_product"`
	CanDelegateVariant  bool       `json:"can_delegate_variant"`
	PriceForChildren    *float64   `json:"price_for_children,omitempty"`
	PriceForChildrenMin *float64   `json:"price_for_children_min,omitempty"`
	PriceForChildrenMax *float64   `json:"price_for_children_max,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// VariantView is an active variant joined with the delegation flag of its
// parent product, as loaded for evaluation.
type VariantView struct {
	VariantID               uuid.UUID `json:"variant_id"`
	ProductID               uuid.UUID `json:"product_id"`
	ProductName             string    `json:"product_name"`
	VariantName             string    `json:"variant_name"`
	SKU                     string    `json:"sku"`
	BasePrice               float64   `json:"base_price"`
	AgentCanDelegate        bool      `json:"agent_can_delegate"`
	ProductAgentCanDelegate bool      `json:"product_agent_can_delegate"`
}

// SelfVariantConfig is the resolved answer for "can this owner sell this
// variant directly, and at what price". Built fresh per request; never
// persisted.
type SelfVariantConfig struct {
	VariantID      uuid.UUID `json:"variant_id"`
	ProductID      uuid.UUID `json:"product_id"`
	CanSellSelf    bool      `json:"can_sell_self"`
	SelfPrice      *float64  `json:"self_price,omitempty"`
	EffectivePrice float64   `json:"effective_price"`
	BasePrice      float64   `json:"base_price"`
	IsInherited    bool      `json:"is_inherited"`
}

// ChildrenVariantConfig is the resolved answer for "can this owner authorize
// sub-agents to sell this variant, and what price floor must it enforce".
type ChildrenVariantConfig struct {
	VariantID           uuid.UUID `json:"variant_id"`
	ProductID           uuid.UUID `json:"product_id"`
	CanDelegateProduct  bool      `json:"can_delegate_product"`
	CanDelegateVariant  bool      `json:"can_delegate_variant"`
	PriceForChildren    *float64  `json:"price_for_children,omitempty"`
	PriceForChildrenMin *float64  `json:"price_for_children_min,omitempty"`
	PriceForChildrenMax *float64  `json:"price_for_children_max,omitempty"`
	EffectiveMinPrice   float64   `json:"effective_min_price"`
	BasePrice           float64   `json:"base_price"`
	IsInherited         bool      `json:"is_inherited"`
}

// ConfigQuery scopes an evaluation to one owner, optionally narrowed to a
// single product (order validation only needs the ordered products).
type ConfigQuery struct {
	TenantID  uuid.UUID
	OwnerType OwnerType
	OwnerID   uuid.UUID
	ProductID *uuid.UUID
}

// OrderItemInput is one proposed order line to authorize.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

// AuthorizedItem is an order line the owner may sell, priced at the
// fully-resolved effective price.
type AuthorizedItem struct {
	ProductID      uuid.UUID `json:"product_id"`
	VariantID      uuid.UUID `json:"variant_id"`
	Quantity       int       `json:"quantity"`
	EffectivePrice float64   `json:"effective_price"`
	LineTotal      float64   `json:"line_total"`
}

// DeniedItem is an order line the owner may not sell, with a human-readable
// reason for the calling flow to surface.
type DeniedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
}

// OrderAuthorizationResult classifies a proposed order's lines. The engine
// only classifies; whether to reject the whole order or strip denied lines
// is the caller's decision.
type OrderAuthorizationResult struct {
	IsValid         bool              `json:"is_valid"`
	AuthorizedItems []*AuthorizedItem `json:"authorized_items"`
	DeniedItems     []*DeniedItem     `json:"denied_items"`
	CalculatedTotal float64           `json:"calculated_total"`
}

// UpsertSelfConfigRequest is the payload for setting an owner's Self-path
// configuration for one variant.
type UpsertSelfConfigRequest struct {
	TenantID    string   `json:"tenant_id"`
	OwnerType   string   `json:"owner_type"`
	OwnerID     string   `json:"owner_id"`
	ProductID   string   `json:"product_id"`
	VariantID   string   `json:"variant_id"`
	CanSellSelf bool     `json:"can_sell_self"`
	SelfPrice   *float64 `json:"self_price,omitempty"`
}

// UpsertChildrenConfigRequest is the payload for setting an owner's
// Children-path configuration. Omit variant_id for a product-level row.
type UpsertChildrenConfigRequest struct {
	TenantID            string   `json:"tenant_id"`
	OwnerType           string   `json:"owner_type"`
	OwnerID             string   `json:"owner_id"`
	ProductID           string   `json:"product_id"`
	VariantID           string   `json:"variant_id,omitempty"`
	CanDelegateProduct  bool     `json:"can_delegate_product"`
	CanDelegateVariant  bool     `json:"can_delegate_variant"`
	PriceForChildren    *float64 `json:"price_for_children,omitempty"`
	PriceForChildrenMin *float64 `json:"price_for_children_min,omitempty"`
	PriceForChildrenMax *float64 `json:"price_for_children_max,omitempty"`
}

// ValidateOrderRequest is the payload for order-time authorization.
type ValidateOrderRequest struct {
	TenantID  string            `json:"tenant_id"`
	OwnerType string            `json:"owner_type"`
	OwnerID   string            `json:"owner_id"`
	Items     []*OrderItemInput `json:"items"`
}
