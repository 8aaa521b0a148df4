package authorization

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service is the authorization and pricing engine. All evaluations are
// read-only and request-scoped: each call loads what it needs, merges in
// memory, and returns a fresh map, so concurrent calls need no coordination.
type Service interface {
	// GetSelfVariantConfig resolves, per variant, whether the owner may sell
	// it directly and at what effective price. For agents the immediate
	// parent's Children authorization is a precondition, and the parent's
	// price floor clamps the effective price upward.
	GetSelfVariantConfig(ctx context.Context, q ConfigQuery) (map[uuid.UUID]*SelfVariantConfig, error)

	// GetChildrenVariantConfig resolves, per variant, whether the owner may
	// delegate it to sub-agents and the minimum price those sub-agents must
	// charge, merging the owner's own rows with every upstream layer.
	GetChildrenVariantConfig(ctx context.Context, q ConfigQuery) (map[uuid.UUID]*ChildrenVariantConfig, error)

	// ValidateOrderAuthorization classifies proposed order lines as
	// authorized or denied for the owner and computes the authorized total.
	ValidateOrderAuthorization(ctx context.Context, tenantID uuid.UUID, ownerType OwnerType, ownerID uuid.UUID, items []*OrderItemInput) (*OrderAuthorizationResult, error)

	// Configuration management for the rows the evaluators read.
	UpsertSelfConfig(ctx context.Context, req UpsertSelfConfigRequest) (*SelfConfig, error)
	UpsertChildrenConfig(ctx context.Context, req UpsertChildrenConfigRequest) (*ChildrenConfig, error)
	ListSelfConfigs(ctx context.Context, q ConfigQuery) ([]*SelfConfig, error)
	ListChildrenConfigs(ctx context.Context, q ConfigQuery) ([]*ChildrenConfig, error)
	DeleteSelfConfig(ctx context.Context, q ConfigQuery, variantID uuid.UUID) error
	DeleteChildrenConfig(ctx context.Context, q ConfigQuery, variantID *uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service { return &service{repo: repo} }

// childrenLayer holds one owner's Children rows split by shape: product-level
// rows (variant_id null) keyed by product, variant-level rows keyed by variant.
type childrenLayer struct {
	product map[uuid.UUID]*ChildrenConfig
	variant map[uuid.UUID]*ChildrenConfig
}

func (s *service) loadChildrenLayer(ctx context.Context, q ConfigQuery) (*childrenLayer, error) {
	rows, err := s.repo.FindChildrenConfigs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load children configs for %s %s: %w", q.OwnerType, q.OwnerID, err)
	}
	layer := &childrenLayer{
		product: make(map[uuid.UUID]*ChildrenConfig),
		variant: make(map[uuid.UUID]*ChildrenConfig),
	}
	for _, row := range rows {
		if row.VariantID == nil {
			layer.product[row.ProductID] = row
		} else {
			layer.variant[*row.VariantID] = row
		}
	}
	return layer, nil
}

// loadUpstreamLayers builds the ordered constraint layers above an owner:
// the tenant root first, then each upstream agent root-most first, ending at
// the owner's immediate parent. chain is the resolver's closest-first list,
// whose first entry is the owner itself.
func (s *service) loadUpstreamLayers(ctx context.Context, q ConfigQuery, chain []*ChainEntry) ([]*childrenLayer, error) {
	if q.OwnerType == OwnerTenant {
		return nil, nil
	}
	tenantLayer, err := s.loadChildrenLayer(ctx, ConfigQuery{
		TenantID:  q.TenantID,
		OwnerType: OwnerTenant,
		OwnerID:   q.TenantID,
		ProductID: q.ProductID,
	})
	if err != nil {
		return nil, err
	}
	layers := []*childrenLayer{tenantLayer}
	for i := len(chain) - 1; i >= 1; i-- {
		layer, err := s.loadChildrenLayer(ctx, ConfigQuery{
			TenantID:  q.TenantID,
			OwnerType: OwnerAgent,
			OwnerID:   chain[i].ID,
			ProductID: q.ProductID,
		})
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

// ── Children Delegation Evaluator ─────────────────────────────────────────────

func (s *service) GetChildrenVariantConfig(ctx context.Context, q ConfigQuery) (map[uuid.UUID]*ChildrenVariantConfig, error) {
	variants, err := s.repo.FindActiveVariants(ctx, q.TenantID, q.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	chain, err := s.resolveUpstreamChain(ctx, q.OwnerType, q.OwnerID)
	if err != nil {
		return nil, err
	}
	own, err := s.loadChildrenLayer(ctx, q)
	if err != nil {
		return nil, err
	}
	upstream, err := s.loadUpstreamLayers(ctx, q, chain)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]*ChildrenVariantConfig, len(variants))
	for _, v := range variants {
		out[v.VariantID] = evaluateChildrenVariant(v, own, upstream)
	}
	return out, nil
}

func evaluateChildrenVariant(v *VariantView, own *childrenLayer, upstream []*childrenLayer) *ChildrenVariantConfig {
	// The hard toggles are terminal: no configuration at any level can
	// re-enable delegation for a variant whose product or variant forbids it.
	if !v.ProductAgentCanDelegate || !v.AgentCanDelegate {
		return &ChildrenVariantConfig{
			VariantID:          v.VariantID,
			ProductID:          v.ProductID,
			CanDelegateProduct: false,
			CanDelegateVariant: false,
			EffectiveMinPrice:  v.BasePrice,
			BasePrice:          v.BasePrice,
			IsInherited:        true,
		}
	}

	canProduct, canVariant := true, true
	inherited := true
	var suggested, floor, max *float64

	if pc := own.product[v.ProductID]; pc != nil {
		canProduct = pc.CanDelegateProduct
		inherited = false
	}
	if vc := own.variant[v.VariantID]; vc != nil {
		canVariant = vc.CanDelegateVariant
		suggested = vc.PriceForChildren
		floor = vc.PriceForChildrenMin
		max = vc.PriceForChildrenMax
		inherited = false
	}

	// Walk the upstream layers root-first. A denial anywhere upstream is
	// sticky; a closer ancestor cannot re-enable it. Among conflicting
	// floors the highest wins.
	for _, layer := range upstream {
		if pc := layer.product[v.ProductID]; pc != nil && !pc.CanDelegateProduct {
			canProduct = false
			inherited = true
		}
		if vc := layer.variant[v.VariantID]; vc != nil {
			if !vc.CanDelegateVariant {
				canVariant = false
				inherited = true
			}
			if vc.PriceForChildrenMin != nil && (floor == nil || *vc.PriceForChildrenMin > *floor) {
				floor = vc.PriceForChildrenMin
				inherited = true
			}
		}
	}

	effMin := v.BasePrice
	if floor != nil {
		effMin = *floor
	}
	return &ChildrenVariantConfig{
		VariantID:           v.VariantID,
		ProductID:           v.ProductID,
		CanDelegateProduct:  canProduct,
		CanDelegateVariant:  canProduct && canVariant,
		PriceForChildren:    suggested,
		PriceForChildrenMin: floor,
		PriceForChildrenMax: max,
		EffectiveMinPrice:   effMin,
		BasePrice:           v.BasePrice,
		IsInherited:         inherited,
	}
}

// ── Self Authorization Evaluator ──────────────────────────────────────────────

func (s *service) GetSelfVariantConfig(ctx context.Context, q ConfigQuery) (map[uuid.UUID]*SelfVariantConfig, error) {
	variants, err := s.repo.FindActiveVariants(ctx, q.TenantID, q.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	chain, err := s.resolveUpstreamChain(ctx, q.OwnerType, q.OwnerID)
	if err != nil {
		return nil, err
	}

	// For agents, the direct parent's Children view is the gate: whatever
	// the parent does not delegate, the agent cannot sell.
	var parentView map[uuid.UUID]*ChildrenVariantConfig
	if q.OwnerType == OwnerAgent {
		parentType, parentID := OwnerTenant, q.TenantID
		if len(chain) > 1 {
			parentType, parentID = OwnerAgent, chain[1].ID
		}
		parentView, err = s.GetChildrenVariantConfig(ctx, ConfigQuery{
			TenantID:  q.TenantID,
			OwnerType: parentType,
			OwnerID:   parentID,
			ProductID: q.ProductID,
		})
		if err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.FindSelfConfigs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load self configs: %w", err)
	}
	own := make(map[uuid.UUID]*SelfConfig, len(rows))
	for _, row := range rows {
		own[row.VariantID] = row
	}

	out := make(map[uuid.UUID]*SelfVariantConfig, len(variants))
	for _, v := range variants {
		out[v.VariantID] = evaluateSelfVariant(v, q.OwnerType, own[v.VariantID], parentView[v.VariantID])
	}
	return out, nil
}

func evaluateSelfVariant(v *VariantView, ownerType OwnerType, own *SelfConfig, parent *ChildrenVariantConfig) *SelfVariantConfig {
	base := v.BasePrice

	if ownerType == OwnerAgent {
		// Hard toggles block every agent; the tenant is unaffected.
		if !v.ProductAgentCanDelegate || !v.AgentCanDelegate {
			return &SelfVariantConfig{
				VariantID:      v.VariantID,
				ProductID:      v.ProductID,
				CanSellSelf:    false,
				EffectivePrice: base,
				BasePrice:      base,
				IsInherited:    true,
			}
		}
		// The parent's Children authorization is a precondition. Note that an
		// ancestor's own Self denial is deliberately not consulted here:
		// only the Children path controls descendant eligibility.
		if parent == nil || !parent.CanDelegateProduct || !parent.CanDelegateVariant {
			return &SelfVariantConfig{
				VariantID:      v.VariantID,
				ProductID:      v.ProductID,
				CanSellSelf:    false,
				EffectivePrice: base,
				BasePrice:      base,
				IsInherited:    true,
			}
		}
	}

	canSell := true
	var selfPrice *float64
	inherited := own == nil
	if own != nil {
		canSell = own.CanSellSelf
		selfPrice = own.SelfPrice
	}

	effective := base
	if selfPrice != nil {
		effective = *selfPrice
	}
	// An agent can never undercut the floor its parent set for delegation.
	if ownerType == OwnerAgent && parent != nil && effective < parent.EffectiveMinPrice {
		effective = parent.EffectiveMinPrice
	}

	return &SelfVariantConfig{
		VariantID:      v.VariantID,
		ProductID:      v.ProductID,
		CanSellSelf:    canSell,
		SelfPrice:      selfPrice,
		EffectivePrice: effective,
		BasePrice:      base,
		IsInherited:    inherited,
	}
}

// ── Order Validator ───────────────────────────────────────────────────────────

const (
	reasonNotConfigured = "variant not found or not configured in this mall"
	reasonNotAuthorized = "variant not authorized for sale in this mall"
	reasonBadQuantity   = "quantity must be greater than zero"
)

func (s *service) ValidateOrderAuthorization(ctx context.Context, tenantID uuid.UUID, ownerType OwnerType, ownerID uuid.UUID, items []*OrderItemInput) (*OrderAuthorizationResult, error) {
	// One Self evaluation per distinct product, so the upstream chain is not
	// re-walked once per line item.
	seen := make(map[uuid.UUID]bool)
	selfByVariant := make(map[uuid.UUID]*SelfVariantConfig)
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		pid := item.ProductID
		configs, err := s.GetSelfVariantConfig(ctx, ConfigQuery{
			TenantID:  tenantID,
			OwnerType: ownerType,
			OwnerID:   ownerID,
			ProductID: &pid,
		})
		if err != nil {
			return nil, err
		}
		for id, cfg := range configs {
			selfByVariant[id] = cfg
		}
	}

	result := &OrderAuthorizationResult{
		AuthorizedItems: []*AuthorizedItem{},
		DeniedItems:     []*DeniedItem{},
	}
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			result.DeniedItems = append(result.DeniedItems, &DeniedItem{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Reason:    reasonBadQuantity,
			})
			continue
		}
		cfg, ok := selfByVariant[item.VariantID]
		if !ok {
			result.DeniedItems = append(result.DeniedItems, &DeniedItem{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Reason:    reasonNotConfigured,
			})
			continue
		}
		if !cfg.CanSellSelf {
			result.DeniedItems = append(result.DeniedItems, &DeniedItem{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Reason:    reasonNotAuthorized,
			})
			continue
		}
		lineTotal := round2(cfg.EffectivePrice * float64(item.Quantity))
		result.AuthorizedItems = append(result.AuthorizedItems, &AuthorizedItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Quantity:       item.Quantity,
			EffectivePrice: cfg.EffectivePrice,
			LineTotal:      lineTotal,
		})
		total += lineTotal
	}
	result.CalculatedTotal = round2(total)
	result.IsValid = len(result.DeniedItems) == 0
	return result, nil
}

// ── Configuration management ──────────────────────────────────────────────────

func parseOwner(tenantID, ownerType, ownerID string) (uuid.UUID, OwnerType, uuid.UUID, error) {
	tid, err := uuid.Parse(tenantID)
	if err != nil {
		return uuid.Nil, "", uuid.Nil, fmt.Errorf("invalid tenant_id: %w", err)
	}
	ot := OwnerType(strings.ToUpper(ownerType))
	switch ot {
	case OwnerTenant:
		return tid, ot, tid, nil
	case OwnerAgent:
		oid, err := uuid.Parse(ownerID)
		if err != nil {
			return uuid.Nil, "", uuid.Nil, fmt.Errorf("invalid owner_id: %w", err)
		}
		return tid, ot, oid, nil
	default:
		return uuid.Nil, "", uuid.Nil, fmt.Errorf("invalid owner_type %q", ownerType)
	}
}

func (s *service) UpsertSelfConfig(ctx context.Context, req UpsertSelfConfigRequest) (*SelfConfig, error) {
	tid, ot, oid, err := parseOwner(req.TenantID, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}
	vid, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("invalid variant_id: %w", err)
	}
	if req.SelfPrice != nil && *req.SelfPrice < 0 {
		return nil, fmt.Errorf("self_price must not be negative")
	}
	c := &SelfConfig{
		ID:          uuid.New(),
		TenantID:    tid,
		OwnerType:   ot,
		OwnerID:     oid,
		ProductID:   pid,
		VariantID:   vid,
		CanSellSelf: req.CanSellSelf,
		SelfPrice:   req.SelfPrice,
	}
	if err := s.repo.UpsertSelfConfig(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist self config: %w", err)
	}
	return c, nil
}

func (s *service) UpsertChildrenConfig(ctx context.Context, req UpsertChildrenConfigRequest) (*ChildrenConfig, error) {
	tid, ot, oid, err := parseOwner(req.TenantID, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}
	var vid *uuid.UUID
	if req.VariantID != "" {
		v, err := uuid.Parse(req.VariantID)
		if err != nil {
			return nil, fmt.Errorf("invalid variant_id: %w", err)
		}
		vid = &v
	}
	for name, p := range map[string]*float64{
		"price_for_children":     req.PriceForChildren,
		"price_for_children_min": req.PriceForChildrenMin,
		"price_for_children_max": req.PriceForChildrenMax,
	} {
		if p != nil && *p < 0 {
			return nil, fmt.Errorf("%s must not be negative", name)
		}
	}
	if req.PriceForChildrenMin != nil && req.PriceForChildrenMax != nil && *req.PriceForChildrenMin > *req.PriceForChildrenMax {
		return nil, fmt.Errorf("price_for_children_min must not exceed price_for_children_max")
	}
	if req.PriceForChildren != nil {
		if req.PriceForChildrenMin != nil && *req.PriceForChildren < *req.PriceForChildrenMin {
			return nil, fmt.Errorf("price_for_children must not be below price_for_children_min")
		}
		if req.PriceForChildrenMax != nil && *req.PriceForChildren > *req.PriceForChildrenMax {
			return nil, fmt.Errorf("price_for_children must not exceed price_for_children_max")
		}
	}
	c := &ChildrenConfig{
		ID:                  uuid.New(),
		TenantID:            tid,
		OwnerType:           ot,
		OwnerID:             oid,
		ProductID:           pid,
		VariantID:           vid,
		CanDelegateProduct:  req.CanDelegateProduct,
		CanDelegateVariant:  req.CanDelegateVariant,
		PriceForChildren:    req.PriceForChildren,
		PriceForChildrenMin: req.PriceForChildrenMin,
		PriceForChildrenMax: req.PriceForChildrenMax,
	}
	if err := s.repo.UpsertChildrenConfig(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist children config: %w", err)
	}
	return c, nil
}

func (s *service) ListSelfConfigs(ctx context.Context, q ConfigQuery) ([]*SelfConfig, error) {
	return s.repo.FindSelfConfigs(ctx, q)
}

func (s *service) ListChildrenConfigs(ctx context.Context, q ConfigQuery) ([]*ChildrenConfig, error) {
	return s.repo.FindChildrenConfigs(ctx, q)
}

func (s *service) DeleteSelfConfig(ctx context.Context, q ConfigQuery, variantID uuid.UUID) error {
	return s.repo.DeleteSelfConfig(ctx, q, variantID)
}

func (s *service) DeleteChildrenConfig(ctx context.Context, q ConfigQuery, variantID *uuid.UUID) error {
	return s.repo.DeleteChildrenConfig(ctx, q, variantID)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
