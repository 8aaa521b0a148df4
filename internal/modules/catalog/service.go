package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, tenantID string, category string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req CreateProductRequest) (*Product, error)

	CreateVariant(ctx context.Context, productID string, req CreateVariantRequest) (*Variant, error)
	GetVariant(ctx context.Context, id string) (*Variant, error)
	ListVariants(ctx context.Context, productID string, activeOnly bool) ([]*Variant, error)
	UpdateVariant(ctx context.Context, id string, req CreateVariantRequest) (*Variant, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant_id: %w", err)
	}
	canDelegate := true
	if req.AgentCanDelegate != nil {
		canDelegate = *req.AgentCanDelegate
	}
	p := &Product{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		AgentCanDelegate: canDelegate,
		IsActive:         true,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, tenantID string, category string, activeOnly bool) ([]*Product, error) {
	return s.repo.ListProducts(ctx, tenantID, category, activeOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req CreateProductRequest) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.AgentCanDelegate != nil {
		p.AgentCanDelegate = *req.AgentCanDelegate
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) CreateVariant(ctx context.Context, productID string, req CreateVariantRequest) (*Variant, error) {
	if req.SKU == "" {
		return nil, fmt.Errorf("variant sku is required")
	}
	if req.BasePrice < 0 {
		return nil, fmt.Errorf("base_price must not be negative")
	}
	p, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	canDelegate := true
	if req.AgentCanDelegate != nil {
		canDelegate = *req.AgentCanDelegate
	}
	v := &Variant{
		ID:               uuid.New(),
		ProductID:        p.ID,
		SKU:              req.SKU,
		Name:             req.Name,
		BasePrice:        req.BasePrice,
		Currency:         currency,
		AgentCanDelegate: canDelegate,
		IsActive:         true,
	}
	if err := s.repo.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) GetVariant(ctx context.Context, id string) (*Variant, error) {
	return s.repo.GetVariantByID(ctx, id)
}

func (s *service) ListVariants(ctx context.Context, productID string, activeOnly bool) ([]*Variant, error) {
	return s.repo.ListVariants(ctx, productID, activeOnly)
}

func (s *service) UpdateVariant(ctx context.Context, id string, req CreateVariantRequest) (*Variant, error) {
	v, err := s.repo.GetVariantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("variant not found: %w", err)
	}
	if req.SKU != "" {
		v.SKU = req.SKU
	}
	if req.Name != "" {
		v.Name = req.Name
	}
	if req.BasePrice > 0 {
		v.BasePrice = req.BasePrice
	}
	if req.Currency != "" {
		v.Currency = req.Currency
	}
	if req.AgentCanDelegate != nil {
		v.AgentCanDelegate = *req.AgentCanDelegate
	}
	if err := s.repo.UpdateVariant(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
