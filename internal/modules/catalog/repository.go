package catalog

import "context"

// Repository defines the interface for catalog data storage.
type Repository interface {
	// Products
	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, tenantID string, category string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error

	// Variants
	CreateVariant(ctx context.Context, v *Variant) error
	GetVariantByID(ctx context.Context, id string) (*Variant, error)
	ListVariants(ctx context.Context, productID string, activeOnly bool) ([]*Variant, error)
	UpdateVariant(ctx context.Context, v *Variant) error
}
