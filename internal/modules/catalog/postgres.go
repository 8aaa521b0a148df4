package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// ── Products ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, tenant_id, name, description, category, agent_can_delegate, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.TenantID, p.Name, p.Description, p.Category, p.AgentCanDelegate, p.IsActive)
	return err
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Category,
		&p.AgentCanDelegate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetProductByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id,tenant_id,name,description,category,agent_can_delegate,is_active,created_at,updated_at
		FROM products WHERE id=$1`, uid)
	return scanProduct(row.Scan)
}

func (r *postgresRepo) ListProducts(ctx context.Context, tenantID string, category string, activeOnly bool) ([]*Product, error) {
	query := `SELECT id,tenant_id,name,description,category,agent_can_delegate,is_active,created_at,updated_at
	          FROM products WHERE tenant_id=$1`
	args := []interface{}{tenantID}
	n := 2
	if category != "" {
		query += fmt.Sprintf(` AND category=$%d`, n)
		args = append(args, category)
		n++
	}
	if activeOnly {
		query += ` AND is_active=true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) UpdateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, category=$3, agent_can_delegate=$4, is_active=$5, updated_at=NOW()
		WHERE id=$6`,
		p.Name, p.Description, p.Category, p.AgentCanDelegate, p.IsActive, p.ID)
	return err
}

// ── Variants ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateVariant(ctx context.Context, v *Variant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_variants
		  (id, product_id, sku, name, base_price, currency, agent_can_delegate, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		v.ID, v.ProductID, v.SKU, v.Name, v.BasePrice, v.Currency, v.AgentCanDelegate, v.IsActive)
	return err
}

func scanVariant(scan func(...interface{}) error) (*Variant, error) {
	v := &Variant{}
	err := scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.BasePrice,
		&v.Currency, &v.AgentCanDelegate, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *postgresRepo) GetVariantByID(ctx context.Context, id string) (*Variant, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id,product_id,sku,name,base_price,currency,agent_can_delegate,is_active,created_at,updated_at
		FROM product_variants WHERE id=$1`, uid)
	return scanVariant(row.Scan)
}

func (r *postgresRepo) ListVariants(ctx context.Context, productID string, activeOnly bool) ([]*Variant, error) {
	query := `SELECT id,product_id,sku,name,base_price,currency,agent_can_delegate,is_active,created_at,updated_at
	          FROM product_variants WHERE product_id=$1`
	if activeOnly {
		query += ` AND is_active=true`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*Variant
	for rows.Next() {
		v, err := scanVariant(rows.Scan)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *postgresRepo) UpdateVariant(ctx context.Context, v *Variant) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE product_variants
		SET sku=$1, name=$2, base_price=$3, currency=$4, agent_can_delegate=$5, is_active=$6, updated_at=NOW()
		WHERE id=$7`,
		v.SKU, v.Name, v.BasePrice, v.Currency, v.AgentCanDelegate, v.IsActive, v.ID)
	return err
}
