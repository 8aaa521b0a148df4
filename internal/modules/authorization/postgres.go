package authorization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) FindAgent(ctx context.Context, id uuid.UUID) (*AgentRecord, error) {
	a := &AgentRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, level, parent_agent_id FROM agents WHERE id=$1`, id).
		Scan(&a.ID, &a.Level, &a.ParentAgentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) FindActiveVariants(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID) ([]*VariantView, error) {
	query := `
		SELECT v.id, v.product_id, p.name, v.name, v.sku, v.base_price,
		       v.agent_can_delegate, p.agent_can_delegate
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.tenant_id=$1 AND v.is_active=true AND p.is_active=true`
	args := []interface{}{tenantID}
	if productID != nil {
		query += ` AND v.product_id=$2`
		args = append(args, *productID)
	}
	query += ` ORDER BY v.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*VariantView
	for rows.Next() {
		v := &VariantView{}
		if err := rows.Scan(&v.VariantID, &v.ProductID, &v.ProductName, &v.VariantName,
			&v.SKU, &v.BasePrice, &v.AgentCanDelegate, &v.ProductAgentCanDelegate); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ── Self configs ──────────────────────────────────────────────────────────────

const selfConfigColumns = `id,tenant_id,owner_type,owner_id,product_id,variant_id,can_sell_self,self_price,created_at,updated_at`

func (r *postgresRepo) FindSelfConfigs(ctx context.Context, q ConfigQuery) ([]*SelfConfig, error) {
	query := `SELECT ` + selfConfigColumns + `
	          FROM agent_self_configs
	          WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3`
	args := []interface{}{q.TenantID, q.OwnerType, q.OwnerID}
	if q.ProductID != nil {
		query += ` AND product_id=$4`
		args = append(args, *q.ProductID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*SelfConfig
	for rows.Next() {
		c := &SelfConfig{}
		if err := rows.Scan(&c.ID, &c.TenantID, &c.OwnerType, &c.OwnerID, &c.ProductID,
			&c.VariantID, &c.CanSellSelf, &c.SelfPrice, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// UpsertSelfConfig replaces the owner's row for the variant inside a single
// transaction, so at most one Self row exists per (owner, variant).
func (r *postgresRepo) UpsertSelfConfig(ctx context.Context, c *SelfConfig) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM agent_self_configs
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3 AND variant_id=$4`,
		c.TenantID, c.OwnerType, c.OwnerID, c.VariantID)
	if err != nil {
		return fmt.Errorf("delete existing self config: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO agent_self_configs
		  (id, tenant_id, owner_type, owner_id, product_id, variant_id, can_sell_self, self_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.TenantID, c.OwnerType, c.OwnerID, c.ProductID, c.VariantID, c.CanSellSelf, c.SelfPrice)
	if err != nil {
		return fmt.Errorf("insert self config: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) DeleteSelfConfig(ctx context.Context, q ConfigQuery, variantID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM agent_self_configs
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3 AND variant_id=$4`,
		q.TenantID, q.OwnerType, q.OwnerID, variantID)
	return err
}

// ── Children configs ──────────────────────────────────────────────────────────

const childrenConfigColumns = `id,tenant_id,owner_type,owner_id,product_id,variant_id,
	can_delegate_product,can_delegate_variant,
	price_for_children,price_for_children_min,price_for_children_max,created_at,updated_at`

func (r *postgresRepo) FindChildrenConfigs(ctx context.Context, q ConfigQuery) ([]*ChildrenConfig, error) {
	query := `SELECT ` + childrenConfigColumns + `
	          FROM agent_children_configs
	          WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3`
	args := []interface{}{q.TenantID, q.OwnerType, q.OwnerID}
	if q.ProductID != nil {
		query += ` AND product_id=$4`
		args = append(args, *q.ProductID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*ChildrenConfig
	for rows.Next() {
		c := &ChildrenConfig{}
		if err := rows.Scan(&c.ID, &c.TenantID, &c.OwnerType, &c.OwnerID, &c.ProductID, &c.VariantID,
			&c.CanDelegateProduct, &c.CanDelegateVariant,
			&c.PriceForChildren, &c.PriceForChildrenMin, &c.PriceForChildrenMax,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// UpsertChildrenConfig replaces the owner's row for the (product, variant)
// pair. variant_id is nullable, so the match is done with IS NOT DISTINCT
// FROM rather than equality.
func (r *postgresRepo) UpsertChildrenConfig(ctx context.Context, c *ChildrenConfig) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM agent_children_configs
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3 AND product_id=$4
		  AND variant_id IS NOT DISTINCT FROM $5`,
		c.TenantID, c.OwnerType, c.OwnerID, c.ProductID, c.VariantID)
	if err != nil {
		return fmt.Errorf("delete existing children config: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO agent_children_configs
		  (id, tenant_id, owner_type, owner_id, product_id, variant_id,
		   can_delegate_product, can_delegate_variant,
		   price_for_children, price_for_children_min, price_for_children_max)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.TenantID, c.OwnerType, c.OwnerID, c.ProductID, c.VariantID,
		c.CanDelegateProduct, c.CanDelegateVariant,
		c.PriceForChildren, c.PriceForChildrenMin, c.PriceForChildrenMax)
	if err != nil {
		return fmt.Errorf("insert children config: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) DeleteChildrenConfig(ctx context.Context, q ConfigQuery, variantID *uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM agent_children_configs
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3
		  AND variant_id IS NOT DISTINCT FROM $4`,
		q.TenantID, q.OwnerType, q.OwnerID, variantID)
	return err
}
