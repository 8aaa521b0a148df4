package agent

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const agentColumns = `id,tenant_id,name,email,password_hash,level,parent_agent_id,is_active,created_at,updated_at`

func (r *postgresRepo) Create(ctx context.Context, a *Agent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO agents
		  (id, tenant_id, name, email, password_hash, level, parent_agent_id, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.TenantID, a.Name, a.Email, a.PasswordHash, a.Level, a.ParentAgentID, a.IsActive)
	return err
}

func scanAgent(scan func(...interface{}) error) (*Agent, error) {
	a := &Agent{}
	err := scan(&a.ID, &a.TenantID, &a.Name, &a.Email, &a.PasswordHash,
		&a.Level, &a.ParentAgentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Agent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id=$1`, id)
	return scanAgent(row.Scan)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Agent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE email=$1`, email)
	return scanAgent(row.Scan)
}

func (r *postgresRepo) ListByTenant(ctx context.Context, tenantID string) ([]*Agent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE tenant_id=$1 ORDER BY created_at ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAgents(rows)
}

func (r *postgresRepo) ListChildren(ctx context.Context, tenantID string, parentID *uuid.UUID) ([]*Agent, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+agentColumns+` FROM agents WHERE tenant_id=$1 AND parent_agent_id IS NULL ORDER BY created_at ASC`, tenantID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+agentColumns+` FROM agents WHERE tenant_id=$1 AND parent_agent_id=$2 ORDER BY created_at ASC`, tenantID, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAgents(rows)
}

func (r *postgresRepo) Update(ctx context.Context, a *Agent) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE agents
		SET name=$1, email=$2, password_hash=$3, level=$4, is_active=$5, updated_at=NOW()
		WHERE id=$6`,
		a.Name, a.Email, a.PasswordHash, a.Level, a.IsActive, a.ID)
	return err
}

func collectAgents(rows *sql.Rows) ([]*Agent, error) {
	var agents []*Agent
	for rows.Next() {
		a, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
