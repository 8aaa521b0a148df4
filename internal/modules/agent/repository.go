package agent

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for agent records.
type Repository interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	GetByEmail(ctx context.Context, email string) (*Agent, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Agent, error)
	// ListChildren returns the direct sub-agents of an agent. A nil parentID
	// lists the tenant's top-level agents.
	ListChildren(ctx context.Context, tenantID string, parentID *uuid.UUID) ([]*Agent, error)
	Update(ctx context.Context, a *Agent) error
}
