package authorization

import (
	"context"

	"github.com/google/uuid"
)

// AgentRecord is the slice of an agent row the chain resolver needs.
type AgentRecord struct {
	ID            uuid.UUID
	Level         string
	ParentAgentID *uuid.UUID
}

// Repository defines data access for the authorization engine. All reads;
// the engine holds no state of its own. Config writes exist for the admin
// surface that maintains the rows the evaluators consume.
type Repository interface {
	// FindAgent returns the agent record for id, or nil when no such agent
	// exists (dangling parent references are expected and non-fatal).
	FindAgent(ctx context.Context, id uuid.UUID) (*AgentRecord, error)

	// FindActiveVariants returns active variants for the tenant, each joined
	// with its product's delegation flag. productID narrows to one product.
	FindActiveVariants(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID) ([]*VariantView, error)

	FindSelfConfigs(ctx context.Context, q ConfigQuery) ([]*SelfConfig, error)
	FindChildrenConfigs(ctx context.Context, q ConfigQuery) ([]*ChildrenConfig, error)

	UpsertSelfConfig(ctx context.Context, c *SelfConfig) error
	UpsertChildrenConfig(ctx context.Context, c *ChildrenConfig) error
	DeleteSelfConfig(ctx context.Context, q ConfigQuery, variantID uuid.UUID) error
	DeleteChildrenConfig(ctx context.Context, q ConfigQuery, variantID *uuid.UUID) error
}
