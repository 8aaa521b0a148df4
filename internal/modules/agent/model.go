package agent

import (
	"time"

	"github.com/google/uuid"
)

// Level indicates how far up the reseller hierarchy an agent sits.
type Level string

const (
	LevelLocal    Level = "LOCAL"
	LevelRegional Level = "REGIONAL"
	LevelGlobal   Level = "GLOBAL"
)

// Agent is a reseller node in a mall's ownership tree. ParentAgentID is nil
// when the agent reports directly to the tenant. Parents are fixed at
// creation; reparenting is not supported, which keeps the tree acyclic.
type Agent struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Level         Level      `json:"level"`
	ParentAgentID *uuid.UUID `json:"parent_agent_id,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OnboardAgentRequest is the payload for creating a new agent.
type OnboardAgentRequest struct {
	TenantID      string `json:"tenant_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Level         string `json:"level"`
	ParentAgentID string `json:"parent_agent_id,omitempty"` // empty ⇒ direct child of the tenant
}
