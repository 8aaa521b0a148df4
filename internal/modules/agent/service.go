package agent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service defines agent hierarchy business logic.
type Service interface {
	// Onboard creates a new agent under a parent (another agent, or the
	// tenant when parent_agent_id is empty).
	Onboard(ctx context.Context, req OnboardAgentRequest) (*Agent, error)

	GetAgent(ctx context.Context, id string) (*Agent, error)
	ListAgents(ctx context.Context, tenantID string) ([]*Agent, error)
	ListChildren(ctx context.Context, tenantID string, parentAgentID string) ([]*Agent, error)

	// Deactivate marks an agent inactive. The record is kept so existing
	// orders and the ownership chain stay resolvable.
	Deactivate(ctx context.Context, id string) (*Agent, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service { return &service{repo: repo} }

var validLevels = map[Level]bool{
	LevelLocal:    true,
	LevelRegional: true,
	LevelGlobal:   true,
}

func (s *service) Onboard(ctx context.Context, req OnboardAgentRequest) (*Agent, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant_id: %w", err)
	}

	level := Level(strings.ToUpper(req.Level))
	if level == "" {
		level = LevelLocal
	}
	if !validLevels[level] {
		return nil, fmt.Errorf("invalid level %q", req.Level)
	}

	var parentID *uuid.UUID
	if req.ParentAgentID != "" {
		uid, err := uuid.Parse(req.ParentAgentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent_agent_id: %w", err)
		}
		parent, err := s.repo.GetByID(ctx, uid)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("parent agent %s not found", req.ParentAgentID)
			}
			return nil, err
		}
		if parent.TenantID != tenantID {
			return nil, fmt.Errorf("parent agent belongs to a different mall")
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("parent agent is inactive")
		}
		parentID = &parent.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &Agent{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Name:          req.Name,
		Email:         strings.ToLower(req.Email),
		PasswordHash:  string(hash),
		Level:         level,
		ParentAgentID: parentID,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to persist agent: %w", err)
	}
	return a, nil
}

func (s *service) GetAgent(ctx context.Context, id string) (*Agent, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid agent id: %w", err)
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListAgents(ctx context.Context, tenantID string) ([]*Agent, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *service) ListChildren(ctx context.Context, tenantID string, parentAgentID string) ([]*Agent, error) {
	var parentID *uuid.UUID
	if parentAgentID != "" {
		uid, err := uuid.Parse(parentAgentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent_agent_id: %w", err)
		}
		parentID = &uid
	}
	return s.repo.ListChildren(ctx, tenantID, parentID)
}

func (s *service) Deactivate(ctx context.Context, id string) (*Agent, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid agent id: %w", err)
	}
	a, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("agent not found: %w", err)
	}
	a.IsActive = false
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
