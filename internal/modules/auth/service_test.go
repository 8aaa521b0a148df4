package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jiffoo/mall-backend/internal/modules/agent"
)

type stubAgentRepo struct {
	byEmail map[string]*agent.Agent
}

func (r *stubAgentRepo) Create(_ context.Context, _ *agent.Agent) error { return nil }

func (r *stubAgentRepo) GetByID(_ context.Context, _ uuid.UUID) (*agent.Agent, error) {
	return nil, sql.ErrNoRows
}

func (r *stubAgentRepo) GetByEmail(_ context.Context, email string) (*agent.Agent, error) {
	a, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (r *stubAgentRepo) ListByTenant(_ context.Context, _ string) ([]*agent.Agent, error) {
	return nil, nil
}

func (r *stubAgentRepo) ListChildren(_ context.Context, _ string, _ *uuid.UUID) ([]*agent.Agent, error) {
	return nil, nil
}

func (r *stubAgentRepo) Update(_ context.Context, _ *agent.Agent) error { return nil }

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	a := &agent.Agent{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		Email:        "north@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	svc := NewService(&stubAgentRepo{byEmail: map[string]*agent.Agent{a.Email: a}}, "test-secret")

	token, err := svc.Login(context.Background(), "north@example.com", "changeme123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, a.ID.String(), claims.Subject)
	assert.Equal(t, a.TenantID.String(), claims.Audience)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	a := &agent.Agent{ID: uuid.New(), Email: "north@example.com", PasswordHash: string(hash), IsActive: true}
	svc := NewService(&stubAgentRepo{byEmail: map[string]*agent.Agent{a.Email: a}}, "test-secret")

	_, err = svc.Login(context.Background(), "north@example.com", "wrong")
	require.Error(t, err)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	a := &agent.Agent{ID: uuid.New(), Email: "north@example.com", PasswordHash: string(hash), IsActive: false}
	svc := NewService(&stubAgentRepo{byEmail: map[string]*agent.Agent{a.Email: a}}, "test-secret")

	_, err = svc.Login(context.Background(), "north@example.com", "changeme123")
	require.Error(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(&stubAgentRepo{byEmail: map[string]*agent.Agent{}}, "test-secret")

	_, err := svc.Login(context.Background(), "ghost@example.com", "changeme123")
	require.Error(t, err)
}
