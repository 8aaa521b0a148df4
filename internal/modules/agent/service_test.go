package agent

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubRepo struct {
	agents map[uuid.UUID]*Agent
}

func newStubRepo() *stubRepo { return &stubRepo{agents: make(map[uuid.UUID]*Agent)} }

func (r *stubRepo) Create(_ context.Context, a *Agent) error {
	r.agents[a.ID] = a
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*Agent, error) {
	a, ok := r.agents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*Agent, error) {
	for _, a := range r.agents {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubRepo) ListByTenant(_ context.Context, _ string) ([]*Agent, error) { return nil, nil }

func (r *stubRepo) ListChildren(_ context.Context, _ string, _ *uuid.UUID) ([]*Agent, error) {
	return nil, nil
}

func (r *stubRepo) Update(_ context.Context, a *Agent) error {
	r.agents[a.ID] = a
	return nil
}

func onboardRequest(tenantID uuid.UUID) OnboardAgentRequest {
	return OnboardAgentRequest{
		TenantID: tenantID.String(),
		Name:     "North Region",
		Email:    "North@Example.com",
		Password: "changeme123",
		Level:    "regional",
	}
}

func TestOnboardTopLevelAgent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	tenantID := uuid.New()

	a, err := svc.Onboard(context.Background(), onboardRequest(tenantID))
	require.NoError(t, err)

	assert.Equal(t, tenantID, a.TenantID)
	assert.Equal(t, LevelRegional, a.Level)
	assert.Nil(t, a.ParentAgentID, "empty parent means direct child of the tenant")
	assert.True(t, a.IsActive)
	assert.Equal(t, "north@example.com", a.Email, "emails are normalised")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("changeme123")))
}

func TestOnboardUnderParentAgent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	tenantID := uuid.New()

	parent, err := svc.Onboard(context.Background(), onboardRequest(tenantID))
	require.NoError(t, err)

	req := onboardRequest(tenantID)
	req.Email = "local@example.com"
	req.Level = "local"
	req.ParentAgentID = parent.ID.String()
	child, err := svc.Onboard(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, child.ParentAgentID)
	assert.Equal(t, parent.ID, *child.ParentAgentID)
	assert.Equal(t, LevelLocal, child.Level)
}

func TestOnboardRejectsCrossTenantParent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	parent, err := svc.Onboard(context.Background(), onboardRequest(uuid.New()))
	require.NoError(t, err)

	req := onboardRequest(uuid.New()) // different tenant
	req.ParentAgentID = parent.ID.String()
	_, err = svc.Onboard(context.Background(), req)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "different mall"))
}

func TestOnboardRejectsMissingParent(t *testing.T) {
	svc := NewService(newStubRepo())

	req := onboardRequest(uuid.New())
	req.ParentAgentID = uuid.NewString()
	_, err := svc.Onboard(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOnboardValidation(t *testing.T) {
	svc := NewService(newStubRepo())
	tenantID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*OnboardAgentRequest)
	}{
		{"short password", func(r *OnboardAgentRequest) { r.Password = "short" }},
		{"bad level", func(r *OnboardAgentRequest) { r.Level = "GALACTIC" }},
		{"missing name", func(r *OnboardAgentRequest) { r.Name = "" }},
		{"missing email", func(r *OnboardAgentRequest) { r.Email = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := onboardRequest(tenantID)
			tc.mutate(&req)
			_, err := svc.Onboard(context.Background(), req)
			assert.Error(t, err)
		})
	}
}

func TestDeactivateKeepsRecord(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	a, err := svc.Onboard(context.Background(), onboardRequest(uuid.New()))
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(context.Background(), a.ID.String())
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	kept, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err, "record stays resolvable for the ownership chain")
	assert.False(t, kept.IsActive)
}
