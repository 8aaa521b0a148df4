package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiffoo/mall-backend/internal/modules/authorization"
)

type stubRepo struct {
	created *Order
	orders  map[string]*Order
	status  Status
}

func newStubRepo() *stubRepo { return &stubRepo{orders: make(map[string]*Order)} }

func (r *stubRepo) CreateOrder(_ context.Context, o *Order) error {
	r.created = o
	r.orders[o.ID.String()] = o
	return nil
}

func (r *stubRepo) GetOrderByID(_ context.Context, id string) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return o, nil
}

func (r *stubRepo) GetOrderByNumber(_ context.Context, _ string) (*Order, error) {
	return r.created, nil
}

func (r *stubRepo) ListOrdersByOwner(_ context.Context, _, _, _ string, _ string) ([]*Order, error) {
	return nil, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	r.status = status
	if o, ok := r.orders[id]; ok {
		o.Status = status
	}
	return nil
}

// stubAuthz returns a canned authorization result.
type stubAuthz struct {
	authorization.Service
	result *authorization.OrderAuthorizationResult
	err    error
}

func (s *stubAuthz) ValidateOrderAuthorization(_ context.Context, _ uuid.UUID, _ authorization.OwnerType, _ uuid.UUID, _ []*authorization.OrderItemInput) (*authorization.OrderAuthorizationResult, error) {
	return s.result, s.err
}

func placeRequest(tenantID, agentID, productID, variantID uuid.UUID) PlaceOrderRequest {
	return PlaceOrderRequest{
		TenantID:  tenantID.String(),
		OwnerType: "AGENT",
		OwnerID:   agentID.String(),
		Items: []*LineInput{
			{ProductID: productID.String(), VariantID: variantID.String(), Quantity: 3},
		},
	}
}

func TestPlaceOrderPersistsAuthorizedItems(t *testing.T) {
	tenantID, agentID, productID, variantID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	authz := &stubAuthz{result: &authorization.OrderAuthorizationResult{
		IsValid: true,
		AuthorizedItems: []*authorization.AuthorizedItem{{
			ProductID:      productID,
			VariantID:      variantID,
			Quantity:       3,
			EffectivePrice: 12,
			LineTotal:      36,
		}},
		DeniedItems:     []*authorization.DeniedItem{},
		CalculatedTotal: 36,
	}}
	repo := newStubRepo()
	svc := NewService(repo, authz)

	o, err := svc.PlaceOrder(context.Background(), placeRequest(tenantID, agentID, productID, variantID))
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 36.0, o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 12.0, o.Items[0].UnitPrice, "line priced at the engine's effective price")
	assert.Equal(t, variantID, o.Items[0].VariantID)
	assert.NotEmpty(t, o.OrderNumber)
}

func TestPlaceOrderRejectedWhenAnyLineDenied(t *testing.T) {
	tenantID, agentID, productID, variantID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	authz := &stubAuthz{result: &authorization.OrderAuthorizationResult{
		IsValid: false,
		DeniedItems: []*authorization.DeniedItem{{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  3,
			Reason:    "variant not authorized for sale in this mall",
		}},
	}}
	repo := newStubRepo()
	svc := NewService(repo, authz)

	_, err := svc.PlaceOrder(context.Background(), placeRequest(tenantID, agentID, productID, variantID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order rejected")
	assert.Contains(t, err.Error(), "not authorized")
	assert.Nil(t, repo.created, "denied orders are never persisted")
}

func TestPlaceOrderPropagatesEngineFailure(t *testing.T) {
	tenantID, agentID, productID, variantID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	authz := &stubAuthz{err: authorization.ErrChainTooDeep}
	svc := NewService(newStubRepo(), authz)

	_, err := svc.PlaceOrder(context.Background(), placeRequest(tenantID, agentID, productID, variantID))
	require.ErrorIs(t, err, authorization.ErrChainTooDeep)
}

func TestPlaceOrderRequiresItems(t *testing.T) {
	svc := NewService(newStubRepo(), &stubAuthz{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{TenantID: uuid.NewString(), OwnerType: "TENANT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one item")
}

func TestStatusTransitions(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubAuthz{})
	o := &Order{ID: uuid.New(), Status: StatusPending}
	repo.orders[o.ID.String()] = o

	_, err := svc.UpdateStatus(context.Background(), o.ID.String(), UpdateStatusRequest{Status: "COMPLETED"})
	require.Error(t, err, "PENDING cannot jump to COMPLETED")

	updated, err := svc.UpdateStatus(context.Background(), o.ID.String(), UpdateStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	updated, err = svc.UpdateStatus(context.Background(), o.ID.String(), UpdateStatusRequest{Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
}

func TestCancelOnlyEarlyStatuses(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubAuthz{})
	o := &Order{ID: uuid.New(), Status: StatusCompleted}
	repo.orders[o.ID.String()] = o

	err := svc.CancelOrder(context.Background(), o.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cancel")
}
