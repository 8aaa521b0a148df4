package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jiffoo/mall-backend/internal/modules/authorization"
)

// Service defines the order placement business logic.
type Service interface {
	// PlaceOrder authorizes every line through the pricing engine, rejects
	// the order if any line is denied, and persists it atomically.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)

	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListOwnerOrders(ctx context.Context, tenantID, ownerType, ownerID string, status string) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)
	CancelOrder(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	authz authorization.Service
}

// NewService creates a new order service backed by the authorization engine.
func NewService(repo Repository, authz authorization.Service) Service {
	return &service{repo: repo, authz: authz}
}

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant_id: %w", err)
	}
	ownerType := authorization.OwnerType(strings.ToUpper(req.OwnerType))
	ownerID := tenantID
	switch ownerType {
	case authorization.OwnerTenant:
	case authorization.OwnerAgent:
		ownerID, err = uuid.Parse(req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner_id: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid owner_type %q", req.OwnerType)
	}

	inputs := make([]*authorization.OrderItemInput, 0, len(req.Items))
	for _, line := range req.Items {
		pid, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		vid, err := uuid.Parse(line.VariantID)
		if err != nil {
			return nil, fmt.Errorf("invalid variant_id: %w", err)
		}
		inputs = append(inputs, &authorization.OrderItemInput{
			ProductID: pid,
			VariantID: vid,
			Quantity:  line.Quantity,
		})
	}

	result, err := s.authz.ValidateOrderAuthorization(ctx, tenantID, ownerType, ownerID, inputs)
	if err != nil {
		return nil, fmt.Errorf("order authorization failed: %w", err)
	}
	// Placement policy: any denied line rejects the whole order. The engine
	// only classifies; partial fulfilment is not offered here.
	if !result.IsValid {
		reasons := make([]string, 0, len(result.DeniedItems))
		for _, d := range result.DeniedItems {
			reasons = append(reasons, fmt.Sprintf("variant %s: %s", d.VariantID, d.Reason))
		}
		return nil, fmt.Errorf("order rejected: %s", strings.Join(reasons, "; "))
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	o := &Order{
		ID:            uuid.New(),
		TenantID:      tenantID,
		OwnerType:     string(ownerType),
		OwnerID:       ownerID,
		OrderNumber:   generateOrderNumber(),
		Status:        StatusPending,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Total:         result.CalculatedTotal,
		Currency:      currency,
		Notes:         req.Notes,
	}
	for _, a := range result.AuthorizedItems {
		o.Items = append(o.Items, &Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: a.ProductID,
			VariantID: a.VariantID,
			Quantity:  a.Quantity,
			UnitPrice: a.EffectivePrice,
			LineTotal: a.LineTotal,
		})
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, orderNumber)
}

func (s *service) ListOwnerOrders(ctx context.Context, tenantID, ownerType, ownerID string, status string) ([]*Order, error) {
	return s.repo.ListOrdersByOwner(ctx, tenantID, strings.ToUpper(ownerType), ownerID, strings.ToUpper(status))
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	next := Status(strings.ToUpper(req.Status))
	allowed := false
	for _, t := range validTransitions[o.Status] {
		if t == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot transition order from %s to %s", o.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	o.Status = next
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, id string) error {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return fmt.Errorf("order not found: %w", err)
	}
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return fmt.Errorf("cannot cancel order in status %s", o.Status)
	}
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
