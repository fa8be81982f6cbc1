package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/storefront/internal/domain"
)

// Placer turns a validated draft into an order.
type Placer interface {
	Place(ctx context.Context, user *domain.UserInfo, draft domain.OrderDraft) (*domain.Order, error)
}

// ValidateDraft rejects drafts the backend would refuse. It never touches the
// network.
func ValidateDraft(draft domain.OrderDraft) error {
	if len(draft.OrderItems) == 0 {
		return ErrEmptyCart
	}
	for _, it := range draft.OrderItems {
		if it.Qty < 1 {
			return fmt.Errorf("%w: %s", ErrInvalidLine, it.Key())
		}
	}
	if draft.ShippingAddress.IsZero() {
		return ErrMissingShippingAddress
	}
	if err := draft.ShippingAddress.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(string(draft.PaymentMethod)) == "" {
		return ErrMissingPaymentMethod
	}
	return nil
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, draft domain.OrderDraft) (*domain.Order, error)
}

// BackendPlacer submits drafts to the REST backend. Failures are returned as
// is and never retried.
type BackendPlacer struct {
	backend OrderCreator
}

func NewBackendPlacer(backend OrderCreator) *BackendPlacer {
	return &BackendPlacer{backend: backend}
}

func (p *BackendPlacer) Place(ctx context.Context, user *domain.UserInfo, draft domain.OrderDraft) (*domain.Order, error) {
	if !user.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	order, err := p.backend.CreateOrder(ctx, user.Token, draft)
	if err != nil {
		slog.ErrorContext(ctx, "order submission failed", "user", user.ID, "error", err)
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("failed to submit order: backend returned no order id")
	}
	return order, nil
}

// MockPlacer records orders in session storage. It stands in for the backend
// when none is configured.
type MockPlacer struct {
	store *MockStore
}

func NewMockPlacer(store *MockStore) *MockPlacer {
	return &MockPlacer{store: store}
}

func (p *MockPlacer) Place(ctx context.Context, user *domain.UserInfo, draft domain.OrderDraft) (*domain.Order, error) {
	if !user.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}
	return p.store.Create(ctx, user.ID, draft)
}
