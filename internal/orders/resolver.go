package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/domain"
)

type OrderBackend interface {
	GetOrder(ctx context.Context, token, id string) (*domain.Order, error)
	PayOrder(ctx context.Context, token, id string, result domain.PaymentResult) (*domain.Order, error)
	ListMyOrders(ctx context.Context, token string) ([]domain.Order, error)
}

// Resolver answers order lookups for one session. Mock-prefixed ids are served
// from the session's mock store, everything else from the backend. A nil
// backend means no backend is configured.
type Resolver struct {
	backend      OrderBackend
	mocks        *MockStore
	placeholders bool
}

// NewResolver builds a resolver. With placeholders set, a missing mock order
// is answered with a fabricated order marked Placeholder instead of
// ErrOrderNotFound.
func NewResolver(b OrderBackend, mocks *MockStore, placeholders bool) *Resolver {
	return &Resolver{backend: b, mocks: mocks, placeholders: placeholders}
}

func (r *Resolver) Get(ctx context.Context, user *domain.UserInfo, id string) (*domain.Order, error) {
	if domain.IsMockOrderID(id) {
		order, err := r.mocks.Find(ctx, id)
		if errors.Is(err, ErrOrderNotFound) && r.placeholders {
			return PlaceholderOrder(id, time.Now().UTC()), nil
		}
		return order, err
	}

	if r.backend == nil {
		return nil, ErrOrderNotFound
	}
	if !user.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	order, err := r.backend.GetOrder(ctx, user.Token, id)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}
	return order, nil
}

// Mine lists the user's backend orders followed by the session's mock orders.
func (r *Resolver) Mine(ctx context.Context, user *domain.UserInfo) ([]domain.Order, error) {
	if !user.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var out []domain.Order
	if r.backend != nil {
		remote, err := r.backend.ListMyOrders(ctx, user.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to list orders: %w", err)
		}
		out = append(out, remote...)
	}

	mocks, err := r.mocks.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range mocks {
		if o.User == user.ID {
			out = append(out, o)
		}
	}
	if out == nil {
		out = []domain.Order{}
	}
	return out, nil
}

func (r *Resolver) Pay(ctx context.Context, user *domain.UserInfo, id string, result domain.PaymentResult) (*domain.Order, error) {
	if !user.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if domain.IsMockOrderID(id) {
		return r.mocks.MarkPaid(ctx, id)
	}
	if r.backend == nil {
		return nil, ErrOrderNotFound
	}

	order, err := r.backend.PayOrder(ctx, user.Token, id, result)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pay order %s: %w", id, err)
	}
	return order, nil
}

// PlaceholderOrder is a fabricated display order for local development.
func PlaceholderOrder(id string, now time.Time) *domain.Order {
	return &domain.Order{
		ID:   id,
		User: "temp-user",
		OrderDraft: domain.OrderDraft{
			OrderItems: []domain.LineItem{
				{Name: "Sample Product", Qty: 1, Image: "/logo.svg", Price: 1000, Size: "M"},
			},
			ShippingAddress: domain.ShippingAddress{
				FullName:   "Sample User",
				Address:    "123 Sample Street",
				City:       "Sample City",
				PostalCode: "123456",
				Country:    "India",
				Phone:      "9876543210",
			},
			PaymentMethod: domain.DefaultPaymentMethod,
			Prices:        domain.Prices{ItemsPrice: 1000, ShippingPrice: 100, TaxPrice: 180, TotalPrice: 1280},
		},
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Mock:        true,
		Placeholder: true,
	}
}
