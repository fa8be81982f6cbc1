package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
	"github.com/google/uuid"
)

// MockStore keeps locally synthesized orders as one JSON array under the
// mockOrders key. Orders are only ever appended or updated in place.
type MockStore struct {
	mu      sync.Mutex
	storage storage.Storage
	now     func() time.Time
}

func NewMockStore(st storage.Storage) *MockStore {
	return &MockStore{storage: st, now: time.Now}
}

func (s *MockStore) Create(ctx context.Context, userID string, draft domain.OrderDraft) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := domain.Order{
		ID:         domain.MockOrderPrefix + uuid.NewString(),
		User:       userID,
		OrderDraft: draft,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		Mock:       true,
	}

	if err := s.save(ctx, append(all, order)); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "mock order created", "order_id", order.ID, "total", order.TotalPrice)
	return &order, nil
}

func (s *MockStore) Find(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MockStore) List(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// MarkPaid flags the order paid and moves it to processing.
func (s *MockStore) MarkPaid(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		now := s.now().UTC()
		all[i].IsPaid = true
		all[i].PaidAt = &now
		all[i].Status = domain.OrderStatusProcessing
		all[i].UpdatedAt = now
		if err := s.save(ctx, all); err != nil {
			return nil, err
		}
		paid := all[i]
		return &paid, nil
	}
	return nil, ErrOrderNotFound
}

func (s *MockStore) load(ctx context.Context) ([]domain.Order, error) {
	raw, err := s.storage.Get(ctx, storage.KeyMockOrders)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mock orders: %w", err)
	}

	var all []domain.Order
	if err := json.Unmarshal(raw, &all); err != nil {
		slog.WarnContext(ctx, "discarding unreadable mock orders", "error", err)
		return nil, nil
	}
	return all, nil
}

func (s *MockStore) save(ctx context.Context, all []domain.Order) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode mock orders: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyMockOrders, raw); err != nil {
		return fmt.Errorf("failed to persist mock orders: %w", err)
	}
	return nil
}
