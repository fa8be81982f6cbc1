package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/storage"
)

// Store is the persistent cart of one client session. Each mutation is
// written to storage before it becomes visible; when the write fails the
// previous state is kept and the error returned.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	rules   pricing.Rules
	state   State
}

// Load hydrates a store from st. Absent or unparsable keys fall back to the
// empty defaults. Only storage failures are returned.
func Load(ctx context.Context, st storage.Storage, rules pricing.Rules) (*Store, error) {
	state := EmptyState()

	if err := readJSON(ctx, st, storage.KeyCartItems, &state.Items); err != nil {
		return nil, err
	}
	if state.Items == nil {
		state.Items = []domain.LineItem{}
	}
	if err := readJSON(ctx, st, storage.KeyShippingAddress, &state.ShippingAddress); err != nil {
		return nil, err
	}
	if err := readJSON(ctx, st, storage.KeyPaymentMethod, &state.PaymentMethod); err != nil {
		return nil, err
	}
	state.PaymentMethod = domain.NormalizePaymentMethod(state.PaymentMethod)

	return &Store{storage: st, rules: rules, state: state}, nil
}

// readJSON leaves dst untouched when the key is absent or holds garbage.
func readJSON[T any](ctx context.Context, st storage.Storage, key string, dst *T) error {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("discarding unparsable cart state", slog.String("key", key), slog.Any("err", err))
		return nil
	}
	*dst = v
	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyState()
}

// Snapshot returns the state and its prices read under one lock.
func (s *Store) Snapshot() (State, domain.Prices) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyState(), s.rules.Calculate(s.state.Items)
}

func (s *Store) copyState() State {
	out := s.state
	out.Items = make([]domain.LineItem, len(s.state.Items))
	copy(out.Items, s.state.Items)
	return out
}

func (s *Store) Items() []domain.LineItem {
	return s.State().Items
}

func (s *Store) Add(ctx context.Context, item domain.LineItem) error {
	return s.mutate(ctx, storage.KeyCartItems, func(st State) (State, any, error) {
		next, err := st.Add(item)
		return next, next.Items, err
	})
}

func (s *Store) Remove(ctx context.Context, key domain.LineKey) error {
	return s.mutate(ctx, storage.KeyCartItems, func(st State) (State, any, error) {
		next := st.Remove(key)
		return next, next.Items, nil
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, key domain.LineKey, qty int) error {
	return s.mutate(ctx, storage.KeyCartItems, func(st State) (State, any, error) {
		next, err := st.UpdateQuantity(key, qty)
		return next, next.Items, err
	})
}

func (s *Store) SetShippingAddress(ctx context.Context, addr domain.ShippingAddress) error {
	return s.mutate(ctx, storage.KeyShippingAddress, func(st State) (State, any, error) {
		next := st.WithShippingAddress(addr)
		return next, next.ShippingAddress, nil
	})
}

func (s *Store) SetPaymentMethod(ctx context.Context, m domain.PaymentMethod) error {
	return s.mutate(ctx, storage.KeyPaymentMethod, func(st State) (State, any, error) {
		next := st.WithPaymentMethod(m)
		return next, next.PaymentMethod, nil
	})
}

// Clear empties the items and removes their storage key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyCartItems); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.state = s.state.ClearItems()
	return nil
}

// ClearOrdered removes the lines that went into an order. Lines added or
// changed since the order was drafted stay in the cart.
func (s *Store) ClearOrdered(ctx context.Context, ordered []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.WithoutOrdered(ordered)
	if len(next.Items) == 0 {
		if err := s.storage.Delete(ctx, storage.KeyCartItems); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		s.state = next
		return nil
	}

	raw, err := json.Marshal(next.Items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", storage.KeyCartItems, err)
	}
	if err := s.storage.Set(ctx, storage.KeyCartItems, raw); err != nil {
		return fmt.Errorf("persist %s: %w", storage.KeyCartItems, err)
	}
	s.state = next
	return nil
}

func (s *Store) mutate(ctx context.Context, key string, fn func(State) (State, any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, persisted, err := fn(s.state)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.storage.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}

	s.state = next
	return nil
}
