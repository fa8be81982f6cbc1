package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

// UserStore keeps the authenticated user record of one session under the
// userInfo key.
type UserStore struct {
	mu      sync.RWMutex
	storage storage.Storage
	user    *domain.UserInfo
}

// LoadUserStore hydrates the stored record. An absent or unreadable record
// means nobody is logged in.
func LoadUserStore(ctx context.Context, st storage.Storage) (*UserStore, error) {
	s := &UserStore{storage: st}

	raw, err := st.Get(ctx, storage.KeyUserInfo)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}

	var u domain.UserInfo
	if err := json.Unmarshal(raw, &u); err != nil {
		slog.WarnContext(ctx, "discarding unreadable user record", "error", err)
		return s, nil
	}
	if u.Authenticated() {
		s.user = &u
	}
	return s, nil
}

// Current returns a copy of the logged-in user, or nil.
func (s *UserStore) Current() *domain.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *UserStore) Save(ctx context.Context, u domain.UserInfo) error {
	if !u.Authenticated() {
		return errors.New("user record has no token")
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, storage.KeyUserInfo, raw); err != nil {
		return fmt.Errorf("failed to persist user record: %w", err)
	}
	s.user = &u
	return nil
}

// Clear logs the session out.
func (s *UserStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(ctx, storage.KeyUserInfo); err != nil {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	s.user = nil
	return nil
}
