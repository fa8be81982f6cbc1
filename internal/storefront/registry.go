package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are evicted
	CleanupInterval = time.Minute
)

var ErrInvalidSession = errors.New("session id must be a UUID")

// OrderBackend is the order half of the REST backend.
type OrderBackend interface {
	orders.OrderCreator
	orders.OrderBackend
}

type Deps struct {
	Storage storage.Storage
	Rules   pricing.Rules
	// Backend nil means no backend is configured: orders are mocked.
	Backend      OrderBackend
	Publisher    events.Publisher
	Checkout     checkout.Options
	Placeholders bool
	IdleTTL      time.Duration
}

// Session bundles the state of one client.
type Session struct {
	ID       string
	Cart     *cart.Store
	Users    *auth.UserStore
	Checkout *checkout.Controller
	Orders   *orders.Resolver
	Mocks    *orders.MockStore

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// User is the logged-in user of the session, or nil.
func (s *Session) User() *domain.UserInfo {
	return s.Users.Current()
}

// Registry hands out sessions, hydrating them from storage on first use and
// evicting them from memory once idle. Evicted sessions rehydrate on demand.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group
	deps     Deps
	now      func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(deps Deps) *Registry {
	if deps.IdleTTL <= 0 {
		deps.IdleTTL = DefaultIdleTTL
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Checkout.Publisher == nil {
		deps.Checkout.Publisher = deps.Publisher
	}
	r := &Registry{
		sessions:    make(map[string]*Session),
		deps:        deps,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// NewID returns a fresh session id.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, hydrating it when it is not in memory.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSession
	}

	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(r.now())
		return s, nil
	}

	v, err, _ := r.sfg.Do(id, func() (interface{}, error) {
		r.mu.RLock()
		s, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}

		s, err := r.hydrate(ctx, id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[id] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s = v.(*Session)
	s.touch(r.now())
	return s, nil
}

func (r *Registry) hydrate(ctx context.Context, id string) (*Session, error) {
	st := storage.Namespace(r.deps.Storage, "session:"+id)

	c, err := cart.Load(ctx, st, r.deps.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart of session %s: %w", id, err)
	}
	users, err := auth.LoadUserStore(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to load user of session %s: %w", id, err)
	}
	mocks := orders.NewMockStore(st)

	var placer orders.Placer
	var resolver *orders.Resolver
	if r.deps.Backend != nil {
		placer = orders.NewBackendPlacer(r.deps.Backend)
		resolver = orders.NewResolver(r.deps.Backend, mocks, r.deps.Placeholders)
	} else {
		placer = orders.NewMockPlacer(mocks)
		resolver = orders.NewResolver(nil, mocks, r.deps.Placeholders)
	}

	slog.DebugContext(ctx, "session hydrated", "session", id, "items", len(c.Items()), "logged_in", users.Current() != nil)
	return &Session{
		ID:       id,
		Cart:     c,
		Users:    users,
		Checkout: checkout.NewController(c, users, placer, r.deps.Checkout),
		Orders:   resolver,
		Mocks:    mocks,
		lastSeen: r.now(),
	}, nil
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions idle past the TTL. A session with a submission in
// flight is kept.
func (r *Registry) evictIdle() {
	cutoff := r.now().Add(-r.deps.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.idleSince().After(cutoff) {
			continue
		}
		if s.Checkout.Status() == domain.CheckoutStatusSubmitting {
			continue
		}
		delete(r.sessions, id)
	}
}

// Close stops the background cleanup and waits for it to finish
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
