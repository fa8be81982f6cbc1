package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultCodeTTL     = 5 * time.Minute
	DefaultMaxAttempts = 3

	// CleanupInterval is how often expired challenges are dropped
	CleanupInterval = 30 * time.Second

	mobileLength = 10
	codeLength   = 6
)

// Sender delivers a one-time code to a mobile number.
type Sender interface {
	Send(ctx context.Context, mobile, code string) error
}

// LogSender writes codes to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, mobile, code string) error {
	slog.InfoContext(ctx, "one-time code issued", "mobile", maskMobile(mobile), "code", code)
	return nil
}

// IdentityProvider turns a verified mobile number into a user record.
type IdentityProvider interface {
	Issue(ctx context.Context, mobile string) (*domain.UserInfo, error)
}

// DevIdentity issues a local test user with a random session token.
type DevIdentity struct{}

func (DevIdentity) Issue(_ context.Context, mobile string) (*domain.UserInfo, error) {
	return &domain.UserInfo{
		ID:    "mobile-" + mobile,
		Name:  "Test User",
		Email: mobile + "@mobile.local",
		Phone: mobile,
		Token: uuid.NewString(),
	}, nil
}

type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
	// DevCode, when set, is issued instead of a random code.
	DevCode string
}

type challenge struct {
	code      string
	attempts  int
	expiresAt time.Time
}

func (c *challenge) isExpired(now time.Time) bool {
	return !now.Before(c.expiresAt)
}

// OTPService runs the mobile one-time-code login flow.
type OTPService struct {
	mu         sync.Mutex
	challenges map[string]*challenge // mobile -> pending challenge

	cfg      OTPConfig
	sender   Sender
	identity IdentityProvider
	now      func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewOTPService(cfg OTPConfig, sender Sender, identity IdentityProvider) *OTPService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCodeTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	s := &OTPService{
		challenges:  make(map[string]*challenge),
		cfg:         cfg,
		sender:      sender,
		identity:    identity,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *OTPService) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.dropExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *OTPService) dropExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for mobile, c := range s.challenges {
		if c.isExpired(now) {
			delete(s.challenges, mobile)
		}
	}
}

// RequestCode issues a code for mobile and returns when it expires. A new
// code is only issued once the previous one has expired.
func (s *OTPService) RequestCode(ctx context.Context, mobile string) (time.Time, error) {
	if !isDigits(mobile, mobileLength) {
		return time.Time{}, ErrInvalidMobile
	}

	code, err := s.newCode()
	if err != nil {
		return time.Time{}, err
	}

	s.mu.Lock()
	now := s.now()
	if c, ok := s.challenges[mobile]; ok && !c.isExpired(now) {
		s.mu.Unlock()
		return time.Time{}, ErrResendTooSoon
	}
	c := &challenge{code: code, expiresAt: now.Add(s.cfg.TTL)}
	s.challenges[mobile] = c
	s.mu.Unlock()

	if err := s.sender.Send(ctx, mobile, code); err != nil {
		s.mu.Lock()
		if s.challenges[mobile] == c {
			delete(s.challenges, mobile)
		}
		s.mu.Unlock()
		return time.Time{}, fmt.Errorf("failed to send code: %w", err)
	}
	return c.expiresAt, nil
}

// Verify checks code against the pending challenge for mobile. The challenge
// is discarded on success and after the last allowed failed attempt.
func (s *OTPService) Verify(ctx context.Context, mobile, code string) (*domain.UserInfo, error) {
	if !isDigits(mobile, mobileLength) {
		return nil, ErrInvalidMobile
	}
	if !isDigits(code, codeLength) {
		return nil, ErrInvalidCode
	}

	s.mu.Lock()
	c, ok := s.challenges[mobile]
	if !ok {
		s.mu.Unlock()
		return nil, ErrChallengeNotFound
	}
	if c.isExpired(s.now()) {
		s.mu.Unlock()
		return nil, ErrChallengeExpired
	}
	if subtle.ConstantTimeCompare([]byte(c.code), []byte(code)) != 1 {
		c.attempts++
		if c.attempts >= s.cfg.MaxAttempts {
			delete(s.challenges, mobile)
			s.mu.Unlock()
			return nil, ErrTooManyAttempts
		}
		s.mu.Unlock()
		return nil, ErrCodeMismatch
	}
	delete(s.challenges, mobile)
	s.mu.Unlock()

	user, err := s.identity.Issue(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to issue identity: %w", err)
	}
	return user, nil
}

// Close stops the background cleanup and waits for it to finish
func (s *OTPService) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}

func (s *OTPService) newCode() (string, error) {
	if s.cfg.DevCode != "" {
		return s.cfg.DevCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func maskMobile(m string) string {
	if len(m) < 4 {
		return m
	}
	return "******" + m[len(m)-4:]
}
