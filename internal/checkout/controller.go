package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/orders"
)

// LoginRedirect is where an unauthenticated shopper is sent before checkout.
const LoginRedirect = "/mobile-login?redirect=checkout"

type CartStore interface {
	State() cart.State
	Snapshot() (cart.State, domain.Prices)
	SetShippingAddress(ctx context.Context, addr domain.ShippingAddress) error
	ClearOrdered(ctx context.Context, ordered []domain.LineItem) error
}

type UserSource interface {
	Current() *domain.UserInfo
	Clear(ctx context.Context) error
}

type Options struct {
	// AutofillAddress saves a placeholder address built from the user record
	// when checkout starts without one.
	AutofillAddress bool
	// SubmitTimeout bounds one order submission. Zero means no limit.
	SubmitTimeout time.Duration
	Publisher     events.Publisher
}

// Snapshot is the externally visible checkout state. Error is reported once.
type Snapshot struct {
	Status           domain.CheckoutStatus `json:"status"`
	Order            *domain.Order         `json:"order,omitempty"`
	Error            string                `json:"error,omitempty"`
	AddressAutofill  bool                  `json:"addressAutofilled,omitempty"`
	RedirectTo       string                `json:"redirectTo,omitempty"`
	SubmissionFailed bool                  `json:"submissionFailed,omitempty"`
}

// Controller drives the checkout of one client session.
type Controller struct {
	mu        sync.Mutex
	status    domain.CheckoutStatus
	lastOrder *domain.Order
	lastErr   string
	autofill  bool
	failed    bool

	cart   CartStore
	users  UserSource
	placer orders.Placer
	opts   Options
	now    func() time.Time
}

func NewController(c CartStore, users UserSource, placer orders.Placer, opts Options) *Controller {
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	return &Controller{
		status: domain.CheckoutStatusNotAuthenticated,
		cart:   c,
		users:  users,
		placer: placer,
		opts:   opts,
		now:    time.Now,
	}
}

// Begin enters checkout and settles on the address step.
func (c *Controller) Begin(ctx context.Context) (domain.CheckoutStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == domain.CheckoutStatusSubmitting {
		return c.status, ErrSubmissionInFlight
	}

	user := c.users.Current()
	if !user.Authenticated() {
		c.moveTo(domain.CheckoutStatusNotAuthenticated)
		return c.status, ErrNotAuthenticated
	}

	state := c.cart.State()
	if len(state.Items) == 0 {
		return c.status, orders.ErrEmptyCart
	}

	if !state.ShippingAddress.IsZero() {
		return c.advance(domain.CheckoutStatusAddressPresent)
	}

	if !c.opts.AutofillAddress {
		return c.advance(domain.CheckoutStatusAddressMissing)
	}

	if err := c.transition(domain.CheckoutStatusAddressMissing); err != nil {
		return c.status, err
	}
	if err := c.cart.SetShippingAddress(ctx, PlaceholderAddress(user)); err != nil {
		return c.status, fmt.Errorf("failed to save placeholder address: %w", err)
	}
	slog.WarnContext(ctx, "placeholder shipping address applied", "user", user.ID)
	c.autofill = true
	return c.advance(domain.CheckoutStatusAddressPresent)
}

// SaveAddress stores a shopper-entered address. Every missing field is
// reported at once and nothing is saved.
func (c *Controller) SaveAddress(ctx context.Context, addr domain.ShippingAddress) (domain.CheckoutStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == domain.CheckoutStatusSubmitting {
		return c.status, ErrSubmissionInFlight
	}
	if !c.users.Current().Authenticated() {
		c.moveTo(domain.CheckoutStatusNotAuthenticated)
		return c.status, ErrNotAuthenticated
	}
	if err := addr.Validate(); err != nil {
		return c.status, err
	}
	if err := c.cart.SetShippingAddress(ctx, addr); err != nil {
		return c.status, err
	}
	c.autofill = false
	return c.advance(domain.CheckoutStatusAddressPresent)
}

// OpenPayment moves from the address step to the payment step.
func (c *Controller) OpenPayment(ctx context.Context) (domain.CheckoutStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == domain.CheckoutStatusSubmitting {
		return c.status, ErrSubmissionInFlight
	}
	if !c.users.Current().Authenticated() {
		c.moveTo(domain.CheckoutStatusNotAuthenticated)
		return c.status, ErrNotAuthenticated
	}

	state := c.cart.State()
	if len(state.Items) == 0 {
		return c.status, orders.ErrEmptyCart
	}
	if state.ShippingAddress.IsZero() {
		return c.status, ErrAddressMissing
	}
	if err := state.ShippingAddress.Validate(); err != nil {
		return c.status, err
	}
	return c.advance(domain.CheckoutStatusPaymentPending)
}

// Confirm submits the order. Only one submission runs at a time; the ordered
// lines leave the cart only after the order was accepted.
func (c *Controller) Confirm(ctx context.Context) (*domain.Order, error) {
	c.mu.Lock()
	if c.status == domain.CheckoutStatusSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	user := c.users.Current()
	if !user.Authenticated() {
		c.moveTo(domain.CheckoutStatusNotAuthenticated)
		c.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if c.status != domain.CheckoutStatusPaymentPending {
		status := c.status
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot confirm from %s", ErrIllegalTransition, status)
	}

	state, prices := c.cart.Snapshot()
	draft := domain.OrderDraft{
		OrderItems:      state.Items,
		ShippingAddress: state.ShippingAddress,
		PaymentMethod:   state.PaymentMethod,
		Prices:          prices,
	}
	if err := orders.ValidateDraft(draft); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.moveTo(domain.CheckoutStatusSubmitting)
	c.failed = false
	c.mu.Unlock()

	submitCtx := ctx
	if c.opts.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, c.opts.SubmitTimeout)
		defer cancel()
	}
	order, err := c.placer.Place(submitCtx, user, draft)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.moveTo(domain.CheckoutStatusFailed)
		c.lastErr = err.Error()
		c.failed = true
		slog.ErrorContext(ctx, "checkout submission failed", "user", user.ID, "error", err)
		c.moveTo(domain.CheckoutStatusPaymentPending)

		// the stored token was refused: log the shopper out and send them to login
		if errors.Is(err, backend.ErrUnauthorized) {
			if clearErr := c.users.Clear(ctx); clearErr != nil {
				slog.ErrorContext(ctx, "failed to drop rejected user", "user", user.ID, "error", clearErr)
			}
			c.moveTo(domain.CheckoutStatusNotAuthenticated)
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	c.moveTo(domain.CheckoutStatusSubmitted)
	c.lastOrder = order
	c.autofill = false
	slog.InfoContext(ctx, "order placed", "order_id", order.ID, "user", user.ID, "total", order.TotalPrice, "mock", order.Mock)

	if err := c.cart.ClearOrdered(ctx, draft.OrderItems); err != nil {
		slog.ErrorContext(ctx, "failed to clear cart after order", "order_id", order.ID, "error", err)
	}
	if err := c.opts.Publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(user, order, c.now())); err != nil {
		slog.ErrorContext(ctx, "failed to publish order event", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// Snapshot reports the current state. The last submission error is cleared
// once it has been returned.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Status:           c.status,
		Order:            c.lastOrder,
		Error:            c.lastErr,
		AddressAutofill:  c.autofill,
		SubmissionFailed: c.failed,
	}
	if c.status == domain.CheckoutStatusNotAuthenticated {
		s.RedirectTo = LoginRedirect
	}
	c.lastErr = ""
	c.failed = false
	return s
}

func (c *Controller) Status() domain.CheckoutStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// transition moves to next when the status table allows it. Staying in the
// same status is always allowed.
func (c *Controller) transition(next domain.CheckoutStatus) error {
	if c.status == next {
		return nil
	}
	if !c.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.status, next)
	}
	c.status = next
	return nil
}

// moveTo is transition for moves the controller itself guarantees are legal.
// advance transitions and reports the status it settled on.
func (c *Controller) advance(next domain.CheckoutStatus) (domain.CheckoutStatus, error) {
	err := c.transition(next)
	return c.status, err
}

func (c *Controller) moveTo(next domain.CheckoutStatus) {
	if err := c.transition(next); err != nil {
		slog.Error("unexpected checkout transition", "error", err)
		c.status = next
	}
}

// PlaceholderAddress is the labelled development address used when
// autofill is enabled.
func PlaceholderAddress(user *domain.UserInfo) domain.ShippingAddress {
	addr := domain.ShippingAddress{
		FullName:   "Test User",
		Address:    "123 Test Street, Test Area",
		City:       "Mumbai",
		PostalCode: "400001",
		Country:    "India",
		Phone:      "9876543210",
	}
	if user != nil && user.Name != "" {
		addr.FullName = user.Name
	}
	if user != nil && user.Phone != "" {
		addr.Phone = user.Phone
	}
	return addr
}

// IsValidation reports whether err is a local validation failure that should
// block progression without counting as a failed submission.
func IsValidation(err error) bool {
	var vErr *domain.ValidationError
	return errors.As(err, &vErr) ||
		errors.Is(err, orders.ErrEmptyCart) ||
		errors.Is(err, orders.ErrMissingShippingAddress) ||
		errors.Is(err, orders.ErrMissingPaymentMethod) ||
		errors.Is(err, orders.ErrInvalidLine) ||
		errors.Is(err, ErrAddressMissing)
}
