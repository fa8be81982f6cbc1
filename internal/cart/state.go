package cart

import (
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
)

var (
	ErrLineNotFound       = errors.New("cart line not found")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrInvalidLine        = errors.New("invalid cart line")
)

// State is the cart value. Transitions return a new State and never modify
// the receiver, so a State can be shared freely once built.
type State struct {
	Items           []domain.LineItem      `json:"cartItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
}

func EmptyState() State {
	return State{
		Items:         []domain.LineItem{},
		PaymentMethod: domain.DefaultPaymentMethod,
	}
}

func checkQuantity(qty, ceiling int) error {
	if qty < 1 || qty > ceiling {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrQuantityOutOfRange, qty, ceiling)
	}
	return nil
}

// Add puts item into the cart. A line with the same product, size and color is
// replaced wholesale by item; quantities are not summed.
func (s State) Add(item domain.LineItem) (State, error) {
	if item.ProductID == "" {
		return s, fmt.Errorf("%w: product id is required", ErrInvalidLine)
	}
	if err := checkQuantity(item.Qty, item.CountInStock); err != nil {
		return s, err
	}

	items := make([]domain.LineItem, 0, len(s.Items)+1)
	replaced := false
	for _, existing := range s.Items {
		if existing.Key() == item.Key() {
			items = append(items, item)
			replaced = true
			continue
		}
		items = append(items, existing)
	}
	if !replaced {
		items = append(items, item)
	}

	s.Items = items
	return s, nil
}

// Remove drops the line matching key. Removing an absent line is a no-op.
func (s State) Remove(key domain.LineKey) State {
	items := make([]domain.LineItem, 0, len(s.Items))
	for _, existing := range s.Items {
		if existing.Key() == key {
			continue
		}
		items = append(items, existing)
	}
	s.Items = items
	return s
}

// UpdateQuantity checks qty against the stock ceiling captured when the line
// was added.
func (s State) UpdateQuantity(key domain.LineKey, qty int) (State, error) {
	idx := s.indexOf(key)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	if err := checkQuantity(qty, s.Items[idx].CountInStock); err != nil {
		return s, err
	}

	items := append([]domain.LineItem(nil), s.Items...)
	items[idx].Qty = qty
	s.Items = items
	return s, nil
}

func (s State) WithShippingAddress(addr domain.ShippingAddress) State {
	s.ShippingAddress = addr
	return s
}

func (s State) WithPaymentMethod(m domain.PaymentMethod) State {
	s.PaymentMethod = domain.NormalizePaymentMethod(m)
	return s
}

// ClearItems empties the line items; address and payment tag stay.
func (s State) ClearItems() State {
	s.Items = []domain.LineItem{}
	return s
}

// WithoutOrdered drops every line that equals one of ordered.
func (s State) WithoutOrdered(ordered []domain.LineItem) State {
	kept := make([]domain.LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		if !containsLine(ordered, it) {
			kept = append(kept, it)
		}
	}
	s.Items = kept
	return s
}

func containsLine(lines []domain.LineItem, it domain.LineItem) bool {
	for _, l := range lines {
		if l == it {
			return true
		}
	}
	return false
}

func (s State) Line(key domain.LineKey) (domain.LineItem, bool) {
	if idx := s.indexOf(key); idx >= 0 {
		return s.Items[idx], true
	}
	return domain.LineItem{}, false
}

func (s State) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Qty
	}
	return n
}

func (s State) indexOf(key domain.LineKey) int {
	for i, it := range s.Items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}
