package orders

import "errors"

var (
	ErrEmptyCart              = errors.New("cart is empty, nothing to order")
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrMissingPaymentMethod   = errors.New("payment method is required")
	ErrInvalidLine            = errors.New("order line has an invalid quantity")
	ErrNotAuthenticated       = errors.New("login required to place orders")
	ErrOrderNotFound          = errors.New("order not found")
)
