package checkout

import "errors"

var (
	ErrNotAuthenticated   = errors.New("login required to check out")
	ErrAddressMissing     = errors.New("shipping address is required")
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrSubmissionFailed   = errors.New("order submission failed")
	ErrIllegalTransition  = errors.New("illegal transition of checkout status")
)
