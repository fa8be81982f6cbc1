package domain

type CheckoutStatus string

const (
	CheckoutStatusNotAuthenticated CheckoutStatus = "NOT_AUTHENTICATED"
	CheckoutStatusAddressMissing   CheckoutStatus = "ADDRESS_MISSING"
	CheckoutStatusAddressPresent   CheckoutStatus = "ADDRESS_PRESENT"
	CheckoutStatusPaymentPending   CheckoutStatus = "PAYMENT_PENDING"
	CheckoutStatusSubmitting       CheckoutStatus = "SUBMITTING"
	CheckoutStatusSubmitted        CheckoutStatus = "SUBMITTED"
	CheckoutStatusFailed           CheckoutStatus = "FAILED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusNotAuthenticated: {CheckoutStatusAddressMissing, CheckoutStatusAddressPresent},
	CheckoutStatusAddressMissing:   {CheckoutStatusAddressPresent, CheckoutStatusNotAuthenticated},
	CheckoutStatusAddressPresent:   {CheckoutStatusPaymentPending, CheckoutStatusAddressMissing, CheckoutStatusNotAuthenticated},
	CheckoutStatusPaymentPending:   {CheckoutStatusSubmitting, CheckoutStatusAddressPresent, CheckoutStatusAddressMissing, CheckoutStatusNotAuthenticated},
	CheckoutStatusSubmitting:       {CheckoutStatusSubmitted, CheckoutStatusFailed},
	CheckoutStatusFailed:           {CheckoutStatusPaymentPending},
	CheckoutStatusSubmitted:        {CheckoutStatusNotAuthenticated, CheckoutStatusAddressMissing, CheckoutStatusAddressPresent},
}

// CanTransitionTo reports whether the checkout flow may move from s to next.
func (s CheckoutStatus) CanTransitionTo(next CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSubmitted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
