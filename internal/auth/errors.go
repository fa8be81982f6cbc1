package auth

import "errors"

var (
	ErrInvalidMobile     = errors.New("mobile number must be exactly 10 digits")
	ErrInvalidCode       = errors.New("code must be exactly 6 digits")
	ErrChallengeNotFound = errors.New("no code was requested for this number")
	ErrChallengeExpired  = errors.New("code has expired")
	ErrCodeMismatch      = errors.New("code does not match")
	ErrTooManyAttempts   = errors.New("maximum code attempts exceeded")
	ErrResendTooSoon     = errors.New("a code was already sent and has not expired")
)
