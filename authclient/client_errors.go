package authclient

import "errors"

var (
	// ErrConnection covers an unreachable or unexpectedly dropped backend.
	ErrConnection = errors.New("backend connection failed")

	// ErrInvalidCode is returned when the backend rejects the login code.
	ErrInvalidCode = errors.New("invalid login code")

	// ErrSecondFactorRequired signals that code verification succeeded but
	// the account is protected by a cloud password. It drives the single
	// backward transition in the login flow and must be classified by the
	// backend adapter, never by string inspection of another error.
	ErrSecondFactorRequired = errors.New("second factor password required")

	// ErrInvalidPassword is returned when the backend rejects the second
	// factor password.
	ErrInvalidPassword = errors.New("invalid second factor password")
)
