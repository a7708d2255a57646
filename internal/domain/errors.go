package domain

import "errors"

// Sentinel errors surfaced by the store layer. Handlers map these onto HTTP
// statuses; anything else is a storage failure and becomes a generic 500.
var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrCancelNotAllowed   = errors.New("cancellation not permitted for this actor")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrNotFound           = errors.New("record not found")
)
