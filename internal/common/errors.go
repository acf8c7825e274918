// Package common defines shared constants and sentinel errors used across
// client and server layers of taskhub. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")

	// Token lifecycle errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountUnconfirmed = errors.New("account not confirmed")

	// Real-time frame handling. A frame that fails with one of these is
	// dropped while the connection stays open.
	ErrValidation  = errors.New("validation failure")
	ErrResolution  = errors.New("resolution failure")
	ErrPersistence = errors.New("persistence failure")
)
