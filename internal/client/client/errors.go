package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotLoggedIn  = errors.New("not logged in")
	// ErrRejected wraps a request the server refused, with its reason.
	ErrRejected = errors.New("request rejected")
)
