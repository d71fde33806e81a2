// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across api/state/session layers.
var (
	// ErrUnauthorized indicates missing or rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates a transport-level failure reaching the platform.
	ErrUnavailable = errors.New("service unavailable, please retry")

	// ErrNoSession indicates no persisted or in-memory session exists.
	ErrNoSession = errors.New("no session (login required)")

	// ErrNotFound indicates the referenced local entity does not exist.
	ErrNotFound = errors.New("not found")
)
