// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Platform API errors.
	ErrPlatformConnection = errors.New("platform connection failed")
	ErrPlatformRateLimit  = errors.New("platform rate limit exceeded")
	ErrNoActiveConnection = errors.New("no active platform connection")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
