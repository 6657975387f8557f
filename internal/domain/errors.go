package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when a target URL cannot be normalised
	ErrInvalidURL = errors.New("URL invalide")

	// ErrFetchFailed is returned when a page could not be retrieved
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrBrowserUnavailable is returned when the headless pass is disabled
	ErrBrowserUnavailable = errors.New("headless browser unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserLimitReached   = errors.New("free account limit reached")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNameExists = errors.New("a project with this name already exists")
	ErrQuotaExceeded     = errors.New("project quota exceeded")
)

// ValidationError lists every rejected field of a request
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Details)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// QuotaError carries the usage that tripped ErrQuotaExceeded
type QuotaError struct {
	Quota Quota
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("project quota exceeded (%d/%d)", e.Quota.Used, e.Quota.Limit)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }
