package errors

import "errors"

// OAuth errors surfaced by the token exchange.
var (
	ErrInvalidGrant   = errors.New("invalid or expired authorization code")
	ErrClientMismatch = errors.New("client_id or redirect_uri mismatch")
	ErrPKCEFailure    = errors.New("PKCE verification failed")
)

// Transport errors.
var (
	ErrUnauthorized = errors.New("missing or invalid bearer token")
	ErrCacheMiss    = errors.New("cache miss")
)
