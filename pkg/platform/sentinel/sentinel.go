package sentinel

import "errors"

// Sentinel errors for store facts. The transient and durable store adapters
// return these (optionally wrapped); the authorization service translates them
// into domain errors so callers never learn which fact applied.
//
//   - ErrNotFound: key or row does not exist (or was already consumed)
//   - ErrExpired: artifact past its expiry at read time
//   - ErrAlreadyUsed: conditional update lost (code already redeemed, token already rotated)
//   - ErrUnavailable: backing store unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
