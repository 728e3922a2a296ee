// Package refreshtoken persists refresh grants.
//
// Error contract:
//   - Find returns sentinel.ErrNotFound when no row carries the token value.
//   - Rotate replaces the token value in place, keyed on the old value; it
//     returns sentinel.ErrNotFound when the old value is gone (revoked, or
//     already rotated by a concurrent caller).
//   - DeleteByToken is idempotent.
//   - Infrastructure failures are returned wrapped with context.
package refreshtoken
