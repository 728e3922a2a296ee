// Package authorizationcode persists single-use authorization codes.
//
// Error contract:
//   - FindUnused returns sentinel.ErrNotFound when the code does not exist or
//     has already been redeemed.
//   - MarkUsed is a compare-and-set on used=false. It returns
//     sentinel.ErrAlreadyUsed when another caller won the race, and
//     sentinel.ErrNotFound when the code does not exist.
//   - Infrastructure failures are returned wrapped with context.
//
// Expiry is never enforced here; callers compare ExpiresAt against their own clock.
package authorizationcode
