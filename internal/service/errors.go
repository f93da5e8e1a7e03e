package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP statuses;
// everything else surfaces as a generic bad-request/internal error.
var (
	// ErrNotFound covers entities that do not exist or sit outside the
	// caller's organization scope. The two cases are deliberately
	// indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrInvalidToken covers an absent, wrong, or already-consumed approval
	// token. No further detail is revealed to prevent enumeration.
	ErrInvalidToken = errors.New("invalid token")
)
