/*
errors.go - Centralized error types for the rent engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these to status codes without knowing internals.

ERROR CATEGORIES:
  1. Validation errors - Rejected before any write (no partial mutation)
  2. Not-found errors - Only for mutations; reads treat absence as empty

USAGE:
  if errors.Is(err, rent.ErrDuplicateTenantName) {
      // surface the collision to the admin
  }

SEE ALSO:
  - directory.go: Produces these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package rent

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateTenantName is returned when creating or renaming a tenant
	// would collide with an existing name (case-insensitive).
	ErrDuplicateTenantName = errors.New("duplicate tenant name")

	// ErrEmptyTenantName is returned when a tenant name is blank after trimming.
	ErrEmptyTenantName = errors.New("tenant name is required")

	// ErrNegativeRent is returned when a rent amount is negative.
	// Zero is allowed: a zero-rent tenant is always considered paid.
	ErrNegativeRent = errors.New("rent amount must not be negative")

	// ErrNegativePayment is returned when recording a non-positive payment.
	ErrNegativePayment = errors.New("payment amount must be positive")

	// ErrInvalidWindow is returned when a billing window violates
	// 1 <= start <= end <= 31.
	ErrInvalidWindow = errors.New("invalid billing window")

	// ErrTenantNotFound is returned when mutating a tenant that does not
	// exist. Read paths never return this; absence yields empty collections.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrEmptyMessage is returned when a manual send has no message body.
	ErrEmptyMessage = errors.New("message is required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateNameError reports which name collided, for display to the admin.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a tenant with the name %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateTenantName
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateTenantName) ||
		errors.Is(err, ErrEmptyTenantName) ||
		errors.Is(err, ErrNegativeRent) ||
		errors.Is(err, ErrNegativePayment) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrEmptyMessage)
}

// IsNotFound returns true if the error indicates a missing tenant.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}
