/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Period errors - Employment windows the engine cannot compute
  2. Validation errors - Missing or malformed profile/configuration fields
  3. Ledger errors - Carry state applied out of calendar order

USAGE:
  if errors.Is(err, generic.ErrCrossYearPeriod) {
      // ask the caller to split the employment window per year
  }

SEE ALSO:
  - period.go: Returns PeriodError
  - payroll/validate.go: Returns FieldError
  - batch/ledger.go: Returns ErrCycleOutOfOrder
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCrossYearPeriod is returned when employment start and end dates fall
	// in different calendar years. Tax is computed per calendar year.
	ErrCrossYearPeriod = errors.New("employment period crosses a calendar year")

	// ErrMissingDate is returned when a period has no start or end date.
	ErrMissingDate = errors.New("employment period is missing a date")

	// ErrInvalidPeriod is returned when a working-month count is out of range.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidProfile is returned when a compensation profile fails validation.
	ErrInvalidProfile = errors.New("invalid compensation profile")

	// ErrInvalidConfiguration is returned when a rate configuration fails validation.
	ErrInvalidConfiguration = errors.New("invalid rate configuration")

	// ErrCycleOutOfOrder is returned when payroll cycles for one employee are
	// recorded out of calendar order.
	ErrCycleOutOfOrder = errors.New("payroll cycle out of order")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PeriodError provides details about an employment window that was rejected.
type PeriodError struct {
	Start TimePoint
	End   TimePoint
	Err   error
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("%v: %s - %s", e.Err, e.Start, e.End)
}

func (e *PeriodError) Unwrap() error {
	return e.Err
}

// FieldError lists the fields that failed validation on a profile or
// configuration. Kind is ErrInvalidProfile or ErrInvalidConfiguration.
type FieldError struct {
	Kind   error
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(e.Fields, "; "))
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError returns true if the error is due to invalid caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrCrossYearPeriod) ||
		errors.Is(err, ErrMissingDate) ||
		errors.Is(err, ErrInvalidPeriod)
}
