/*
errors.go - Centralized error types for the leave engine

PURPOSE:

	All error types in one place for consistency and discoverability.
	Callers classify errors with the helpers at the bottom instead of
	matching on message text.

ERROR CATEGORIES:
 1. Validation errors - bad input, rejected before any mutation
 2. Conflict errors   - overlap, insufficient balance
 3. Authorization     - wrong caller for approve/reject/cancel
 4. State errors      - illegal lifecycle transition
 5. Configuration     - broken directory invariants (missing manager,
    missing or duplicate HR/Director record)

PROPAGATION POLICY:

	Every error is raised before any partial mutation commits: lifecycle
	operations run inside Store.WithTx, so an error rolls back the balance
	write, the chain build, and the request write as one unit.

SEE ALSO:
  - service.go: Raises these during lifecycle transitions
  - api: Maps categories to HTTP status codes
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOverlap is returned when a new application intersects an
	// existing active request for the same employee.
	ErrOverlap = errors.New("overlapping leave request")

	// ErrZeroDuration is returned when the requested range contains no
	// chargeable day (entirely weekend/holiday).
	ErrZeroDuration = errors.New("requested range has no chargeable days")

	// ErrInsufficientBalance is returned when a casual/sick application
	// exceeds the remaining balance.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrInvalidRange is returned for malformed date ranges or unknown
	// leave types.
	ErrInvalidRange = errors.New("invalid request input")

	// ErrNotAuthorized is returned when the caller is not the awaited
	// approver (approve/reject) or not the owner (cancel).
	ErrNotAuthorized = errors.New("not authorized for this action")

	// ErrInvalidState is returned when the requested transition is not
	// allowed from the request's current status.
	ErrInvalidState = errors.New("invalid state for this action")

	// ErrLeaveNotFound is returned when the referenced request doesn't exist.
	ErrLeaveNotFound = errors.New("leave request not found")

	// ErrEmployeeNotFound is returned when the referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrNoManager is returned when the applicant has no reporting
	// manager configured, so no approval chain can be built.
	ErrNoManager = errors.New("no reporting manager configured")

	// ErrRoleNotFound is returned when a singleton role lookup
	// (HR, Director) finds no record. Directory misconfiguration.
	ErrRoleNotFound = errors.New("no employee with required role")

	// ErrRoleAmbiguous is returned when a singleton role would stop
	// being unique. Enforced at directory-write time.
	ErrRoleAmbiguous = errors.New("role must be held by exactly one employee")

	// ErrApproverUnavailable is returned when the next approver cannot
	// be resolved mid-chain (directory changed since apply time).
	ErrApproverUnavailable = errors.New("next approver unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports how far short the balance falls.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Type       Type
	Available  int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance: available %d, requested %d",
		e.Type, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// OverlapError identifies the conflicting request.
type OverlapError struct {
	EmployeeID EmployeeID
	Start, End Date
	ConflictID LeaveID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("leave %s..%s overlaps existing request %s",
		e.Start, e.End, e.ConflictID)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// TransitionError reports an illegal lifecycle transition.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition leave from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidState }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's fault:
// bad input, conflicts, or an illegal transition.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrZeroDuration) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidState)
}

// IsAuthError reports whether the caller lacks permission.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthorized)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsConfigError reports whether the error reflects a broken directory
// invariant rather than bad user input. Surfaces as a 5xx.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoManager) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrRoleAmbiguous) ||
		errors.Is(err, ErrApproverUnavailable)
}
