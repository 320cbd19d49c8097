/*
store.go - Persistence interfaces for requests and the employee directory

PURPOSE:

	Defines the interface between the domain logic and storage. Different
	implementations back it with SQLite or in-memory maps.

KEY INTERFACES:

	LeaveStore: Leave request persistence and the queries the lifecycle needs
	Directory:  Employee lookup and balance writes
	Store:      Bundles both plus WithTx for atomic read-modify-write

ATOMICITY CONTRACT:

	Every lifecycle operation (Apply/Approve/Reject/Cancel) runs inside
	WithTx: the balance write, the chain build, and the request write
	commit as one unit or not at all. WithTx also serializes writers, so
	two approvals racing on the same request cannot interleave.

SINGLETON ROLES:

	FindByRole is only meaningful for HR and Director, which the directory
	keeps unique at write time (employees.go validates before Save). A
	missing record is ErrRoleNotFound, a duplicate ErrRoleAmbiguous.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - leave/store:  in-memory store for tests and dev

SEE ALSO:
  - service.go: The only writer of balances and requests
*/
package leave

import "context"

// =============================================================================
// LEAVE STORE
// =============================================================================

type LeaveStore interface {
	// Create persists a new request.
	Create(ctx context.Context, r *Request) error

	// Get returns the request or ErrLeaveNotFound.
	Get(ctx context.Context, id LeaveID) (*Request, error)

	// Update overwrites an existing request identified by its ID.
	Update(ctx context.Context, r *Request) error

	// ByEmployee returns the employee's requests, newest first.
	ByEmployee(ctx context.Context, id EmployeeID) ([]*Request, error)

	// ActiveOverlapping returns requests for the employee with status in
	// {pending, approved, forwarded} whose inclusive range intersects
	// [start, end].
	ActiveOverlapping(ctx context.Context, id EmployeeID, start, end Date) ([]*Request, error)

	// AwaitingApprover returns requests waiting on the given approver:
	// forwarded to them, or currently assigned with no forward in
	// flight. Newest first.
	AwaitingApprover(ctx context.Context, id EmployeeID) ([]*Request, error)

	// ByEmployeesWithStatus returns requests of the given employees in
	// the given status. Used for the team calendar.
	ByEmployeesWithStatus(ctx context.Context, ids []EmployeeID, status Status) ([]*Request, error)

	// All returns every request, newest first.
	All(ctx context.Context) ([]*Request, error)
}

// =============================================================================
// DIRECTORY
// =============================================================================

type Directory interface {
	// FindByID returns the employee or ErrEmployeeNotFound.
	FindByID(ctx context.Context, id EmployeeID) (*Employee, error)

	// FindByRole returns the single employee holding the role.
	// ErrRoleNotFound when none, ErrRoleAmbiguous when several.
	FindByRole(ctx context.Context, role Role) (*Employee, error)

	// FindByManager returns employees reporting to the given manager.
	FindByManager(ctx context.Context, managerID EmployeeID) ([]*Employee, error)

	// FindByRoles returns employees holding any of the given roles.
	FindByRoles(ctx context.Context, roles ...Role) ([]*Employee, error)

	// List returns all employees.
	List(ctx context.Context) ([]*Employee, error)

	// Save inserts or updates an employee record. Invariant checks
	// (role uniqueness, manager existence) happen in the domain layer
	// before Save is reached.
	Save(ctx context.Context, e *Employee) error

	// Delete removes an employee record.
	Delete(ctx context.Context, id EmployeeID) error
}

// =============================================================================
// STORE - Bundled persistence with transactional execution
// =============================================================================

type Store interface {
	Leaves() LeaveStore
	Employees() Directory

	// WithTx executes fn atomically. The Store passed to fn operates
	// within the transaction; returning an error rolls everything back.
	// Implementations serialize writers (single-writer discipline).
	WithTx(ctx context.Context, fn func(Store) error) error
}
