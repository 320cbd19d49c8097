/*
Package leave implements the leave-request and approval workflow engine.

PURPOSE:

	This package contains the core domain for employee leave management:
	requesting leave, routing the request through a chain of approvers
	derived from organizational roles, and keeping leave balances in
	lockstep with every lifecycle transition.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: directory record with role, reporting line, and balances
  - Request: a leave request with its status, approval chain, and history
  - ChainLink: one approver step in the precomputed approval chain
  - HistoryEntry: one append-only audit entry per lifecycle transition

DESIGN PRINCIPLES:
 1. Explicit state: Status is an enum driving a transition table, never
    inferred from nullable fields (see transition.go)
 2. Ownership: a Request exclusively owns its Chain and History slices;
    they are typed records, serialized only at the storage boundary
 3. Auditability: every transition appends exactly one HistoryEntry

SEE ALSO:
  - service.go: Lifecycle state machine (Apply/Approve/Reject/Cancel)
  - chain.go: Approval chain construction
  - calendar.go: Chargeable-day calculation
  - ledger.go: Balance debit/credit discipline
*/
package leave

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type LeaveID string

// =============================================================================
// ROLES
// =============================================================================

// Role is the organizational role that drives approval routing.
type Role string

const (
	RoleHR        Role = "hr"
	RoleDirector  Role = "director"
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
	RoleIntern    Role = "intern"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleHR, RoleDirector, RoleManager, RoleDeveloper, RoleIntern:
		return true
	}
	return false
}

// IsApproverRole reports whether employees with this role can act on
// other employees' requests.
func (r Role) IsApproverRole() bool {
	return r == RoleManager || r == RoleDirector || r == RoleHR
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// Type is the kind of leave requested. The three types are mutually
// exclusive per request; a request's type never changes after creation.
type Type string

const (
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"

	// TypeLOP (loss of pay) has no balance cap; consumed days accumulate
	// on Employee.LOPCount instead of depleting a pool.
	TypeLOP Type = "lop"
)

func ValidType(t Type) bool {
	return t == TypeSick || t == TypeCasual || t == TypeLOP
}

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusForwarded Status = "forwarded"
	StatusCancelled Status = "cancelled"
)

// IsActive reports whether a request in this status still blocks
// overlapping applications and awaits or holds approval.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved || s == StatusForwarded
}

// AwaitsAction reports whether some approver's decision is pending.
func (s Status) AwaitsAction() bool {
	return s == StatusPending || s == StatusForwarded
}

// =============================================================================
// EMPLOYEE - Directory record
// =============================================================================

// DefaultLeaveBalance is the yearly allocation for casual and sick leave.
const DefaultLeaveBalance = 12

// Employee is a directory record. Balances are mutated only by the
// lifecycle operations in service.go; profile fields are managed by
// directory administration (employees.go).
type Employee struct {
	ID   EmployeeID
	Name string
	Role Role

	// ReportingManagerID is a weak reference to another Employee.
	// Nil for employees at the top of the reporting graph.
	ReportingManagerID *EmployeeID

	SickLeaveBalance   int
	CasualLeaveBalance int

	// LOPCount accumulates unpaid-leave days taken. It is a running
	// count, not a pool to be depleted.
	LOPCount int

	// PasswordHash is empty until the employee registers. Managed by
	// the auth layer, never by leave logic.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// APPROVAL CHAIN
// =============================================================================

// ChainLink is one approver step. The full chain is built eagerly at
// apply time (chain.go) and each link flips to approved in place as the
// request moves along.
type ChainLink struct {
	ApproverID EmployeeID `json:"approverId"`
	Role       Role       `json:"role"`
	Status     Status     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
}

// =============================================================================
// APPROVAL HISTORY - Append-only audit trail
// =============================================================================

type HistoryAction string

const (
	ActionApplied   HistoryAction = "APPLIED"
	ActionApproved  HistoryAction = "APPROVED"
	ActionForwarded HistoryAction = "FORWARDED"
	ActionRejected  HistoryAction = "REJECTED"
	ActionCancelled HistoryAction = "CANCELLED"
)

// HistoryEntry records who did what when. Entries are only ever
// appended, never reordered or truncated.
type HistoryEntry struct {
	Action    HistoryAction `json:"action"`
	By        EmployeeID    `json:"by"`
	Comment   string        `json:"comment,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// =============================================================================
// LEAVE REQUEST - The aggregate
// =============================================================================

// Request is a leave request. It exclusively owns Chain and History;
// no other entity reads or writes them.
//
// Invariants (enforced by service.go, checked in tests):
//   - CurrentApproverID != nil  iff  Status is pending or forwarded
//   - History is append-only; one entry per lifecycle transition
//   - Duration never exceeds the chargeable-day count of the range and
//     only decreases (partial cancellation), never increases
type Request struct {
	ID         LeaveID
	EmployeeID EmployeeID
	Type       Type
	Status     Status

	// Inclusive calendar-date range.
	StartDate Date
	EndDate   Date

	// Duration is the chargeable-day count, computed once at apply time
	// and decremented when future days are refunded on cancellation.
	Duration int

	Reason string

	// CurrentApproverID is the employee whose action is awaited.
	CurrentApproverID *EmployeeID

	// ForwardedTo mirrors CurrentApproverID during escalation. The two
	// fields are one logical value, both kept for compatibility with
	// older clients.
	ForwardedTo *EmployeeID

	// ApprovedBy is set on final approval.
	ApprovedBy *EmployeeID

	Chain   []ChainLink
	History []HistoryEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AwaitsActionBy reports whether id is the approver whose decision this
// request is waiting on.
func (r *Request) AwaitsActionBy(id EmployeeID) bool {
	if !r.Status.AwaitsAction() {
		return false
	}
	if r.ForwardedTo != nil {
		return *r.ForwardedTo == id
	}
	return r.CurrentApproverID != nil && *r.CurrentApproverID == id
}

// pendingLink returns the first pending chain link belonging to id.
func (r *Request) pendingLink(id EmployeeID) *ChainLink {
	for i := range r.Chain {
		if r.Chain[i].ApproverID == id && r.Chain[i].Status == StatusPending {
			return &r.Chain[i]
		}
	}
	return nil
}

// lastApprover reports whether every chain link is either id's own or
// already approved. When true, id's approval is final.
func (r *Request) lastApprover(id EmployeeID) bool {
	for _, link := range r.Chain {
		if link.ApproverID != id && link.Status != StatusApproved {
			return false
		}
	}
	return true
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] intersect. Closed intervals: a shared boundary day is
// an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && aEnd.AfterOrEqual(bStart)
}
