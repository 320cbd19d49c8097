/*
service.go - Leave lifecycle state machine

PURPOSE:

	Owns every status transition of a leave request:

	  apply -> (auto-approve | pending) -> forwarded* -> approved/rejected
	                                                  -> cancelled

	Each operation is a bounded read-modify-write executed inside
	Store.WithTx, so the balance write, the chain mutation, and the
	request write commit as one unit or roll back together.

APPLY PIPELINE:
 1. Overlap guard against the applicant's active requests
 2. Chargeable-day calculation (calendar.go)
 3. Balance pre-check + debit (ledger.go) - one step, no partial state
 4. Sick leave and HR applicants auto-approve; no chain is built for an
    auto-approved request, keeping the status/approver co-constraint
 5. Otherwise the full approval chain is built eagerly (chain.go) and
    the first link becomes the current approver
 6. One APPLIED history entry; persist

APPROVE FINALITY:

	An approval is final when the caller is HR, or when every other chain
	link is already approved. Otherwise the request forwards to the next
	approver; if the directory can no longer resolve one (changed since
	apply time), the operation fails with ErrApproverUnavailable and
	nothing is committed.

SEE ALSO:
  - transition.go: The legal-transition table every move goes through
  - employees.go: Directory management on the same Service
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service is the leave workflow engine. All lifecycle operations take
// the acting caller's id; the HTTP layer resolves that id from the
// session token and is trusted here.
type Service struct {
	Store    Store
	Calendar *Calendar

	// Now and NewID are swappable for tests.
	Now   func() time.Time
	NewID func() LeaveID
}

func NewService(store Store, calendar *Calendar) *Service {
	return &Service{
		Store:    store,
		Calendar: calendar,
		Now:      time.Now,
		NewID:    func() LeaveID { return LeaveID(uuid.NewString()) },
	}
}

func (s *Service) today() Date { return DateOf(s.Now()) }

// =============================================================================
// APPLY
// =============================================================================

// ApplyInput carries the applicant-supplied fields of a new request.
type ApplyInput struct {
	StartDate Date
	EndDate   Date
	Reason    string
	Type      Type
}

// Apply creates a new leave request for the caller.
func (s *Service) Apply(ctx context.Context, callerID EmployeeID, in ApplyInput) (*Request, error) {
	if !ValidType(in.Type) || in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidRange
	}

	var created *Request
	err := s.Store.WithTx(ctx, func(tx Store) error {
		// 1. Overlap guard
		overlapping, err := tx.Leaves().ActiveOverlapping(ctx, callerID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return &OverlapError{
				EmployeeID: callerID,
				Start:      in.StartDate,
				End:        in.EndDate,
				ConflictID: overlapping[0].ID,
			}
		}

		// 2. Chargeable duration
		duration, err := s.Calendar.ChargeableDays(in.StartDate, in.EndDate)
		if err != nil {
			return err
		}

		employee, err := tx.Employees().FindByID(ctx, callerID)
		if err != nil {
			return err
		}

		// 3+4. Pre-check and debit together; sick leave auto-approves
		if err := debit(employee, in.Type, duration); err != nil {
			return err
		}

		now := s.Now()
		status := StatusPending
		if in.Type == TypeSick {
			status = StatusApproved
		}

		// 5. HR applicants are auto-approved regardless of type
		if employee.Role == RoleHR {
			status = StatusApproved
		}

		req := &Request{
			ID:         s.NewID(),
			EmployeeID: callerID,
			Type:       in.Type,
			Status:     status,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			Duration:   duration,
			Reason:     in.Reason,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		// 6. Auto-approved requests never get a chain or an awaited
		// approver; everything else routes through the full chain.
		if status == StatusPending {
			chain, err := (&ChainBuilder{Directory: tx.Employees()}).Build(ctx, employee, duration, now)
			if err != nil {
				return err
			}
			req.Chain = chain
			if len(chain) > 0 {
				first := chain[0].ApproverID
				req.CurrentApproverID = &first
			}
		}

		// 7. Audit entry, then persist employee and request together
		req.History = append(req.History, HistoryEntry{
			Action:    ActionApplied,
			By:        callerID,
			Timestamp: now,
		})

		employee.UpdatedAt = now
		if err := tx.Employees().Save(ctx, employee); err != nil {
			return err
		}
		if err := tx.Leaves().Create(ctx, req); err != nil {
			return err
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// =============================================================================
// APPROVE
// =============================================================================

// Approve records the caller's approval on the request. Intermediate
// approvals forward the request along its chain; the final one approves
// it. Balances are untouched: the debit happened at apply time.
func (s *Service) Approve(ctx context.Context, callerID EmployeeID, leaveID LeaveID, comment string) (*Request, error) {
	var updated *Request
	err := s.Store.WithTx(ctx, func(tx Store) error {
		req, err := tx.Leaves().Get(ctx, leaveID)
		if err != nil {
			return err
		}
		if !req.AwaitsActionBy(callerID) {
			return ErrNotAuthorized
		}

		caller, err := tx.Employees().FindByID(ctx, callerID)
		if err != nil {
			return err
		}

		now := s.Now()
		if link := req.pendingLink(callerID); link != nil {
			link.Status = StatusApproved
			link.Timestamp = now
		}

		if caller.Role == RoleHR || req.lastApprover(callerID) {
			// Final approval
			if err := req.transition(StatusApproved); err != nil {
				return err
			}
			req.CurrentApproverID = nil
			req.ForwardedTo = nil
			req.ApprovedBy = &caller.ID
			req.History = append(req.History, HistoryEntry{
				Action:    ActionApproved,
				By:        callerID,
				Comment:   comment,
				Timestamp: now,
			})
		} else {
			applicant, err := tx.Employees().FindByID(ctx, req.EmployeeID)
			if err != nil {
				return err
			}
			next, err := (&ChainBuilder{Directory: tx.Employees()}).NextApprover(ctx, applicant, req.Duration, caller)
			if err != nil {
				return err
			}
			if next == nil {
				// The eagerly-built chain says more approvals remain,
				// but the directory can no longer resolve the next one.
				return ErrApproverUnavailable
			}
			if err := req.transition(StatusForwarded); err != nil {
				return err
			}
			nextID := next.ID
			req.CurrentApproverID = &nextID
			req.ForwardedTo = &nextID
			req.History = append(req.History, HistoryEntry{
				Action:    ActionForwarded,
				By:        callerID,
				Comment:   comment,
				Timestamp: now,
			})
		}

		req.UpdatedAt = now
		if err := tx.Leaves().Update(ctx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// =============================================================================
// REJECT
// =============================================================================

// Reject refuses the request and refunds the full duration to the
// matching balance.
func (s *Service) Reject(ctx context.Context, callerID EmployeeID, leaveID LeaveID, comment string) (*Request, error) {
	var updated *Request
	err := s.Store.WithTx(ctx, func(tx Store) error {
		req, err := tx.Leaves().Get(ctx, leaveID)
		if err != nil {
			return err
		}
		if !req.AwaitsActionBy(callerID) {
			return ErrNotAuthorized
		}
		if err := req.transition(StatusRejected); err != nil {
			return err
		}

		employee, err := tx.Employees().FindByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		credit(employee, req.Type, req.Duration)

		now := s.Now()
		req.CurrentApproverID = nil
		req.ForwardedTo = nil
		req.History = append(req.History, HistoryEntry{
			Action:    ActionRejected,
			By:        callerID,
			Comment:   comment,
			Timestamp: now,
		})
		req.UpdatedAt = now

		employee.UpdatedAt = now
		if err := tx.Employees().Save(ctx, employee); err != nil {
			return err
		}
		if err := tx.Leaves().Update(ctx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel withdraws the caller's own request. Only days on or after
// today are refunded; days already consumed stay charged, and the
// recorded duration drops by the refunded count.
func (s *Service) Cancel(ctx context.Context, callerID EmployeeID, leaveID LeaveID, comment string) (*Request, error) {
	var updated *Request
	err := s.Store.WithTx(ctx, func(tx Store) error {
		req, err := tx.Leaves().Get(ctx, leaveID)
		if err != nil {
			return err
		}
		if req.EmployeeID != callerID {
			return ErrNotAuthorized
		}
		if err := req.transition(StatusCancelled); err != nil {
			return err
		}

		employee, err := tx.Employees().FindByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		refundable := RefundableDays(s.today(), req.StartDate, req.EndDate)
		if refundable > req.Duration {
			refundable = req.Duration
		}
		credit(employee, req.Type, refundable)
		req.Duration -= refundable

		now := s.Now()
		req.CurrentApproverID = nil
		req.ForwardedTo = nil
		req.History = append(req.History, HistoryEntry{
			Action:    ActionCancelled,
			By:        callerID,
			Comment:   comment,
			Timestamp: now,
		})
		req.UpdatedAt = now

		employee.UpdatedAt = now
		if err := tx.Employees().Save(ctx, employee); err != nil {
			return err
		}
		if err := tx.Leaves().Update(ctx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// GetBalance returns the caller's balance counters.
func (s *Service) GetBalance(ctx context.Context, callerID EmployeeID) (Balance, error) {
	employee, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return Balance{}, err
	}
	return BalanceOf(employee), nil
}

// GetPendingApprovals returns the requests awaiting the caller's action.
func (s *Service) GetPendingApprovals(ctx context.Context, callerID EmployeeID) ([]*Request, error) {
	return s.Store.Leaves().AwaitingApprover(ctx, callerID)
}

// GetMyLeaves returns the caller's leave history, newest first.
func (s *Service) GetMyLeaves(ctx context.Context, callerID EmployeeID) ([]*Request, error) {
	return s.Store.Leaves().ByEmployee(ctx, callerID)
}

// GetTeamLeaves returns the leaves of the caller's direct reports.
func (s *Service) GetTeamLeaves(ctx context.Context, callerID EmployeeID) ([]*Request, error) {
	reports, err := s.Store.Employees().FindByManager(ctx, callerID)
	if err != nil {
		return nil, err
	}
	var out []*Request
	for _, member := range reports {
		leaves, err := s.Store.Leaves().ByEmployee(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, leaves...)
	}
	return out, nil
}

// GetAllLeaves returns every request. HR and Director only.
func (s *Service) GetAllLeaves(ctx context.Context, callerID EmployeeID) ([]*Request, error) {
	caller, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != RoleHR && caller.Role != RoleDirector {
		return nil, ErrNotAuthorized
	}
	return s.Store.Leaves().All(ctx)
}

// GetLeaveStatus returns the status of a request the caller may view:
// the owner, the awaited approver, or HR/Director.
func (s *Service) GetLeaveStatus(ctx context.Context, callerID EmployeeID, leaveID LeaveID) (Status, error) {
	req, err := s.Store.Leaves().Get(ctx, leaveID)
	if err != nil {
		return "", err
	}
	if req.EmployeeID == callerID || req.AwaitsActionBy(callerID) {
		return req.Status, nil
	}
	caller, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return "", err
	}
	if caller.Role == RoleHR || caller.Role == RoleDirector {
		return req.Status, nil
	}
	return "", ErrNotAuthorized
}

// TeamCalendarEntry pairs a team member with their approved leaves.
type TeamCalendarEntry struct {
	Employee *Employee
	Leaves   []*Request
}

// GetTeamCalendar returns the caller's peers (same manager) and direct
// reports, each with their approved leaves.
func (s *Service) GetTeamCalendar(ctx context.Context, callerID EmployeeID) ([]TeamCalendarEntry, error) {
	employee, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[EmployeeID]bool)
	var team []*Employee
	if employee.ReportingManagerID != nil {
		peers, err := s.Store.Employees().FindByManager(ctx, *employee.ReportingManagerID)
		if err != nil {
			return nil, err
		}
		for _, p := range peers {
			if !seen[p.ID] {
				seen[p.ID] = true
				team = append(team, p)
			}
		}
	}
	reports, err := s.Store.Employees().FindByManager(ctx, callerID)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		if !seen[r.ID] {
			seen[r.ID] = true
			team = append(team, r)
		}
	}

	ids := make([]EmployeeID, len(team))
	for i, m := range team {
		ids[i] = m.ID
	}
	approved, err := s.Store.Leaves().ByEmployeesWithStatus(ctx, ids, StatusApproved)
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[EmployeeID][]*Request)
	for _, l := range approved {
		byEmployee[l.EmployeeID] = append(byEmployee[l.EmployeeID], l)
	}

	entries := make([]TeamCalendarEntry, len(team))
	for i, m := range team {
		entries[i] = TeamCalendarEntry{Employee: m, Leaves: byEmployee[m.ID]}
	}
	return entries, nil
}

// Holidays returns the configured holiday dates.
func (s *Service) Holidays() []Date {
	return s.Calendar.Holidays()
}
