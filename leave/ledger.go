/*
ledger.go - Balance debit/credit discipline

PURPOSE:

	Balances are plain integer counters on the Employee record. This file
	is the only place that mutates them, keeping every debit at apply time
	paired with exactly one credit at reject or cancel (full or partial).

PAIRING:

	apply   sick    -> debit SickLeaveBalance, request auto-approved
	apply   casual  -> debit CasualLeaveBalance, request pending
	apply   lop     -> increment LOPCount (no cap), request pending
	reject  any     -> credit the full duration back
	cancel  any     -> credit only the refundable (future) days back

No balance mutation happens on approval: the debit already happened at
apply time, so approving only moves the request along its chain.

SEE ALSO:
  - service.go: Invokes debit/credit inside WithTx
  - summary.go: Read-only reporting over the same counters
*/
package leave

// =============================================================================
// BALANCE - Read view
// =============================================================================

// Balance is the per-type counter snapshot returned by GetBalance.
type Balance struct {
	Casual int `json:"casual"`
	Sick   int `json:"sick"`
	LOP    int `json:"lop"`
}

func BalanceOf(e *Employee) Balance {
	return Balance{
		Casual: e.CasualLeaveBalance,
		Sick:   e.SickLeaveBalance,
		LOP:    e.LOPCount,
	}
}

// =============================================================================
// DEBIT / CREDIT
// =============================================================================

// debit charges the employee for a new application of the given type
// and duration. The pre-check and the counter write happen together so
// a failed check leaves the record untouched. LOP has no pre-check; it
// is unbounded by definition.
func debit(e *Employee, t Type, days int) error {
	switch t {
	case TypeCasual:
		if e.CasualLeaveBalance < days {
			return &InsufficientBalanceError{
				EmployeeID: e.ID,
				Type:       TypeCasual,
				Available:  e.CasualLeaveBalance,
				Requested:  days,
			}
		}
		e.CasualLeaveBalance -= days
	case TypeSick:
		if e.SickLeaveBalance < days {
			return &InsufficientBalanceError{
				EmployeeID: e.ID,
				Type:       TypeSick,
				Available:  e.SickLeaveBalance,
				Requested:  days,
			}
		}
		e.SickLeaveBalance -= days
	case TypeLOP:
		e.LOPCount += days
	default:
		return ErrInvalidRange
	}
	return nil
}

// credit returns days to the matching counter. Used for the full
// duration on rejection and the refundable remainder on cancellation.
func credit(e *Employee, t Type, days int) {
	if days <= 0 {
		return
	}
	switch t {
	case TypeCasual:
		e.CasualLeaveBalance += days
	case TypeSick:
		e.SickLeaveBalance += days
	case TypeLOP:
		e.LOPCount -= days
	}
}
