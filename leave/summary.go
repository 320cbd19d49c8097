/*
summary.go - Balance utilization reporting

PURPOSE:

	Read-only dashboard view over the balance counters: per-type
	allocation, consumption, remainder, and a utilization ratio computed
	with exact decimal arithmetic so 5/12 reports as 0.4167 rather than a
	binary-float approximation.

SEE ALSO:
  - ledger.go: The counters this file reports on
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY VIEW
// =============================================================================

// TypeSummary is the dashboard row for one leave type.
type TypeSummary struct {
	Allocated   int             `json:"allocated"`
	Used        int             `json:"used"`
	Remaining   int             `json:"remaining"`
	Utilization decimal.Decimal `json:"utilization"`
}

// Summary is the full dashboard: paid types against their allocation,
// LOP as a bare running count.
type Summary struct {
	Casual TypeSummary `json:"casual"`
	Sick   TypeSummary `json:"sick"`
	LOP    int         `json:"lop"`
}

// utilizationScale is the number of decimal places reported.
const utilizationScale = 4

func summarize(allocated, remaining int) TypeSummary {
	used := allocated - remaining
	if used < 0 {
		// Remaining can exceed the allocation after an out-of-band
		// balance adjustment; report zero consumption, not negative.
		used = 0
	}
	utilization := decimal.Zero
	if allocated > 0 {
		utilization = decimal.NewFromInt(int64(used)).
			Div(decimal.NewFromInt(int64(allocated))).
			Round(utilizationScale)
	}
	return TypeSummary{
		Allocated:   allocated,
		Used:        used,
		Remaining:   remaining,
		Utilization: utilization,
	}
}

// GetSummary returns the caller's balance dashboard.
func (s *Service) GetSummary(ctx context.Context, callerID EmployeeID) (Summary, error) {
	employee, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Casual: summarize(DefaultLeaveBalance, employee.CasualLeaveBalance),
		Sick:   summarize(DefaultLeaveBalance, employee.SickLeaveBalance),
		LOP:    employee.LOPCount,
	}, nil
}
