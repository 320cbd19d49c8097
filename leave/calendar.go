/*
calendar.go - Chargeable-day calculation

PURPOSE:

	Converts an inclusive date range into a count of chargeable working
	days. A day is chargeable unless it falls on a weekend or appears in
	the configured holiday set.

REFUND ASYMMETRY:

	RefundableDays (used by Cancel) excludes weekends but NOT holidays,
	matching the historical refund behavior. ChargeableDays excludes both.
	The asymmetry is deliberate compatibility, not an oversight in this
	file; see the cancellation notes in DESIGN.md.

SEE ALSO:
  - service.go: Calls ChargeableDays at apply time, RefundableDays on cancel
*/
package leave

import "sort"

// =============================================================================
// CALENDAR - Static holiday set + day counting
// =============================================================================

// Calendar answers whether a day is chargeable. The holiday set is
// supplied once per process lifetime; Calendar itself is immutable and
// safe for concurrent use.
type Calendar struct {
	holidays map[Date]struct{}
}

func NewCalendar(holidays []Date) *Calendar {
	set := make(map[Date]struct{}, len(holidays))
	for _, d := range holidays {
		set[d] = struct{}{}
	}
	return &Calendar{holidays: set}
}

func (c *Calendar) IsHoliday(d Date) bool {
	_, ok := c.holidays[d]
	return ok
}

// Holidays returns the configured holiday dates in calendar order.
func (c *Calendar) Holidays() []Date {
	out := make([]Date, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ChargeableDays counts the working days in [start, end] inclusive,
// excluding weekends and holidays. Returns ErrZeroDuration when no day
// in the range is chargeable, so an all-holiday application surfaces as
// a rejection rather than a silent zero-day leave. Pure, no I/O.
func (c *Calendar) ChargeableDays(start, end Date) (int, error) {
	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if d.IsWeekend() || c.IsHoliday(d) {
			continue
		}
		count++
	}
	if count == 0 {
		return 0, ErrZeroDuration
	}
	return count, nil
}

// RefundableDays counts the days still refundable when cancelling as of
// today: days from max(today, start) through end, excluding weekends
// only. Never negative.
func RefundableDays(today, start, end Date) int {
	count := 0
	for d := MaxDate(today, start); d.BeforeOrEqual(end); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		count++
	}
	return count
}
