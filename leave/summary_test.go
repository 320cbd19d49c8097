package leave_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandhu-6/leave-management-system/leave"
)

func TestGetSummary_ReportsUtilizationExactly(t *testing.T) {
	// GIVEN: A developer who has consumed 2 casual days and 5 sick days
	// WHEN: Fetching the balance summary
	// THEN: Used/remaining reconcile with the allocation and the ratio is
	//       reported to four decimal places

	svc, mem := newTestService(t)
	ctx := context.Background()

	dev := mustEmployee(t, mem, "dev-1")
	dev.CasualLeaveBalance = 10
	dev.SickLeaveBalance = 7
	dev.LOPCount = 3
	require.NoError(t, mem.Employees().Save(ctx, dev))

	summary, err := svc.GetSummary(ctx, "dev-1")
	require.NoError(t, err)

	assert.Equal(t, 12, summary.Casual.Allocated)
	assert.Equal(t, 2, summary.Casual.Used)
	assert.Equal(t, 10, summary.Casual.Remaining)
	assert.True(t, summary.Casual.Utilization.Equal(decimal.RequireFromString("0.1667")),
		"got %s", summary.Casual.Utilization)

	assert.Equal(t, 5, summary.Sick.Used)
	assert.True(t, summary.Sick.Utilization.Equal(decimal.RequireFromString("0.4167")),
		"got %s", summary.Sick.Utilization)

	assert.Equal(t, 3, summary.LOP)
}

func TestGetSummary_FreshEmployee_ZeroUtilization(t *testing.T) {
	svc, _ := newTestService(t)

	summary, err := svc.GetSummary(context.Background(), "int-1")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Casual.Used)
	assert.Equal(t, 12, summary.Casual.Remaining)
	assert.True(t, summary.Casual.Utilization.IsZero())
	assert.Equal(t, 0, summary.LOP)
}

func TestGetSummary_OverCreditedBalance_ClampsUsedToZero(t *testing.T) {
	// A balance above the allocation (manual adjustment) must not report
	// negative consumption.

	svc, mem := newTestService(t)
	ctx := context.Background()

	dev := mustEmployee(t, mem, "dev-1")
	dev.CasualLeaveBalance = 15
	require.NoError(t, mem.Employees().Save(ctx, dev))

	summary, err := svc.GetSummary(ctx, "dev-1")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Casual.Used)
	assert.True(t, summary.Casual.Utilization.IsZero())
}

func TestGetSummary_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetSummary(context.Background(), "ghost-1")
	assert.True(t, leave.IsNotFound(err))
}
