package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandhu-6/leave-management-system/leave"
)

func ptr(id leave.EmployeeID) *leave.EmployeeID { return &id }

func newRequest(id leave.LeaveID, employee leave.EmployeeID, status leave.Status, start, end leave.Date) *leave.Request {
	return &leave.Request{
		ID:         id,
		EmployeeID: employee,
		Type:       leave.TypeCasual,
		Status:     status,
		StartDate:  start,
		EndDate:    end,
		Duration:   1,
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollbackRestoresBothMaps(t *testing.T) {
	// GIVEN: A store holding one employee and one request
	// WHEN: A transaction mutates both and then fails
	// THEN: Neither mutation is visible afterwards

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "e-1", CasualLeaveBalance: 12}))
	require.NoError(t, m.Leaves().Create(ctx, newRequest("l-1", "e-1", leave.StatusPending,
		leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 9))))

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx leave.Store) error {
		e, err := tx.Employees().FindByID(ctx, "e-1")
		require.NoError(t, err)
		e.CasualLeaveBalance = 0
		require.NoError(t, tx.Employees().Save(ctx, e))

		r, err := tx.Leaves().Get(ctx, "l-1")
		require.NoError(t, err)
		r.Status = leave.StatusCancelled
		require.NoError(t, tx.Leaves().Update(ctx, r))

		require.NoError(t, tx.Leaves().Create(ctx, newRequest("l-2", "e-1", leave.StatusPending,
			leave.NewDate(2025, 6, 10), leave.NewDate(2025, 6, 10))))
		return boom
	})
	require.ErrorIs(t, err, boom)

	e, err := m.Employees().FindByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, 12, e.CasualLeaveBalance)

	r, err := m.Leaves().Get(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, r.Status)

	_, err = m.Leaves().Get(ctx, "l-2")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

func TestWithTx_CommitKeepsWrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.WithTx(ctx, func(tx leave.Store) error {
		return tx.Employees().Save(ctx, &leave.Employee{ID: "e-1"})
	})
	require.NoError(t, err)

	_, err = m.Employees().FindByID(ctx, "e-1")
	assert.NoError(t, err)
}

func TestWithTx_NestedCollapses(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.WithTx(ctx, func(tx leave.Store) error {
		return tx.WithTx(ctx, func(inner leave.Store) error {
			return inner.Employees().Save(ctx, &leave.Employee{ID: "e-1"})
		})
	})
	require.NoError(t, err)

	_, err = m.Employees().FindByID(ctx, "e-1")
	assert.NoError(t, err)
}

// =============================================================================
// ISOLATION
// =============================================================================

func TestGet_ReturnsDetachedCopy(t *testing.T) {
	// Mutating a returned request must not leak back into the store.

	m := NewMemory()
	ctx := context.Background()

	r := newRequest("l-1", "e-1", leave.StatusPending,
		leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 9))
	r.CurrentApproverID = ptr("mgr-1")
	r.Chain = []leave.ChainLink{{ApproverID: "mgr-1", Status: leave.StatusPending}}
	require.NoError(t, m.Leaves().Create(ctx, r))

	got, err := m.Leaves().Get(ctx, "l-1")
	require.NoError(t, err)
	got.Status = leave.StatusApproved
	got.Chain[0].Status = leave.StatusApproved
	*got.CurrentApproverID = "hacker"

	fresh, err := m.Leaves().Get(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, fresh.Status)
	assert.Equal(t, leave.StatusPending, fresh.Chain[0].Status)
	assert.Equal(t, leave.EmployeeID("mgr-1"), *fresh.CurrentApproverID)
}

// =============================================================================
// LEAVE QUERIES
// =============================================================================

func TestActiveOverlapping_FiltersByStatusAndRange(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	cases := []struct {
		id     leave.LeaveID
		status leave.Status
	}{
		{"l-pending", leave.StatusPending},
		{"l-approved", leave.StatusApproved},
		{"l-forwarded", leave.StatusForwarded},
		{"l-rejected", leave.StatusRejected},
		{"l-cancelled", leave.StatusCancelled},
	}
	for _, c := range cases {
		require.NoError(t, m.Leaves().Create(ctx, newRequest(c.id, "e-1", c.status,
			leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 11))))
	}
	// Other employee, same range
	require.NoError(t, m.Leaves().Create(ctx, newRequest("l-other", "e-2", leave.StatusPending,
		leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 11))))

	got, err := m.Leaves().ActiveOverlapping(ctx, "e-1", leave.NewDate(2025, 6, 11), leave.NewDate(2025, 6, 12))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.True(t, r.Status.IsActive())
		assert.Equal(t, leave.EmployeeID("e-1"), r.EmployeeID)
	}

	// Disjoint range
	got, err = m.Leaves().ActiveOverlapping(ctx, "e-1", leave.NewDate(2025, 6, 12), leave.NewDate(2025, 6, 13))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAwaitingApprover_FollowsForwardedTo(t *testing.T) {
	// GIVEN: One pending request awaiting mgr-1 and one forwarded to dir-1
	//        whose CurrentApproverID also moved on
	// WHEN: Listing each inbox
	// THEN: Each request appears in exactly one inbox

	m := NewMemory()
	ctx := context.Background()

	pending := newRequest("l-1", "e-1", leave.StatusPending,
		leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 9))
	pending.CurrentApproverID = ptr("mgr-1")
	require.NoError(t, m.Leaves().Create(ctx, pending))

	forwarded := newRequest("l-2", "e-2", leave.StatusForwarded,
		leave.NewDate(2025, 6, 10), leave.NewDate(2025, 6, 10))
	forwarded.CurrentApproverID = ptr("dir-1")
	forwarded.ForwardedTo = ptr("dir-1")
	require.NoError(t, m.Leaves().Create(ctx, forwarded))

	got, err := m.Leaves().AwaitingApprover(ctx, "mgr-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leave.LeaveID("l-1"), got[0].ID)

	got, err = m.Leaves().AwaitingApprover(ctx, "dir-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leave.LeaveID("l-2"), got[0].ID)

	got, err = m.Leaves().AwaitingApprover(ctx, "hr-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestByEmployee_NewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, id := range []leave.LeaveID{"l-1", "l-2", "l-3"} {
		require.NoError(t, m.Leaves().Create(ctx, newRequest(id, "e-1", leave.StatusPending,
			leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 9))))
	}

	got, err := m.Leaves().ByEmployee(ctx, "e-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, leave.LeaveID("l-3"), got[0].ID)
	assert.Equal(t, leave.LeaveID("l-1"), got[2].ID)
}

func TestCreate_DuplicateID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := newRequest("l-1", "e-1", leave.StatusPending,
		leave.NewDate(2025, 6, 9), leave.NewDate(2025, 6, 9))
	require.NoError(t, m.Leaves().Create(ctx, r))
	assert.ErrorIs(t, m.Leaves().Create(ctx, r), leave.ErrInvalidState)
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestFindByRole_ZeroOneMany(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Employees().FindByRole(ctx, leave.RoleHR)
	assert.ErrorIs(t, err, leave.ErrRoleNotFound)

	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "hr-1", Role: leave.RoleHR}))
	got, err := m.Employees().FindByRole(ctx, leave.RoleHR)
	require.NoError(t, err)
	assert.Equal(t, leave.EmployeeID("hr-1"), got.ID)

	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "hr-2", Role: leave.RoleHR}))
	_, err = m.Employees().FindByRole(ctx, leave.RoleHR)
	assert.ErrorIs(t, err, leave.ErrRoleAmbiguous)
}

func TestFindByManager_SortedByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "mgr-1", Role: leave.RoleManager}))
	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "b-1", Role: leave.RoleDeveloper, ReportingManagerID: ptr("mgr-1")}))
	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "a-1", Role: leave.RoleIntern, ReportingManagerID: ptr("mgr-1")}))
	require.NoError(t, m.Employees().Save(ctx, &leave.Employee{ID: "c-1", Role: leave.RoleDeveloper}))

	got, err := m.Employees().FindByManager(ctx, "mgr-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, leave.EmployeeID("a-1"), got[0].ID)
	assert.Equal(t, leave.EmployeeID("b-1"), got[1].ID)
}

func TestDelete_UnknownEmployee(t *testing.T) {
	m := NewMemory()

	err := m.Employees().Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}
