package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandhu-6/leave-management-system/leave"
	"github.com/nandhu-6/leave-management-system/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// seedOrg provisions the reference reporting graph used across tests:
//
//	hr-1 (HR)
//	 └── dir-1 (Director)
//	      ├── mgr-1 (Manager)
//	      │    ├── dev-1 (Developer)
//	      │    └── int-1 (Intern)
//	      └── mgr-2 (Manager)
func seedOrg(t *testing.T, mem *store.Memory) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	add := func(id string, role leave.Role, manager string) {
		e := &leave.Employee{
			ID:                 leave.EmployeeID(id),
			Name:               id,
			Role:               role,
			SickLeaveBalance:   leave.DefaultLeaveBalance,
			CasualLeaveBalance: leave.DefaultLeaveBalance,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if manager != "" {
			m := leave.EmployeeID(manager)
			e.ReportingManagerID = &m
		}
		require.NoError(t, mem.Employees().Save(ctx, e))
	}

	add("hr-1", leave.RoleHR, "")
	add("dir-1", leave.RoleDirector, "hr-1")
	add("mgr-1", leave.RoleManager, "dir-1")
	add("mgr-2", leave.RoleManager, "dir-1")
	add("dev-1", leave.RoleDeveloper, "mgr-1")
	add("int-1", leave.RoleIntern, "mgr-1")
}

func mustEmployee(t *testing.T, mem *store.Memory, id string) *leave.Employee {
	t.Helper()
	e, err := mem.Employees().FindByID(context.Background(), leave.EmployeeID(id))
	require.NoError(t, err)
	return e
}

func approverIDs(chain []leave.ChainLink) []string {
	ids := make([]string, len(chain))
	for i, link := range chain {
		ids[i] = string(link.ApproverID)
	}
	return ids
}

// =============================================================================
// CHAIN CONSTRUCTION
// =============================================================================

func TestChainBuilder_ShortLeave_ManagerThenHR(t *testing.T) {
	// GIVEN: A developer requesting 3 days
	// WHEN: Building the approval chain
	// THEN: Manager first, then HR (short leaves skip the Director)

	mem := store.NewMemory()
	seedOrg(t, mem)
	b := &leave.ChainBuilder{Directory: mem.Employees()}

	chain, err := b.Build(context.Background(), mustEmployee(t, mem, "dev-1"), 3, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"mgr-1", "hr-1"}, approverIDs(chain))
	for _, link := range chain {
		assert.Equal(t, leave.StatusPending, link.Status)
	}
}

func TestChainBuilder_LongLeave_EscalatesToDirector(t *testing.T) {
	// GIVEN: A developer requesting more than 3 days
	// WHEN: Building the approval chain
	// THEN: Manager, then Director, then HR

	mem := store.NewMemory()
	seedOrg(t, mem)
	b := &leave.ChainBuilder{Directory: mem.Employees()}

	chain, err := b.Build(context.Background(), mustEmployee(t, mem, "dev-1"), 5, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"mgr-1", "dir-1", "hr-1"}, approverIDs(chain))
}

func TestChainBuilder_ManagerApplicant_StartsAtDirector(t *testing.T) {
	// A manager's first approver is their own reporting manager, the
	// Director, and a long leave still ends at HR.

	mem := store.NewMemory()
	seedOrg(t, mem)
	b := &leave.ChainBuilder{Directory: mem.Employees()}

	chain, err := b.Build(context.Background(), mustEmployee(t, mem, "mgr-1"), 5, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"dir-1", "hr-1"}, approverIDs(chain))
}

func TestChainBuilder_DirectorApplicant_HROnly(t *testing.T) {
	mem := store.NewMemory()
	seedOrg(t, mem)
	b := &leave.ChainBuilder{Directory: mem.Employees()}

	chain, err := b.Build(context.Background(), mustEmployee(t, mem, "dir-1"), 2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"hr-1"}, approverIDs(chain))
}

func TestChainBuilder_NoManager_Fails(t *testing.T) {
	// GIVEN: An employee with no reporting manager
	// WHEN: Building the chain
	// THEN: ErrNoManager; no partial chain is returned

	mem := store.NewMemory()
	seedOrg(t, mem)
	ctx := context.Background()

	orphan := &leave.Employee{
		ID:   "orphan-1",
		Name: "orphan-1",
		Role: leave.RoleDeveloper,
	}
	require.NoError(t, mem.Employees().Save(ctx, orphan))

	b := &leave.ChainBuilder{Directory: mem.Employees()}
	chain, err := b.Build(ctx, orphan, 2, time.Now())
	assert.ErrorIs(t, err, leave.ErrNoManager)
	assert.Nil(t, chain)
}

func TestChainBuilder_CyclicReportingGraph_TerminatesWithoutDuplicates(t *testing.T) {
	// GIVEN: A miswired graph where the HR reports back down to a manager
	// WHEN: Building a chain that would loop
	// THEN: Construction terminates and no approver appears twice

	mem := store.NewMemory()
	ctx := context.Background()

	add := func(id string, role leave.Role, manager string) {
		e := &leave.Employee{ID: leave.EmployeeID(id), Name: id, Role: role}
		if manager != "" {
			m := leave.EmployeeID(manager)
			e.ReportingManagerID = &m
		}
		require.NoError(t, mem.Employees().Save(ctx, e))
	}
	add("mgr-x", leave.RoleManager, "hr-x")
	add("hr-x", leave.RoleHR, "mgr-x")
	add("dev-x", leave.RoleDeveloper, "mgr-x")

	b := &leave.ChainBuilder{Directory: mem.Employees()}
	chain, err := b.Build(ctx, mustEmployee(t, mem, "dev-x"), 2, time.Now())
	require.NoError(t, err)

	seen := make(map[leave.EmployeeID]bool)
	for _, link := range chain {
		assert.False(t, seen[link.ApproverID], "approver %s appears twice", link.ApproverID)
		seen[link.ApproverID] = true
	}
}

func TestChainBuilder_MissingHR_ConfigError(t *testing.T) {
	// Without an HR record, a short leave chain cannot be completed.

	mem := store.NewMemory()
	ctx := context.Background()

	dirID := leave.EmployeeID("dir-y")
	mgr := &leave.Employee{ID: "mgr-y", Name: "mgr-y", Role: leave.RoleManager, ReportingManagerID: &dirID}
	mgrID := mgr.ID
	dev := &leave.Employee{ID: "dev-y", Name: "dev-y", Role: leave.RoleDeveloper, ReportingManagerID: &mgrID}
	dir := &leave.Employee{ID: dirID, Name: "dir-y", Role: leave.RoleDirector}
	for _, e := range []*leave.Employee{mgr, dev, dir} {
		require.NoError(t, mem.Employees().Save(ctx, e))
	}

	b := &leave.ChainBuilder{Directory: mem.Employees()}
	_, err := b.Build(ctx, dev, 2, time.Now())
	assert.ErrorIs(t, err, leave.ErrRoleNotFound)
}
