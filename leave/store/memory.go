// Package store provides the in-memory leave.Store implementation,
// used by tests and local development. Transactions are simulated with
// a snapshot taken under the write lock and restored on error.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nandhu-6/leave-management-system/leave"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	leaves    map[leave.LeaveID]*leave.Request
	order     []leave.LeaveID // creation order; listings iterate it backwards
	employees map[leave.EmployeeID]*leave.Employee
}

func NewMemory() *Memory {
	return &Memory{
		leaves:    make(map[leave.LeaveID]*leave.Request),
		employees: make(map[leave.EmployeeID]*leave.Employee),
	}
}

func (m *Memory) Leaves() leave.LeaveStore   { return &memoryLeaves{m: m, locking: true} }
func (m *Memory) Employees() leave.Directory { return &memoryDirectory{m: m, locking: true} }

// WithTx executes fn under the write lock against an unlocked view.
// A snapshot of both maps is taken first and restored when fn fails, so
// partial writes never become visible.
func (m *Memory) WithTx(_ context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	view := &txView{m: m}
	if err := fn(view); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	leaves    map[leave.LeaveID]*leave.Request
	order     []leave.LeaveID
	employees map[leave.EmployeeID]*leave.Employee
}

func (m *Memory) snapshot() memorySnapshot {
	leavesCopy := make(map[leave.LeaveID]*leave.Request, len(m.leaves))
	for id, r := range m.leaves {
		leavesCopy[id] = cloneRequest(r)
	}
	employeesCopy := make(map[leave.EmployeeID]*leave.Employee, len(m.employees))
	for id, e := range m.employees {
		employeesCopy[id] = cloneEmployee(e)
	}
	return memorySnapshot{
		leaves:    leavesCopy,
		order:     append([]leave.LeaveID(nil), m.order...),
		employees: employeesCopy,
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.leaves = s.leaves
	m.order = s.order
	m.employees = s.employees
}

// txView is the Store handed to WithTx callbacks. The caller already
// holds the write lock, so its sub-stores skip locking.
type txView struct {
	m *Memory
}

func (v *txView) Leaves() leave.LeaveStore   { return &memoryLeaves{m: v.m} }
func (v *txView) Employees() leave.Directory { return &memoryDirectory{m: v.m} }

// Nested transactions collapse into the enclosing one.
func (v *txView) WithTx(_ context.Context, fn func(leave.Store) error) error {
	return fn(v)
}

// =============================================================================
// LEAVE STORE
// =============================================================================

type memoryLeaves struct {
	m       *Memory
	locking bool
}

func (l *memoryLeaves) Create(_ context.Context, r *leave.Request) error {
	if l.locking {
		l.m.mu.Lock()
		defer l.m.mu.Unlock()
	}
	if _, ok := l.m.leaves[r.ID]; ok {
		return fmt.Errorf("leave %s already exists: %w", r.ID, leave.ErrInvalidState)
	}
	l.m.leaves[r.ID] = cloneRequest(r)
	l.m.order = append(l.m.order, r.ID)
	return nil
}

func (l *memoryLeaves) Get(_ context.Context, id leave.LeaveID) (*leave.Request, error) {
	if l.locking {
		l.m.mu.RLock()
		defer l.m.mu.RUnlock()
	}
	r, ok := l.m.leaves[id]
	if !ok {
		return nil, fmt.Errorf("leave %s: %w", id, leave.ErrLeaveNotFound)
	}
	return cloneRequest(r), nil
}

func (l *memoryLeaves) Update(_ context.Context, r *leave.Request) error {
	if l.locking {
		l.m.mu.Lock()
		defer l.m.mu.Unlock()
	}
	if _, ok := l.m.leaves[r.ID]; !ok {
		return fmt.Errorf("leave %s: %w", r.ID, leave.ErrLeaveNotFound)
	}
	l.m.leaves[r.ID] = cloneRequest(r)
	return nil
}

func (l *memoryLeaves) ByEmployee(_ context.Context, id leave.EmployeeID) ([]*leave.Request, error) {
	if l.locking {
		l.m.mu.RLock()
		defer l.m.mu.RUnlock()
	}
	return l.m.filterNewestFirst(func(r *leave.Request) bool {
		return r.EmployeeID == id
	}), nil
}

func (l *memoryLeaves) ActiveOverlapping(_ context.Context, id leave.EmployeeID, start, end leave.Date) ([]*leave.Request, error) {
	if l.locking {
		l.m.mu.RLock()
		defer l.m.mu.RUnlock()
	}
	return l.m.filterNewestFirst(func(r *leave.Request) bool {
		return r.EmployeeID == id &&
			r.Status.IsActive() &&
			leave.Overlaps(start, end, r.StartDate, r.EndDate)
	}), nil
}

func (l *memoryLeaves) AwaitingApprover(_ context.Context, id leave.EmployeeID) ([]*leave.Request, error) {
	if l.locking {
		l.m.mu.RLock()
		defer l.m.mu.RUnlock()
	}
	return l.m.filterNewestFirst(func(r *leave.Request) bool {
		return r.AwaitsActionBy(id)
	}), nil
}

func (l *memoryLeaves) ByEmployeesWithStatus(_ context.Context, ids []leave.EmployeeID, status leave.Status) ([]*leave.Request, error) {
	if l.locking {
		l.m.mu.RLock()
		defer l.m.mu.RUnlock()
	}
	member := make(map[leave.EmployeeID]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}
	return l.m.filterNewestFirst(func(r *leave.Request) bool {
		return member[r.EmployeeID] && r.Status == status
	}), nil
}

func (l *memoryLeaves) All(_ context.Context) ([]*leave.Request, error) {
	if l.locking {
		l.m.mu.RLock()
		defer l.m.mu.RUnlock()
	}
	return l.m.filterNewestFirst(func(*leave.Request) bool { return true }), nil
}

// filterNewestFirst walks the creation order backwards, so newer
// requests always precede older ones. Caller holds the lock.
func (m *Memory) filterNewestFirst(keep func(*leave.Request) bool) []*leave.Request {
	var result []*leave.Request
	for i := len(m.order) - 1; i >= 0; i-- {
		r, ok := m.leaves[m.order[i]]
		if ok && keep(r) {
			result = append(result, cloneRequest(r))
		}
	}
	return result
}

// =============================================================================
// DIRECTORY
// =============================================================================

type memoryDirectory struct {
	m       *Memory
	locking bool
}

func (d *memoryDirectory) FindByID(_ context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	if d.locking {
		d.m.mu.RLock()
		defer d.m.mu.RUnlock()
	}
	e, ok := d.m.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", id, leave.ErrEmployeeNotFound)
	}
	return cloneEmployee(e), nil
}

func (d *memoryDirectory) FindByRole(_ context.Context, role leave.Role) (*leave.Employee, error) {
	if d.locking {
		d.m.mu.RLock()
		defer d.m.mu.RUnlock()
	}
	var found *leave.Employee
	for _, e := range d.m.employees {
		if e.Role != role {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("role %s: %w", role, leave.ErrRoleAmbiguous)
		}
		found = e
	}
	if found == nil {
		return nil, fmt.Errorf("role %s: %w", role, leave.ErrRoleNotFound)
	}
	return cloneEmployee(found), nil
}

func (d *memoryDirectory) FindByManager(_ context.Context, managerID leave.EmployeeID) ([]*leave.Employee, error) {
	if d.locking {
		d.m.mu.RLock()
		defer d.m.mu.RUnlock()
	}
	return d.m.filterEmployees(func(e *leave.Employee) bool {
		return e.ReportingManagerID != nil && *e.ReportingManagerID == managerID
	}), nil
}

func (d *memoryDirectory) FindByRoles(_ context.Context, roles ...leave.Role) ([]*leave.Employee, error) {
	if d.locking {
		d.m.mu.RLock()
		defer d.m.mu.RUnlock()
	}
	member := make(map[leave.Role]bool, len(roles))
	for _, r := range roles {
		member[r] = true
	}
	return d.m.filterEmployees(func(e *leave.Employee) bool {
		return member[e.Role]
	}), nil
}

func (d *memoryDirectory) List(_ context.Context) ([]*leave.Employee, error) {
	if d.locking {
		d.m.mu.RLock()
		defer d.m.mu.RUnlock()
	}
	return d.m.filterEmployees(func(*leave.Employee) bool { return true }), nil
}

func (d *memoryDirectory) Save(_ context.Context, e *leave.Employee) error {
	if d.locking {
		d.m.mu.Lock()
		defer d.m.mu.Unlock()
	}
	d.m.employees[e.ID] = cloneEmployee(e)
	return nil
}

func (d *memoryDirectory) Delete(_ context.Context, id leave.EmployeeID) error {
	if d.locking {
		d.m.mu.Lock()
		defer d.m.mu.Unlock()
	}
	if _, ok := d.m.employees[id]; !ok {
		return fmt.Errorf("employee %s: %w", id, leave.ErrEmployeeNotFound)
	}
	delete(d.m.employees, id)
	return nil
}

// filterEmployees returns matching employees sorted by ID, so map
// iteration order never leaks into results. Caller holds the lock.
func (m *Memory) filterEmployees(keep func(*leave.Employee) bool) []*leave.Employee {
	var result []*leave.Employee
	for _, e := range m.employees {
		if keep(e) {
			result = append(result, cloneEmployee(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// =============================================================================
// CLONING - Callers never share memory with the store
// =============================================================================

func cloneRequest(r *leave.Request) *leave.Request {
	c := *r
	c.Chain = append([]leave.ChainLink(nil), r.Chain...)
	c.History = append([]leave.HistoryEntry(nil), r.History...)
	if r.CurrentApproverID != nil {
		id := *r.CurrentApproverID
		c.CurrentApproverID = &id
	}
	if r.ForwardedTo != nil {
		id := *r.ForwardedTo
		c.ForwardedTo = &id
	}
	if r.ApprovedBy != nil {
		id := *r.ApprovedBy
		c.ApprovedBy = &id
	}
	return &c
}

func cloneEmployee(e *leave.Employee) *leave.Employee {
	c := *e
	if e.ReportingManagerID != nil {
		id := *e.ReportingManagerID
		c.ReportingManagerID = &id
	}
	return &c
}
