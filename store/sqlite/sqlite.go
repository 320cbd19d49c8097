/*
Package sqlite provides the SQLite-backed implementation of leave.Store.

PURPOSE:

	Persists the employee directory and leave requests. The approval chain
	and history are owned by the request, so they are stored as JSON
	columns on the leaves table rather than normalized into child tables;
	nothing ever queries individual chain links.

KEY TABLES:

	employees: Directory records with role, reporting line, and balances
	leaves:    Requests with chain_json and history_json payloads

CONCURRENCY:

	WAL mode for concurrent readers; a sync.RWMutex serializes writers on
	top of SQLite's own locking so WithTx callbacks never interleave.

WithTx wraps the callback in a database transaction: the balance write
and the request write of a lifecycle operation commit together or roll
back together.

MIGRATION:

	Schema is auto-migrated on New(). For production, use a proper
	migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nandhu-6/leave-management-system/leave"
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		reporting_manager_id TEXT,
		sick_leave_balance INTEGER NOT NULL,
		casual_leave_balance INTEGER NOT NULL,
		lop_count INTEGER NOT NULL DEFAULT 0,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_role
		ON employees(role);
	CREATE INDEX IF NOT EXISTS idx_employees_manager
		ON employees(reporting_manager_id) WHERE reporting_manager_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		current_approver_id TEXT,
		forwarded_to TEXT,
		approved_by TEXT,
		chain_json TEXT NOT NULL DEFAULT '[]',
		history_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee
		ON leaves(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leaves_status
		ON leaves(status);

	-- Overlap guard (hot path): active requests of one employee in a range
	CREATE INDEX IF NOT EXISTS idx_leaves_employee_status_dates
		ON leaves(employee_id, status, start_date, end_date);

	-- Pending-approvals inbox
	CREATE INDEX IF NOT EXISTS idx_leaves_current_approver
		ON leaves(current_approver_id) WHERE current_approver_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_leaves_forwarded_to
		ON leaves(forwarded_to) WHERE forwarded_to IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (s *Store) Leaves() leave.LeaveStore {
	return &leaveStore{s: s, q: s.db, locking: true}
}

func (s *Store) Employees() leave.Directory {
	return &directory{s: s, q: s.db, locking: true}
}

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{s: s, tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore is the view handed to WithTx callbacks: same queries, routed
// through the open transaction, no locking (the caller holds the mutex).
type txStore struct {
	s  *Store
	tx *sql.Tx
}

func (t *txStore) Leaves() leave.LeaveStore   { return &leaveStore{s: t.s, q: t.tx} }
func (t *txStore) Employees() leave.Directory { return &directory{s: t.s, q: t.tx} }

func (t *txStore) WithTx(_ context.Context, fn func(leave.Store) error) error {
	return fn(t)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// LEAVE STORE
// =============================================================================

type leaveStore struct {
	s       *Store
	q       querier
	locking bool
}

const leaveColumns = `id, employee_id, type, status, start_date, end_date, duration, reason,
	current_approver_id, forwarded_to, approved_by, chain_json, history_json, created_at, updated_at`

func (l *leaveStore) Create(ctx context.Context, r *leave.Request) error {
	if l.locking {
		l.s.mu.Lock()
		defer l.s.mu.Unlock()
	}

	chainJSON, err := json.Marshal(r.Chain)
	if err != nil {
		return fmt.Errorf("failed to encode chain: %w", err)
	}
	historyJSON, err := json.Marshal(r.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	query := `
		INSERT INTO leaves (` + leaveColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = l.q.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.Type, r.Status,
		r.StartDate.String(), r.EndDate.String(),
		r.Duration, r.Reason,
		nullID(r.CurrentApproverID), nullID(r.ForwardedTo), nullID(r.ApprovedBy),
		string(chainJSON), string(historyJSON),
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert leave %s: %w", r.ID, err)
	}
	return nil
}

func (l *leaveStore) Get(ctx context.Context, id leave.LeaveID) (*leave.Request, error) {
	if l.locking {
		l.s.mu.RLock()
		defer l.s.mu.RUnlock()
	}

	row := l.q.QueryRowContext(ctx,
		"SELECT "+leaveColumns+" FROM leaves WHERE id = ?", id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("leave %s: %w", id, leave.ErrLeaveNotFound)
	}
	return r, err
}

func (l *leaveStore) Update(ctx context.Context, r *leave.Request) error {
	if l.locking {
		l.s.mu.Lock()
		defer l.s.mu.Unlock()
	}

	chainJSON, err := json.Marshal(r.Chain)
	if err != nil {
		return fmt.Errorf("failed to encode chain: %w", err)
	}
	historyJSON, err := json.Marshal(r.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	query := `
		UPDATE leaves SET
			status = ?, duration = ?,
			current_approver_id = ?, forwarded_to = ?, approved_by = ?,
			chain_json = ?, history_json = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := l.q.ExecContext(ctx, query,
		r.Status, r.Duration,
		nullID(r.CurrentApproverID), nullID(r.ForwardedTo), nullID(r.ApprovedBy),
		string(chainJSON), string(historyJSON),
		r.UpdatedAt.UTC().Format(time.RFC3339),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave %s: %w", r.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("leave %s: %w", r.ID, leave.ErrLeaveNotFound)
	}
	return nil
}

func (l *leaveStore) ByEmployee(ctx context.Context, id leave.EmployeeID) ([]*leave.Request, error) {
	if l.locking {
		l.s.mu.RLock()
		defer l.s.mu.RUnlock()
	}

	query := `
		SELECT ` + leaveColumns + `
		FROM leaves
		WHERE employee_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	return l.queryRequests(ctx, query, id)
}

func (l *leaveStore) ActiveOverlapping(ctx context.Context, id leave.EmployeeID, start, end leave.Date) ([]*leave.Request, error) {
	if l.locking {
		l.s.mu.RLock()
		defer l.s.mu.RUnlock()
	}

	// Inclusive interval intersection: existing.start <= new.end AND
	// existing.end >= new.start. Dates are ISO strings, so string
	// comparison orders correctly.
	query := `
		SELECT ` + leaveColumns + `
		FROM leaves
		WHERE employee_id = ?
		  AND status IN ('pending', 'approved', 'forwarded')
		  AND start_date <= ? AND end_date >= ?
		ORDER BY created_at DESC, rowid DESC
	`
	return l.queryRequests(ctx, query, id, end.String(), start.String())
}

func (l *leaveStore) AwaitingApprover(ctx context.Context, id leave.EmployeeID) ([]*leave.Request, error) {
	if l.locking {
		l.s.mu.RLock()
		defer l.s.mu.RUnlock()
	}

	query := `
		SELECT ` + leaveColumns + `
		FROM leaves
		WHERE status IN ('pending', 'forwarded')
		  AND (forwarded_to = ? OR (forwarded_to IS NULL AND current_approver_id = ?))
		ORDER BY created_at DESC, rowid DESC
	`
	return l.queryRequests(ctx, query, id, id)
}

func (l *leaveStore) ByEmployeesWithStatus(ctx context.Context, ids []leave.EmployeeID, status leave.Status) ([]*leave.Request, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if l.locking {
		l.s.mu.RLock()
		defer l.s.mu.RUnlock()
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	query := `
		SELECT ` + leaveColumns + `
		FROM leaves
		WHERE employee_id IN (` + placeholders + `)
		  AND status = ?
		ORDER BY created_at DESC, rowid DESC
	`
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, status)
	return l.queryRequests(ctx, query, args...)
}

func (l *leaveStore) All(ctx context.Context) ([]*leave.Request, error) {
	if l.locking {
		l.s.mu.RLock()
		defer l.s.mu.RUnlock()
	}

	query := `
		SELECT ` + leaveColumns + `
		FROM leaves
		ORDER BY created_at DESC, rowid DESC
	`
	return l.queryRequests(ctx, query)
}

func (l *leaveStore) queryRequests(ctx context.Context, query string, args ...any) ([]*leave.Request, error) {
	rows, err := l.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var requests []*leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*leave.Request, error) {
	var (
		r                 leave.Request
		startDate         string
		endDate           string
		currentApproverID sql.NullString
		forwardedTo       sql.NullString
		approvedBy        sql.NullString
		chainJSON         string
		historyJSON       string
		createdAt         string
		updatedAt         string
	)

	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Type, &r.Status,
		&startDate, &endDate, &r.Duration, &r.Reason,
		&currentApproverID, &forwardedTo, &approvedBy,
		&chainJSON, &historyJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan leave: %w", err)
	}

	if r.StartDate, err = leave.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("leave %s: bad start_date: %w", r.ID, err)
	}
	if r.EndDate, err = leave.ParseDate(endDate); err != nil {
		return nil, fmt.Errorf("leave %s: bad end_date: %w", r.ID, err)
	}
	r.CurrentApproverID = idPtr(currentApproverID)
	r.ForwardedTo = idPtr(forwardedTo)
	r.ApprovedBy = idPtr(approvedBy)
	if err := json.Unmarshal([]byte(chainJSON), &r.Chain); err != nil {
		return nil, fmt.Errorf("leave %s: bad chain_json: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &r.History); err != nil {
		return nil, fmt.Errorf("leave %s: bad history_json: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

type directory struct {
	s       *Store
	q       querier
	locking bool
}

const employeeColumns = `id, name, role, reporting_manager_id, sick_leave_balance,
	casual_leave_balance, lop_count, password_hash, created_at, updated_at`

func (d *directory) FindByID(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	if d.locking {
		d.s.mu.RLock()
		defer d.s.mu.RUnlock()
	}

	row := d.q.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employee %s: %w", id, leave.ErrEmployeeNotFound)
	}
	return e, err
}

func (d *directory) FindByRole(ctx context.Context, role leave.Role) (*leave.Employee, error) {
	if d.locking {
		d.s.mu.RLock()
		defer d.s.mu.RUnlock()
	}

	// LIMIT 2 is enough to tell "one" apart from "several".
	matches, err := d.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE role = ? LIMIT 2", role)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("role %s: %w", role, leave.ErrRoleNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("role %s: %w", role, leave.ErrRoleAmbiguous)
	}
}

func (d *directory) FindByManager(ctx context.Context, managerID leave.EmployeeID) ([]*leave.Employee, error) {
	if d.locking {
		d.s.mu.RLock()
		defer d.s.mu.RUnlock()
	}

	return d.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE reporting_manager_id = ? ORDER BY id",
		managerID)
}

func (d *directory) FindByRoles(ctx context.Context, roles ...leave.Role) ([]*leave.Employee, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	if d.locking {
		d.s.mu.RLock()
		defer d.s.mu.RUnlock()
	}

	placeholders := strings.Repeat("?, ", len(roles)-1) + "?"
	args := make([]any, len(roles))
	for i, r := range roles {
		args[i] = r
	}
	return d.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE role IN ("+placeholders+") ORDER BY id",
		args...)
}

func (d *directory) List(ctx context.Context) ([]*leave.Employee, error) {
	if d.locking {
		d.s.mu.RLock()
		defer d.s.mu.RUnlock()
	}

	return d.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY id")
}

func (d *directory) Save(ctx context.Context, e *leave.Employee) error {
	if d.locking {
		d.s.mu.Lock()
		defer d.s.mu.Unlock()
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			reporting_manager_id = excluded.reporting_manager_id,
			sick_leave_balance = excluded.sick_leave_balance,
			casual_leave_balance = excluded.casual_leave_balance,
			lop_count = excluded.lop_count,
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at
	`
	_, err := d.q.ExecContext(ctx, query,
		e.ID, e.Name, e.Role, nullID(e.ReportingManagerID),
		e.SickLeaveBalance, e.CasualLeaveBalance, e.LOPCount,
		e.PasswordHash,
		e.CreatedAt.UTC().Format(time.RFC3339), e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", e.ID, err)
	}
	return nil
}

func (d *directory) Delete(ctx context.Context, id leave.EmployeeID) error {
	if d.locking {
		d.s.mu.Lock()
		defer d.s.mu.Unlock()
	}

	res, err := d.q.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("employee %s: %w", id, leave.ErrEmployeeNotFound)
	}
	return nil
}

func (d *directory) queryEmployees(ctx context.Context, query string, args ...any) ([]*leave.Employee, error) {
	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []*leave.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(row scanner) (*leave.Employee, error) {
	var (
		e         leave.Employee
		managerID sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&e.ID, &e.Name, &e.Role, &managerID,
		&e.SickLeaveBalance, &e.CasualLeaveBalance, &e.LOPCount,
		&e.PasswordHash, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	e.ReportingManagerID = idPtr(managerID)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &e, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullID(id *leave.EmployeeID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*id), Valid: true}
}

func idPtr(s sql.NullString) *leave.EmployeeID {
	if !s.Valid {
		return nil
	}
	id := leave.EmployeeID(s.String)
	return &id
}
