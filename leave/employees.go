/*
employees.go - Directory administration

PURPOSE:

	Employee CRUD and profile queries on the same Service that runs the
	leave lifecycle, so directory writes share the store's transactional
	discipline.

WRITE-TIME INVARIANTS:
  - Role must be one of the known roles
  - HR and Director are singleton roles: a write that would create a
    second holder fails with ErrRoleAmbiguous, keeping FindByRole
    deterministic for chain construction
  - A reporting manager reference must resolve to an existing employee

Mutations are HR-only. Profile and team reads are open to the caller's
own scope.

SEE ALSO:
  - chain.go: Consumes FindByRole and the reporting graph
*/
package leave

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// EMPLOYEE ADMINISTRATION (HR only)
// =============================================================================

// EmployeeInput carries the admin-supplied fields of a directory write.
type EmployeeInput struct {
	ID                 EmployeeID
	Name               string
	Role               Role
	ReportingManagerID *EmployeeID
}

// CreateEmployee adds a directory record with default balances.
func (s *Service) CreateEmployee(ctx context.Context, callerID EmployeeID, in EmployeeInput) (*Employee, error) {
	if err := s.requireHR(ctx, callerID); err != nil {
		return nil, err
	}
	if in.ID == "" || in.Name == "" {
		return nil, fmt.Errorf("employee id and name are required: %w", ErrInvalidRange)
	}

	var created *Employee
	err := s.Store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.Employees().FindByID(ctx, in.ID); err == nil {
			return fmt.Errorf("employee %s already exists: %w", in.ID, ErrInvalidState)
		} else if !IsNotFound(err) {
			return err
		}
		if err := s.validateDirectoryWrite(ctx, tx, in.ID, in.Role, in.ReportingManagerID); err != nil {
			return err
		}

		now := s.Now()
		created = &Employee{
			ID:                 in.ID,
			Name:               in.Name,
			Role:               in.Role,
			ReportingManagerID: in.ReportingManagerID,
			SickLeaveBalance:   DefaultLeaveBalance,
			CasualLeaveBalance: DefaultLeaveBalance,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return tx.Employees().Save(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateEmployee changes name, role, or reporting line. Balances and
// credentials are out of scope here; they have their own writers.
func (s *Service) UpdateEmployee(ctx context.Context, callerID EmployeeID, in EmployeeInput) (*Employee, error) {
	if err := s.requireHR(ctx, callerID); err != nil {
		return nil, err
	}

	var updated *Employee
	err := s.Store.WithTx(ctx, func(tx Store) error {
		employee, err := tx.Employees().FindByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if err := s.validateDirectoryWrite(ctx, tx, in.ID, in.Role, in.ReportingManagerID); err != nil {
			return err
		}

		if in.Name != "" {
			employee.Name = in.Name
		}
		employee.Role = in.Role
		employee.ReportingManagerID = in.ReportingManagerID
		employee.UpdatedAt = s.Now()

		if err := tx.Employees().Save(ctx, employee); err != nil {
			return err
		}
		updated = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEmployee removes a directory record.
func (s *Service) DeleteEmployee(ctx context.Context, callerID EmployeeID, id EmployeeID) error {
	if err := s.requireHR(ctx, callerID); err != nil {
		return err
	}
	return s.Store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.Employees().FindByID(ctx, id); err != nil {
			return err
		}
		return tx.Employees().Delete(ctx, id)
	})
}

// ListEmployees returns the full directory. HR only.
func (s *Service) ListEmployees(ctx context.Context, callerID EmployeeID) ([]*Employee, error) {
	if err := s.requireHR(ctx, callerID); err != nil {
		return nil, err
	}
	return s.Store.Employees().List(ctx)
}

// =============================================================================
// PROFILE AND TEAM QUERIES
// =============================================================================

// GetProfile returns the caller's own directory record.
func (s *Service) GetProfile(ctx context.Context, callerID EmployeeID) (*Employee, error) {
	return s.Store.Employees().FindByID(ctx, callerID)
}

// GetTeam returns the caller's direct reports.
func (s *Service) GetTeam(ctx context.Context, callerID EmployeeID) ([]*Employee, error) {
	return s.Store.Employees().FindByManager(ctx, callerID)
}

// GetReportingManager resolves the caller's reporting manager, or
// ErrNoManager when none is configured.
func (s *Service) GetReportingManager(ctx context.Context, callerID EmployeeID) (*Employee, error) {
	employee, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if employee.ReportingManagerID == nil {
		return nil, ErrNoManager
	}
	return s.Store.Employees().FindByID(ctx, *employee.ReportingManagerID)
}

// GetApprovers returns everyone holding an approver role.
func (s *Service) GetApprovers(ctx context.Context, callerID EmployeeID) ([]*Employee, error) {
	if _, err := s.Store.Employees().FindByID(ctx, callerID); err != nil {
		return nil, err
	}
	return s.Store.Employees().FindByRoles(ctx, RoleManager, RoleDirector, RoleHR)
}

// =============================================================================
// VALIDATION
// =============================================================================

func (s *Service) requireHR(ctx context.Context, callerID EmployeeID) error {
	caller, err := s.Store.Employees().FindByID(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Role != RoleHR {
		return ErrNotAuthorized
	}
	return nil
}

// validateDirectoryWrite enforces the directory invariants for a write
// of the given employee. Uniqueness is checked here, before Save, so
// FindByRole can never observe two HR or two Director records.
func (s *Service) validateDirectoryWrite(ctx context.Context, tx Store, id EmployeeID, role Role, managerID *EmployeeID) error {
	if !ValidRole(role) {
		return fmt.Errorf("unknown role %q: %w", role, ErrRoleNotFound)
	}

	if role == RoleHR || role == RoleDirector {
		holder, err := tx.Employees().FindByRole(ctx, role)
		switch {
		case err == nil && holder.ID != id:
			return fmt.Errorf("role %s is already held by %s: %w", role, holder.ID, ErrRoleAmbiguous)
		case err != nil && !errors.Is(err, ErrRoleNotFound):
			return err
		}
	}

	if managerID != nil {
		if *managerID == id {
			return fmt.Errorf("employee %s cannot report to themselves: %w", id, ErrInvalidState)
		}
		if _, err := tx.Employees().FindByID(ctx, *managerID); err != nil {
			if IsNotFound(err) {
				return fmt.Errorf("reporting manager %s: %w", *managerID, ErrEmployeeNotFound)
			}
			return err
		}
	}
	return nil
}
