package main

import (
	"context"
	"time"

	"github.com/nandhu-6/leave-management-system/leave"
)

// seedDirectory provisions a small demo organization: one HR, one
// Director, two Managers, and two individual contributors. Existing
// records are left untouched so the flag is safe to pass repeatedly.
func seedDirectory(ctx context.Context, store leave.Store) error {
	type row struct {
		id      leave.EmployeeID
		name    string
		role    leave.Role
		manager leave.EmployeeID
	}
	rows := []row{
		{"LMT101", "Rinku", leave.RoleHR, ""},
		{"LMT102", "Srikanth", leave.RoleDirector, "LMT101"},
		{"LMT103", "Venkatraman", leave.RoleManager, "LMT102"},
		{"LMT104", "Murugan", leave.RoleManager, "LMT102"},
		{"LMT105", "Nandhini", leave.RoleIntern, "LMT103"},
		{"LMT106", "Arul", leave.RoleDeveloper, "LMT104"},
	}

	return store.WithTx(ctx, func(tx leave.Store) error {
		now := time.Now()
		for _, r := range rows {
			if _, err := tx.Employees().FindByID(ctx, r.id); err == nil {
				continue
			} else if !leave.IsNotFound(err) {
				return err
			}

			e := &leave.Employee{
				ID:                 r.id,
				Name:               r.name,
				Role:               r.role,
				SickLeaveBalance:   leave.DefaultLeaveBalance,
				CasualLeaveBalance: leave.DefaultLeaveBalance,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if r.manager != "" {
				manager := r.manager
				e.ReportingManagerID = &manager
			}
			if err := tx.Employees().Save(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}
