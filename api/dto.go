/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:

	Defines the JSON structures for API communication. These types
	decouple the internal domain model from the external API contract,
	allowing field renaming and version evolution without breaking
	clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:

	Validation is done in handlers and the domain layer, not in DTOs.
	DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/nandhu-6/leave-management-system/leave"
)

// =============================================================================
// AUTH
// =============================================================================

// RegisterRequest attaches a password to a provisioned employee.
type RegisterRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// LoginRequest is the credential payload for login.
type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	Employee  EmployeeDTO `json:"employee"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses. Balances are
// included; the password hash never leaves the server.
type EmployeeDTO struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	ReportingManagerID *string `json:"reporting_manager_id,omitempty"`
	SickLeaveBalance   int     `json:"sick_leave_balance"`
	CasualLeaveBalance int     `json:"casual_leave_balance"`
	LOPCount           int     `json:"lop_count"`
	Registered         bool    `json:"registered"`
	CreatedAt          string  `json:"created_at,omitempty"`
}

// EmployeeRequest is the body for creating or updating an employee.
type EmployeeRequest struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	ReportingManagerID *string `json:"reporting_manager_id,omitempty"`
}

// =============================================================================
// LEAVES
// =============================================================================

// ApplyLeaveRequest is the body for a new leave application.
type ApplyLeaveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Reason    string `json:"reason,omitempty"`
}

// DecisionRequest carries the optional comment of an approval,
// rejection, or cancellation.
type DecisionRequest struct {
	Comment string `json:"comment,omitempty"`
}

// LeaveDTO represents a leave request in API responses. Chain and
// history reuse the domain types, which carry their own JSON tags.
type LeaveDTO struct {
	ID                string               `json:"id"`
	EmployeeID        string               `json:"employee_id"`
	Type              string               `json:"type"`
	Status            string               `json:"status"`
	StartDate         string               `json:"start_date"`
	EndDate           string               `json:"end_date"`
	Duration          int                  `json:"duration"`
	Reason            string               `json:"reason,omitempty"`
	CurrentApproverID *string              `json:"current_approver_id,omitempty"`
	ForwardedTo       *string              `json:"forwarded_to,omitempty"`
	ApprovedBy        *string              `json:"approved_by,omitempty"`
	Chain             []leave.ChainLink    `json:"approval_chain"`
	History           []leave.HistoryEntry `json:"approval_history"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at"`
}

// LeaveStatusDTO is the reduced view returned by the status endpoint.
type LeaveStatusDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TeamCalendarEntryDTO pairs a team member with their approved leaves.
type TeamCalendarEntryDTO struct {
	Employee EmployeeDTO `json:"employee"`
	Leaves   []LeaveDTO  `json:"leaves"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e *leave.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:                 string(e.ID),
		Name:               e.Name,
		Role:               string(e.Role),
		SickLeaveBalance:   e.SickLeaveBalance,
		CasualLeaveBalance: e.CasualLeaveBalance,
		LOPCount:           e.LOPCount,
		Registered:         e.PasswordHash != "",
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
	if e.ReportingManagerID != nil {
		id := string(*e.ReportingManagerID)
		dto.ReportingManagerID = &id
	}
	return dto
}

func toEmployeeDTOs(employees []*leave.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func toLeaveDTO(r *leave.Request) LeaveDTO {
	dto := LeaveDTO{
		ID:         string(r.ID),
		EmployeeID: string(r.EmployeeID),
		Type:       string(r.Type),
		Status:     string(r.Status),
		StartDate:  r.StartDate.String(),
		EndDate:    r.EndDate.String(),
		Duration:   r.Duration,
		Reason:     r.Reason,
		Chain:      r.Chain,
		History:    r.History,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
	if r.CurrentApproverID != nil {
		id := string(*r.CurrentApproverID)
		dto.CurrentApproverID = &id
	}
	if r.ForwardedTo != nil {
		id := string(*r.ForwardedTo)
		dto.ForwardedTo = &id
	}
	if r.ApprovedBy != nil {
		id := string(*r.ApprovedBy)
		dto.ApprovedBy = &id
	}
	if dto.Chain == nil {
		dto.Chain = []leave.ChainLink{}
	}
	if dto.History == nil {
		dto.History = []leave.HistoryEntry{}
	}
	return dto
}

func toLeaveDTOs(requests []*leave.Request) []LeaveDTO {
	dtos := make([]LeaveDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toLeaveDTO(r)
	}
	return dtos
}
