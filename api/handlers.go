/*
handlers.go - HTTP API handlers for the leave management system

PURPOSE:

	Exposes the leave workflow via REST API. Handles HTTP
	request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:

	Auth:
	  POST   /api/auth/register           Attach a password to an employee
	  POST   /api/auth/login              Obtain a session token

	Leaves:
	  POST   /api/leaves/apply            Submit a leave request
	  GET    /api/leaves/my               Caller's own requests
	  GET    /api/leaves/team             Direct reports' requests
	  GET    /api/leaves/all              Every request (HR/Director)
	  GET    /api/leaves/pending          Requests awaiting the caller
	  GET    /api/leaves/balance          Balance counters
	  GET    /api/leaves/summary          Balance dashboard
	  GET    /api/leaves/holidays         Holiday calendar
	  GET    /api/leaves/calendar         Team calendar (approved leaves)
	  GET    /api/leaves/{id}/status      Status of one request
	  PUT    /api/leaves/{id}/approve     Approve / forward
	  PUT    /api/leaves/{id}/reject      Reject and refund
	  PUT    /api/leaves/{id}/cancel      Cancel own request

	Employees:
	  GET    /api/employees               List directory (HR)
	  POST   /api/employees               Create employee (HR)
	  PUT    /api/employees/{id}          Update employee (HR)
	  DELETE /api/employees/{id}          Delete employee (HR)
	  GET    /api/employees/me            Caller's profile
	  GET    /api/employees/team          Caller's direct reports
	  GET    /api/employees/manager       Caller's reporting manager
	  GET    /api/employees/approvers     Everyone with an approver role

ERROR HANDLING:

	Domain errors map to HTTP status via the leave error taxonomy:
	- 400: Validation errors (overlap, balance, range, illegal transition)
	- 401: Bad credentials or unregistered employee
	- 403: Caller is not allowed to act on or view the request
	- 404: Unknown leave or employee
	- 409: Double registration
	- 500: Directory misconfiguration, storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nandhu-6/leave-management-system/auth"
	"github.com/nandhu-6/leave-management-system/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *leave.Service
	Auth    *auth.Service
}

// NewHandler creates a new handler.
func NewHandler(service *leave.Service, authService *auth.Service) *Handler {
	return &Handler{Service: service, Auth: authService}
}

// caller extracts the authenticated identity placed in the context by
// the JWT middleware.
func caller(r *http.Request) (auth.Identity, bool) {
	identity, err := auth.IdentityFromContext(r.Context())
	return identity, err == nil
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register attaches a password to a provisioned employee.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Auth.Register(r.Context(), leave.EmployeeID(req.EmployeeID), req.Password); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

// Login verifies credentials and returns a session token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	token, expiresAt, employee, err := h.Auth.Login(r.Context(), leave.EmployeeID(req.EmployeeID), req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Employee:  toEmployeeDTO(employee),
	})
}

// =============================================================================
// LEAVE LIFECYCLE HANDLERS
// =============================================================================

// ApplyLeave submits a new leave request for the caller.
// POST /api/leaves/apply
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}

	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Service.Apply(r.Context(), identity.EmployeeID, leave.ApplyInput{
		StartDate: start,
		EndDate:   end,
		Type:      leave.Type(req.Type),
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(created))
}

// ApproveLeave records the caller's approval, forwarding or finalizing.
// PUT /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

// RejectLeave refuses the request and refunds the balance.
// PUT /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

// CancelLeave withdraws the caller's own request.
// PUT /api/leaves/{id}/cancel
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Cancel)
}

// decide is the shared body of the three decision endpoints.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, callerID leave.EmployeeID, id leave.LeaveID, comment string) (*leave.Request, error)) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}

	var req DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	id := leave.LeaveID(chi.URLParam(r, "id"))
	updated, err := op(r.Context(), identity.EmployeeID, id, req.Comment)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(updated))
}

// =============================================================================
// LEAVE QUERY HANDLERS
// =============================================================================

// MyLeaves returns the caller's leave history.
// GET /api/leaves/my
func (h *Handler) MyLeaves(w http.ResponseWriter, r *http.Request) {
	h.listLeaves(w, r, h.Service.GetMyLeaves)
}

// TeamLeaves returns the leaves of the caller's direct reports.
// GET /api/leaves/team
func (h *Handler) TeamLeaves(w http.ResponseWriter, r *http.Request) {
	h.listLeaves(w, r, h.Service.GetTeamLeaves)
}

// AllLeaves returns every request. HR and Director only.
// GET /api/leaves/all
func (h *Handler) AllLeaves(w http.ResponseWriter, r *http.Request) {
	h.listLeaves(w, r, h.Service.GetAllLeaves)
}

// PendingApprovals returns the caller's approval inbox.
// GET /api/leaves/pending
func (h *Handler) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	h.listLeaves(w, r, h.Service.GetPendingApprovals)
}

func (h *Handler) listLeaves(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, callerID leave.EmployeeID) ([]*leave.Request, error)) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	leaves, err := query(r.Context(), identity.EmployeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// LeaveStatus returns the status of one request, subject to view
// authorization.
// GET /api/leaves/{id}/status
func (h *Handler) LeaveStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	id := leave.LeaveID(chi.URLParam(r, "id"))
	status, err := h.Service.GetLeaveStatus(r.Context(), identity.EmployeeID, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaveStatusDTO{ID: string(id), Status: string(status)})
}

// GetBalance returns the caller's balance counters.
// GET /api/leaves/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	balance, err := h.Service.GetBalance(r.Context(), identity.EmployeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// GetSummary returns the caller's balance dashboard.
// GET /api/leaves/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	summary, err := h.Service.GetSummary(r.Context(), identity.EmployeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListHolidays returns the configured holidays.
// GET /api/leaves/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays := h.Service.Holidays()
	dates := make([]string, len(holidays))
	for i, d := range holidays {
		dates[i] = d.String()
	}
	writeJSON(w, http.StatusOK, dates)
}

// TeamCalendar returns approved leaves of the caller's peers and
// reports.
// GET /api/leaves/calendar
func (h *Handler) TeamCalendar(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	entries, err := h.Service.GetTeamCalendar(r.Context(), identity.EmployeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]TeamCalendarEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = TeamCalendarEntryDTO{
			Employee: toEmployeeDTO(e.Employee),
			Leaves:   toLeaveDTOs(e.Leaves),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the full directory. HR only.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	employees, err := h.Service.ListEmployees(r.Context(), identity.EmployeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// CreateEmployee adds a directory record. HR only.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	created, err := h.Service.CreateEmployee(r.Context(), identity.EmployeeID, employeeInput(req))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(created))
}

// UpdateEmployee changes a directory record. HR only.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	updated, err := h.Service.UpdateEmployee(r.Context(), identity.EmployeeID, employeeInput(req))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(updated))
}

// DeleteEmployee removes a directory record. HR only.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteEmployee(r.Context(), identity.EmployeeID, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's own profile.
// GET /api/employees/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.listProfile(w, r, func(ctx context.Context, id leave.EmployeeID) ([]*leave.Employee, error) {
		e, err := h.Service.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		return []*leave.Employee{e}, nil
	}, true)
}

// MyTeam returns the caller's direct reports.
// GET /api/employees/team
func (h *Handler) MyTeam(w http.ResponseWriter, r *http.Request) {
	h.listProfile(w, r, h.Service.GetTeam, false)
}

// MyManager returns the caller's reporting manager.
// GET /api/employees/manager
func (h *Handler) MyManager(w http.ResponseWriter, r *http.Request) {
	h.listProfile(w, r, func(ctx context.Context, id leave.EmployeeID) ([]*leave.Employee, error) {
		m, err := h.Service.GetReportingManager(ctx, id)
		if err != nil {
			return nil, err
		}
		return []*leave.Employee{m}, nil
	}, true)
}

// Approvers returns everyone holding an approver role.
// GET /api/employees/approvers
func (h *Handler) Approvers(w http.ResponseWriter, r *http.Request) {
	h.listProfile(w, r, h.Service.GetApprovers, false)
}

// listProfile runs an employee query; single unwraps one-element
// results into a bare object.
func (h *Handler) listProfile(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, callerID leave.EmployeeID) ([]*leave.Employee, error), single bool) {
	identity, ok := caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing identity", nil)
		return
	}
	employees, err := query(r.Context(), identity.EmployeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if single {
		writeJSON(w, http.StatusOK, toEmployeeDTO(employees[0]))
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

func employeeInput(req EmployeeRequest) leave.EmployeeInput {
	in := leave.EmployeeInput{
		ID:   leave.EmployeeID(req.ID),
		Name: req.Name,
		Role: leave.Role(req.Role),
	}
	if req.ReportingManagerID != nil {
		id := leave.EmployeeID(*req.ReportingManagerID)
		in.ReportingManagerID = &id
	}
	return in
}

// =============================================================================
// ERROR MAPPING AND JSON HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotRegistered):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, auth.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "Already registered", err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case leave.IsAuthError(err):
		writeError(w, http.StatusForbidden, "Not allowed", err)
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		// Config errors (missing manager, ambiguous role, unavailable
		// approver) and storage failures are server-side problems.
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
