/*
handlers_test.go - HTTP API tests

Spins up the full router over the in-memory store and drives the leave
workflow through real HTTP requests: registration, login, application,
the approval chain, and the error-to-status mapping.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandhu-6/leave-management-system/auth"
	"github.com/nandhu-6/leave-management-system/leave"
	"github.com/nandhu-6/leave-management-system/leave/store"
)

// =============================================================================
// TEST SERVER
// =============================================================================

type testServer struct {
	ts     *httptest.Server
	tokens map[string]string // employee id -> bearer token
}

// newTestServer provisions the reference org, registers a password for
// every employee, and logs each of them in.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	rows := []struct {
		id      string
		role    leave.Role
		manager string
	}{
		{"hr-1", leave.RoleHR, ""},
		{"dir-1", leave.RoleDirector, "hr-1"},
		{"mgr-1", leave.RoleManager, "dir-1"},
		{"dev-1", leave.RoleDeveloper, "mgr-1"},
		{"int-1", leave.RoleIntern, "mgr-1"},
	}
	for _, row := range rows {
		e := &leave.Employee{
			ID:                 leave.EmployeeID(row.id),
			Name:               row.id,
			Role:               row.role,
			SickLeaveBalance:   leave.DefaultLeaveBalance,
			CasualLeaveBalance: leave.DefaultLeaveBalance,
		}
		if row.manager != "" {
			m := leave.EmployeeID(row.manager)
			e.ReportingManagerID = &m
		}
		require.NoError(t, mem.Employees().Save(ctx, e))
	}

	svc := leave.NewService(mem, leave.NewCalendar(nil))
	svc.Now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }

	tokenSvc := auth.NewTokenService("test-secret", time.Hour)
	authSvc := auth.NewService(mem, tokenSvc)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := NewRouter(NewHandler(svc, authSvc), tokenSvc, logger)

	srv := &testServer{
		ts:     httptest.NewServer(router),
		tokens: make(map[string]string),
	}
	t.Cleanup(srv.ts.Close)

	for _, row := range rows {
		require.NoError(t, authSvc.Register(ctx, leave.EmployeeID(row.id), "s3cret"))
		token, _, _, err := authSvc.Login(ctx, leave.EmployeeID(row.id), "s3cret")
		require.NoError(t, err)
		srv.tokens[row.id] = token
	}
	return srv
}

// do issues a request as the given employee ("" for anonymous) and
// decodes the JSON response into out when out is non-nil.
func (s *testServer) do(t *testing.T, method, path, as string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}

	resp, err := s.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) applyLeave(t *testing.T, as string, typ, start, end string) LeaveDTO {
	t.Helper()
	var dto LeaveDTO
	resp := s.do(t, http.MethodPost, "/api/leaves/apply", as, ApplyLeaveRequest{
		StartDate: start,
		EndDate:   end,
		Type:      typ,
		Reason:    "personal",
	}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto
}

// =============================================================================
// AUTH
// =============================================================================

func TestAPI_RegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	// Everyone was registered in setup; a second registration conflicts
	resp := srv.do(t, http.MethodPost, "/api/auth/register", "",
		RegisterRequest{EmployeeID: "dev-1", Password: "other"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown employees cannot self-enroll
	resp = srv.do(t, http.MethodPost, "/api/auth/register", "",
		RegisterRequest{EmployeeID: "ghost-1", Password: "pw"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Wrong password
	resp = srv.do(t, http.MethodPost, "/api/auth/login", "",
		LoginRequest{EmployeeID: "dev-1", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Success returns the token and the profile
	var login LoginResponse
	resp = srv.do(t, http.MethodPost, "/api/auth/login", "",
		LoginRequest{EmployeeID: "dev-1", Password: "s3cret"}, &login)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "dev-1", login.Employee.ID)
	assert.True(t, login.Employee.Registered)
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/leaves/my", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// =============================================================================
// LEAVE WORKFLOW
// =============================================================================

func TestAPI_LeaveLifecycle(t *testing.T) {
	// GIVEN: A developer's two-day casual request
	// WHEN: It is driven through manager and HR approval over HTTP
	// THEN: Status, inbox, and balance endpoints track every step

	srv := newTestServer(t)

	dto := srv.applyLeave(t, "dev-1", "casual", "2025-06-09", "2025-06-10")
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 2, dto.Duration)
	require.Len(t, dto.Chain, 2)

	// The manager sees it in the inbox
	var inbox []LeaveDTO
	resp := srv.do(t, http.MethodGet, "/api/leaves/pending", "mgr-1", nil, &inbox)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, inbox, 1)

	// Manager approves: forwarded to HR
	var afterMgr LeaveDTO
	resp = srv.do(t, http.MethodPut, fmt.Sprintf("/api/leaves/%s/approve", dto.ID), "mgr-1", nil, &afterMgr)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "forwarded", afterMgr.Status)
	require.NotNil(t, afterMgr.ForwardedTo)
	assert.Equal(t, "hr-1", *afterMgr.ForwardedTo)

	// HR approves: final
	var final LeaveDTO
	resp = srv.do(t, http.MethodPut, fmt.Sprintf("/api/leaves/%s/approve", dto.ID), "hr-1",
		DecisionRequest{Comment: "enjoy"}, &final)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", final.Status)
	require.NotNil(t, final.ApprovedBy)
	assert.Equal(t, "hr-1", *final.ApprovedBy)

	var status LeaveStatusDTO
	resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/leaves/%s/status", dto.ID), "dev-1", nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", status.Status)

	var bal leave.Balance
	resp = srv.do(t, http.MethodGet, "/api/leaves/balance", "dev-1", nil, &bal)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, bal.Casual)
}

func TestAPI_CancelRefunds(t *testing.T) {
	srv := newTestServer(t)

	dto := srv.applyLeave(t, "dev-1", "casual", "2025-06-09", "2025-06-10")

	var cancelled LeaveDTO
	resp := srv.do(t, http.MethodPut, fmt.Sprintf("/api/leaves/%s/cancel", dto.ID), "dev-1", nil, &cancelled)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", cancelled.Status)

	var bal leave.Balance
	srv.do(t, http.MethodGet, "/api/leaves/balance", "dev-1", nil, &bal)
	assert.Equal(t, 12, bal.Casual)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_ErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	dto := srv.applyLeave(t, "dev-1", "casual", "2025-06-09", "2025-06-10")

	// Overlap: 400
	resp := srv.do(t, http.MethodPost, "/api/leaves/apply", "dev-1", ApplyLeaveRequest{
		StartDate: "2025-06-10", EndDate: "2025-06-11", Type: "casual",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed date: 400
	resp = srv.do(t, http.MethodPost, "/api/leaves/apply", "dev-1", ApplyLeaveRequest{
		StartDate: "10-06-2025", EndDate: "2025-06-11", Type: "casual",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Approver not awaited: 403
	resp = srv.do(t, http.MethodPut, fmt.Sprintf("/api/leaves/%s/approve", dto.ID), "dir-1", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Cancelling someone else's request: 403
	resp = srv.do(t, http.MethodPut, fmt.Sprintf("/api/leaves/%s/cancel", dto.ID), "int-1", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unknown request: 404
	resp = srv.do(t, http.MethodGet, "/api/leaves/ghost/status", "dev-1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// All-leaves listing is gated: 403
	resp = srv.do(t, http.MethodGet, "/api/leaves/all", "dev-1", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// =============================================================================
// EMPLOYEE ADMINISTRATION
// =============================================================================

func TestAPI_EmployeeAdministration(t *testing.T) {
	srv := newTestServer(t)

	mgr := "mgr-1"
	var created EmployeeDTO
	resp := srv.do(t, http.MethodPost, "/api/employees", "hr-1", EmployeeRequest{
		ID: "dev-2", Name: "Dev Two", Role: "developer", ReportingManagerID: &mgr,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, leave.DefaultLeaveBalance, created.CasualLeaveBalance)
	assert.False(t, created.Registered)

	// Non-HR writes are forbidden
	resp = srv.do(t, http.MethodPost, "/api/employees", "mgr-1", EmployeeRequest{
		ID: "dev-3", Name: "Dev Three", Role: "developer",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var updated EmployeeDTO
	resp = srv.do(t, http.MethodPut, "/api/employees/dev-2", "hr-1", EmployeeRequest{
		Name: "Renamed", Role: "developer", ReportingManagerID: &mgr,
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", updated.Name)

	resp = srv.do(t, http.MethodDelete, "/api/employees/dev-2", "hr-1", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodDelete, "/api/employees/dev-2", "hr-1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ProfileEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var me EmployeeDTO
	resp := srv.do(t, http.MethodGet, "/api/employees/me", "dev-1", nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dev-1", me.ID)

	var manager EmployeeDTO
	resp = srv.do(t, http.MethodGet, "/api/employees/manager", "dev-1", nil, &manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mgr-1", manager.ID)

	var team []EmployeeDTO
	resp = srv.do(t, http.MethodGet, "/api/employees/team", "mgr-1", nil, &team)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, team, 2)

	var approvers []EmployeeDTO
	resp = srv.do(t, http.MethodGet, "/api/employees/approvers", "int-1", nil, &approvers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, approvers, 3)
}

func TestAPI_Healthz(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
