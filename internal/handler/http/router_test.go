package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testEmployeeID    = "0190a1b2-0000-7000-8000-000000000001"
)

// ===== STUB SERVICES =====

type stubAttendanceService struct {
	attendance.AttendanceService
	checkInErr  error
	checkOutReq attendance.CheckOutRequest
}

func (s *stubAttendanceService) CheckIn(_ context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if s.checkInErr != nil {
		return attendance.AttendanceResponse{}, s.checkInErr
	}
	return attendance.AttendanceResponse{ID: "att-1", EmployeeID: testEmployeeID, Status: string(attendance.StatusPresent)}, nil
}

func (s *stubAttendanceService) CheckOut(_ context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResponse, error) {
	s.checkOutReq = req
	return attendance.CheckOutResponse{
		AttendanceResponse: attendance.AttendanceResponse{ID: req.ID},
		WorkingSummary:     attendance.WorkingSummary{TotalHours: 9, OvertimeHours: 1, ToilEarned: 1},
	}, nil
}

func (s *stubAttendanceService) ListAttendance(_ context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{
		TotalCount:  6,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  2,
		Showing:     "6-6 of 6",
		Attendances: []attendance.AttendanceResponse{{ID: "att-6"}},
	}, nil
}

type stubApprovalService struct {
	approval.Service
	approveReq approval.ApproveRequest
	createErr  error
}

func (s *stubApprovalService) CreateTimeOff(_ context.Context, req approval.CreateTimeOffRequest) (approval.RequestResponse, error) {
	if s.createErr != nil {
		return approval.RequestResponse{}, s.createErr
	}
	return approval.RequestResponse{ID: "req-1", Type: string(approval.TypeTimeOff), Status: "pending"}, nil
}

func (s *stubApprovalService) Approve(_ context.Context, req approval.ApproveRequest) (approval.RequestResponse, error) {
	s.approveReq = req
	return approval.RequestResponse{ID: req.ID, Type: string(req.Type), Status: "approved"}, nil
}

type stubMessageService struct {
	message.MessageService
}

func (stubMessageService) ListInbox(_ context.Context, filter message.InboxFilter) (message.ListMessageResponse, error) {
	return message.ListMessageResponse{Page: filter.Page, Limit: filter.Limit}, nil
}

type stubReportService struct {
	report.ReportService
	toil report.ToilStatementRequest
}

func (s *stubReportService) ExportAttendance(_ context.Context, req report.AttendanceExportRequest) (report.File, error) {
	if req.StartDate == "" {
		return report.File{}, validator.Field("start_date", "start_date must be in YYYY-MM-DD format")
	}
	return report.File{Name: "attendance_2024-01-01_2024-01-31.xlsx", ContentType: report.ContentTypeXLSX, Data: []byte("xlsx")}, nil
}

func (s *stubReportService) ToilStatement(_ context.Context, req report.ToilStatementRequest) (report.File, error) {
	s.toil = req
	return report.File{Name: "toil.pdf", ContentType: report.ContentTypePDF, Data: []byte("%PDF-1.3")}, nil
}

// ===== HELPERS =====

type testRouter struct {
	handler    http.Handler
	jwt        jwt.Service
	attendance *stubAttendanceService
	approval   *stubApprovalService
	report     *stubReportService
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)
	tr := &testRouter{
		jwt:        jwtSvc,
		attendance: &stubAttendanceService{},
		approval:   &stubApprovalService{},
		report:     &stubReportService{},
	}
	tr.handler = NewRouter(
		config.AppConfig{Env: "test", CORSAllowedOrigins: []string{"http://localhost:3000"}},
		jwtSvc,
		NewAttendanceHandler(tr.attendance),
		NewApprovalHandler(tr.approval),
		NewMessageHandler(&stubMessageService{}, sse.NewHub(), jwtSvc),
		NewReportHandler(tr.report),
	)
	return tr
}

func (tr *testRouter) token(t *testing.T, role user.Role) string {
	t.Helper()
	employeeID := testEmployeeID
	token, _, err := tr.jwt.GenerateAccessToken("user-1", &employeeID, role)
	require.NoError(t, err)
	return token
}

func (tr *testRouter) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeBody(t, w)
	assert.False(t, resp["success"].(bool))
	return resp["error"].(map[string]interface{})["code"].(string)
}

// ===== TESTS =====

func TestRouter_RequiresAccessToken(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodPost, "/api/v1/attendance/check-in", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	streamToken, _, err := tr.jwt.GenerateStreamToken("user-1", testEmployeeID)
	require.NoError(t, err)
	w = tr.do(t, http.MethodPost, "/api/v1/attendance/check-in", streamToken, map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CheckIn(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodPost, "/api/v1/attendance/check-in", tr.token(t, user.RoleEmployee), map[string]interface{}{"is_remote": false})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "att-1", data["id"])
	assert.Equal(t, "present", data["status"])
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.StatusConflict, "CONFLICT"},
		{"concurrent update", fmt.Errorf("failed to update: %w", attendance.ErrConcurrentUpdate), http.StatusConflict, "CONFLICT"},
		{"validation", validator.Field("latitude", "latitude must be between -90 and 90"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"profile required", user.ErrEmployeeProfileRequired, http.StatusForbidden, "FORBIDDEN"},
		{"store unavailable", fmt.Errorf("%w: dial tcp", database.ErrStoreUnavailable), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.attendance.checkInErr = tt.err

			w := tr.do(t, http.MethodPost, "/api/v1/attendance/check-in", tr.token(t, user.RoleEmployee), map[string]interface{}{})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestRouter_CheckOutUsesPathID(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodPost, "/api/v1/attendance/att-9/check-out", tr.token(t, user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "att-9", tr.attendance.checkOutReq.ID)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	summary := data["working_summary"].(map[string]interface{})
	assert.Equal(t, 9.0, summary["total_hours"])
	assert.Equal(t, 1.0, summary["toil_earned"])
}

func TestRouter_ListAttendanceRequiresPermission(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodGet, "/api/v1/attendance?page=2&limit=5", tr.token(t, user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = tr.do(t, http.MethodGet, "/api/v1/attendance?page=2&limit=5", tr.token(t, user.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "att-6", items[0].(map[string]interface{})["id"])

	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, 2.0, meta["page"])
	assert.Equal(t, 5.0, meta["limit"])
	assert.Equal(t, 6.0, meta["total_items"])
	assert.Equal(t, 2.0, meta["total_pages"])
	assert.Equal(t, "6-6 of 6", meta["showing"])
}

func TestRouter_EmptyInboxIsAnEmptyList(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodGet, "/api/v1/messages/inbox", tr.token(t, user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, []interface{}{}, body["data"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, 1.0, meta["page"])
	assert.Equal(t, 20.0, meta["limit"])
	assert.Equal(t, 0.0, meta["total_items"])
}

func TestRouter_RequestRoutes(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodPost, "/api/v1/requests/time-off", tr.token(t, user.RoleEmployee),
		map[string]interface{}{"date": "2024-01-20", "hours": 4, "reason": "family"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = tr.do(t, http.MethodPost, "/api/v1/requests/holiday", tr.token(t, user.RoleEmployee), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tr.approval.createErr = approval.ErrInsufficientToilBalance
	w = tr.do(t, http.MethodPost, "/api/v1/requests/time-off", tr.token(t, user.RoleEmployee),
		map[string]interface{}{"date": "2024-01-20", "hours": 40, "reason": "family"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ApproveRequiresPermission(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodPost, "/api/v1/requests/overtime/req-7/approve", tr.token(t, user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	award := 2.5
	w = tr.do(t, http.MethodPost, "/api/v1/requests/time-off/req-7/approve", tr.token(t, user.RoleManager),
		map[string]interface{}{"toil_hours_awarded": award})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, approval.TypeTimeOff, tr.approval.approveReq.Type)
	assert.Equal(t, "req-7", tr.approval.approveReq.ID)
	require.NotNil(t, tr.approval.approveReq.ToilHoursAwarded)
	assert.Equal(t, award, *tr.approval.approveReq.ToilHoursAwarded)
}

func TestRouter_Reports(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodGet, "/api/v1/reports/attendance.xlsx?start_date=2024-01-01&end_date=2024-01-31", tr.token(t, user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = tr.do(t, http.MethodGet, "/api/v1/reports/attendance.xlsx?start_date=2024-01-01&end_date=2024-01-31", tr.token(t, user.RoleOwner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance_2024-01-01_2024-01-31.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", w.Body.String())

	w = tr.do(t, http.MethodGet, "/api/v1/reports/attendance.xlsx", tr.token(t, user.RoleOwner), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = tr.do(t, http.MethodGet, "/api/v1/reports/toil/"+testEmployeeID+".pdf?start_date=2024-01-01&end_date=2024-01-31", tr.token(t, user.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testEmployeeID, tr.report.toil.EmployeeID)
	assert.Equal(t, "2024-01-01", tr.report.toil.StartDate)
	assert.Equal(t, report.ContentTypePDF, w.Header().Get("Content-Type"))
}

func TestRouter_StreamToken(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(t, http.MethodPost, "/api/v1/messages/stream-token", tr.token(t, user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 300.0, data["expires_in"])

	employeeID, err := tr.jwt.ValidateStreamToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, testEmployeeID, employeeID)

	w = tr.do(t, http.MethodGet, "/api/v1/messages/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = tr.do(t, http.MethodGet, "/api/v1/messages/stream?token="+tr.token(t, user.RoleEmployee), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
