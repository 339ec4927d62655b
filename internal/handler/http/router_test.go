package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	testCompany = "c-1"
	testLeaveID = "0192a6a4-8c8e-7d2e-9c3a-4f1b2c3d4e5f"
)

type fakeAuthService struct {
	auth.AuthService
	login func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	return f.login(ctx, req)
}

func (f *fakeAuthService) GoogleLoginURL(state string) (string, error) {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state, nil
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	clockIn func(ctx context.Context, p user.Principal, req attendance.ClockInRequest) (attendance.AttendanceResponse, error)
	list    func(ctx context.Context, p user.Principal, f attendance.AttendanceFilterRequest) (attendance.ListAttendanceResponse, error)
}

func (f *fakeAttendanceService) ClockIn(ctx context.Context, p user.Principal, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	return f.clockIn(ctx, p, req)
}

func (f *fakeAttendanceService) ListRecords(ctx context.Context, p user.Principal, filter attendance.AttendanceFilterRequest) (attendance.ListAttendanceResponse, error) {
	return f.list(ctx, p, filter)
}

type fakeLeaveService struct {
	leave.LeaveService
	create       func(ctx context.Context, p user.Principal, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error)
	updateStatus func(ctx context.Context, p user.Principal, id string, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, p user.Principal, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	return f.create(ctx, p, req)
}

func (f *fakeLeaveService) UpdateStatus(ctx context.Context, p user.Principal, id string, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
	return f.updateStatus(ctx, p, id, req)
}

type fakeReportService struct {
	report.ReportService
	export func(ctx context.Context, p user.Principal, req report.ExportRequest) (report.ExportFile, error)
}

func (f *fakeReportService) Export(ctx context.Context, p user.Principal, req report.ExportRequest) (report.ExportFile, error) {
	return f.export(ctx, p, req)
}

type fakeAdminService struct {
	user.AdminService
}

type fakeCompanyService struct {
	company.CompanyService
	getPublic func(ctx context.Context, publicID string) (company.PublicCompanyResponse, error)
}

func (f *fakeCompanyService) GetPublic(ctx context.Context, publicID string) (company.PublicCompanyResponse, error) {
	return f.getPublic(ctx, publicID)
}

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	auth       *fakeAuthService
	attendance *fakeAttendanceService
	leave      *fakeLeaveService
	report     *fakeReportService
	company    *fakeCompanyService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		jwt:        jwt.NewJWTService("test-secret", time.Hour),
		auth:       &fakeAuthService{},
		attendance: &fakeAttendanceService{},
		leave:      &fakeLeaveService{},
		report:     &fakeReportService{},
		company:    &fakeCompanyService{},
	}
	s.handler = NewRouter(RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}}, s.jwt, nil,
		middleware.NewIPRateLimiter(rate.Every(time.Hour), 2),
		Handlers{
			Auth:       NewAuthHandler(s.auth, "http://localhost:3000", false),
			Attendance: NewAttendanceHandler(s.attendance),
			Leave:      NewLeaveHandler(s.leave),
			Report:     NewReportHandler(s.report),
			User:       NewUserHandler(&fakeAdminService{}),
			Company:    NewCompanyHandler(s.company),
		})
	return s
}

func (s *testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	var companyID *string
	if role != user.RoleSuperAdmin {
		c := testCompany
		companyID = &c
	}
	token, _, err := s.jwt.GenerateAccessToken("u-1", role, companyID)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.auth.login = func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
		if req.Password != "secret123" {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{Token: "tok", TokenType: "Bearer"}, nil
	}

	rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "tok", body["data"].(map[string]any)["token"])

	rec = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Burst of two is spent.
	rec = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLogin_UnverifiedIsForbidden(t *testing.T) {
	s := newTestServer(t)
	s.auth.login = func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
		return auth.LoginResponse{}, auth.ErrEmailNotVerified
	}

	rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Email not verified", decodeBody(t, rec)["message"])
}

func TestGoogleLoginSetsStateCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/auth/google/login", "", "")

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.Contains(t, rec.Header().Get("Location"), "state="+cookies[0].Value)
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=b&code=c", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "a"})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://localhost:3000/auth/callback/google?error=state_mismatch", rec.Header().Get("Location"))
}

func TestClockIn(t *testing.T) {
	s := newTestServer(t)
	var seen user.Principal
	s.attendance.clockIn = func(ctx context.Context, p user.Principal, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
		seen = p
		if req.Notes != nil && *req.Notes == "again" {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.AttendanceResponse{ID: "a-1", UserID: p.UserID}, nil
	}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/attendance/clock-in", "", "").Code)

	token := s.token(t, user.RoleEmployee)
	rec := s.do(http.MethodPost, "/api/attendance/clock-in", token, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", seen.UserID)
	assert.Equal(t, testCompany, seen.ScopeCompanyID)

	rec = s.do(http.MethodPost, "/api/attendance/clock-in", token, `{"notes":"again"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAttendance_Meta(t *testing.T) {
	s := newTestServer(t)
	var got attendance.AttendanceFilterRequest
	s.attendance.list = func(ctx context.Context, p user.Principal, f attendance.AttendanceFilterRequest) (attendance.ListAttendanceResponse, error) {
		got = f
		return attendance.ListAttendanceResponse{
			Records:    []attendance.AttendanceResponse{{ID: "a-1"}},
			TotalCount: 41,
			Page:       2,
			Limit:      20,
		}, nil
	}

	rec := s.do(http.MethodGet, "/api/attendance/records?page=2&startDate=2025-04-01", s.token(t, user.RoleEmployee), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, got.Page)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, "2025-04-01", *got.StartDate)
	meta := decodeBody(t, rec)["meta"].(map[string]any)
	assert.Equal(t, 3.0, meta["totalPages"])

	rec = s.do(http.MethodGet, "/api/attendance/records?page=abc", s.token(t, user.RoleEmployee), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeave_Validation(t *testing.T) {
	s := newTestServer(t)
	s.leave.create = func(ctx context.Context, p user.Principal, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
		var errs validator.ValidationErrors
		errs.Add("endDate", "endDate must not be before startDate")
		return leave.LeaveRequestResponse{}, errs
	}

	rec := s.do(http.MethodPost, "/api/leave/", s.token(t, user.RoleEmployee), `{"startDate":"2025-04-03","endDate":"2025-04-01","leaveType":"PAID"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "endDate")
}

func TestUpdateLeaveStatus_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	called := false
	s.leave.updateStatus = func(ctx context.Context, p user.Principal, id string, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
		called = true
		assert.Equal(t, testLeaveID, id)
		return leave.LeaveRequestResponse{ID: id, Status: req.Status}, nil
	}
	body := `{"status":"APPROVED"}`

	rec := s.do(http.MethodPut, "/api/leave/"+testLeaveID+"/status", s.token(t, user.RoleEmployee), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	rec = s.do(http.MethodPut, "/api/leave/"+testLeaveID+"/status", s.token(t, user.RoleAdmin), body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestMalformedPathIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	s.leave.updateStatus = func(ctx context.Context, p user.Principal, id string, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
		t.Fatalf("service reached with id %q", id)
		return leave.LeaveRequestResponse{}, nil
	}

	tests := []struct {
		method, target, body string
		role                 user.Role
	}{
		{http.MethodGet, "/api/leave/not-a-uuid", "", user.RoleEmployee},
		{http.MethodPut, "/api/leave/not-a-uuid/status", `{"status":"APPROVED"}`, user.RoleAdmin},
		{http.MethodGet, "/api/admin/users/42", "", user.RoleAdmin},
		{http.MethodGet, "/api/companies/acme", "", user.RoleAdmin},
		{http.MethodGet, "/api/reports/user/bob?year=2025&month=4", "", user.RoleEmployee},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := s.do(tt.method, tt.target, s.token(t, tt.role), tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestMalformedIDFilterIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	s.attendance.list = func(ctx context.Context, p user.Principal, f attendance.AttendanceFilterRequest) (attendance.ListAttendanceResponse, error) {
		t.Fatal("service reached with a malformed userId")
		return attendance.ListAttendanceResponse{}, nil
	}

	rec := s.do(http.MethodGet, "/api/attendance/records?userId=bob", s.token(t, user.RoleAdmin), "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["errors"], "userId")
}

func TestMalformedCompanyHeaderIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	s.attendance.list = func(ctx context.Context, p user.Principal, f attendance.AttendanceFilterRequest) (attendance.ListAttendanceResponse, error) {
		t.Fatal("service reached with a malformed company scope")
		return attendance.ListAttendanceResponse{}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/records", nil)
	req.Header.Set("Authorization", "Bearer "+s.token(t, user.RoleSuperAdmin))
	req.Header.Set(middleware.CompanyHeader, "acme")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportExport(t *testing.T) {
	s := newTestServer(t)
	s.report.export = func(ctx context.Context, p user.Principal, req report.ExportRequest) (report.ExportFile, error) {
		assert.Equal(t, 2025, req.Year)
		assert.Equal(t, 4, req.Month)
		return report.ExportFile{Filename: "attendance_2025-04.csv", ContentType: "text/csv", Data: []byte("date\n")}, nil
	}

	rec := s.do(http.MethodGet, "/api/reports/export?type=attendance&format=csv&year=2025&month=4", s.token(t, user.RoleEmployee), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance_2025-04.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "date\n", rec.Body.String())
}

func TestReportDepartment_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/reports/department?year=2025&month=4", s.token(t, user.RoleEmployee), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUsers_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/admin/users/", s.token(t, user.RoleEmployee), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicCompany_NoToken(t *testing.T) {
	s := newTestServer(t)
	s.company.getPublic = func(ctx context.Context, publicID string) (company.PublicCompanyResponse, error) {
		if publicID != "abc123" {
			return company.PublicCompanyResponse{}, company.ErrCompanyNotFound
		}
		return company.PublicCompanyResponse{PublicID: publicID, Name: "Acme"}, nil
	}

	rec := s.do(http.MethodGet, "/api/companies/public/abc123", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decodeBody(t, rec)["data"].(map[string]any)["name"])

	rec = s.do(http.MethodGet, "/api/companies/public/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanyCreate_RequiresSuperAdmin(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/companies/", s.token(t, user.RoleAdmin), `{"name":"Other"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnhandledErrorIs500(t *testing.T) {
	s := newTestServer(t)
	s.attendance.clockIn = func(ctx context.Context, p user.Principal, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
		return attendance.AttendanceResponse{}, errors.New("connection reset")
	}

	rec := s.do(http.MethodPost, "/api/attendance/clock-in", s.token(t, user.RoleEmployee), "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred", decodeBody(t, rec)["message"])
}
