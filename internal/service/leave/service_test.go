package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLeaveRepo is an in-memory repository honouring the pending-only updates.
type fakeLeaveRepo struct {
	requests map[string]leave.LeaveRequest
	seq      int
	listErr  error
	lastList leave.LeaveRequestFilter
	company  map[string]string // user -> company
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{
		requests: map[string]leave.LeaveRequest{},
		company:  map[string]string{"u-1": "c-1", "u-2": "c-1", "u-9": "c-9"},
	}
}

func (f *fakeLeaveRepo) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.seq++
	req.ID = "lr-" + string(rune('0'+f.seq))
	if c, ok := f.company[req.UserID]; ok {
		req.CompanyID = &c
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	lr, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return lr, nil
}

func (f *fakeLeaveRepo) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	f.lastList = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := []leave.LeaveRequest{}
	for _, lr := range f.requests {
		if filter.UserID != nil && *filter.UserID != lr.UserID {
			continue
		}
		out = append(out, lr)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) ListOverlapping(ctx context.Context, filter leave.OverlapFilter) ([]leave.LeaveRequest, error) {
	return nil, nil
}

func (f *fakeLeaveRepo) UpdatePending(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	current, ok := f.requests[req.ID]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if !current.IsPending() {
		return leave.LeaveRequest{}, leave.ErrLeaveNotPending
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeLeaveRepo) Review(ctx context.Context, id string, status leave.Status, comment *string, reviewerID string, at time.Time) (leave.LeaveRequest, error) {
	current, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if !current.IsPending() {
		return leave.LeaveRequest{}, leave.ErrLeaveNotPending
	}
	current.Status = status
	current.Comment = comment
	current.ReviewedBy = &reviewerID
	current.ReviewedAt = &at
	f.requests[id] = current
	return current, nil
}

type fakeInvalidator struct {
	companies []string
	lastTo    time.Time
}

func (f *fakeInvalidator) InvalidateRange(ctx context.Context, companyID string, from, to time.Time) {
	f.companies = append(f.companies, companyID)
	f.lastTo = to
}

var (
	owner   = user.Principal{UserID: "u-1", Role: user.RoleEmployee, CompanyID: "c-1", ScopeCompanyID: "c-1"}
	peer    = user.Principal{UserID: "u-2", Role: user.RoleEmployee, CompanyID: "c-1", ScopeCompanyID: "c-1"}
	admin   = user.Principal{UserID: "a-1", Role: user.RoleAdmin, CompanyID: "c-1", ScopeCompanyID: "c-1"}
	outside = user.Principal{UserID: "a-9", Role: user.RoleAdmin, CompanyID: "c-9", ScopeCompanyID: "c-9"}
	super   = user.Principal{UserID: "s-1", Role: user.RoleSuperAdmin}
)

func strPtr(s string) *string { return &s }

func newTestService() (*LeaveServiceImpl, *fakeLeaveRepo, *fakeInvalidator) {
	repo := newFakeLeaveRepo()
	inv := &fakeInvalidator{}
	svc := NewLeaveService(repo, inv).(*LeaveServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo, inv
}

func createPending(t *testing.T, svc *LeaveServiceImpl) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), owner, leave.CreateLeaveRequest{
		StartDate: "2025-04-01",
		EndDate:   "2025-04-03",
		LeaveType: "PAID",
		Reason:    "  trip  ",
	})
	require.NoError(t, err)
	return resp
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService()

	resp := createPending(t, svc)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, 3, resp.Days)
	assert.Equal(t, "trip", resp.Reason)
	assert.Equal(t, "u-1", resp.UserID)
}

func TestCreate_EndBeforeStart(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), owner, leave.CreateLeaveRequest{
		StartDate: "2025-04-03",
		EndDate:   "2025-04-01",
		LeaveType: "PAID",
	})

	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
	assert.Equal(t, "start date must be before or equal to end date", err.Error())
}

func TestGet_Access(t *testing.T) {
	svc, _, _ := newTestService()
	created := createPending(t, svc)

	tests := []struct {
		name      string
		principal user.Principal
		wantErr   error
	}{
		{"owner", owner, nil},
		{"admin of same company", admin, nil},
		{"super admin", super, nil},
		{"other employee", peer, user.ErrForbidden},
		{"admin of another company", outside, leave.ErrLeaveRequestNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(context.Background(), tt.principal, created.ID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService()
	created := createPending(t, svc)

	resp, err := svc.Update(context.Background(), owner, created.ID, leave.UpdateLeaveRequest{EndDate: strPtr("2025-04-05")})

	require.NoError(t, err)
	assert.Equal(t, "2025-04-05", resp.EndDate)
	assert.Equal(t, 5, resp.Days)
}

func TestUpdate_Rules(t *testing.T) {
	svc, _, _ := newTestService()
	created := createPending(t, svc)

	_, err := svc.Update(context.Background(), admin, created.ID, leave.UpdateLeaveRequest{Reason: strPtr("x")})
	assert.ErrorIs(t, err, leave.ErrNotOwner)

	_, err = svc.Update(context.Background(), owner, created.ID, leave.UpdateLeaveRequest{EndDate: strPtr("2025-03-01")})
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)

	_, err = svc.UpdateStatus(context.Background(), admin, created.ID, leave.UpdateStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, created.ID, leave.UpdateLeaveRequest{Reason: strPtr("x")})
	assert.ErrorIs(t, err, leave.ErrLeaveNotPending)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, inv := newTestService()
	created := createPending(t, svc)

	resp, err := svc.UpdateStatus(context.Background(), admin, created.ID, leave.UpdateStatusRequest{Status: "APPROVED", Comment: strPtr(" enjoy ")})

	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)
	assert.Equal(t, "enjoy", *resp.Comment)
	assert.Equal(t, "a-1", *resp.ReviewedBy)
	assert.Equal(t, "2025-04-01T10:00:00Z", *resp.ReviewedAt)
	assert.Equal(t, []string{"c-1"}, inv.companies)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), inv.lastTo, "later months carry the year-to-date count")

	_, err = svc.UpdateStatus(context.Background(), admin, created.ID, leave.UpdateStatusRequest{Status: "REJECTED"})
	assert.ErrorIs(t, err, leave.ErrLeaveNotPending)
}

func TestUpdateStatus_Forbidden(t *testing.T) {
	svc, _, _ := newTestService()
	created := createPending(t, svc)

	_, err := svc.UpdateStatus(context.Background(), owner, created.ID, leave.UpdateStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = svc.UpdateStatus(context.Background(), outside, created.ID, leave.UpdateStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestService()
	created := createPending(t, svc)

	_, err := svc.UpdateStatus(context.Background(), admin, created.ID, leave.UpdateStatusRequest{Status: "PENDING"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, leave.ErrLeaveNotPending)
}

func TestList(t *testing.T) {
	svc, repo, _ := newTestService()
	createPending(t, svc)

	resp, err := svc.List(context.Background(), owner, leave.LeaveRequestFilterRequest{Status: strPtr("PENDING")})
	require.NoError(t, err)
	assert.Len(t, resp.LeaveRequests, 1)
	assert.Equal(t, "u-1", *repo.lastList.UserID)
	assert.Equal(t, leave.StatusPending, *repo.lastList.Status)

	_, err = svc.List(context.Background(), owner, leave.LeaveRequestFilterRequest{UserID: strPtr("u-2")})
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestList_FailureIsReported(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.listErr = errors.New("relation does not exist")

	_, err := svc.List(context.Background(), admin, leave.LeaveRequestFilterRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list leave requests")
}
