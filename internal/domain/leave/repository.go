package leave

import (
	"context"
	"time"
)

type LeaveRequestFilter struct {
	UserID    *string
	CompanyID *string
	Status    *Status
	LeaveType *LeaveType
	Page      int
	Limit     int
}

// OverlapFilter selects requests whose date range touches [From, To].
type OverlapFilter struct {
	UserID    *string
	CompanyID *string
	Status    *Status
	From      time.Time
	To        time.Time
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	ListOverlapping(ctx context.Context, filter OverlapFilter) ([]LeaveRequest, error)

	// UpdatePending rewrites the editable fields while the request is still
	// pending and returns ErrLeaveNotPending otherwise.
	UpdatePending(ctx context.Context, req LeaveRequest) (LeaveRequest, error)

	// Review sets the final status while the request is still pending and
	// returns ErrLeaveNotPending otherwise.
	Review(ctx context.Context, id string, status Status, comment *string, reviewerID string, at time.Time) (LeaveRequest, error)
}
