package leave

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type LeaveService interface {
	Create(ctx context.Context, principal user.Principal, req CreateLeaveRequest) (LeaveRequestResponse, error)
	List(ctx context.Context, principal user.Principal, filter LeaveRequestFilterRequest) (ListLeaveRequestResponse, error)
	Get(ctx context.Context, principal user.Principal, id string) (LeaveRequestResponse, error)
	Update(ctx context.Context, principal user.Principal, id string, req UpdateLeaveRequest) (LeaveRequestResponse, error)
	UpdateStatus(ctx context.Context, principal user.Principal, id string, req UpdateStatusRequest) (LeaveRequestResponse, error)
}
