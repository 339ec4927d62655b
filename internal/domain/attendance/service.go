package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens today's record for the caller
	ClockIn(ctx context.Context, principal user.Principal, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes today's record for the caller
	ClockOut(ctx context.Context, principal user.Principal, req ClockOutRequest) (AttendanceResponse, error)

	// GetToday returns nil when the caller has not clocked in today
	GetToday(ctx context.Context, principal user.Principal) (*AttendanceResponse, error)

	ListRecords(ctx context.Context, principal user.Principal, filter AttendanceFilterRequest) (ListAttendanceResponse, error)

	GetSummary(ctx context.Context, principal user.Principal, req SummaryRequest) (SummaryResponse, error)
}
