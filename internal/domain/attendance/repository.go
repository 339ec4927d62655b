package attendance

import (
	"context"
	"time"
)

type AttendanceFilter struct {
	UserID    *string
	CompanyID *string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// PeriodFilter selects every record of a user or a company between two dates, inclusive.
type PeriodFilter struct {
	UserID    *string
	CompanyID *string
	From      time.Time
	To        time.Time
}

type AttendanceRepository interface {
	// Create inserts a record. A second record for the same user and date
	// fails with ErrAlreadyClockedIn.
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (Record, error)

	// GetByUserAndDateForUpdate locks the row for the surrounding transaction.
	GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (Record, error)

	Update(ctx context.Context, record Record) (Record, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	ListForPeriod(ctx context.Context, filter PeriodFilter) ([]Record, error)
}
