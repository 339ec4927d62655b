package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

// Record is one user's attendance for one calendar day.
type Record struct {
	ID           string
	UserID       string
	Date         time.Time
	ClockInTime  time.Time
	ClockOutTime *time.Time
	BreakMinutes *int
	Location     *string
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	UserName  *string
	CompanyID *string
}

func (r *Record) IsOpen() bool {
	return r.ClockOutTime == nil
}

// WorkingHours is zero until the record is clocked out.
func (r *Record) WorkingHours() float64 {
	if r.ClockOutTime == nil {
		return 0
	}
	return worktime.Hours(r.ClockInTime, *r.ClockOutTime)
}

func (r *Record) DayRecord() worktime.DayRecord {
	return worktime.DayRecord{
		Date:         r.Date,
		ClockIn:      r.ClockInTime,
		ClockOut:     r.ClockOutTime,
		BreakMinutes: r.BreakMinutes,
		Notes:        r.Notes,
	}
}
