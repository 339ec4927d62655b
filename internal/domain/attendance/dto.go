package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

const (
	maxLocationLength = 255
	maxNotesLength    = 1000
)

type ClockInRequest struct {
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Location != nil && len(*r.Location) > maxLocationLength {
		errs.Add("location", "location must not exceed 255 characters")
	}
	if r.Notes != nil && len(*r.Notes) > maxNotesLength {
		errs.Add("notes", "notes must not exceed 1000 characters")
	}

	return errs.Err()
}

// ClockOutRequest fields left nil keep the values recorded at clock-in.
type ClockOutRequest struct {
	Location     *string `json:"location,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	BreakMinutes *int    `json:"breakMinutes,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Location != nil && len(*r.Location) > maxLocationLength {
		errs.Add("location", "location must not exceed 255 characters")
	}
	if r.Notes != nil && len(*r.Notes) > maxNotesLength {
		errs.Add("notes", "notes must not exceed 1000 characters")
	}
	if r.BreakMinutes != nil && (*r.BreakMinutes < 0 || *r.BreakMinutes > 24*60) {
		errs.Add("breakMinutes", "breakMinutes must be between 0 and 1440")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	UserName     *string `json:"userName,omitempty"`
	Date         string  `json:"date"`
	ClockInTime  string  `json:"clockInTime"`
	ClockOutTime *string `json:"clockOutTime"`
	BreakMinutes *int    `json:"breakMinutes"`
	WorkingHours float64 `json:"workingHours"`
	Location     *string `json:"location"`
	Notes        *string `json:"notes"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

func NewAttendanceResponse(r Record) AttendanceResponse {
	return AttendanceResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		UserName:     r.UserName,
		Date:         r.Date.Format(validator.DateLayout),
		ClockInTime:  r.ClockInTime.Format(time.RFC3339),
		ClockOutTime: timePtrToString(r.ClockOutTime),
		BreakMinutes: r.BreakMinutes,
		WorkingHours: worktime.Round(r.WorkingHours()),
		Location:     r.Location,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

type AttendanceFilterRequest struct {
	UserID    *string `json:"userId,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`

	startDate *time.Time
	endDate   *time.Time
}

func (r *AttendanceFilterRequest) Validate() error {
	var errs validator.ValidationErrors

	validator.NormalizePagination(&r.Page, &r.Limit)

	if r.UserID != nil && validator.IsEmpty(*r.UserID) {
		r.UserID = nil
	}
	if r.StartDate != nil && *r.StartDate != "" {
		if d, ok := validator.IsValidDate(*r.StartDate); ok {
			r.startDate = &d
		} else {
			errs.Add("startDate", "startDate must be YYYY-MM-DD")
		}
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if d, ok := validator.IsValidDate(*r.EndDate); ok {
			r.endDate = &d
		} else {
			errs.Add("endDate", "endDate must be YYYY-MM-DD")
		}
	}
	if r.startDate != nil && r.endDate != nil && r.endDate.Before(*r.startDate) {
		errs.Add("endDate", "endDate must not be before startDate")
	}

	return errs.Err()
}

// Dates returns the parsed range after Validate.
func (r *AttendanceFilterRequest) Dates() (start, end *time.Time) {
	return r.startDate, r.endDate
}

type ListAttendanceResponse struct {
	Records    []AttendanceResponse `json:"records"`
	TotalCount int64                `json:"totalCount"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

type SummaryRequest struct {
	UserID *string `json:"userId,omitempty"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
}

func (r *SummaryRequest) Validate(now time.Time) error {
	if r.UserID != nil && validator.IsEmpty(*r.UserID) {
		r.UserID = nil
	}
	return validator.ValidatePeriod(r.Year, r.Month, now).Err()
}

// SummaryResponse aggregates one user's month. Averages only count
// clocked-out days.
type SummaryResponse struct {
	UserID              string  `json:"userId"`
	Year                int     `json:"year"`
	Month               int     `json:"month"`
	StartDate           string  `json:"startDate"`
	EndDate             string  `json:"endDate"`
	WorkDays            int     `json:"workDays"`
	OpenRecords         int     `json:"openRecords"`
	TotalWorkingHours   float64 `json:"totalWorkingHours"`
	AverageWorkingHours float64 `json:"averageWorkingHours"`
	OvertimeHours       float64 `json:"overtimeHours"`
	NightWorkHours      float64 `json:"nightWorkHours"`
	HolidayWorkDays     int     `json:"holidayWorkDays"`
}
