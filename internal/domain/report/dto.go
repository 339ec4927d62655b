package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// REQUESTS
// ========================================

type PeriodRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *PeriodRequest) Validate(now time.Time) error {
	return validator.ValidatePeriod(r.Year, r.Month, now).Err()
}

type UserReportRequest struct {
	UserID string `json:"userId"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

func (r *UserReportRequest) Validate(now time.Time) error {
	errs := validator.ValidatePeriod(r.Year, r.Month, now)
	if validator.IsEmpty(r.UserID) {
		errs.Add("userId", "userId is required")
	}
	return errs.Err()
}

const (
	ExportAttendance = "attendance"
	ExportLeave      = "leave"
	ExportCompliance = "compliance"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

type ExportRequest struct {
	Type   string  `json:"type"`
	Format string  `json:"format"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	UserID *string `json:"userId,omitempty"`
}

func (r *ExportRequest) Validate(now time.Time) error {
	errs := validator.ValidatePeriod(r.Year, r.Month, now)

	if r.Format == "" {
		r.Format = FormatCSV
	}
	if !validator.IsInSlice(r.Type, []string{ExportAttendance, ExportLeave, ExportCompliance}) {
		errs.Add("type", "type must be attendance, leave or compliance")
	}
	if !validator.IsInSlice(r.Format, []string{FormatCSV, FormatXLSX, FormatPDF}) {
		errs.Add("format", "format must be csv, xlsx or pdf")
	}
	if r.UserID != nil && validator.IsEmpty(*r.UserID) {
		r.UserID = nil
	}
	if len(errs) > 0 {
		return errs
	}
	if r.Format == FormatPDF && r.Type != ExportCompliance {
		return ErrUnsupportedExport
	}
	return nil
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ========================================
// SHARED
// ========================================

type Period struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
}

type EmployeeInfo struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// WorkSummary is the per-user monthly aggregate. Averages only count
// clocked-out days.
type WorkSummary struct {
	WorkDays            int     `json:"workDays"`
	OpenRecords         int     `json:"openRecords"`
	TotalWorkingHours   float64 `json:"totalWorkingHours"`
	AverageWorkingHours float64 `json:"averageWorkingHours"`
	OvertimeHours       float64 `json:"overtimeHours"`
	NightWorkHours      float64 `json:"nightWorkHours"`
	HolidayWorkDays     int     `json:"holidayWorkDays"`
	ShortBreakDays      int     `json:"insufficientBreakDays"`
	LeaveDays           int     `json:"leaveDays"`
}

// ========================================
// USER MONTHLY REPORT
// ========================================

type DailyRow struct {
	Date           string  `json:"date"`
	DayOfWeek      string  `json:"dayOfWeek"`
	ClockIn        string  `json:"clockIn"`
	ClockOut       *string `json:"clockOut"`
	BreakMinutes   *int    `json:"breakMinutes"`
	WorkingHours   float64 `json:"workingHours"`
	OvertimeHours  float64 `json:"overtimeHours"`
	NightWorkHours float64 `json:"nightWorkHours"`
	HolidayWork    bool    `json:"holidayWork"`
	ShortBreak     bool    `json:"insufficientBreak"`
	Location       *string `json:"location"`
	Notes          *string `json:"notes"`
}

type LeaveRow struct {
	ID        string  `json:"id"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Days      int     `json:"days"`
	LeaveType string  `json:"leaveType"`
	Reason    string  `json:"reason"`
	Status    string  `json:"status"`
	Comment   *string `json:"comment"`
}

type UserMonthlyReport struct {
	Period           Period         `json:"period"`
	Employee         EmployeeInfo   `json:"employee"`
	Summary          WorkSummary    `json:"summary"`
	LeaveCountByType map[string]int `json:"leaveCountByType"`
	Records          []DailyRow     `json:"records"`
	Leaves           []LeaveRow     `json:"leaves"`
	GeneratedAt      string         `json:"generatedAt"`
}

// ========================================
// DEPARTMENT REPORT
// ========================================

type DepartmentEmployee struct {
	EmployeeInfo
	Summary          WorkSummary    `json:"summary"`
	LeaveCountByType map[string]int `json:"leaveCountByType"`
}

type DepartmentTotals struct {
	Employees           int            `json:"employees"`
	TotalWorkingHours   float64        `json:"totalWorkingHours"`
	AverageWorkingHours float64        `json:"averageWorkingHours"`
	TotalOvertimeHours  float64        `json:"totalOvertimeHours"`
	TotalLeaveDays      int            `json:"totalLeaveDays"`
	LeaveCountByType    map[string]int `json:"leaveCountByType"`
}

type DepartmentReport struct {
	Period      Period               `json:"period"`
	CompanyID   string               `json:"companyId"`
	Totals      DepartmentTotals     `json:"totals"`
	Employees   []DepartmentEmployee `json:"employees"`
	GeneratedAt string               `json:"generatedAt"`
}

// ========================================
// COMPLIANCE REPORT
// ========================================

type RankedEmployee struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
}

type EmployeeCompliance struct {
	EmployeeInfo
	WorkDays             int     `json:"workDays"`
	WorkingHours         float64 `json:"workingHours"`
	OvertimeHours        float64 `json:"overtimeHours"`
	NightWorkHours       float64 `json:"nightWorkHours"`
	HolidayWorkDays      int     `json:"holidayWorkDays"`
	ShortBreakDays       int     `json:"insufficientBreakDays"`
	PaidLeaveDays        int     `json:"paidLeaveDays"`
	PaidLeaveDaysYTD     int     `json:"paidLeaveDaysYearToDate"`
	ExceedsOvertimeLimit bool    `json:"exceedsOvertimeLimit"`
	MeetsPaidLeaveTarget bool    `json:"meetsPaidLeaveTarget"`
}

type ComplianceSummary struct {
	TotalEmployees          int     `json:"totalEmployees"`
	TotalWorkingHours       float64 `json:"totalWorkingHours"`
	AverageWorkingHours     float64 `json:"averageWorkingHours"`
	TotalOvertimeHours      float64 `json:"totalOvertimeHours"`
	EmployeesOverLimit      int     `json:"employeesOverOvertimeLimit"`
	TotalNightWorkHours     float64 `json:"totalNightWorkHours"`
	TotalHolidayWorkDays    int     `json:"totalHolidayWorkDays"`
	TotalShortBreakDays     int     `json:"totalInsufficientBreakDays"`
	MeetingPaidLeaveTarget  int     `json:"employeesMeetingPaidLeaveTarget"`
	PaidLeaveAttainmentRate float64 `json:"paidLeaveAttainmentRate"`
}

type OvertimeSection struct {
	LimitHours float64          `json:"limitHours"`
	Violations []RankedEmployee `json:"violations"`
	Top        []RankedEmployee `json:"top"`
}

type NightWorkSection struct {
	WindowStart string           `json:"windowStart"`
	WindowEnd   string           `json:"windowEnd"`
	Top         []RankedEmployee `json:"top"`
}

type RankingSection struct {
	Top []RankedEmployee `json:"top"`
}

// PaidLeaveEntry counts paid leave year to date.
type PaidLeaveEntry struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	PaidLeaveDays int    `json:"paidLeaveDays"`
	RemainingDays int    `json:"remainingDays"`
}

type PaidLeaveSection struct {
	TargetDays  int              `json:"targetDays"`
	CountedFrom string           `json:"countedFrom"`
	BelowTarget []PaidLeaveEntry `json:"belowTarget"`
}

type ComplianceReport struct {
	Period      Period               `json:"period"`
	CompanyID   string               `json:"companyId"`
	CompanyName string               `json:"companyName"`
	Summary     ComplianceSummary    `json:"summary"`
	Overtime    OvertimeSection      `json:"overtime"`
	NightWork   NightWorkSection     `json:"nightWork"`
	HolidayWork RankingSection       `json:"holidayWork"`
	BreakTime   RankingSection       `json:"breakTime"`
	PaidLeave   PaidLeaveSection     `json:"paidLeave"`
	Employees   []EmployeeCompliance `json:"employees"`
	GeneratedAt string               `json:"generatedAt"`
}
