package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheTTL = 10 * time.Minute

type Config struct {
	Location         *time.Location
	ShortBreakMarker string
	CacheTTL         time.Duration
}

type ReportServiceImpl struct {
	attendance.AttendanceRepository
	leave.LeaveRequestRepository
	user.UserRepository
	company.CompanyRepository

	// cache may be nil, in which case every compliance request is computed.
	cache    report.ComplianceCache
	cacheTTL time.Duration
	group    singleflight.Group
	agg      aggregator
	now      func() time.Time
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	cache report.ComplianceCache,
	cfg Config,
) report.ReportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &ReportServiceImpl{
		AttendanceRepository:   attendanceRepo,
		LeaveRequestRepository: leaveRepo,
		UserRepository:         userRepo,
		CompanyRepository:      companyRepo,
		cache:                  cache,
		cacheTTL:               cfg.CacheTTL,
		agg:                    aggregator{loc: cfg.Location, marker: cfg.ShortBreakMarker},
		now:                    time.Now,
	}
}

// GetUserMonthly implements report.ReportService.
func (s *ReportServiceImpl) GetUserMonthly(ctx context.Context, principal user.Principal, req report.UserReportRequest) (report.UserMonthlyReport, error) {
	if err := req.Validate(s.localNow()); err != nil {
		return report.UserMonthlyReport{}, err
	}

	target, err := s.resolveUser(ctx, principal, req.UserID)
	if err != nil {
		return report.UserMonthlyReport{}, err
	}

	p := newPeriod(req.Year, req.Month)
	records, leaves, err := s.loadUserMonth(ctx, target.ID, p)
	if err != nil {
		return report.UserMonthlyReport{}, err
	}

	stats := s.agg.collect([]user.User{target}, records, leaves, p)[0]

	return report.UserMonthlyReport{
		Period:           p.dto(),
		Employee:         stats.info,
		Summary:          stats.summary(),
		LeaveCountByType: stats.leaveByType,
		Records:          s.agg.dailyRows(records),
		Leaves:           leaveRows(leaves),
		GeneratedAt:      s.now().UTC().Format(time.RFC3339),
	}, nil
}

// GetDepartment implements report.ReportService.
func (s *ReportServiceImpl) GetDepartment(ctx context.Context, principal user.Principal, req report.PeriodRequest) (report.DepartmentReport, error) {
	if err := req.Validate(s.localNow()); err != nil {
		return report.DepartmentReport{}, err
	}
	companyID, err := scopedCompany(principal)
	if err != nil {
		return report.DepartmentReport{}, err
	}

	p := newPeriod(req.Year, req.Month)
	stats, err := s.loadCompanyMonth(ctx, companyID, p)
	if err != nil {
		return report.DepartmentReport{}, err
	}

	return buildDepartment(companyID, p, stats, s.now().UTC()), nil
}

// GetCompanyCompliance implements report.ReportService. Concurrent requests
// for the same company and month share one computation.
func (s *ReportServiceImpl) GetCompanyCompliance(ctx context.Context, principal user.Principal, req report.PeriodRequest) (report.ComplianceReport, error) {
	if err := req.Validate(s.localNow()); err != nil {
		return report.ComplianceReport{}, err
	}
	companyID, err := scopedCompany(principal)
	if err != nil {
		return report.ComplianceReport{}, err
	}

	if cached := s.cachedCompliance(ctx, companyID, req.Year, req.Month); cached != nil {
		return *cached, nil
	}

	key := fmt.Sprintf("%s:%04d-%02d", companyID, req.Year, req.Month)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Shared by every waiting caller, so one cancellation must not fail the rest.
		flightCtx := context.WithoutCancel(ctx)
		rep, err := s.buildCompliance(flightCtx, companyID, newPeriod(req.Year, req.Month))
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(flightCtx, rep, s.cacheTTL); err != nil {
				slog.Warn("failed to cache compliance report", "company_id", companyID, "error", err)
			}
		}
		return rep, nil
	})
	if err != nil {
		return report.ComplianceReport{}, err
	}
	return v.(report.ComplianceReport), nil
}

func (s *ReportServiceImpl) cachedCompliance(ctx context.Context, companyID string, year, month int) *report.ComplianceReport {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, companyID, year, month)
	if err != nil {
		slog.Warn("compliance cache unavailable", "company_id", companyID, "error", err)
		return nil
	}
	return cached
}

func (s *ReportServiceImpl) buildCompliance(ctx context.Context, companyID string, p period) (report.ComplianceReport, error) {
	c, err := s.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return report.ComplianceReport{}, err
		}
		return report.ComplianceReport{}, fmt.Errorf("failed to get company: %w", err)
	}

	stats, err := s.loadCompanyMonth(ctx, companyID, p)
	if err != nil {
		return report.ComplianceReport{}, err
	}

	return buildCompliance(c.ID, c.Name, p, stats, s.now().UTC()), nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, principal user.Principal, req report.ExportRequest) (report.ExportFile, error) {
	if err := req.Validate(s.localNow()); err != nil {
		return report.ExportFile{}, err
	}

	format := export.Format(req.Format)
	var (
		data []byte
		err  error
	)

	switch req.Type {
	case report.ExportAttendance, report.ExportLeave:
		data, err = s.exportUserMonth(ctx, principal, req, format)
	case report.ExportCompliance:
		data, err = s.exportCompliance(ctx, principal, req, format)
	default:
		return report.ExportFile{}, report.ErrUnsupportedExport
	}
	if err != nil {
		return report.ExportFile{}, err
	}

	return report.ExportFile{
		Filename:    export.Filename(req.Type, req.Year, req.Month, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// exportUserMonth exports the caller's own month unless an admin names another user.
func (s *ReportServiceImpl) exportUserMonth(ctx context.Context, principal user.Principal, req report.ExportRequest, format export.Format) ([]byte, error) {
	userID := principal.UserID
	if req.UserID != nil {
		userID = *req.UserID
	}
	target, err := s.resolveUser(ctx, principal, userID)
	if err != nil {
		return nil, err
	}

	p := newPeriod(req.Year, req.Month)
	var table export.Table
	if req.Type == report.ExportAttendance {
		records, err := s.AttendanceRepository.ListForPeriod(ctx, attendance.PeriodFilter{UserID: &target.ID, From: p.first, To: p.last})
		if err != nil {
			return nil, fmt.Errorf("failed to load attendance for export: %w", err)
		}
		table = attendanceTable(target.Name, records, s.agg.loc)
	} else {
		leaves, err := s.LeaveRequestRepository.ListOverlapping(ctx, leave.OverlapFilter{UserID: &target.ID, From: p.first, To: p.last})
		if err != nil {
			return nil, fmt.Errorf("failed to load leave requests for export: %w", err)
		}
		table = leaveTable(target.Name, leaves)
	}

	return render(format, table)
}

func (s *ReportServiceImpl) exportCompliance(ctx context.Context, principal user.Principal, req report.ExportRequest, format export.Format) ([]byte, error) {
	rep, err := s.GetCompanyCompliance(ctx, principal, report.PeriodRequest{Year: req.Year, Month: req.Month})
	if err != nil {
		return nil, err
	}

	if format == export.FormatPDF {
		return export.PDF(complianceDocument(rep))
	}
	return render(format, complianceEmployeeTable(rep))
}

func render(format export.Format, table export.Table) ([]byte, error) {
	switch format {
	case export.FormatXLSX:
		return export.XLSX(table)
	case export.FormatCSV:
		return export.CSV(table)
	default:
		return nil, report.ErrUnsupportedExport
	}
}

// resolveUser returns the report subject. Employees may only name themselves;
// admins outside the subject's company get not found.
func (s *ReportServiceImpl) resolveUser(ctx context.Context, principal user.Principal, userID string) (user.User, error) {
	if userID != principal.UserID && !principal.IsAdmin() {
		return user.User{}, user.ErrForbidden
	}

	target, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !principal.CanAccessUser(target) {
		return user.User{}, user.ErrUserNotFound
	}
	return target, nil
}

func (s *ReportServiceImpl) loadUserMonth(ctx context.Context, userID string, p period) ([]attendance.Record, []leave.LeaveRequest, error) {
	records, err := s.AttendanceRepository.ListForPeriod(ctx, attendance.PeriodFilter{UserID: &userID, From: p.first, To: p.last})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attendance for report: %w", err)
	}
	leaves, err := s.LeaveRequestRepository.ListOverlapping(ctx, leave.OverlapFilter{UserID: &userID, From: p.first, To: p.last})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load leave requests for report: %w", err)
	}
	return records, leaves, nil
}

func (s *ReportServiceImpl) loadCompanyMonth(ctx context.Context, companyID string, p period) ([]*employeeStats, error) {
	users, err := s.UserRepository.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company users: %w", err)
	}
	records, err := s.AttendanceRepository.ListForPeriod(ctx, attendance.PeriodFilter{CompanyID: &companyID, From: p.first, To: p.last})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance for report: %w", err)
	}
	approved := leave.StatusApproved
	leaves, err := s.LeaveRequestRepository.ListOverlapping(ctx, leave.OverlapFilter{
		CompanyID: &companyID,
		Status:    &approved,
		From:      p.yearStart,
		To:        p.last,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load leave requests for report: %w", err)
	}

	return s.agg.collect(users, records, leaves, p), nil
}

// scopedCompany is the single company an aggregate report runs over.
func scopedCompany(principal user.Principal) (string, error) {
	if !principal.IsAdmin() {
		return "", user.ErrForbidden
	}
	companyID := principal.CompanyFilter()
	if companyID == nil || *companyID == "" {
		return "", report.ErrCompanyScopeRequired
	}
	return *companyID, nil
}

func (s *ReportServiceImpl) localNow() time.Time {
	return s.now().In(s.agg.loc)
}

func formatHours(v float64) string {
	return strconv.FormatFloat(worktime.Round(v), 'f', 2, 64)
}

func attendanceTable(name string, records []attendance.Record, loc *time.Location) export.Table {
	table := export.Table{
		Title:   "Attendance " + name,
		Headers: []string{"date", "clock-in", "clock-out", "hours", "notes"},
		Rows:    make([][]string, 0, len(records)),
	}
	for i := range records {
		rec := records[i]
		clockOut := ""
		if rec.ClockOutTime != nil {
			clockOut = rec.ClockOutTime.In(loc).Format("15:04")
		}
		notes := ""
		if rec.Notes != nil {
			notes = *rec.Notes
		}
		table.Rows = append(table.Rows, []string{
			rec.Date.Format(validator.DateLayout),
			rec.ClockInTime.In(loc).Format("15:04"),
			clockOut,
			formatHours(rec.WorkingHours()),
			notes,
		})
	}
	return table
}

func leaveTable(name string, leaves []leave.LeaveRequest) export.Table {
	table := export.Table{
		Title:   "Leave " + name,
		Headers: []string{"start", "end", "type", "reason", "status", "comment"},
		Rows:    make([][]string, 0, len(leaves)),
	}
	for _, lr := range leaves {
		comment := ""
		if lr.Comment != nil {
			comment = *lr.Comment
		}
		table.Rows = append(table.Rows, []string{
			lr.StartDate.Format(validator.DateLayout),
			lr.EndDate.Format(validator.DateLayout),
			string(lr.LeaveType),
			lr.Reason,
			string(lr.Status),
			comment,
		})
	}
	return table
}

func complianceEmployeeTable(rep report.ComplianceReport) export.Table {
	table := export.Table{
		Title: "Employees",
		Headers: []string{
			"name", "email", "work days", "working hours", "overtime hours",
			"night work hours", "holiday work days", "insufficient break days",
			"paid leave days", "over overtime limit", "meets paid leave target",
		},
		Rows: make([][]string, 0, len(rep.Employees)),
	}
	for _, e := range rep.Employees {
		table.Rows = append(table.Rows, []string{
			e.Name,
			e.Email,
			strconv.Itoa(e.WorkDays),
			formatHours(e.WorkingHours),
			formatHours(e.OvertimeHours),
			formatHours(e.NightWorkHours),
			strconv.Itoa(e.HolidayWorkDays),
			strconv.Itoa(e.ShortBreakDays),
			strconv.Itoa(e.PaidLeaveDays),
			yesNo(e.ExceedsOvertimeLimit),
			yesNo(e.MeetsPaidLeaveTarget),
		})
	}
	return table
}

func rankingTable(title, valueHeader string, entries []report.RankedEmployee) export.Table {
	table := export.Table{
		Title:   title,
		Headers: []string{"rank", "name", valueHeader},
		Rows:    make([][]string, 0, len(entries)),
	}
	for i, e := range entries {
		table.Rows = append(table.Rows, []string{strconv.Itoa(i + 1), e.Name, formatHours(e.Value)})
	}
	return table
}

func complianceDocument(rep report.ComplianceReport) export.Document {
	sum := rep.Summary
	summary := export.Table{
		Title:   "Summary",
		Headers: []string{"metric", "value"},
		Rows: [][]string{
			{"employees", strconv.Itoa(sum.TotalEmployees)},
			{"total working hours", formatHours(sum.TotalWorkingHours)},
			{"average working hours", formatHours(sum.AverageWorkingHours)},
			{"total overtime hours", formatHours(sum.TotalOvertimeHours)},
			{"employees over overtime limit", strconv.Itoa(sum.EmployeesOverLimit)},
			{"total night work hours", formatHours(sum.TotalNightWorkHours)},
			{"total holiday work days", strconv.Itoa(sum.TotalHolidayWorkDays)},
			{"total insufficient break days", strconv.Itoa(sum.TotalShortBreakDays)},
			{"paid leave attainment rate", strconv.FormatFloat(sum.PaidLeaveAttainmentRate*100, 'f', 2, 64) + "%"},
		},
	}

	paidLeave := export.Table{
		Title:   fmt.Sprintf("Paid leave below %d days since %s", rep.PaidLeave.TargetDays, rep.PaidLeave.CountedFrom),
		Headers: []string{"name", "paid leave days", "remaining days"},
	}
	for _, e := range rep.PaidLeave.BelowTarget {
		paidLeave.Rows = append(paidLeave.Rows, []string{e.Name, strconv.Itoa(e.PaidLeaveDays), strconv.Itoa(e.RemainingDays)})
	}

	return export.Document{
		Title:    "Compliance report " + rep.CompanyName,
		Subtitle: fmt.Sprintf("%s to %s", rep.Period.StartDate, rep.Period.EndDate),
		Author:   rep.CompanyName,
		Sections: []export.Table{
			summary,
			rankingTable(fmt.Sprintf("Overtime over %.0f hours", rep.Overtime.LimitHours), "overtime hours", rep.Overtime.Violations),
			rankingTable("Top overtime", "overtime hours", rep.Overtime.Top),
			rankingTable("Top night work", "night work hours", rep.NightWork.Top),
			rankingTable("Top holiday work", "holiday work days", rep.HolidayWork.Top),
			rankingTable("Top insufficient breaks", "days", rep.BreakTime.Top),
			paidLeave,
			complianceEmployeeTable(rep),
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
