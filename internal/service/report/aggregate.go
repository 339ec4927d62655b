package report

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

// period is a reporting month. Bounds are UTC midnights, the form DATE
// columns are scanned in. yearStart opens the window the annual paid-leave
// target is measured over.
type period struct {
	year      int
	month     int
	first     time.Time
	last      time.Time
	yearStart time.Time
}

func newPeriod(year, month int) period {
	first, last, _ := worktime.MonthBounds(year, time.Month(month), time.UTC)
	return period{
		year:      year,
		month:     month,
		first:     first,
		last:      last,
		yearStart: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (p period) dto() report.Period {
	return report.Period{
		Year:      p.year,
		Month:     p.month,
		StartDate: p.first.Format(validator.DateLayout),
		EndDate:   p.last.Format(validator.DateLayout),
		Days:      worktime.DaysInMonth(p.year, time.Month(p.month)),
	}
}

// employeeStats is the month of one user.
type employeeStats struct {
	info          report.EmployeeInfo
	tally         worktime.Tally
	leaveByType   map[string]int
	leaveDays     int
	paidLeaveDays int
	// paidLeaveYTD runs from January 1 through the end of the month.
	paidLeaveYTD int
}

func newEmployeeStats(u user.User) *employeeStats {
	return &employeeStats{
		info: report.EmployeeInfo{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   string(u.Role),
		},
		leaveByType: emptyLeaveCounts(),
	}
}

func emptyLeaveCounts() map[string]int {
	counts := make(map[string]int, len(leave.LeaveTypes))
	for _, t := range leave.LeaveTypes {
		counts[t] = 0
	}
	return counts
}

// addLeave counts an approved request, clipped to the month. Paid leave is
// also counted year to date.
func (e *employeeStats) addLeave(lr leave.LeaveRequest, p period) {
	if lr.Status != leave.StatusApproved {
		return
	}
	if lr.LeaveType == leave.TypePaid {
		e.paidLeaveYTD += worktime.ClippedDays(lr.StartDate, lr.EndDate, p.yearStart, p.last)
	}
	days := worktime.ClippedDays(lr.StartDate, lr.EndDate, p.first, p.last)
	if days == 0 {
		return
	}
	e.leaveByType[string(lr.LeaveType)] += days
	e.leaveDays += days
	if lr.LeaveType == leave.TypePaid {
		e.paidLeaveDays += days
	}
}

func (e *employeeStats) summary() report.WorkSummary {
	return report.WorkSummary{
		WorkDays:            e.tally.WorkDays,
		OpenRecords:         e.tally.OpenDays,
		TotalWorkingHours:   worktime.Round(e.tally.Hours),
		AverageWorkingHours: worktime.Round(e.tally.AverageHours()),
		OvertimeHours:       worktime.Round(e.tally.OvertimeHours),
		NightWorkHours:      worktime.Round(e.tally.NightHours),
		HolidayWorkDays:     e.tally.HolidayDays,
		ShortBreakDays:      e.tally.ShortBreakDays,
		LeaveDays:           e.leaveDays,
	}
}

// aggregator folds attendance and leave rows into per-user statistics.
type aggregator struct {
	loc    *time.Location
	marker string
}

// collect returns one entry per user, in the order users were given. Rows
// of users outside the list are ignored.
func (a aggregator) collect(users []user.User, records []attendance.Record, leaves []leave.LeaveRequest, p period) []*employeeStats {
	stats := make([]*employeeStats, 0, len(users))
	byID := make(map[string]*employeeStats, len(users))
	for _, u := range users {
		s := newEmployeeStats(u)
		stats = append(stats, s)
		byID[u.ID] = s
	}

	for i := range records {
		if s, ok := byID[records[i].UserID]; ok {
			s.tally.Add(records[i].DayRecord(), a.loc, a.marker)
		}
	}
	for _, lr := range leaves {
		if s, ok := byID[lr.UserID]; ok {
			s.addLeave(lr, p)
		}
	}
	return stats
}

func (a aggregator) dailyRows(records []attendance.Record) []report.DailyRow {
	rows := make([]report.DailyRow, 0, len(records))
	for i := range records {
		rec := records[i]
		row := report.DailyRow{
			Date:         rec.Date.Format(validator.DateLayout),
			DayOfWeek:    rec.Date.Weekday().String(),
			ClockIn:      rec.ClockInTime.In(a.loc).Format(time.RFC3339),
			BreakMinutes: rec.BreakMinutes,
			HolidayWork:  worktime.IsHoliday(rec.Date),
			Location:     rec.Location,
			Notes:        rec.Notes,
		}
		if rec.ClockOutTime != nil {
			out := rec.ClockOutTime.In(a.loc).Format(time.RFC3339)
			hours := rec.WorkingHours()
			row.ClockOut = &out
			row.WorkingHours = worktime.Round(hours)
			row.OvertimeHours = worktime.Round(worktime.Overtime(hours))
			row.NightWorkHours = worktime.Round(worktime.NightHours(rec.ClockInTime, *rec.ClockOutTime, a.loc))
			row.ShortBreak = worktime.ShortBreak(hours, rec.BreakMinutes, rec.Notes, a.marker)
		}
		rows = append(rows, row)
	}
	return rows
}

func leaveRows(leaves []leave.LeaveRequest) []report.LeaveRow {
	rows := make([]report.LeaveRow, 0, len(leaves))
	for _, lr := range leaves {
		rows = append(rows, report.LeaveRow{
			ID:        lr.ID,
			StartDate: lr.StartDate.Format(validator.DateLayout),
			EndDate:   lr.EndDate.Format(validator.DateLayout),
			Days:      worktime.InclusiveDays(lr.StartDate, lr.EndDate),
			LeaveType: string(lr.LeaveType),
			Reason:    lr.Reason,
			Status:    string(lr.Status),
			Comment:   lr.Comment,
		})
	}
	return rows
}

func buildDepartment(companyID string, p period, stats []*employeeStats, generatedAt time.Time) report.DepartmentReport {
	totals := report.DepartmentTotals{
		Employees:        len(stats),
		LeaveCountByType: emptyLeaveCounts(),
	}
	var hours, overtime float64
	var records int

	employees := make([]report.DepartmentEmployee, 0, len(stats))
	for _, s := range stats {
		employees = append(employees, report.DepartmentEmployee{
			EmployeeInfo:     s.info,
			Summary:          s.summary(),
			LeaveCountByType: s.leaveByType,
		})
		hours += s.tally.Hours
		overtime += s.tally.OvertimeHours
		records += s.tally.Records()
		totals.TotalLeaveDays += s.leaveDays
		for t, days := range s.leaveByType {
			totals.LeaveCountByType[t] += days
		}
	}

	totals.TotalWorkingHours = worktime.Round(hours)
	totals.TotalOvertimeHours = worktime.Round(overtime)
	totals.AverageWorkingHours = worktime.Round(worktime.Average(hours, records))

	return report.DepartmentReport{
		Period:      p.dto(),
		CompanyID:   companyID,
		Totals:      totals,
		Employees:   employees,
		GeneratedAt: generatedAt.Format(time.RFC3339),
	}
}

func buildCompliance(companyID, companyName string, p period, stats []*employeeStats, generatedAt time.Time) report.ComplianceReport {
	var (
		summary                            report.ComplianceSummary
		hours, overtime, night             float64
		records                            int
		overtimeRank, nightRank            []report.RankedEmployee
		holidayRank, breakRank, violations []report.RankedEmployee
		belowTarget                        []report.PaidLeaveEntry
	)

	employees := make([]report.EmployeeCompliance, 0, len(stats))
	for _, s := range stats {
		t := s.tally
		exceeds := t.OvertimeHours > worktime.MonthlyOvertimeLimit
		meetsTarget := s.paidLeaveYTD >= worktime.PaidLeaveTargetDays

		employees = append(employees, report.EmployeeCompliance{
			EmployeeInfo:         s.info,
			WorkDays:             t.WorkDays,
			WorkingHours:         worktime.Round(t.Hours),
			OvertimeHours:        worktime.Round(t.OvertimeHours),
			NightWorkHours:       worktime.Round(t.NightHours),
			HolidayWorkDays:      t.HolidayDays,
			ShortBreakDays:       t.ShortBreakDays,
			PaidLeaveDays:        s.paidLeaveDays,
			PaidLeaveDaysYTD:     s.paidLeaveYTD,
			ExceedsOvertimeLimit: exceeds,
			MeetsPaidLeaveTarget: meetsTarget,
		})

		hours += t.Hours
		overtime += t.OvertimeHours
		night += t.NightHours
		records += t.Records()
		summary.TotalHolidayWorkDays += t.HolidayDays
		summary.TotalShortBreakDays += t.ShortBreakDays

		overtimeRank = append(overtimeRank, ranked(s, t.OvertimeHours))
		nightRank = append(nightRank, ranked(s, t.NightHours))
		holidayRank = append(holidayRank, ranked(s, float64(t.HolidayDays)))
		breakRank = append(breakRank, ranked(s, float64(t.ShortBreakDays)))

		if exceeds {
			summary.EmployeesOverLimit++
			violations = append(violations, ranked(s, t.OvertimeHours))
		}
		if meetsTarget {
			summary.MeetingPaidLeaveTarget++
		} else {
			belowTarget = append(belowTarget, report.PaidLeaveEntry{
				UserID:        s.info.UserID,
				Name:          s.info.Name,
				PaidLeaveDays: s.paidLeaveYTD,
				RemainingDays: worktime.PaidLeaveTargetDays - s.paidLeaveYTD,
			})
		}
	}

	summary.TotalEmployees = len(stats)
	summary.TotalWorkingHours = worktime.Round(hours)
	summary.TotalOvertimeHours = worktime.Round(overtime)
	summary.TotalNightWorkHours = worktime.Round(night)
	summary.AverageWorkingHours = worktime.Round(worktime.Average(hours, records))
	summary.PaidLeaveAttainmentRate = worktime.Ratio(summary.MeetingPaidLeaveTarget, summary.TotalEmployees)

	sortRanking(violations)
	sort.SliceStable(belowTarget, func(i, j int) bool {
		if belowTarget[i].PaidLeaveDays != belowTarget[j].PaidLeaveDays {
			return belowTarget[i].PaidLeaveDays < belowTarget[j].PaidLeaveDays
		}
		return belowTarget[i].Name < belowTarget[j].Name
	})

	return report.ComplianceReport{
		Period:      p.dto(),
		CompanyID:   companyID,
		CompanyName: companyName,
		Summary:     summary,
		Overtime: report.OvertimeSection{
			LimitHours: worktime.MonthlyOvertimeLimit,
			Violations: nonNil(violations),
			Top:        topN(overtimeRank, worktime.TopN),
		},
		NightWork: report.NightWorkSection{
			WindowStart: "22:00",
			WindowEnd:   "05:00",
			Top:         topN(nightRank, worktime.TopN),
		},
		HolidayWork: report.RankingSection{Top: topN(holidayRank, worktime.TopN)},
		BreakTime:   report.RankingSection{Top: topN(breakRank, worktime.TopN)},
		PaidLeave: report.PaidLeaveSection{
			TargetDays:  worktime.PaidLeaveTargetDays,
			CountedFrom: p.yearStart.Format(validator.DateLayout),
			BelowTarget: nonNilEntries(belowTarget),
		},
		Employees:   employees,
		GeneratedAt: generatedAt.Format(time.RFC3339),
	}
}

func ranked(s *employeeStats, value float64) report.RankedEmployee {
	return report.RankedEmployee{UserID: s.info.UserID, Name: s.info.Name, Value: worktime.Round(value)}
}

// topN drops zero values, sorts descending with ties broken by name and keeps n.
func topN(entries []report.RankedEmployee, n int) []report.RankedEmployee {
	out := make([]report.RankedEmployee, 0, len(entries))
	for _, e := range entries {
		if e.Value > 0 {
			out = append(out, e)
		}
	}
	sortRanking(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortRanking(entries []report.RankedEmployee) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Name < entries[j].Name
	})
}

func nonNil(entries []report.RankedEmployee) []report.RankedEmployee {
	if entries == nil {
		return []report.RankedEmployee{}
	}
	return entries
}

func nonNilEntries(entries []report.PaidLeaveEntry) []report.PaidLeaveEntry {
	if entries == nil {
		return []report.PaidLeaveEntry{}
	}
	return entries
}
