package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

type AttendanceServiceImpl struct {
	tx database.TxManager
	attendance.AttendanceRepository
	user.UserRepository
	invalidator      report.Invalidator
	loc              *time.Location
	shortBreakMarker string
	now              func() time.Time
}

func NewAttendanceService(
	tx database.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	invalidator report.Invalidator,
	loc *time.Location,
	shortBreakMarker string,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		UserRepository:       userRepo,
		invalidator:          invalidator,
		loc:                  loc,
		shortBreakMarker:     shortBreakMarker,
		now:                  time.Now,
	}
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, principal user.Principal, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if principal.UserID == "" {
		return attendance.AttendanceResponse{}, user.ErrUnauthenticated
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today := worktime.Day(now, s.loc)

	created, err := s.AttendanceRepository.Create(ctx, attendance.Record{
		UserID:      principal.UserID,
		Date:        today,
		ClockInTime: now,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClockedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to clock in: %w", err)
	}

	s.invalidate(ctx, principal.CompanyID, today)
	slog.Info("clocked in", "user_id", principal.UserID, "date", today.Format(validator.DateLayout))

	return attendance.NewAttendanceResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, principal user.Principal, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if principal.UserID == "" {
		return attendance.AttendanceResponse{}, user.ErrUnauthenticated
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today := worktime.Day(now, s.loc)

	var updated attendance.Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := s.AttendanceRepository.GetByUserAndDateForUpdate(ctx, principal.UserID, today)
		if err != nil {
			return err
		}
		if !rec.IsOpen() {
			return attendance.ErrAlreadyClockedOut
		}

		clockOut := now
		if clockOut.Before(rec.ClockInTime) {
			clockOut = rec.ClockInTime
		}
		rec.ClockOutTime = &clockOut
		if req.Location != nil {
			rec.Location = req.Location
		}
		if req.Notes != nil {
			rec.Notes = req.Notes
		}
		if req.BreakMinutes != nil {
			rec.BreakMinutes = req.BreakMinutes
		}

		updated, err = s.AttendanceRepository.Update(ctx, rec)
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) || errors.Is(err, attendance.ErrAlreadyClockedOut) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to clock out: %w", err)
	}

	s.invalidate(ctx, principal.CompanyID, today)

	return attendance.NewAttendanceResponse(updated), nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, principal user.Principal) (*attendance.AttendanceResponse, error) {
	if principal.UserID == "" {
		return nil, user.ErrUnauthenticated
	}

	today := worktime.Day(s.now(), s.loc)
	rec, err := s.AttendanceRepository.GetByUserAndDate(ctx, principal.UserID, today)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	resp := attendance.NewAttendanceResponse(rec)
	return &resp, nil
}

// ListRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, principal user.Principal, filter attendance.AttendanceFilterRequest) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	userID := filter.UserID
	if !principal.IsAdmin() {
		if userID != nil && *userID != principal.UserID {
			return attendance.ListAttendanceResponse{}, user.ErrForbidden
		}
		self := principal.UserID
		userID = &self
	}

	start, end := filter.Dates()
	records, total, err := s.AttendanceRepository.List(ctx, attendance.AttendanceFilter{
		UserID:    userID,
		CompanyID: principal.CompanyFilter(),
		StartDate: start,
		EndDate:   end,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.NewAttendanceResponse(rec))
	}

	return attendance.ListAttendanceResponse{
		Records:    responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, principal user.Principal, req attendance.SummaryRequest) (attendance.SummaryResponse, error) {
	if err := req.Validate(s.now().In(s.loc)); err != nil {
		return attendance.SummaryResponse{}, err
	}

	targetID := principal.UserID
	if req.UserID != nil && *req.UserID != principal.UserID {
		if !principal.IsAdmin() {
			return attendance.SummaryResponse{}, user.ErrForbidden
		}
		target, err := s.UserRepository.GetByID(ctx, *req.UserID)
		if err != nil {
			return attendance.SummaryResponse{}, err
		}
		if !principal.CanAccessUser(target) {
			return attendance.SummaryResponse{}, user.ErrUserNotFound
		}
		targetID = target.ID
	}

	first, last, _ := worktime.MonthBounds(req.Year, time.Month(req.Month), time.UTC)
	records, err := s.AttendanceRepository.ListForPeriod(ctx, attendance.PeriodFilter{
		UserID: &targetID,
		From:   first,
		To:     last,
	})
	if err != nil {
		return attendance.SummaryResponse{}, fmt.Errorf("failed to load attendance for summary: %w", err)
	}

	var tally worktime.Tally
	for i := range records {
		tally.Add(records[i].DayRecord(), s.loc, s.shortBreakMarker)
	}

	return attendance.SummaryResponse{
		UserID:              targetID,
		Year:                req.Year,
		Month:               req.Month,
		StartDate:           first.Format(validator.DateLayout),
		EndDate:             last.Format(validator.DateLayout),
		WorkDays:            tally.WorkDays,
		OpenRecords:         tally.OpenDays,
		TotalWorkingHours:   worktime.Round(tally.Hours),
		AverageWorkingHours: worktime.Round(tally.AverageHours()),
		OvertimeHours:       worktime.Round(tally.OvertimeHours),
		NightWorkHours:      worktime.Round(tally.NightHours),
		HolidayWorkDays:     tally.HolidayDays,
	}, nil
}

func (s *AttendanceServiceImpl) invalidate(ctx context.Context, companyID string, day time.Time) {
	if s.invalidator == nil || companyID == "" {
		return
	}
	s.invalidator.InvalidateRange(ctx, companyID, day, day)
}
