package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.user_id, a.date, a.clock_in_time, a.clock_out_time, a.break_minutes,
	a.location, a.notes, a.created_at, a.updated_at,
	u.name, u.company_id
`

const attendanceFrom = `
	FROM attendance_records a
	JOIN users u ON u.id = a.user_id
`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.ClockInTime,
		&rec.ClockOutTime,
		&rec.BreakMinutes,
		&rec.Location,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.UserName,
		&rec.CompanyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, err
	}
	return rec, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		record.ID = id.String()
	}

	query := `
		INSERT INTO attendance_records (id, user_id, date, clock_in_time, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.Date,
		record.ClockInTime,
		record.Location,
		record.Notes,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "attendance_records_user_date_key") {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a.GetByID(ctx, record.ID)
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.id = $1`
	return scanAttendance(q.QueryRow(ctx, query, id))
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.user_id = $1 AND a.date = $2`
	return scanAttendance(q.QueryRow(ctx, query, userID, date))
}

// GetByUserAndDateForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.user_id = $1 AND a.date = $2 FOR UPDATE OF a`
	return scanAttendance(q.QueryRow(ctx, query, userID, date))
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_out_time = $1, break_minutes = $2, location = $3, notes = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := q.Exec(ctx, query,
		record.ClockOutTime,
		record.BreakMinutes,
		record.Location,
		record.Notes,
		record.ID,
	)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance %s: %w", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}

	return a.GetByID(ctx, record.ID)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.CompanyID != nil {
		where += fmt.Sprintf(" AND u.company_id = $%d", argIdx)
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) ` + attendanceFrom + ` WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	selectQuery := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY a.date DESC, a.clock_in_time DESC LIMIT $%d OFFSET $%d`,
		attendanceColumns, attendanceFrom, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	records, err := a.collect(ctx, q, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	return records, total, nil
}

// ListForPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListForPeriod(ctx context.Context, filter attendance.PeriodFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	where := "a.date >= $1 AND a.date <= $2"
	args := []interface{}{filter.From, filter.To}
	argIdx := 3

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.CompanyID != nil {
		where += fmt.Sprintf(" AND u.company_id = $%d", argIdx)
		args = append(args, *filter.CompanyID)
	}

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE ` + where + ` ORDER BY a.user_id, a.date`

	records, err := a.collect(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances for period: %w", err)
	}
	return records, nil
}

func (a *attendanceRepository) collect(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
