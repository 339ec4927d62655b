package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveColumns = `
	lr.id, lr.user_id, lr.start_date, lr.end_date, lr.leave_type, lr.reason, lr.status,
	lr.comment, lr.reviewed_by, lr.reviewed_at, lr.created_at, lr.updated_at,
	u.name, u.email, u.company_id
`

const leaveFrom = `
	FROM leave_requests lr
	JOIN users u ON u.id = lr.user_id
`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.UserID,
		&lr.StartDate,
		&lr.EndDate,
		&lr.LeaveType,
		&lr.Reason,
		&lr.Status,
		&lr.Comment,
		&lr.ReviewedBy,
		&lr.ReviewedAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.UserName,
		&lr.UserEmail,
		&lr.CompanyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to generate leave request id: %w", err)
		}
		req.ID = id.String()
	}
	if req.Status == "" {
		req.Status = leave.StatusPending
	}

	query := `
		INSERT INTO leave_requests (id, user_id, start_date, end_date, leave_type, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		req.ID,
		req.UserID,
		req.StartDate,
		req.EndDate,
		req.LeaveType,
		req.Reason,
		req.Status,
	)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return r.GetByID(ctx, req.ID)
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveColumns + leaveFrom + ` WHERE lr.id = $1`
	return scanLeaveRequest(q.QueryRow(ctx, query, id))
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND lr.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.CompanyID != nil {
		where += fmt.Sprintf(" AND u.company_id = $%d", argIdx)
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.LeaveType != nil {
		where += fmt.Sprintf(" AND lr.leave_type = $%d", argIdx)
		args = append(args, *filter.LeaveType)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) ` + leaveFrom + ` WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY lr.created_at DESC, lr.id DESC LIMIT $%d OFFSET $%d`,
		leaveColumns, leaveFrom, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	requests, err := r.collect(ctx, q, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return requests, total, nil
}

// ListOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListOverlapping(ctx context.Context, filter leave.OverlapFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	where := "lr.start_date <= $2 AND lr.end_date >= $1"
	args := []interface{}{filter.From, filter.To}
	argIdx := 3

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND lr.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.CompanyID != nil {
		where += fmt.Sprintf(" AND u.company_id = $%d", argIdx)
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
	}

	query := `SELECT ` + leaveColumns + leaveFrom + ` WHERE ` + where + ` ORDER BY lr.user_id, lr.start_date`

	requests, err := r.collect(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping leave requests: %w", err)
	}
	return requests, nil
}

// UpdatePending implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdatePending(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET start_date = $1, end_date = $2, leave_type = $3, reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'PENDING'
	`
	tag, err := q.Exec(ctx, query, req.StartDate, req.EndDate, req.LeaveType, req.Reason, req.ID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request %s: %w", req.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return leave.LeaveRequest{}, r.notUpdatedReason(ctx, req.ID)
	}

	return r.GetByID(ctx, req.ID)
}

// Review implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Review(ctx context.Context, id string, status leave.Status, comment *string, reviewerID string, at time.Time) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1, comment = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'PENDING'
	`
	tag, err := q.Exec(ctx, query, status, comment, reviewerID, at, id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to review leave request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return leave.LeaveRequest{}, r.notUpdatedReason(ctx, id)
	}

	return r.GetByID(ctx, id)
}

// notUpdatedReason tells a missing request apart from one already decided.
func (r *leaveRequestRepositoryImpl) notUpdatedReason(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return leave.ErrLeaveNotPending
}

func (r *leaveRequestRepositoryImpl) collect(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
