package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	invalidator report.Invalidator
	now         func() time.Time
}

func NewLeaveService(leaveRepo leave.LeaveRequestRepository, invalidator report.Invalidator) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRepo,
		invalidator:            invalidator,
		now:                    time.Now,
	}
}

// Create implements leave.LeaveService.
func (s *LeaveServiceImpl) Create(ctx context.Context, principal user.Principal, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if principal.UserID == "" {
		return leave.LeaveRequestResponse{}, user.ErrUnauthenticated
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, end := req.Dates()
	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		UserID:    principal.UserID,
		StartDate: start,
		EndDate:   end,
		LeaveType: leave.LeaveType(req.LeaveType),
		Reason:    req.Reason,
		Status:    leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return leave.NewLeaveRequestResponse(created), nil
}

// List implements leave.LeaveService. Repository failures surface as errors
// rather than an empty page.
func (s *LeaveServiceImpl) List(ctx context.Context, principal user.Principal, filter leave.LeaveRequestFilterRequest) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	userID := filter.UserID
	if !principal.IsAdmin() {
		if userID != nil && *userID != principal.UserID {
			return leave.ListLeaveRequestResponse{}, user.ErrForbidden
		}
		self := principal.UserID
		userID = &self
	}

	repoFilter := leave.LeaveRequestFilter{
		UserID:    userID,
		CompanyID: principal.CompanyFilter(),
		Page:      filter.Page,
		Limit:     filter.Limit,
	}
	if filter.Status != nil && *filter.Status != "" {
		status := leave.Status(*filter.Status)
		repoFilter.Status = &status
	}
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		leaveType := leave.LeaveType(*filter.LeaveType)
		repoFilter.LeaveType = &leaveType
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, repoFilter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, lr := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(lr))
	}

	return leave.ListLeaveRequestResponse{
		LeaveRequests: responses,
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, principal user.Principal, id string) (leave.LeaveRequestResponse, error) {
	lr, err := s.load(ctx, principal, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(lr), nil
}

// Update implements leave.LeaveService.
func (s *LeaveServiceImpl) Update(ctx context.Context, principal user.Principal, id string, req leave.UpdateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	existing, err := s.load(ctx, principal, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if existing.UserID != principal.UserID {
		return leave.LeaveRequestResponse{}, leave.ErrNotOwner
	}
	if !existing.IsPending() {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveNotPending
	}

	merged, err := req.Apply(existing)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	updated, err := s.LeaveRequestRepository.UpdatePending(ctx, merged)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveNotPending) || errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return leave.NewLeaveRequestResponse(updated), nil
}

// UpdateStatus implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateStatus(ctx context.Context, principal user.Principal, id string, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
	if !principal.IsAdmin() {
		return leave.LeaveRequestResponse{}, user.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	existing, err := s.load(ctx, principal, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !existing.IsPending() {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveNotPending
	}

	reviewed, err := s.LeaveRequestRepository.Review(ctx, id, leave.Status(req.Status), req.Comment, principal.UserID, s.now().UTC())
	if err != nil {
		if errors.Is(err, leave.ErrLeaveNotPending) || errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave status: %w", err)
	}

	if s.invalidator != nil && reviewed.CompanyID != nil {
		// Paid leave counts toward every later month's year-to-date figure.
		yearEnd := time.Date(reviewed.EndDate.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		s.invalidator.InvalidateRange(ctx, *reviewed.CompanyID, reviewed.StartDate, yearEnd)
	}
	slog.Info("leave request reviewed",
		"leave_request_id", id,
		"status", req.Status,
		"reviewer_id", principal.UserID,
	)

	return leave.NewLeaveRequestResponse(reviewed), nil
}

// load fetches a request the caller may see. Owners always can; other
// employees get ErrForbidden and admins outside the company get not found.
func (s *LeaveServiceImpl) load(ctx context.Context, principal user.Principal, id string) (leave.LeaveRequest, error) {
	lr, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	if lr.UserID == principal.UserID {
		return lr, nil
	}
	if !principal.IsAdmin() {
		return leave.LeaveRequest{}, user.ErrForbidden
	}
	if lr.CompanyID != nil && !principal.CanAccessCompany(*lr.CompanyID) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return lr, nil
}
