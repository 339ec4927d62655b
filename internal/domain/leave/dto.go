package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

const (
	maxReasonLength  = 1000
	maxCommentLength = 1000
)

type CreateLeaveRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	LeaveType string `json:"leaveType"`
	Reason    string `json:"reason"`

	start time.Time
	end   time.Time
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Reason = strings.TrimSpace(r.Reason)

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("startDate", "startDate must be YYYY-MM-DD")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("endDate", "endDate must be YYYY-MM-DD")
	}

	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leaveType", "leaveType is required")
	} else if !validator.IsInSlice(r.LeaveType, LeaveTypes) {
		errs.Add("leaveType", "leaveType must be one of PAID, UNPAID, SICK, OTHER")
	}

	if len(r.Reason) > maxReasonLength {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	if len(errs) > 0 {
		return errs
	}
	if end.Before(start) {
		return ErrInvalidDateRange
	}

	r.start, r.end = start, end
	return nil
}

// Dates returns the parsed range after Validate.
func (r *CreateLeaveRequest) Dates() (time.Time, time.Time) {
	return r.start, r.end
}

// UpdateLeaveRequest replaces only the supplied fields.
type UpdateLeaveRequest struct {
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	LeaveType *string `json:"leaveType,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *UpdateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("startDate", "startDate must be YYYY-MM-DD")
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs.Add("endDate", "endDate must be YYYY-MM-DD")
		}
	}
	if r.LeaveType != nil && !validator.IsInSlice(*r.LeaveType, LeaveTypes) {
		errs.Add("leaveType", "leaveType must be one of PAID, UNPAID, SICK, OTHER")
	}
	if r.Reason != nil {
		reason := strings.TrimSpace(*r.Reason)
		r.Reason = &reason
		if len(reason) > maxReasonLength {
			errs.Add("reason", "reason must not exceed 1000 characters")
		}
	}

	return errs.Err()
}

// Apply merges the update into existing and re-checks the date order.
func (r *UpdateLeaveRequest) Apply(existing LeaveRequest) (LeaveRequest, error) {
	updated := existing
	if r.StartDate != nil {
		updated.StartDate, _ = time.Parse(validator.DateLayout, *r.StartDate)
	}
	if r.EndDate != nil {
		updated.EndDate, _ = time.Parse(validator.DateLayout, *r.EndDate)
	}
	if r.LeaveType != nil {
		updated.LeaveType = LeaveType(*r.LeaveType)
	}
	if r.Reason != nil {
		updated.Reason = *r.Reason
	}
	if updated.EndDate.Before(updated.StartDate) {
		return existing, ErrInvalidDateRange
	}
	return updated, nil
}

type UpdateStatusRequest struct {
	Status  string  `json:"status"`
	Comment *string `json:"comment,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != string(StatusApproved) && r.Status != string(StatusRejected) {
		errs.Add("status", "status must be APPROVED or REJECTED")
	}
	if r.Comment != nil {
		comment := strings.TrimSpace(*r.Comment)
		if comment == "" {
			r.Comment = nil
		} else {
			r.Comment = &comment
		}
		if len(comment) > maxCommentLength {
			errs.Add("comment", "comment must not exceed 1000 characters")
		}
	}

	return errs.Err()
}

type LeaveRequestFilterRequest struct {
	UserID    *string `json:"userId,omitempty"`
	Status    *string `json:"status,omitempty"`
	LeaveType *string `json:"leaveType,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (r *LeaveRequestFilterRequest) Validate() error {
	var errs validator.ValidationErrors

	validator.NormalizePagination(&r.Page, &r.Limit)

	if r.UserID != nil && validator.IsEmpty(*r.UserID) {
		r.UserID = nil
	}
	if r.Status != nil && *r.Status != "" && !validator.IsInSlice(*r.Status, Statuses) {
		errs.Add("status", "invalid status")
	}
	if r.LeaveType != nil && *r.LeaveType != "" && !validator.IsInSlice(*r.LeaveType, LeaveTypes) {
		errs.Add("leaveType", "invalid leaveType")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	UserName   *string `json:"userName,omitempty"`
	UserEmail  *string `json:"userEmail,omitempty"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Days       int     `json:"days"`
	LeaveType  string  `json:"leaveType"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	Comment    *string `json:"comment"`
	ReviewedBy *string `json:"reviewedBy"`
	ReviewedAt *string `json:"reviewedAt"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

func NewLeaveRequestResponse(l LeaveRequest) LeaveRequestResponse {
	var reviewedAt *string
	if l.ReviewedAt != nil {
		s := l.ReviewedAt.Format(time.RFC3339)
		reviewedAt = &s
	}
	return LeaveRequestResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		UserName:   l.UserName,
		UserEmail:  l.UserEmail,
		StartDate:  l.StartDate.Format(validator.DateLayout),
		EndDate:    l.EndDate.Format(validator.DateLayout),
		Days:       worktime.InclusiveDays(l.StartDate, l.EndDate),
		LeaveType:  string(l.LeaveType),
		Reason:     l.Reason,
		Status:     string(l.Status),
		Comment:    l.Comment,
		ReviewedBy: l.ReviewedBy,
		ReviewedAt: reviewedAt,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.Format(time.RFC3339),
	}
}

type ListLeaveRequestResponse struct {
	LeaveRequests []LeaveRequestResponse `json:"leaveRequests"`
	TotalCount    int64                  `json:"totalCount"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"totalPages"`
}
