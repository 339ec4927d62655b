package leave

import "time"

type LeaveType string

const (
	TypePaid   LeaveType = "PAID"
	TypeUnpaid LeaveType = "UNPAID"
	TypeSick   LeaveType = "SICK"
	TypeOther  LeaveType = "OTHER"
)

var LeaveTypes = []string{string(TypePaid), string(TypeUnpaid), string(TypeSick), string(TypeOther)}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var Statuses = []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}

// LeaveRequest moves PENDING -> APPROVED or REJECTED exactly once.
type LeaveRequest struct {
	ID         string
	UserID     string
	StartDate  time.Time
	EndDate    time.Time
	LeaveType  LeaveType
	Reason     string
	Status     Status
	Comment    *string
	ReviewedBy *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Join
	UserName  *string
	UserEmail *string
	CompanyID *string
}

func (l *LeaveRequest) IsPending() bool {
	return l.Status == StatusPending
}
