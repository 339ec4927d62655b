package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrLeaveNotPending      = errors.New("only pending leave requests can be modified")
	ErrInvalidDateRange     = errors.New("start date must be before or equal to end date")
	ErrNotOwner             = errors.New("only the requester can update this leave request")
)
