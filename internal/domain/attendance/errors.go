package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyClockedIn   = errors.New("you have already clocked in today")
	ErrAlreadyClockedOut  = errors.New("you have already clocked out today")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNoCompany          = errors.New("user is not assigned to a company")
)
