package response

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

var exposeDetails atomic.Bool

// ExposeErrorDetails controls whether 500 responses carry the error text.
// It stays off in production.
func ExposeErrorDetails(enabled bool) {
	exposeDetails.Store(enabled)
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, user.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrGoogleAccountNotLinked):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")

	// Authorization
	case errors.Is(err, user.ErrForbidden),
		errors.Is(err, user.ErrCannotAssignRole),
		errors.Is(err, leave.ErrNotOwner):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, err.Error())

	// Business rules
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrAlreadyClockedOut),
		errors.Is(err, attendance.ErrNoCompany),
		errors.Is(err, leave.ErrLeaveNotPending),
		errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, user.ErrCannotDeleteSelf),
		errors.Is(err, user.ErrCompanyIDRequired),
		errors.Is(err, user.ErrSuperAdminHasNoCompany),
		errors.Is(err, company.ErrCompanyHasUsers),
		errors.Is(err, company.ErrInvalidLogoFile),
		errors.Is(err, report.ErrCompanyScopeRequired),
		errors.Is(err, report.ErrUnsupportedExport),
		errors.Is(err, auth.ErrEmailAlreadyVerified),
		errors.Is(err, auth.ErrInvalidVerificationToken),
		errors.Is(err, auth.ErrSetupAlreadyDone),
		errors.Is(err, auth.ErrInvalidCurrentPassword),
		errors.Is(err, auth.ErrGoogleLoginDisabled):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		detail := ""
		if exposeDetails.Load() {
			detail = err.Error()
		}
		InternalServerError(w, "An unexpected error occurred", detail)
	}
}
