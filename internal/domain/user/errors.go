package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyExists     = errors.New("email already registered")
	ErrCannotDeleteSelf       = errors.New("you cannot delete your own account")
	ErrCannotAssignRole       = errors.New("you are not allowed to assign this role")
	ErrCompanyIDRequired      = errors.New("company ID is required")
	ErrSuperAdminHasNoCompany = errors.New("super admin cannot belong to a company")
	ErrForbidden              = errors.New("you do not have access to this resource")
	ErrUnauthenticated        = errors.New("authentication required")
)
