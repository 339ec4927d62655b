package auth

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const passwordRule = "password must be 8-72 characters and contain a letter and a digit"

func validateCredentials(errs *validator.ValidationErrors, email *string, password string) {
	*email = validator.NormalizeEmail(*email)
	if validator.IsEmpty(*email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(*email) {
		errs.Add("email", "invalid email format")
	}

	if validator.IsEmpty(password) {
		errs.Add("password", "password is required")
	} else if !validator.IsValidPassword(password) {
		errs.Add("password", passwordRule)
	}
}

// SetupRequest creates the first super admin of a fresh installation.
type SetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *SetupRequest) Validate() error {
	var errs validator.ValidationErrors

	validateCredentials(&errs, &r.Email, r.Password)
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	}

	return errs.Err()
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`

	// CompanyID is the company's public identifier.
	CompanyID string `json:"companyId"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	validateCredentials(&errs, &r.Email, r.Password)
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	}
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	if r.CompanyID == "" {
		errs.Add("companyId", "companyId is required")
	}

	return errs.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = validator.NormalizeEmail(r.Email)
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	}
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

func (r *VerifyEmailRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		errs.Add("token", "token is required")
	}

	return errs.Err()
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (r *ResendVerificationRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = validator.NormalizeEmail(r.Email)
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	return errs.Err()
}

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil {
		errs.Add("name", "name is required")
		return errs
	}
	name := strings.TrimSpace(*r.Name)
	r.Name = &name
	if name == "" {
		errs.Add("name", "name must not be empty")
	} else if len(name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	return errs.Err()
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CurrentPassword) {
		errs.Add("currentPassword", "currentPassword is required")
	}
	if !validator.IsValidPassword(r.NewPassword) {
		errs.Add("newPassword", passwordRule)
	} else if r.NewPassword == r.CurrentPassword {
		errs.Add("newPassword", "newPassword must differ from currentPassword")
	}

	return errs.Err()
}

type LoginResponse struct {
	Token     string            `json:"token"`
	TokenType string            `json:"tokenType"`
	ExpiresAt string            `json:"expiresAt"`
	User      user.UserResponse `json:"user"`
}
