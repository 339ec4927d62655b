package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses. It never carries the password hash.
type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	CompanyID     *string `json:"companyId"`
	CompanyName   *string `json:"companyName,omitempty"`
	EmailVerified bool    `json:"emailVerified"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		CompanyID:     u.CompanyID,
		CompanyName:   u.CompanyName,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	CompanyID *string `json:"companyId,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = validator.NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if !validator.IsValidPassword(r.Password) {
		errs.Add("password", "password must be 8-72 characters and contain a letter and a digit")
	}

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}

	if validator.IsEmpty(r.Role) {
		errs.Add("role", "role is required")
	} else if !validator.IsInSlice(r.Role, Roles) {
		errs.Add("role", "invalid role")
	}

	if r.CompanyID != nil && validator.IsEmpty(*r.CompanyID) {
		r.CompanyID = nil
	}

	return errs.Err()
}

// UpdateUserRequest represents request to update user
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role,omitempty"`
	CompanyID *string `json:"companyId,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Email != nil {
		email := validator.NormalizeEmail(*r.Email)
		r.Email = &email
		if validator.IsEmpty(email) {
			errs.Add("email", "email must not be empty")
		} else if !validator.IsValidEmail(email) {
			errs.Add("email", "invalid email format")
		}
	}

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}

	if r.Password != nil && !validator.IsValidPassword(*r.Password) {
		errs.Add("password", "password must be 8-72 characters and contain a letter and a digit")
	}

	if r.Role != nil && !validator.IsInSlice(*r.Role, Roles) {
		errs.Add("role", "invalid role")
	}

	if r.CompanyID != nil && validator.IsEmpty(*r.CompanyID) {
		errs.Add("companyId", "companyId must not be empty")
	}

	return errs.Err()
}

type ListUserQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
	Role   string `json:"role"`
}

func (q *ListUserQuery) Validate() error {
	var errs validator.ValidationErrors

	validator.NormalizePagination(&q.Page, &q.Limit)
	q.Search = strings.TrimSpace(q.Search)

	if q.Role != "" && !validator.IsInSlice(q.Role, Roles) {
		errs.Add("role", "invalid role")
	}

	return errs.Err()
}

type ListUserResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}
