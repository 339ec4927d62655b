package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

type AdminServiceImpl struct {
	tx database.TxManager
	user.UserRepository
	now func() time.Time
}

func NewAdminService(tx database.TxManager, userRepository user.UserRepository) user.AdminService {
	return &AdminServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
		now:            time.Now,
	}
}

// List implements user.AdminService.
// Subtle: this method shadows the method (UserRepository).List of AdminServiceImpl.UserRepository.
func (s *AdminServiceImpl) List(ctx context.Context, principal user.Principal, query user.ListUserQuery) (user.ListUserResponse, error) {
	if !principal.IsAdmin() {
		return user.ListUserResponse{}, user.ErrForbidden
	}
	if err := query.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	filter := user.UserFilter{
		CompanyID: principal.CompanyFilter(),
		Search:    query.Search,
		Page:      query.Page,
		Limit:     query.Limit,
	}
	if query.Role != "" {
		role := user.Role(query.Role)
		filter.Role = &role
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.NewUserResponse(u))
	}

	return user.ListUserResponse{
		Users:      responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

// Get implements user.AdminService.
func (s *AdminServiceImpl) Get(ctx context.Context, principal user.Principal, id string) (user.UserResponse, error) {
	found, err := s.load(ctx, principal, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(found), nil
}

// Create implements user.AdminService. Accounts created by an administrator
// skip e-mail verification.
// Subtle: this method shadows the method (UserRepository).Create of AdminServiceImpl.UserRepository.
func (s *AdminServiceImpl) Create(ctx context.Context, principal user.Principal, req user.CreateUserRequest) (user.UserResponse, error) {
	if !principal.IsAdmin() {
		return user.UserResponse{}, user.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	role := user.Role(req.Role)
	if err := checkAssignableRole(principal, role); err != nil {
		return user.UserResponse{}, err
	}
	companyID, err := targetCompany(principal, role, req.CompanyID)
	if err != nil {
		return user.UserResponse{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.UserRepository.Create(ctx, user.User{
		Email:           req.Email,
		PasswordHash:    string(hashedPassword),
		Name:            req.Name,
		Role:            role,
		CompanyID:       companyID,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", created.ID, "role", created.Role, "created_by", principal.UserID)
	return user.NewUserResponse(created), nil
}

// Update implements user.AdminService.
// Subtle: this method shadows the method (UserRepository).Update of AdminServiceImpl.UserRepository.
func (s *AdminServiceImpl) Update(ctx context.Context, principal user.Principal, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if !principal.IsAdmin() {
		return user.UserResponse{}, user.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	existing, err := s.load(ctx, principal, id)
	if err != nil {
		return user.UserResponse{}, err
	}

	updated := existing
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Role != nil {
		updated.Role = user.Role(*req.Role)
		if err := checkAssignableRole(principal, updated.Role); err != nil {
			return user.UserResponse{}, err
		}
	}

	requestedCompany := req.CompanyID
	if requestedCompany == nil && updated.Role != user.RoleSuperAdmin {
		requestedCompany = existing.CompanyID
	}
	updated.CompanyID, err = targetCompany(principal, updated.Role, requestedCompany)
	if err != nil {
		return user.UserResponse{}, err
	}

	var passwordHash string
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hashed)
	}

	var saved user.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.UserRepository.Update(ctx, updated)
		if err != nil {
			return err
		}
		if passwordHash == "" {
			return nil
		}
		if err := s.UserRepository.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) || errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to update user with id %s: %w", id, err)
	}

	return user.NewUserResponse(saved), nil
}

// Delete implements user.AdminService.
// Subtle: this method shadows the method (UserRepository).Delete of AdminServiceImpl.UserRepository.
func (s *AdminServiceImpl) Delete(ctx context.Context, principal user.Principal, id string) error {
	if !principal.IsAdmin() {
		return user.ErrForbidden
	}
	if id == principal.UserID {
		return user.ErrCannotDeleteSelf
	}

	existing, err := s.load(ctx, principal, id)
	if err != nil {
		return err
	}

	if err := s.UserRepository.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user with id %s: %w", id, err)
	}

	slog.Info("user deleted", "user_id", existing.ID, "deleted_by", principal.UserID)
	return nil
}

// load fetches a user the administrator may manage. Users of other companies
// are reported as not found.
func (s *AdminServiceImpl) load(ctx context.Context, principal user.Principal, id string) (user.User, error) {
	if !principal.IsAdmin() {
		return user.User{}, user.ErrForbidden
	}

	found, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}
	if !principal.CanAccessUser(found) {
		return user.User{}, user.ErrUserNotFound
	}
	return found, nil
}

// checkAssignableRole keeps company administrators from granting SUPER_ADMIN.
func checkAssignableRole(principal user.Principal, role user.Role) error {
	if role == user.RoleSuperAdmin && !principal.IsSuperAdmin() {
		return user.ErrCannotAssignRole
	}
	return nil
}

// targetCompany resolves the company of a new or updated account. Admins are
// pinned to their own company; super admins name it in the body or through
// the X-Company-ID scope.
func targetCompany(principal user.Principal, role user.Role, requested *string) (*string, error) {
	if role == user.RoleSuperAdmin {
		if requested != nil {
			return nil, user.ErrSuperAdminHasNoCompany
		}
		return nil, nil
	}

	if !principal.IsSuperAdmin() {
		if requested != nil && *requested != principal.CompanyID {
			return nil, user.ErrForbidden
		}
		own := principal.CompanyID
		return &own, nil
	}

	if requested != nil {
		if !principal.CanAccessCompany(*requested) {
			return nil, user.ErrForbidden
		}
		return requested, nil
	}
	if principal.ScopeCompanyID != "" {
		scoped := principal.ScopeCompanyID
		return &scoped, nil
	}
	return nil, user.ErrCompanyIDRequired
}
