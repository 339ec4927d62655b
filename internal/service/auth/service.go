package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultVerificationTTL = 24 * time.Hour

type Options struct {
	FrontendURL     string
	VerificationTTL time.Duration
}

type AuthServiceImpl struct {
	tx database.TxManager
	user.UserRepository
	company.CompanyRepository
	jwt.Service

	// denylist and google may be nil when Redis or Google sign-in are not configured.
	denylist auth.TokenDenylist
	google   oauth.GoogleService
	mailer   email.EmailService
	opts     Options
	now      func() time.Time
	dispatch func(func())
}

func NewAuthService(
	tx database.TxManager,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	jwtService jwt.Service,
	denylist auth.TokenDenylist,
	mailer email.EmailService,
	google oauth.GoogleService,
	opts Options,
) auth.AuthService {
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = DefaultVerificationTTL
	}
	return &AuthServiceImpl{
		tx:                tx,
		UserRepository:    userRepository,
		CompanyRepository: companyRepository,
		Service:           jwtService,
		denylist:          denylist,
		google:            google,
		mailer:            mailer,
		opts:              opts,
		now:               time.Now,
		dispatch:          func(fn func()) { go fn() },
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Setup implements auth.AuthService.
func (a *AuthServiceImpl) Setup(ctx context.Context, req auth.SetupRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	var created user.User
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		count, err := a.UserRepository.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			return auth.ErrSetupAlreadyDone
		}

		now := a.now().UTC()
		created, err = a.UserRepository.Create(ctx, user.User{
			Email:           req.Email,
			PasswordHash:    hashed,
			Name:            req.Name,
			Role:            user.RoleSuperAdmin,
			EmailVerified:   true,
			EmailVerifiedAt: &now,
		})
		return err
	})
	if err != nil {
		return auth.LoginResponse{}, err
	}

	slog.Info("initial super admin created", "user_id", created.ID)
	return a.issueToken(created)
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	companyData, err := a.CompanyRepository.GetByPublicID(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			var errs validator.ValidationErrors
			errs.Add("companyId", "unknown company")
			return user.UserResponse{}, errs
		}
		return user.UserResponse{}, fmt.Errorf("failed to get company by public id: %w", err)
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, err
	}

	token, expiresAt := a.newVerificationToken()
	created, err := a.UserRepository.Create(ctx, user.User{
		Email:                      req.Email,
		PasswordHash:               hashed,
		Name:                       req.Name,
		Role:                       user.RoleEmployee,
		CompanyID:                  &companyData.ID,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: &expiresAt,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.sendVerification(created, token, expiresAt)
	return user.NewUserResponse(created), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.EmailVerified {
		return auth.LoginResponse{}, auth.ErrEmailNotVerified
	}

	return a.issueToken(userData)
}

// Logout implements auth.AuthService. The token stays valid without a denylist.
func (a *AuthServiceImpl) Logout(ctx context.Context, principal user.Principal) error {
	if principal.UserID == "" {
		return user.ErrUnauthenticated
	}
	if a.denylist == nil {
		slog.Warn("token denylist not configured, logout is client-side only", "user_id", principal.UserID)
		return nil
	}
	if principal.TokenID == "" {
		return nil
	}
	if err := a.denylist.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// VerifyEmail implements auth.AuthService.
func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, req auth.VerifyEmailRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByVerificationToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to get user by verification token: %w", err)
	}

	if userData.EmailVerified {
		return auth.ErrEmailAlreadyVerified
	}
	now := a.now().UTC()
	if userData.VerificationExpired(now) {
		return auth.ErrInvalidVerificationToken
	}

	if err := a.UserRepository.MarkEmailVerified(ctx, userData.ID, now); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	slog.Info("email verified", "user_id", userData.ID)
	return nil
}

// ResendVerification implements auth.AuthService. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (a *AuthServiceImpl) ResendVerification(ctx context.Context, req auth.ResendVerificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if userData.EmailVerified {
		return auth.ErrEmailAlreadyVerified
	}

	token, expiresAt := a.newVerificationToken()
	if err := a.UserRepository.SetVerificationToken(ctx, userData.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	a.sendVerification(userData, token, expiresAt)
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, principal user.Principal) (user.UserResponse, error) {
	userData, err := a.currentUser(ctx, principal)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(userData), nil
}

// UpdateProfile implements auth.AuthService.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, principal user.Principal, req auth.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	userData, err := a.currentUser(ctx, principal)
	if err != nil {
		return user.UserResponse{}, err
	}
	userData.Name = *req.Name

	updated, err := a.UserRepository.Update(ctx, userData)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return user.NewUserResponse(updated), nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, principal user.Principal, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.currentUser(ctx, principal)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrInvalidCurrentPassword
	}

	hashed, err := a.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := a.UserRepository.UpdatePassword(ctx, userData.ID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GoogleLoginURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleLoginURL(state string) (string, error) {
	if a.google == nil {
		return "", auth.ErrGoogleLoginDisabled
	}
	return a.google.AuthCodeURL(state), nil
}

// LoginWithGoogle implements auth.AuthService. Only existing accounts can sign
// in; the Google address must be verified and match the account's e-mail.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, code string) (auth.LoginResponse, error) {
	if a.google == nil {
		return auth.LoginResponse{}, auth.ErrGoogleLoginDisabled
	}

	googleUser, err := a.google.FetchUser(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return auth.LoginResponse{}, auth.ErrGoogleAccountNotLinked
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to fetch google user: %w", err)
	}

	userData, err := a.UserRepository.GetByEmail(ctx, validator.NormalizeEmail(googleUser.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrGoogleAccountNotLinked
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	}

	// Google has verified the address, which is what the e-mail link proves.
	if !userData.EmailVerified {
		now := a.now().UTC()
		if err := a.UserRepository.MarkEmailVerified(ctx, userData.ID, now); err != nil {
			return auth.LoginResponse{}, fmt.Errorf("failed to mark email verified: %w", err)
		}
		userData.EmailVerified = true
		userData.EmailVerifiedAt = &now
	}

	slog.Info("google login", "user_id", userData.ID, "google_id", googleUser.GoogleID)
	return a.issueToken(userData)
}

func (a *AuthServiceImpl) currentUser(ctx context.Context, principal user.Principal) (user.User, error) {
	if principal.UserID == "" {
		return user.User{}, user.ErrUnauthenticated
	}
	userData, err := a.UserRepository.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return userData, nil
}

func (a *AuthServiceImpl) issueToken(u user.User) (auth.LoginResponse, error) {
	token, claims, err := a.Service.GenerateAccessToken(u.ID, u.Role, u.CompanyID)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return auth.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.UTC().Format(time.RFC3339),
		User:      user.NewUserResponse(u),
	}, nil
}

func (a *AuthServiceImpl) newVerificationToken() (string, time.Time) {
	return uuid.NewString(), a.now().UTC().Add(a.opts.VerificationTTL)
}

// sendVerification mails the link in the background. Failures are logged, the
// user can ask for a new link.
func (a *AuthServiceImpl) sendVerification(u user.User, token string, expiresAt time.Time) {
	if a.mailer == nil {
		return
	}
	link := a.opts.FrontendURL + "/verify-email?token=" + url.QueryEscape(token)
	expires := expiresAt.Format(time.RFC1123)

	a.dispatch(func() {
		if err := a.mailer.SendVerification(u.Email, u.Name, link, expires); err != nil {
			slog.Error("failed to send verification email", "user_id", u.ID, "error", err)
		}
	})
}
