package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type AuthService interface {
	Setup(ctx context.Context, req SetupRequest) (LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context, principal user.Principal) error
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) error
	ResendVerification(ctx context.Context, req ResendVerificationRequest) error
	Me(ctx context.Context, principal user.Principal) (user.UserResponse, error)
	UpdateProfile(ctx context.Context, principal user.Principal, req UpdateProfileRequest) (user.UserResponse, error)
	ChangePassword(ctx context.Context, principal user.Principal, req ChangePasswordRequest) error
	GoogleLoginURL(state string) (string, error)
	LoginWithGoogle(ctx context.Context, code string) (LoginResponse, error)
}
