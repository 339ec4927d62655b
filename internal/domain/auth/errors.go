package auth

import "errors"

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrEmailAlreadyVerified     = errors.New("email is already verified")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrSetupAlreadyDone         = errors.New("initial setup has already been completed")
	ErrInvalidCurrentPassword   = errors.New("current password is incorrect")
	ErrTokenRevoked             = errors.New("token has been revoked")
	ErrGoogleLoginDisabled      = errors.New("google login is not configured")
	ErrGoogleAccountNotLinked   = errors.New("no verified account matches this google account")
)
