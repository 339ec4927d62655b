package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthCallbackURL = "/api/auth/google/callback"
)

type AuthHandler interface {
	Setup(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService   auth.AuthService
	frontendURL   string
	secureCookies bool
}

func NewAuthHandler(authService auth.AuthService, frontendURL string, secureCookies bool) AuthHandler {
	return &AuthHandlerImpl{
		authService:   authService,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
	}
}

// Setup implements AuthHandler.
func (a *AuthHandlerImpl) Setup(w http.ResponseWriter, r *http.Request) {
	var req auth.SetupRequest
	if !decodeJSON(w, r, &req, "Setup") {
		return
	}

	tokenResponse, err := a.authService.Setup(r.Context(), req)
	if err != nil {
		slog.Error("Setup service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Super admin created successfully", tokenResponse)
}

// Register implements AuthHandler.
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSON(w, r, &req, "Register") {
		return
	}

	created, err := a.authService.Register(r.Context(), req)
	if err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User registered", "user_id", created.ID)
	response.Created(w, "Registration successful, please check your email to verify your account", created)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req, "Login") {
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), req)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User logged in successfully", "user_id", tokenResponse.User.ID)
	response.SuccessWithMessage(w, "User logged in successfully", tokenResponse)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := a.authService.Logout(r.Context(), p); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// VerifyEmail implements AuthHandler.
func (a *AuthHandlerImpl) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyEmailRequest
	if !decodeJSON(w, r, &req, "VerifyEmail") {
		return
	}

	if err := a.authService.VerifyEmail(r.Context(), req); err != nil {
		slog.Error("VerifyEmail service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Email verified successfully", nil)
}

// ResendVerification implements AuthHandler.
func (a *AuthHandlerImpl) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req auth.ResendVerificationRequest
	if !decodeJSON(w, r, &req, "ResendVerification") {
		return
	}

	if err := a.authService.ResendVerification(r.Context(), req); err != nil {
		slog.Error("ResendVerification service error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Same answer for unknown addresses.
	response.SuccessWithMessage(w, "If the account exists, a verification link has been sent", nil)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	me, err := a.authService.Me(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, me)
}

// UpdateProfile implements AuthHandler.
func (a *AuthHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req auth.UpdateProfileRequest
	if !decodeJSON(w, r, &req, "UpdateProfile") {
		return
	}

	updated, err := a.authService.UpdateProfile(r.Context(), p, req)
	if err != nil {
		slog.Error("UpdateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated successfully", updated)
}

// ChangePassword implements AuthHandler.
func (a *AuthHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req auth.ChangePasswordRequest
	if !decodeJSON(w, r, &req, "ChangePassword") {
		return
	}

	if err := a.authService.ChangePassword(r.Context(), p, req); err != nil {
		slog.Error("ChangePassword service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password changed successfully", nil)
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	redirectURL, err := a.authService.GoogleLoginURL(state)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     oauthCallbackURL,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle implements AuthHandler.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Error("Error in OAuth callback", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		slog.Error("State cookie not found", "error", err)
		redirectWithError("state_cookie_not_found")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     oauthCallbackURL,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
	})

	if r.URL.Query().Get("state") != stateCookie.Value {
		slog.Error("State mismatch")
		redirectWithError("state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	tokenResponse, err := a.authService.LoginWithGoogle(r.Context(), code)
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		if errors.Is(err, auth.ErrGoogleAccountNotLinked) {
			redirectWithError("account_not_linked")
			return
		}
		redirectWithError("login_failed")
		return
	}

	slog.Info("User logged in successfully via Google OAuth", "user_id", tokenResponse.User.ID)

	// The token travels in the fragment so it never reaches server logs.
	redirectURL := fmt.Sprintf("%s/auth/callback/google#access_token=%s&expires_at=%s",
		a.frontendURL,
		url.QueryEscape(tokenResponse.Token),
		url.QueryEscape(tokenResponse.ExpiresAt),
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
