package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// WithPrincipal stores the authenticated caller on ctx.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by AuthRequired.
func PrincipalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// AuthRequired turns the verified bearer token into a user.Principal.
// It must run after jwtauth.Verifier. A nil denylist skips revocation checks.
func AuthRequired(denylist auth.TokenDenylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, raw, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.Unauthorized(w, "Invalid or missing token")
				return
			}

			claims, err := jwt.ParseClaims(token, raw)
			if err != nil {
				response.Unauthorized(w, "Invalid or missing token")
				return
			}

			if denylist != nil && claims.TokenID != "" {
				revoked, err := denylist.IsRevoked(r.Context(), claims.TokenID)
				if err != nil {
					slog.Warn("token denylist unavailable", "error", err)
				} else if revoked {
					response.HandleError(w, auth.ErrTokenRevoked)
					return
				}
			}

			principal := user.Principal{
				UserID:    claims.UserID,
				Role:      claims.Role,
				CompanyID: claims.CompanyID,
				TokenID:   claims.TokenID,
				ExpiresAt: claims.ExpiresAt,
			}
			if !principal.IsSuperAdmin() {
				principal.ScopeCompanyID = principal.CompanyID
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		}
		return http.HandlerFunc(hfn)
	}
}
