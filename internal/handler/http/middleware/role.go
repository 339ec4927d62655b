package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// RequireRole admits callers whose role equals one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.HandleError(w, user.ErrUnauthenticated)
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient role for this operation")
		})
	}
}

// RequireAdmin admits ADMIN and SUPER_ADMIN.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(user.RoleAdmin, user.RoleSuperAdmin)(next)
}

// RequireSuperAdmin admits SUPER_ADMIN only.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return RequireRole(user.RoleSuperAdmin)(next)
}
