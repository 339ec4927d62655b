package middleware

import (
	"net/http"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const CompanyHeader = "X-Company-ID"

// CompanyScope resolves the company a request works on. Super admins may
// choose one with X-Company-ID; everybody else is pinned to their own company
// and a different header value is rejected.
func CompanyScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			response.HandleError(w, user.ErrUnauthenticated)
			return
		}

		requested := strings.TrimSpace(r.Header.Get(CompanyHeader))
		if requested != "" && !validator.IsValidUUID(requested) {
			response.BadRequest(w, "Invalid "+CompanyHeader+" header", map[string]string{CompanyHeader: "must be a valid company ID"})
			return
		}

		if principal.IsSuperAdmin() {
			principal.ScopeCompanyID = requested
		} else {
			if requested != "" && requested != principal.CompanyID {
				response.Forbidden(w, "You cannot access another company")
				return
			}
			principal.ScopeCompanyID = principal.CompanyID
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}
