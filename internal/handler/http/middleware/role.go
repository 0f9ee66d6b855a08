package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/response"
)

// RequireRoles allows the request when the authenticated identity holds at
// least one of roles. Must run after AuthRequired.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	required := make([]string, 0, len(roles))
	for _, r := range roles {
		required = append(required, string(r))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrMissingAuthHeader)
				return
			}

			if !user.HasRole(identity.Roles, required) {
				response.HandleError(w, auth.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireApprover requires ADMIN or MANAGER
func RequireApprover(next http.Handler) http.Handler {
	return RequireRoles(user.RoleAdmin, user.RoleManager)(next)
}
