package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/response"
)

// AuthRequired resolves the caller through authService and stores the
// Identity in the request context. Failures are written with the
// credential verifier's error kinds.
func AuthRequired(authService auth.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			identity, err := authService.Authenticate(r.Context(), r.Header)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
		}
		return http.HandlerFunc(hfn)
	}
}
