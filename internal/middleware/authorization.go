package middleware

import (
	"net/http"

	"techhub/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin gates a route on the admin role. The decision is made on the
// role embedded in the token, not the role currently stored for the user:
// a role change only takes effect once the old token expires and the user
// logs in again.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok || role != domain.RoleAdmin {
				logger.Warn("Admin endpoint denied",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
