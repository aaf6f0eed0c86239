package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"vet-clinic-api/internal/ports/authz"
)

// RequirePermission deja pasar si las claims tienen alguno de los permisos.
// Sin claims => 401; con claims sin permiso => 403.
func RequirePermission(az authz.Authorizer, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				deny(w, http.StatusUnauthorized, "UNAUTHORIZED", "the user credentials are invalid")
				return
			}

			allowed, err := az.Allowed(r.Context(), claims, permissions...)
			if err != nil {
				deny(w, http.StatusInternalServerError, "UNKNOWN", "internal server error")
				return
			}
			if !allowed {
				deny(w, http.StatusForbidden, "FORBIDDEN", "the user credentials do not grant access to this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"kind":    kind,
		"message": msg,
		"status":  status,
	})
}
