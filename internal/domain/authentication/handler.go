package authentication

import (
	"encoding/json"
	"net/http"
	"time"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/login", loginHandler(svc))
		ar.Post("/logout", logoutHandler(svc))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string             `json:"token"`
	TokenType string             `json:"token_type"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      users.UserResponse `json:"user"`
}

// loginHandler godoc
// @Summary Login
// @Description Devuelve un JWT (Bearer) y la vista del usuario.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Failure 405 {object} apperr.Response
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{
			Token:     sess.Token,
			TokenType: "Bearer",
			ExpiresAt: sess.ExpiresAt,
			User:      users.ToResponse(sess.User),
		})
	}
}

// logoutHandler godoc
// @Summary Logout
// @Description Revoca el Bearer token enviado.
// @Tags auth
// @Param Authorization header string true "Bearer <token>"
// @Success 204
// @Failure 401 {object} apperr.Response
// @Router /auth/logout [post]
func logoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

var errInvalidJSON = apperr.New("INVALID_JSON", http.StatusBadRequest, "invalid json")

func writeError(w http.ResponseWriter, err error) {
	resp := apperr.ToResponse(err)
	writeJSON(w, resp.Status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
