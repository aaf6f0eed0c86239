package users

import (
	"encoding/json"
	"net/http"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/ports/authz"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, az authz.Authorizer) {
	r.Route("/users", func(ur chi.Router) {
		ur.Use(middleware.RequirePermission(az, authz.PermAllUser))

		ur.Get("/", listUsersHandler(svc))
		ur.Post("/", createUserHandler(svc))
		ur.Get("/{id}", getUserHandler(svc))
		ur.Put("/{id}", updateUserHandler(svc))
		ur.Delete("/{id}", deleteUserHandler(svc))
	})
}

type userRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role" enums:"ADMIN,VET,OWNER"`
	VetID    string `json:"vet_id"`
	OwnerID  string `json:"owner_id"`
}

// UserResponse es la vista pública de una cuenta (sin hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	VetID     string    `json:"vet_id,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Tags users
// @Produce json
// @Success 200 {array} UserResponse
// @Failure 401 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /users [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]UserResponse, 0, len(items))
		for _, u := range items {
			out = append(out, ToResponse(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createUserHandler godoc
// @Summary Crear usuario
// @Tags users
// @Accept json
// @Produce json
// @Param body body userRequest true "Usuario"
// @Success 201 {object} UserResponse
// @Failure 405 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /users [post]
func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		u, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ToResponse(u))
	}
}

// getUserHandler godoc
// @Summary Obtener usuario
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} apperr.Response
// @Router /users/{id} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(u))
	}
}

// updateUserHandler godoc
// @Summary Actualizar usuario
// @Description Password vacío conserva el actual.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body userRequest true "Usuario"
// @Success 200 {object} UserResponse
// @Failure 404 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /users/{id} [put]
func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		u, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(u))
	}
}

// deleteUserHandler godoc
// @Summary Eliminar usuario
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} apperr.Response
// @Router /users/{id} [delete]
func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(u))
	}
}

func (req userRequest) toInput() Input {
	return Input{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		VetID:    req.VetID,
		OwnerID:  req.OwnerID,
	}
}

// ToResponse la reutiliza el módulo de autenticación.
func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		VetID:     u.VetID,
		OwnerID:   u.OwnerID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
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
