package owners

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
	view := middleware.RequirePermission(az, authz.PermViewOwners, authz.PermAllOwner)
	viewOne := middleware.RequirePermission(az, authz.PermViewOwner, authz.PermAllOwner)
	update := middleware.RequirePermission(az, authz.PermUpdateOwner, authz.PermAllOwner)
	remove := middleware.RequirePermission(az, authz.PermDeleteOwner, authz.PermAllOwner)

	r.Route("/owners", func(or chi.Router) {
		// Registro abierto: crea owner + cuenta OWNER.
		or.Post("/", createOwnerHandler(svc))

		or.With(view).Get("/", listOwnersHandler(svc))
		or.With(viewOne).Get("/{id}", getOwnerHandler(svc))
		or.With(update).Put("/{id}", updateOwnerHandler(svc))
		or.With(remove).Delete("/{id}", deleteOwnerHandler(svc))
	})
}

type ownerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createOwnerHandler godoc
// @Summary Registrar owner
// @Description Crea el owner y su cuenta de usuario OWNER. Email o username tomados devuelven 409 según a quién pertenezca la cuenta existente.
// @Tags owners
// @Accept json
// @Produce json
// @Param body body ownerRequest true "Owner"
// @Success 201 {object} ownerResponse
// @Failure 405 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /owners [post]
func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		o, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// listOwnersHandler godoc
// @Summary Listar owners
// @Tags owners
// @Produce json
// @Success 200 {array} ownerResponse
// @Router /owners [get]
func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getOwnerHandler godoc
// @Summary Obtener owner
// @Tags owners
// @Produce json
// @Param id path string true "Owner ID"
// @Success 200 {object} ownerResponse
// @Failure 404 {object} apperr.Response
// @Router /owners/{id} [get]
func getOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// updateOwnerHandler godoc
// @Summary Actualizar owner
// @Tags owners
// @Accept json
// @Produce json
// @Param id path string true "Owner ID"
// @Param body body ownerRequest true "Owner"
// @Success 200 {object} ownerResponse
// @Failure 404 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /owners/{id} [put]
func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		o, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// deleteOwnerHandler godoc
// @Summary Eliminar owner
// @Tags owners
// @Produce json
// @Param id path string true "Owner ID"
// @Success 200 {object} ownerResponse
// @Failure 404 {object} apperr.Response
// @Router /owners/{id} [delete]
func deleteOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func (req ownerRequest) toInput() Input {
	return Input{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		Name:      o.Name,
		Email:     o.Email,
		Username:  o.Username,
		Phone:     o.Phone,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
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
