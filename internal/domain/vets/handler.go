package vets

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
	view := middleware.RequirePermission(az, authz.PermViewVets, authz.PermAllVet)
	viewOne := middleware.RequirePermission(az, authz.PermViewVet, authz.PermAllVet)
	update := middleware.RequirePermission(az, authz.PermUpdateVet, authz.PermAllVet)
	remove := middleware.RequirePermission(az, authz.PermDeleteVet, authz.PermAllVet)

	r.Route("/vets", func(vr chi.Router) {
		vr.Post("/", createVetHandler(svc))

		vr.With(view).Get("/", listVetsHandler(svc))
		vr.With(viewOne).Get("/{id}", getVetHandler(svc))
		vr.With(update).Put("/{id}", updateVetHandler(svc))
		vr.With(remove).Delete("/{id}", deleteVetHandler(svc))
	})
}

type vetRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Specialty string `json:"specialty" enums:"CAT,DOG,CAT_DOG"`
}

type vetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Specialty Specialty `json:"specialty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createVetHandler godoc
// @Summary Registrar vet
// @Description Crea el vet y su cuenta VET. Specialty desconocida se normaliza a CAT_DOG.
// @Tags vets
// @Accept json
// @Produce json
// @Param body body vetRequest true "Vet"
// @Success 201 {object} vetResponse
// @Failure 405 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /vets [post]
func createVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		v, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVetResponse(v))
	}
}

// listVetsHandler godoc
// @Summary Listar vets
// @Tags vets
// @Produce json
// @Success 200 {array} vetResponse
// @Router /vets [get]
func listVetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVetResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getVetHandler godoc
// @Summary Obtener vet
// @Tags vets
// @Produce json
// @Param id path string true "Vet ID"
// @Success 200 {object} vetResponse
// @Failure 404 {object} apperr.Response
// @Router /vets/{id} [get]
func getVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

// updateVetHandler godoc
// @Summary Actualizar vet
// @Tags vets
// @Accept json
// @Produce json
// @Param id path string true "Vet ID"
// @Param body body vetRequest true "Vet"
// @Success 200 {object} vetResponse
// @Failure 404 {object} apperr.Response
// @Router /vets/{id} [put]
func updateVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		v, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

// deleteVetHandler godoc
// @Summary Eliminar vet
// @Tags vets
// @Produce json
// @Param id path string true "Vet ID"
// @Success 200 {object} vetResponse
// @Failure 404 {object} apperr.Response
// @Router /vets/{id} [delete]
func deleteVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

func (req vetRequest) toInput() Input {
	return Input{
		Name:      req.Name,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Specialty: req.Specialty,
	}
}

func toVetResponse(v Vet) vetResponse {
	return vetResponse{
		ID:        v.ID,
		Name:      v.Name,
		Email:     v.Email,
		Username:  v.Username,
		Specialty: v.Specialty,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
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
