package pets

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
	view := middleware.RequirePermission(az, authz.PermViewPets, authz.PermAllPet)
	viewOne := middleware.RequirePermission(az, authz.PermViewPet, authz.PermAllPet)
	create := middleware.RequirePermission(az, authz.PermCreatePet, authz.PermAllPet)
	update := middleware.RequirePermission(az, authz.PermUpdatePet, authz.PermAllPet)
	remove := middleware.RequirePermission(az, authz.PermDeletePet, authz.PermAllPet)

	r.Route("/pets", func(pr chi.Router) {
		pr.With(view).Get("/", listPetsHandler(svc))
		pr.With(create).Post("/", createPetHandler(svc))

		pr.With(viewOne).Get("/{petID}", getPetHandler(svc))
		pr.With(update).Put("/{petID}", updatePetHandler(svc))
		pr.With(remove).Delete("/{petID}", deletePetHandler(svc))
	})

	// Mascotas de un owner
	r.With(view).Get("/owners/{ownerID}/pets", listOwnerPetsHandler(svc))
}

type petRequest struct {
	OwnerID string  `json:"owner_id"`
	Name    string  `json:"name"`
	Type    string  `json:"type" enums:"DOG,CAT,UNKNOWN"`
	Breed   string  `json:"breed"`
	Color   string  `json:"color"`
	Age     int     `json:"age"`
	Weight  float64 `json:"weight"`
}

type petResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Breed     string    `json:"breed"`
	Color     string    `json:"color"`
	Age       int       `json:"age"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description El owner debe existir y no tener otra mascota con el mismo nombre y tipo.
// @Tags pets
// @Accept json
// @Produce json
// @Param body body petRequest true "Mascota"
// @Success 201 {object} petResponse
// @Failure 404 {object} apperr.Response
// @Failure 405 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		p, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponses(items))
	}
}

// listOwnerPetsHandler godoc
// @Summary Mascotas de un owner
// @Tags pets
// @Produce json
// @Param ownerID path string true "Owner ID"
// @Success 200 {array} petResponse
// @Failure 404 {object} apperr.Response
// @Router /owners/{ownerID}/pets [get]
func listOwnerPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByOwner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponses(items))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} petResponse
// @Failure 404 {object} apperr.Response
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "Pet ID"
// @Param body body petRequest true "Mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} apperr.Response
// @Failure 405 {object} apperr.Response
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Eliminar mascota
// @Tags pets
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} petResponse
// @Failure 404 {object} apperr.Response
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Delete(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func (req petRequest) toInput() Input {
	return Input{
		OwnerID: req.OwnerID,
		Name:    req.Name,
		Type:    req.Type,
		Breed:   req.Breed,
		Color:   req.Color,
		Age:     req.Age,
		Weight:  req.Weight,
	}
}

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Type:      p.Type,
		Breed:     p.Breed,
		Color:     p.Color,
		Age:       p.Age,
		Weight:    p.Weight,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
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
