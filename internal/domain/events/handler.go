package events

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/ports/authz"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, az authz.Authorizer) {
	viewOne := middleware.RequirePermission(az, authz.PermViewAppointment, authz.PermAllAppointment)
	r.With(viewOne).Get("/appointments/{id}/events", listEventsHandler(svc))
}

// eventResponse representa una entrada del historial de un turno.
type eventResponse struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	Type          EventType `json:"type"`
	Status        string    `json:"status"`
	Date          string    `json:"date"`
	Hour          string    `json:"hour"`
	VetID         string    `json:"vet_id"`
	OwnerID       string    `json:"owner_id"`
	PetID         string    `json:"pet_id"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// listEventsHandler godoc
// @Summary Historial de un turno
// @Description Devuelve los cambios del turno, más reciente primero. Sigue disponible después de borrar el turno.
// @Tags events
// @Produce json
// @Param id path string true "Appointment ID"
// @Param limit query int false "Máximo de eventos a devolver (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos (ej: CREATED,STATUS_CHANGED)"
// @Success 200 {array} eventResponse
// @Failure 401 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /appointments/{id}/events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByAppointment(r.Context(), chi.URLParam(r, "id"), parseListFilter(r))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) ListFilter {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=CREATED,STATUS_CHANGED
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if t := ParseEventType(p); t != "" {
				filter.Types = append(filter.Types, t)
			}
		}
	}
	return filter
}

func toEventResponse(e AppointmentEvent) eventResponse {
	return eventResponse{
		ID:            e.ID,
		AppointmentID: e.AppointmentID,
		Type:          e.Type,
		Status:        string(e.Status),
		Date:          e.Date.Format("2006-01-02"),
		Hour:          string(e.Hour),
		VetID:         e.VetID,
		OwnerID:       e.OwnerID,
		PetID:         e.PetID,
		ActorID:       e.ActorID,
		OccurredAt:    e.OccurredAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := apperr.ToResponse(err)
	writeJSON(w, resp.Status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
