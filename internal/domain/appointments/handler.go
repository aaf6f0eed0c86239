package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/ports/authz"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, az authz.Authorizer) {
	view := middleware.RequirePermission(az, authz.PermViewAppointments, authz.PermAllAppointment)
	viewOne := middleware.RequirePermission(az, authz.PermViewAppointment, authz.PermAllAppointment)
	create := middleware.RequirePermission(az, authz.PermCreateAppointment, authz.PermAllAppointment)
	update := middleware.RequirePermission(az, authz.PermUpdateAppointment, authz.PermAllAppointment)
	remove := middleware.RequirePermission(az, authz.PermDeleteAppointment, authz.PermAllAppointment)

	r.Route("/appointments", func(ar chi.Router) {
		ar.With(view).Get("/", listAppointmentsHandler(svc))
		ar.With(create).Post("/", createAppointmentHandler(svc))
		ar.With(view).Get("/slots", listSlotsHandler(svc))

		ar.With(viewOne).Get("/{id}", getAppointmentHandler(svc))
		ar.With(update).Put("/{id}", updateAppointmentHandler(svc))
		ar.With(remove).Delete("/{id}", deleteAppointmentHandler(svc))

		// Forma histórica: el estado viaja en el path.
		ar.With(update).Put("/{id}/status/{status}", updateStatusFromPathHandler(svc))
		ar.With(update).Patch("/{id}/status", updateStatusHandler(svc))
	})

	// Turnos por entidad relacionada
	r.With(view).Get("/pets/{petID}/appointments", listByRelatedHandler(svc.ListByPet, "petID"))
	r.With(view).Get("/vets/{vetID}/appointments", listByRelatedHandler(svc.ListByVet, "vetID"))
	r.With(view).Get("/owners/{ownerID}/appointments", listByRelatedHandler(svc.ListByOwner, "ownerID"))
}

// appointmentRequest es el cuerpo para crear o reemplazar un turno.
type appointmentRequest struct {
	Date         string `json:"date"` // YYYY-MM-DD o DD/MM/YYYY
	Hour         string `json:"hour"` // ej: "10H"
	Status       string `json:"status" enums:"SCHEDULED,CONFIRMED,RESCHEDULED,IN_PROGRESS,COMPLETED,CANCELLED,NO_SHOW"`
	Examination  string `json:"examination" enums:"ROUTINE,URGENT,SURGERY,CHECK_UP,FOLLOW_UP,EMERGENCY,LAB_TESTS,X_RAY,ULTRASOUND,VACCINATION"`
	Observations string `json:"observations"`
	VetID        string `json:"vet_id"`
	PetID        string `json:"pet_id"`
	OwnerID      string `json:"owner_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// appointmentResponse representa un turno devuelto por la API.
type appointmentResponse struct {
	ID           string      `json:"id"`
	Date         string      `json:"date"`
	Hour         Slot        `json:"hour"`
	Status       Status      `json:"status"`
	Examination  Examination `json:"examination"`
	Observations string      `json:"observations"`
	VetID        string      `json:"vet_id"`
	PetID        string      `json:"pet_id"`
	OwnerID      string      `json:"owner_id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// createAppointmentHandler godoc
// @Summary Crear turno
// @Description Reserva un turno. Valida fecha (no pasada), slot horario del vocabulario de la clínica y observaciones; verifica que owner, vet y pet existan (en ese orden) y rechaza si el vet o el owner ya tienen un turno activo en la misma fecha y hora. Examination y status desconocidos se normalizan a ROUTINE / SCHEDULED.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body appointmentRequest true "Datos del turno"
// @Success 201 {object} appointmentResponse
// @Failure 400 {object} apperr.Response "invalid json"
// @Failure 401 {object} apperr.Response "unauthorized"
// @Failure 403 {object} apperr.Response "forbidden"
// @Failure 404 {object} apperr.Response "owner / vet / pet not found"
// @Failure 405 {object} apperr.Response "fecha, hora u observaciones inválidas"
// @Failure 409 {object} apperr.Response "slot ocupado"
// @Failure 500 {object} apperr.Response "internal server error"
// @Router /appointments [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req appointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar turnos
// @Description Lista turnos, opcionalmente filtrados por estado y fecha.
// @Tags appointments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "Estado exacto (SCHEDULED, CANCELLED, ...)"
// @Param date query string false "Día (YYYY-MM-DD o DD/MM/YYYY)"
// @Success 200 {array} appointmentResponse
// @Failure 405 {object} apperr.Response "fecha inválida"
// @Failure 500 {object} apperr.Response "internal server error"
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter ListFilter
		if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
			filter.Status = Status(strings.ToUpper(v))
		}
		if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
			d, err := ParseDate(v)
			if err != nil {
				writeError(w, err)
				return
			}
			filter.Date = &d
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(items))
	}
}

// listSlotsHandler godoc
// @Summary Slots de la clínica
// @Description Devuelve el vocabulario de slots horarios aceptados.
// @Tags appointments
// @Produce json
// @Success 200 {array} string
// @Router /appointments/slots [get]
func listSlotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Schedule().Slots())
	}
}

// getAppointmentHandler godoc
// @Summary Obtener turno
// @Tags appointments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del turno"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} apperr.Response "appointment not found"
// @Failure 500 {object} apperr.Response "internal server error"
// @Router /appointments/{id} [get]
func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Reemplazar turno
// @Description Revalida fecha, hora, observaciones y referencias. No vuelve a chequear conflicto de slot.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del turno"
// @Param payload body appointmentRequest true "Datos del turno"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} apperr.Response "appointment / owner / vet / pet not found"
// @Failure 405 {object} apperr.Response "datos inválidos"
// @Failure 500 {object} apperr.Response "internal server error"
// @Router /appointments/{id} [put]
func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req appointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}

		a, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado de un turno
// @Description Sin grafo de transiciones: cualquier estado puede seguir a cualquiera. Estado vacío => 405; desconocido => SCHEDULED.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del turno"
// @Param payload body statusRequest true "Nuevo estado"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} apperr.Response "appointment not found"
// @Failure 405 {object} apperr.Response "status vacío"
// @Router /appointments/{id}/status [patch]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errInvalidJSON)
			return
		}
		applyStatus(w, r, svc, req.Status)
	}
}

// updateStatusFromPathHandler godoc
// @Summary Cambiar estado de un turno (path)
// @Tags appointments
// @Produce json
// @Param id path string true "ID del turno"
// @Param status path string true "Nuevo estado"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} apperr.Response "appointment not found"
// @Router /appointments/{id}/status/{status} [put]
func updateStatusFromPathHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyStatus(w, r, svc, chi.URLParam(r, "status"))
	}
}

func applyStatus(w http.ResponseWriter, r *http.Request, svc *Service, status string) {
	claims, _ := middleware.GetClaims(r.Context())

	a, err := svc.UpdateStatus(r.Context(), claims.UserID, chi.URLParam(r, "id"), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(a))
}

// deleteAppointmentHandler godoc
// @Summary Eliminar turno
// @Tags appointments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del turno"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} apperr.Response "appointment not found"
// @Router /appointments/{id} [delete]
func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		a, err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// listByRelatedHandler godoc
// @Summary Turnos de una mascota, veterinario u owner
// @Tags appointments
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} appointmentResponse
// @Failure 404 {object} apperr.Response "pet / vet / owner not found"
// @Router /pets/{petID}/appointments [get]
// @Router /vets/{vetID}/appointments [get]
// @Router /owners/{ownerID}/appointments [get]
func listByRelatedHandler(list func(ctx context.Context, id string) ([]Appointment, error), param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context(), chi.URLParam(r, param))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(items))
	}
}

func (req appointmentRequest) toInput() Input {
	return Input{
		Date:         req.Date,
		Hour:         req.Hour,
		Status:       req.Status,
		Examination:  req.Examination,
		Observations: req.Observations,
		VetID:        req.VetID,
		PetID:        req.PetID,
		OwnerID:      req.OwnerID,
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		Date:         a.Date.Format(DateLayout),
		Hour:         a.Hour,
		Status:       a.Status,
		Examination:  a.Examination,
		Observations: a.Observations,
		VetID:        a.VetID,
		PetID:        a.PetID,
		OwnerID:      a.OwnerID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toAppointmentResponses(items []Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	return out
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
