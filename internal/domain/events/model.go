package events

import (
	"strings"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type EventType string

const (
	EventTypeCreated       EventType = "CREATED"
	EventTypeUpdated       EventType = "UPDATED"
	EventTypeStatusChanged EventType = "STATUS_CHANGED"
	EventTypeDeleted       EventType = "DELETED"
)

// ParseEventType: desconocido => "" (no filtra).
func ParseEventType(raw string) EventType {
	switch t := EventType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case EventTypeCreated, EventTypeUpdated, EventTypeStatusChanged, EventTypeDeleted:
		return t
	default:
		return ""
	}
}

// AppointmentEvent es una entrada del historial de un turno.
// Guarda una foto del turno al momento del cambio.
type AppointmentEvent struct {
	ID            string
	AppointmentID string
	Type          EventType

	Status appointments.Status
	Date   time.Time
	Hour   appointments.Slot

	VetID   string
	OwnerID string
	PetID   string

	ActorID    string
	OccurredAt time.Time
}

// RoutingKey es la clave con la que se publica en el exchange: appointment.<type>.
func (e AppointmentEvent) RoutingKey() string {
	return "appointment." + strings.ToLower(string(e.Type))
}

func fromChange(id string, ch appointments.Change) AppointmentEvent {
	a := ch.Appointment
	return AppointmentEvent{
		ID:            id,
		AppointmentID: a.ID,
		Type:          EventType(ch.Kind),
		Status:        a.Status,
		Date:          a.Date,
		Hour:          a.Hour,
		VetID:         a.VetID,
		OwnerID:       a.OwnerID,
		PetID:         a.PetID,
		ActorID:       ch.ActorID,
		OccurredAt:    ch.At.UTC(),
	}
}
