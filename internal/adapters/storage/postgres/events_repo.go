package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Append(ctx context.Context, e events.AppointmentEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointment_events (
			id, appointment_id,
			type, status, date, hour,
			vet_id, owner_id, pet_id,
			actor_id, occurred_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID,
		e.AppointmentID,
		string(e.Type),
		string(e.Status),
		e.Date,
		string(e.Hour),
		e.VetID,
		e.OwnerID,
		e.PetID,
		e.ActorID,
		e.OccurredAt,
	)
	return err
}

func (r *EventsRepo) ListByAppointment(ctx context.Context, appointmentID string, filter events.ListFilter) ([]events.AppointmentEvent, error) {
	appointmentID = strings.TrimSpace(appointmentID)
	if !validID(appointmentID) {
		return []events.AppointmentEvent{}, nil
	}

	// Base query
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, appointment_id,
			type, status, date, hour,
			vet_id, owner_id, pet_id,
			actor_id, occurred_at
		FROM appointment_events
		WHERE appointment_id = $1
	`)

	args := []any{appointmentID}
	argN := 2

	// types filter
	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.AppointmentEvent, 0)
	for rows.Next() {
		var e events.AppointmentEvent
		var typ, status, hour string
		var date time.Time

		if err := rows.Scan(
			&e.ID,
			&e.AppointmentID,
			&typ,
			&status,
			&date,
			&hour,
			&e.VetID,
			&e.OwnerID,
			&e.PetID,
			&e.ActorID,
			&e.OccurredAt,
		); err != nil {
			return nil, err
		}

		e.Type = events.EventType(typ)
		e.Status = appointments.Status(status)
		e.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		e.Hour = appointments.Slot(hour)

		out = append(out, e)
	}

	return out, rows.Err()
}
