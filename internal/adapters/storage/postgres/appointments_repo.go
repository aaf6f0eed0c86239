package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, date, hour, status, examination, observations,
	vet_id, pet_id, owner_id, created_at, updated_at`

// WithSlotLock abre una tx, toma pg_advisory_xact_lock por clave (ya ordenadas)
// y corre fn con la tx en el ctx. Los locks se liberan en commit/rollback.
func (r *AppointmentsRepo) WithSlotLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	return inTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, k); err != nil {
				return fmt.Errorf("advisory lock %q: %w", k, err)
			}
		}
		return fn(ctx)
	})
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if !validID(id) {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

func (r *AppointmentsRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`)

	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		sb.WriteString(fmt.Sprintf(" AND "+cond, len(args)))
	}

	for _, ref := range []struct{ col, id string }{{"pet_id", f.PetID}, {"vet_id", f.VetID}, {"owner_id", f.OwnerID}} {
		if ref.id == "" {
			continue
		}
		if !validID(ref.id) {
			return []appointments.Appointment{}, nil
		}
		add(ref.col+" = $%d", ref.id)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Date != nil {
		add("date = $%d", *f.Date)
	}
	sb.WriteString(" ORDER BY date, hour, created_at")

	return r.query(ctx, sb.String(), args...)
}

func (r *AppointmentsRepo) FindByVetAndSlot(ctx context.Context, vetID string, date time.Time, hour appointments.Slot) ([]appointments.Appointment, error) {
	if !validID(vetID) {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments
		WHERE vet_id = $1 AND date = $2 AND hour = $3`, vetID, date, string(hour))
}

func (r *AppointmentsRepo) FindByOwnerAndSlot(ctx context.Context, ownerID string, date time.Time, hour appointments.Slot) ([]appointments.Appointment, error) {
	if !validID(ownerID) {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments
		WHERE owner_id = $1 AND date = $2 AND hour = $3`, ownerID, date, string(hour))
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO appointments (
			date, hour, status, examination, observations,
			vet_id, pet_id, owner_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+appointmentColumns,
		a.Date,
		string(a.Hour),
		string(a.Status),
		string(a.Examination),
		a.Observations,
		a.VetID,
		a.PetID,
		a.OwnerID,
	)
	out, err := scanAppointment(row)
	return out, referenceError(err)
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	if !validID(a.ID) {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE appointments
		SET
			date = $2,
			hour = $3,
			status = $4,
			examination = $5,
			observations = $6,
			vet_id = $7,
			pet_id = $8,
			owner_id = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns,
		a.ID,
		a.Date,
		string(a.Hour),
		string(a.Status),
		string(a.Examination),
		a.Observations,
		a.VetID,
		a.PetID,
		a.OwnerID,
	)
	out, err := scanAppointment(row)
	return out, referenceError(err)
}

func (r *AppointmentsRepo) UpdateStatus(ctx context.Context, id string, status appointments.Status) (appointments.Appointment, error) {
	if !validID(id) {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE appointments SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, string(status))
	return scanAppointment(row)
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) (appointments.Appointment, error) {
	if !validID(id) {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `DELETE FROM appointments WHERE id = $1 RETURNING `+appointmentColumns, id)
	return scanAppointment(row)
}

func (r *AppointmentsRepo) query(ctx context.Context, q string, args ...any) ([]appointments.Appointment, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// referenceError traduce un FK roto (owner, vet o pet borrado entre el guard
// y el INSERT) al NotFound del dominio.
func referenceError(err error) error {
	constraint, ok := foreignKeyConstraint(err)
	if !ok {
		return err
	}
	switch constraint {
	case "appointments_owner_id_fkey":
		return appointments.ErrOwnerNotFound
	case "appointments_vet_id_fkey":
		return appointments.ErrVetNotFound
	case "appointments_pet_id_fkey":
		return appointments.ErrPetNotFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(s scanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var hour, status, exam string
	if err := s.Scan(
		&a.ID,
		&a.Date,
		&hour,
		&status,
		&exam,
		&a.Observations,
		&a.VetID,
		&a.PetID,
		&a.OwnerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, appointments.ErrAppointmentNotFound
		}
		return appointments.Appointment{}, err
	}

	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)
	a.Hour = appointments.Slot(hour)
	a.Status = appointments.Status(status)
	a.Examination = appointments.Examination(exam)
	return a, nil
}
