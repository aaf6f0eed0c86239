package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/appointments"
)

type appointmentRepo struct {
	mu    sync.RWMutex
	byID  map[string]appointments.Appointment
	slots *keyedMutex
	now   func() time.Time
}

func NewAppointmentRepo() appointments.Repository {
	return &appointmentRepo{
		byID:  make(map[string]appointments.Appointment),
		slots: newKeyedMutex(),
		now:   time.Now,
	}
}

// WithSlotLock: mismo esquema de claves que el advisory lock de Postgres.
func (r *appointmentRepo) WithSlotLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	unlock := r.slots.Lock(keys...)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	return a, nil
}

func (r *appointmentRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	return r.filter(func(a appointments.Appointment) bool {
		switch {
		case f.PetID != "" && a.PetID != f.PetID:
			return false
		case f.VetID != "" && a.VetID != f.VetID:
			return false
		case f.OwnerID != "" && a.OwnerID != f.OwnerID:
			return false
		case f.Status != "" && a.Status != f.Status:
			return false
		case f.Date != nil && !a.Date.Equal(*f.Date):
			return false
		}
		return true
	}), nil
}

func (r *appointmentRepo) FindByVetAndSlot(ctx context.Context, vetID string, date time.Time, hour appointments.Slot) ([]appointments.Appointment, error) {
	return r.filter(func(a appointments.Appointment) bool {
		return a.VetID == vetID && a.Date.Equal(date) && a.Hour == hour
	}), nil
}

func (r *appointmentRepo) FindByOwnerAndSlot(ctx context.Context, ownerID string, date time.Time, hour appointments.Slot) ([]appointments.Appointment, error) {
	return r.filter(func(a appointments.Appointment) bool {
		return a.OwnerID == ownerID && a.Date.Equal(date) && a.Hour == hour
	}), nil
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.byID[a.ID] = a
	return a, nil
}

func (r *appointmentRepo) Update(ctx context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[a.ID]
	if !ok {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = r.now().UTC()
	r.byID[a.ID] = a
	return a, nil
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id string, status appointments.Status) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	a.Status = status
	a.UpdatedAt = r.now().UTC()
	r.byID[id] = a
	return a, nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrAppointmentNotFound
	}
	delete(r.byID, id)
	return a, nil
}

func (r *appointmentRepo) filter(keep func(appointments.Appointment) bool) []appointments.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if keep(a) {
			out = append(out, a)
		}
	}

	// Orden cronológico: fecha, hora, alta.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
