package appointments

import (
	"context"
	"time"
)

// Repository es el colaborador de persistencia.
// GetByID/UpdateStatus/Update/Delete devuelven ErrAppointmentNotFound si el id no existe.
// Create asigna ID, CreatedAt y UpdatedAt.
type Repository interface {
	GetByID(ctx context.Context, id string) (Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
	FindByVetAndSlot(ctx context.Context, vetID string, date time.Time, hour Slot) ([]Appointment, error)
	FindByOwnerAndSlot(ctx context.Context, ownerID string, date time.Time, hour Slot) ([]Appointment, error)

	Create(ctx context.Context, a Appointment) (Appointment, error)
	Update(ctx context.Context, a Appointment) (Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Appointment, error)
	Delete(ctx context.Context, id string) (Appointment, error)

	SlotLocker
}

// SlotLocker serializa check-and-write sobre claves de slot.
// fn recibe el ctx que deben usar las operaciones del repo dentro del lock
// (en Postgres lleva la transacción).
type SlotLocker interface {
	WithSlotLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

type ListFilter struct {
	PetID   string
	VetID   string
	OwnerID string
	Status  Status
	Date    *time.Time
}

// Colaboradores de existencia. Evitan importar owners/vets/pets (rompe ciclos).
type OwnerDirectory interface {
	ExistsOwnerByID(ctx context.Context, id string) (bool, error)
}

type VetDirectory interface {
	ExistsVetByID(ctx context.Context, id string) (bool, error)
}

type PetDirectory interface {
	ExistsPetByID(ctx context.Context, id string) (bool, error)
}

type ChangeKind string

const (
	ChangeCreated       ChangeKind = "CREATED"
	ChangeUpdated       ChangeKind = "UPDATED"
	ChangeStatusChanged ChangeKind = "STATUS_CHANGED"
	ChangeDeleted       ChangeKind = "DELETED"
)

// Change describe una escritura exitosa del ciclo de vida.
type Change struct {
	Kind        ChangeKind
	Appointment Appointment
	ActorID     string
	At          time.Time
}

// Observer recibe cambios después de persistir. Es best-effort: no puede fallar la operación.
type Observer interface {
	AppointmentChanged(ctx context.Context, ch Change)
}

// Metrics cuenta resultados por operación (ok o kind de error).
type Metrics interface {
	ObserveAppointmentOp(op, outcome string)
}
