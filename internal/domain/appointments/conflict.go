package appointments

import (
	"context"
	"sort"
	"time"
)

// ConflictDetector busca un turno activo del mismo vet o del mismo owner en (date, hour).
type ConflictDetector struct {
	repo Repository
}

func NewConflictDetector(repo Repository) ConflictDetector {
	return ConflictDetector{repo: repo}
}

// FindConflict consulta primero el eje vet y después el eje owner.
func (d ConflictDetector) FindConflict(ctx context.Context, vetID, ownerID string, date time.Time, hour Slot) (Appointment, bool, error) {
	byVet, err := d.repo.FindByVetAndSlot(ctx, vetID, date, hour)
	if err != nil {
		return Appointment{}, false, err
	}
	if a, ok := firstActive(byVet); ok {
		return a, true, nil
	}

	byOwner, err := d.repo.FindByOwnerAndSlot(ctx, ownerID, date, hour)
	if err != nil {
		return Appointment{}, false, err
	}
	if a, ok := firstActive(byOwner); ok {
		return a, true, nil
	}
	return Appointment{}, false, nil
}

func firstActive(items []Appointment) (Appointment, bool) {
	for _, a := range items {
		if a.Active() {
			return a, true
		}
	}
	return Appointment{}, false
}

// SlotKeys devuelve las claves de lock de ambos ejes, ordenadas (orden fijo evita deadlocks).
func SlotKeys(vetID, ownerID string, date time.Time, hour Slot) []string {
	day := date.Format(DateLayout)
	keys := []string{
		"vet:" + vetID + ":" + day + ":" + string(hour),
		"owner:" + ownerID + ":" + day + ":" + string(hour),
	}
	sort.Strings(keys)
	return keys
}
