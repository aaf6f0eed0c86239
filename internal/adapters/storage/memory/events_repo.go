package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"vet-clinic-api/internal/domain/events"
)

type eventRepo struct {
	mu            sync.RWMutex
	byAppointment map[string][]events.AppointmentEvent
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byAppointment: make(map[string][]events.AppointmentEvent),
	}
}

func (r *eventRepo) Append(ctx context.Context, e events.AppointmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	r.byAppointment[e.AppointmentID] = append(r.byAppointment[e.AppointmentID], e)
	return nil
}

func (r *eventRepo) ListByAppointment(ctx context.Context, appointmentID string, filter events.ListFilter) ([]events.AppointmentEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	// Se recorre al revés para que en empates gane el último en llegar.
	stored := r.byAppointment[appointmentID]
	out := make([]events.AppointmentEvent, 0)
	for i := len(stored) - 1; i >= 0; i-- {
		e := stored[i]
		// Type filter
		if len(filter.Types) > 0 {
			ok := false
			for _, t := range filter.Types {
				if e.Type == t {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, e)
	}

	// Más reciente primero
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
