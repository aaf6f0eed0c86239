package events

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/platform/logger"
)

type Service struct {
	repo      Repository
	publisher Publisher
	metrics   PublishMetrics
	log       logger.Logger
	newID     func() string
}

// NewService: publisher puede ser nil (mensajería deshabilitada).
func NewService(repo Repository, publisher Publisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log.With(map[string]any{"module": "events"}),
		newID:     uuid.NewString,
	}
}

func (s *Service) WithMetrics(m PublishMetrics) *Service {
	s.metrics = m
	return s
}

// AppointmentChanged implementa appointments.Observer.
// Best-effort: los fallos se registran y no vuelven al turno.
func (s *Service) AppointmentChanged(ctx context.Context, ch appointments.Change) {
	e := fromChange(s.newID(), ch)

	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Error("event.append.failed", map[string]any{
			"appointment_id": e.AppointmentID,
			"type":           string(e.Type),
			"error":          err,
		})
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.observePublish("error")
		s.log.Warn("event.publish.failed", map[string]any{
			"appointment_id": e.AppointmentID,
			"routing_key":    e.RoutingKey(),
			"error":          err,
		})
		return
	}
	s.observePublish("ok")
}

// ListByAppointment no valida que el turno exista: el historial de uno borrado sigue siendo legible.
func (s *Service) ListByAppointment(ctx context.Context, appointmentID string, filter ListFilter) ([]AppointmentEvent, error) {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return nil, appointments.ErrAppointmentNotFound
	}
	items, err := s.repo.ListByAppointment(ctx, appointmentID, filter)
	if err != nil {
		s.log.Error("event.list.failed", map[string]any{"appointment_id": appointmentID, "error": err})
		return nil, apperr.Unknown(err)
	}
	return items, nil
}

func (s *Service) observePublish(result string) {
	if s.metrics != nil {
		s.metrics.ObservePublish(result)
	}
}
