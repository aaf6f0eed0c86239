package events

import "context"

type Repository interface {
	Append(ctx context.Context, e AppointmentEvent) error
	ListByAppointment(ctx context.Context, appointmentID string, filter ListFilter) ([]AppointmentEvent, error)
}

// ListFilter: Limit <= 0 usa el default del adapter (50).
type ListFilter struct {
	Types []EventType
	Limit int
}

// Publisher manda el evento al broker. Lo implementan adapters/messaging.
type Publisher interface {
	Publish(ctx context.Context, e AppointmentEvent) error
}

// PublishMetrics es opcional (platform/metrics.Collector).
type PublishMetrics interface {
	ObservePublish(result string)
}
