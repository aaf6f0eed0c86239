package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type testRepo struct {
	items     []AppointmentEvent
	appendErr error
}

func (r *testRepo) Append(_ context.Context, e AppointmentEvent) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.items = append(r.items, e)
	return nil
}

func (r *testRepo) ListByAppointment(_ context.Context, id string, _ ListFilter) ([]AppointmentEvent, error) {
	out := make([]AppointmentEvent, 0)
	for _, e := range r.items {
		if e.AppointmentID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type testPublisher struct {
	published []AppointmentEvent
	err       error
}

func (p *testPublisher) Publish(_ context.Context, e AppointmentEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, e)
	return nil
}

type testMetrics struct {
	results []string
}

func (m *testMetrics) ObservePublish(result string) {
	m.results = append(m.results, result)
}

func newTestService(repo Repository, pub Publisher) *Service {
	svc := NewService(repo, pub, nil)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}
	return svc
}

func sampleChange(kind appointments.ChangeKind) appointments.Change {
	return appointments.Change{
		Kind: kind,
		Appointment: appointments.Appointment{
			ID:      "a1",
			Date:    time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			Hour:    "10H",
			Status:  appointments.StatusConfirmed,
			VetID:   "v1",
			OwnerID: "o1",
			PetID:   "p1",
		},
		ActorID: "u1",
		At:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.FixedZone("X", 3600)),
	}
}

func TestAppointmentChanged_AppendsAndPublishes(t *testing.T) {
	repo := &testRepo{}
	pub := &testPublisher{}
	m := &testMetrics{}
	svc := newTestService(repo, pub).WithMetrics(m)

	svc.AppointmentChanged(context.Background(), sampleChange(appointments.ChangeStatusChanged))

	if len(repo.items) != 1 {
		t.Fatalf("expected one stored event, got %d", len(repo.items))
	}
	e := repo.items[0]
	if e.ID != "evt-1" || e.Type != EventTypeStatusChanged || e.Status != appointments.StatusConfirmed {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ActorID != "u1" || e.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected actor and UTC timestamp: %+v", e)
	}
	if len(pub.published) != 1 || pub.published[0].RoutingKey() != "appointment.status_changed" {
		t.Fatalf("unexpected publish: %+v", pub.published)
	}
	if len(m.results) != 1 || m.results[0] != "ok" {
		t.Fatalf("unexpected metrics: %v", m.results)
	}
}

func TestAppointmentChanged_FailuresAreSwallowed(t *testing.T) {
	repo := &testRepo{appendErr: errors.New("db down")}
	pub := &testPublisher{err: errors.New("broker down")}
	m := &testMetrics{}
	svc := newTestService(repo, pub).WithMetrics(m)

	// No debe paniquear ni propagar.
	svc.AppointmentChanged(context.Background(), sampleChange(appointments.ChangeCreated))

	if len(m.results) != 1 || m.results[0] != "error" {
		t.Fatalf("expected error metric, got %v", m.results)
	}
}

func TestAppointmentChanged_NilPublisher(t *testing.T) {
	repo := &testRepo{}
	svc := newTestService(repo, nil)

	svc.AppointmentChanged(context.Background(), sampleChange(appointments.ChangeDeleted))
	if len(repo.items) != 1 || repo.items[0].Type != EventTypeDeleted {
		t.Fatalf("expected DELETED event stored, got %+v", repo.items)
	}
}

func TestListByAppointment(t *testing.T) {
	repo := &testRepo{}
	svc := newTestService(repo, nil)
	svc.AppointmentChanged(context.Background(), sampleChange(appointments.ChangeCreated))

	items, err := svc.ListByAppointment(context.Background(), "a1", ListFilter{})
	if err != nil || len(items) != 1 {
		t.Fatalf("expected 1 event, got %d err=%v", len(items), err)
	}

	if _, err := svc.ListByAppointment(context.Background(), " ", ListFilter{}); !errors.Is(err, appointments.ErrAppointmentNotFound) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
}

func TestParseEventType(t *testing.T) {
	cases := map[string]EventType{
		"created":         EventTypeCreated,
		" STATUS_CHANGED": EventTypeStatusChanged,
		"nope":            "",
	}
	for in, want := range cases {
		if got := ParseEventType(in); got != want {
			t.Fatalf("ParseEventType(%q) = %q, want %q", in, got, want)
		}
	}
}
