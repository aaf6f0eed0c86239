package appointments

import (
	"context"
	"strings"
	"time"

	"vet-clinic-api/internal/platform/apperr"
	"vet-clinic-api/internal/platform/logger"
)

type Service struct {
	repo      Repository
	guard     ReferentialGuard
	conflicts ConflictDetector

	schedule Schedule
	loc      *time.Location
	now      func() time.Time

	log      logger.Logger
	observer Observer
	metrics  Metrics
}

type Option func(*Service)

func WithSchedule(s Schedule) Option {
	return func(svc *Service) { svc.schedule = s }
}

// WithLocation fija la zona del reloj de referencia ("hoy" se calcula ahí).
func WithLocation(loc *time.Location) Option {
	return func(svc *Service) {
		if loc != nil {
			svc.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(svc *Service) { svc.observer = o }
}

func WithMetrics(m Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

func NewService(repo Repository, owners OwnerDirectory, vets VetDirectory, pets PetDirectory, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		guard:     NewReferentialGuard(owners, vets, pets),
		conflicts: NewConflictDetector(repo),
		schedule:  DefaultSchedule(),
		loc:       time.UTC,
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(map[string]any{"module": "appointments"})
	return s
}

// Input es el payload tal como llega del cliente; fecha y enums se validan/coercionan acá.
type Input struct {
	Date         string
	Hour         string
	Status       string
	Examination  string
	Observations string

	VetID   string
	PetID   string
	OwnerID string
}

// Schedule expone el vocabulario de slots vigente.
func (s *Service) Schedule() Schedule {
	return s.schedule
}

// Today es el día calendario actual según el reloj de referencia.
func (s *Service) Today() time.Time {
	return CalendarDay(s.now(), s.loc)
}

// Create: fecha -> hora -> observaciones -> coerción -> guard -> conflicto -> persistencia.
func (s *Service) Create(ctx context.Context, actorID string, in Input) (Appointment, error) {
	const op = "create"

	a, err := s.validate(in)
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	if err := s.guard.Check(ctx, a.OwnerID, a.VetID, a.PetID); err != nil {
		return Appointment{}, s.fail(op, err)
	}

	var created Appointment
	keys := SlotKeys(a.VetID, a.OwnerID, a.Date, a.Hour)
	err = s.repo.WithSlotLock(ctx, keys, func(ctx context.Context) error {
		_, found, err := s.conflicts.FindConflict(ctx, a.VetID, a.OwnerID, a.Date, a.Hour)
		if err != nil {
			return err
		}
		if found {
			return ErrAppointmentAlreadyExists
		}
		created, err = s.repo.Create(ctx, a)
		return err
	})
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	s.succeed(ctx, op, ChangeCreated, created, actorID)
	return created, nil
}

// Update revalida todo menos el conflicto de slot (comportamiento histórico).
func (s *Service) Update(ctx context.Context, actorID, id string, in Input) (Appointment, error) {
	const op = "update"

	current, err := s.get(ctx, id)
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	a, err := s.validate(in)
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	if err := s.guard.Check(ctx, a.OwnerID, a.VetID, a.PetID); err != nil {
		return Appointment{}, s.fail(op, err)
	}

	a.ID = current.ID
	a.CreatedAt = current.CreatedAt
	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	s.succeed(ctx, op, ChangeUpdated, updated, actorID)
	return updated, nil
}

// UpdateStatus no valida transiciones: cualquier estado puede seguir a cualquiera.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id, rawStatus string) (Appointment, error) {
	const op = "update_status"

	if strings.TrimSpace(rawStatus) == "" {
		return Appointment{}, s.fail(op, ErrAppointmentStatusField)
	}
	if _, err := s.get(ctx, id); err != nil {
		return Appointment{}, s.fail(op, err)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, CoerceStatus(rawStatus))
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	s.succeed(ctx, op, ChangeStatusChanged, updated, actorID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) (Appointment, error) {
	const op = "delete"

	if _, err := s.get(ctx, id); err != nil {
		return Appointment{}, s.fail(op, err)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Appointment{}, s.fail(op, err)
	}

	s.succeed(ctx, op, ChangeDeleted, deleted, actorID)
	return deleted, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return Appointment{}, s.fail("get", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return items, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Appointment, error) {
	if err := s.guard.EnsurePetExists(ctx, petID); err != nil {
		return nil, s.fail("list_by_pet", err)
	}
	return s.List(ctx, ListFilter{PetID: petID})
}

func (s *Service) ListByVet(ctx context.Context, vetID string) ([]Appointment, error) {
	if err := s.guard.EnsureVetExists(ctx, vetID); err != nil {
		return nil, s.fail("list_by_vet", err)
	}
	return s.List(ctx, ListFilter{VetID: vetID})
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	if err := s.guard.EnsureOwnerExists(ctx, ownerID); err != nil {
		return nil, s.fail("list_by_owner", err)
	}
	return s.List(ctx, ListFilter{OwnerID: ownerID})
}

func (s *Service) get(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrAppointmentNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// validate arma el Appointment a persistir. No toca colaboradores.
func (s *Service) validate(in Input) (Appointment, error) {
	day, err := ParseDate(in.Date)
	if err != nil {
		return Appointment{}, err
	}
	if err := ValidateDate(day, s.Today()); err != nil {
		return Appointment{}, err
	}

	hour, err := s.schedule.ValidateHour(in.Hour)
	if err != nil {
		return Appointment{}, err
	}

	obs := strings.TrimSpace(in.Observations)
	if obs == "" {
		return Appointment{}, ErrAppointmentValidation.Withf("the appointment observations are required")
	}

	return Appointment{
		Date:         day,
		Hour:         hour,
		Status:       CoerceStatus(in.Status),
		Examination:  CoerceExamination(in.Examination),
		Observations: obs,
		VetID:        strings.TrimSpace(in.VetID),
		PetID:        strings.TrimSpace(in.PetID),
		OwnerID:      strings.TrimSpace(in.OwnerID),
	}, nil
}

// fail deja pasar errores de dominio y convierte cualquier otro en Unknown,
// registrando la causa solo del lado servidor.
func (s *Service) fail(op string, err error) error {
	if e, ok := apperr.As(err); ok {
		s.observe(op, strings.ToLower(string(e.Kind)))
		return err
	}
	s.log.Error("appointment."+op+".failed", map[string]any{"error": err})
	s.observe(op, strings.ToLower(string(apperr.KindUnknown)))
	return apperr.Unknown(err)
}

func (s *Service) succeed(ctx context.Context, op string, kind ChangeKind, a Appointment, actorID string) {
	s.observe(op, "ok")
	s.log.Info("appointment."+op, map[string]any{
		"appointment_id": a.ID,
		"actor_id":       actorID,
		"status":         string(a.Status),
	})
	if s.observer != nil {
		s.observer.AppointmentChanged(ctx, Change{
			Kind:        kind,
			Appointment: a,
			ActorID:     actorID,
			At:          s.now(),
		})
	}
}

func (s *Service) observe(op, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAppointmentOp(op, outcome)
	}
}
