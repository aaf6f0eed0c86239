package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"vet-clinic-api/internal/platform/apperr"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Appointment
	seq  int

	writes int
	err    error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Appointment{}}
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	if r.err != nil {
		return Appointment{}, r.err
	}
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		if f.VetID != "" && a.VetID != f.VetID {
			continue
		}
		if f.OwnerID != "" && a.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) FindByVetAndSlot(ctx context.Context, vetID string, date time.Time, hour Slot) ([]Appointment, error) {
	return r.match(func(a Appointment) bool { return a.VetID == vetID && a.Date.Equal(date) && a.Hour == hour }), nil
}

func (r *testRepo) FindByOwnerAndSlot(ctx context.Context, ownerID string, date time.Time, hour Slot) ([]Appointment, error) {
	return r.match(func(a Appointment) bool { return a.OwnerID == ownerID && a.Date.Equal(date) && a.Hour == hour }), nil
}

func (r *testRepo) match(keep func(Appointment) bool) []Appointment {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r *testRepo) Create(ctx context.Context, a Appointment) (Appointment, error) {
	if r.err != nil {
		return Appointment{}, r.err
	}
	r.writes++
	r.seq++
	a.ID = fmt.Sprintf("appt-%d", r.seq)
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.byID[a.ID] = a
	return a, nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) (Appointment, error) {
	if _, ok := r.byID[a.ID]; !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	r.writes++
	a.UpdatedAt = time.Now().UTC()
	r.byID[a.ID] = a
	return a, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, id string, status Status) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	r.writes++
	a.Status = status
	r.byID[id] = a
	return a, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	r.writes++
	delete(r.byID, id)
	return a, nil
}

func (r *testRepo) WithSlotLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

// -------------------------
// Directorios fake
// -------------------------

type directory struct {
	ids map[string]bool
	err error
}

func newDirectory(ids ...string) *directory {
	d := &directory{ids: map[string]bool{}}
	for _, id := range ids {
		d.ids[id] = true
	}
	return d
}

func (d *directory) exists(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.ids[id], nil
}

func (d *directory) ExistsOwnerByID(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, id)
}
func (d *directory) ExistsVetByID(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, id)
}
func (d *directory) ExistsPetByID(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, id)
}

type recordingObserver struct {
	changes []Change
}

func (o *recordingObserver) AppointmentChanged(_ context.Context, ch Change) {
	o.changes = append(o.changes, ch)
}

type countingMetrics struct {
	outcomes map[string]int
}

func (m *countingMetrics) ObserveAppointmentOp(op, outcome string) {
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[op+":"+outcome]++
}

// -------------------------
// Helpers
// -------------------------

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	repo     *testRepo
	owners   *directory
	vets     *directory
	pets     *directory
	observer *recordingObserver
	metrics  *countingMetrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		repo:     newTestRepo(),
		owners:   newDirectory("O1", "O2"),
		vets:     newDirectory("V1", "V2"),
		pets:     newDirectory("P1", "P2"),
		observer: &recordingObserver{},
		metrics:  &countingMetrics{},
	}
	f.svc = NewService(f.repo, f.owners, f.vets, f.pets,
		WithClock(func() time.Time { return fixedNow }),
		WithObserver(f.observer),
		WithMetrics(f.metrics),
	)
	return f
}

func validInput() Input {
	return Input{
		Date:         "2025-03-11",
		Hour:         "10H",
		Examination:  "ROUTINE",
		Observations: "checkup",
		VetID:        "V1",
		PetID:        "P1",
		OwnerID:      "O1",
	}
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, got, err)
	}
}

// -------------------------
// Tests
// -------------------------

func TestCreate_HappyPath(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if a.Hour != "10H" || a.Status != StatusScheduled || a.Examination != ExaminationRoutine {
		t.Fatalf("unexpected appointment: %+v", a)
	}
	if !a.Date.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %s", a.Date)
	}
	if len(f.observer.changes) != 1 || f.observer.changes[0].Kind != ChangeCreated {
		t.Fatalf("expected one CREATED change, got %+v", f.observer.changes)
	}
	if f.observer.changes[0].ActorID != "user-1" {
		t.Fatalf("expected actor user-1, got %q", f.observer.changes[0].ActorID)
	}
	if f.metrics.outcomes["create:ok"] != 1 {
		t.Fatalf("expected create:ok metric, got %+v", f.metrics.outcomes)
	}
}

func TestCreate_AcceptsLegacyDateFormat(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Date = "11/03/2025"

	a, err := f.svc.Create(context.Background(), "", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Date.Format(DateLayout) != "2025-03-11" {
		t.Fatalf("expected 2025-03-11, got %s", a.Date.Format(DateLayout))
	}
}

func TestCreate_DateRules(t *testing.T) {
	cases := []struct {
		name string
		date string
		ok   bool
	}{
		{"yesterday", "2025-03-09", false},
		{"today", "2025-03-10", true},
		{"tomorrow", "2025-03-11", true},
		{"far past", "2001-01-01", false},
		{"empty", "", false},
		{"garbage", "next tuesday", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			in.Date = tc.date

			_, err := f.svc.Create(context.Background(), "", in)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok {
				requireKind(t, err, KindAppointmentValidation)
				if f.repo.writes != 0 {
					t.Fatalf("no write expected on validation failure")
				}
			}
		})
	}
}

func TestCreate_TodayFollowsClinicLocation(t *testing.T) {
	// 02:00 UTC del 11 es todavía el 10 en Buenos Aires.
	loc := time.FixedZone("ART", -3*60*60)
	now := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)

	svc := NewService(newTestRepo(), newDirectory("O1"), newDirectory("V1"), newDirectory("P1"),
		WithClock(func() time.Time { return now }),
		WithLocation(loc),
	)

	in := validInput()
	in.Date = "2025-03-10"
	if _, err := svc.Create(context.Background(), "", in); err != nil {
		t.Fatalf("expected 2025-03-10 to be today in clinic zone, got %v", err)
	}
}

func TestCreate_HourVocabulary(t *testing.T) {
	f := newFixture(t)

	for _, h := range f.svc.Schedule().Slots() {
		in := validInput()
		in.Hour = string(h)
		in.OwnerID = "O1"
		// vet distinto por slot no hace falta: cada hora es un slot distinto.
		if _, err := f.svc.Create(context.Background(), "", in); err != nil {
			t.Fatalf("hour %s should be accepted: %v", h, err)
		}
	}

	for _, bad := range []string{"", "10h", "10", "25H", "9H", " 10H", "noon"} {
		in := validInput()
		in.Hour = bad
		_, err := f.svc.Create(context.Background(), "", in)
		requireKind(t, err, KindAppointmentValidation)
	}
}

func TestCreate_ScheduleRestrictsSlots(t *testing.T) {
	sched, err := NewSchedule(8, 18)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	svc := NewService(newTestRepo(), newDirectory("O1"), newDirectory("V1"), newDirectory("P1"),
		WithClock(func() time.Time { return fixedNow }),
		WithSchedule(sched),
	)

	in := validInput()
	in.Hour = "07H"
	_, err = svc.Create(context.Background(), "", in)
	requireKind(t, err, KindAppointmentValidation)

	in.Hour = "18H"
	if _, err := svc.Create(context.Background(), "", in); err != nil {
		t.Fatalf("18H should be a valid slot: %v", err)
	}
}

func TestCreate_ObservationsRequired(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Observations = "   "

	_, err := f.svc.Create(context.Background(), "", in)
	requireKind(t, err, KindAppointmentValidation)
}

func TestCreate_CoercesUnknownEnums(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Examination = "bogus"
	in.Status = "whatever"

	a, err := f.svc.Create(context.Background(), "", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Examination != ExaminationRoutine {
		t.Fatalf("expected ROUTINE, got %s", a.Examination)
	}
	if a.Status != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %s", a.Status)
	}
}

func TestCreate_ReferentialOrder(t *testing.T) {
	cases := []struct {
		name    string
		owner   string
		vet     string
		pet     string
		errKind apperr.Kind
	}{
		{"all missing => owner", "nope", "nope", "nope", KindOwnerNotFound},
		{"vet and pet missing => vet", "O1", "nope", "nope", KindVetNotFound},
		{"pet missing", "O1", "V1", "nope", KindPetNotFound},
		{"empty owner id", "", "V1", "P1", KindOwnerNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			in.OwnerID, in.VetID, in.PetID = tc.owner, tc.vet, tc.pet

			_, err := f.svc.Create(context.Background(), "", in)
			requireKind(t, err, tc.errKind)
			if f.repo.writes != 0 {
				t.Fatalf("no write expected")
			}
		})
	}
}

func TestCreate_ValidationBeforeExistence(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Date = "2000-01-01"
	in.OwnerID = "nope"

	_, err := f.svc.Create(context.Background(), "", in)
	requireKind(t, err, KindAppointmentValidation)
}

func TestCreate_ConflictVetAxis(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), "", validInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	in := validInput()
	in.OwnerID = "O2"
	in.PetID = "P2"
	_, err := f.svc.Create(context.Background(), "", in)
	requireKind(t, err, KindAppointmentAlreadyExists)
	if !errors.Is(err, ErrAppointmentAlreadyExists) {
		t.Fatalf("errors.Is should match ErrAppointmentAlreadyExists")
	}
	if apperr.StatusOf(err) != 409 {
		t.Fatalf("expected 409, got %d", apperr.StatusOf(err))
	}
}

func TestCreate_ConflictOwnerAxis(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), "", validInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	in := validInput()
	in.VetID = "V2"
	_, err := f.svc.Create(context.Background(), "", in)
	requireKind(t, err, KindAppointmentAlreadyExists)
}

func TestCreate_NoConflictOnDifferentSlotOrParties(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), "", validInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	other := validInput()
	other.Hour = "11H"
	if _, err := f.svc.Create(context.Background(), "", other); err != nil {
		t.Fatalf("different hour should not conflict: %v", err)
	}

	unrelated := validInput()
	unrelated.VetID, unrelated.OwnerID, unrelated.PetID = "V2", "O2", "P2"
	if _, err := f.svc.Create(context.Background(), "", unrelated); err != nil {
		t.Fatalf("different vet and owner should not conflict: %v", err)
	}
}

func TestCreate_CancelledDoesNotBlockSlot(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), "", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), "", a.ID, "cancelled"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.Create(context.Background(), "", validInput()); err != nil {
		t.Fatalf("cancelled appointment should free the slot: %v", err)
	}
}

func TestCreate_ConcurrentSameSlotOnlyOneWins(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), "", validInput())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAppointmentAlreadyExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one success, got %d", ok)
	}
}

func TestCreate_CollaboratorFailureIsUnknown(t *testing.T) {
	f := newFixture(t)
	f.vets.err = errors.New("vets store down")

	_, err := f.svc.Create(context.Background(), "", validInput())
	requireKind(t, err, apperr.KindUnknown)
	if apperr.StatusOf(err) != 500 {
		t.Fatalf("expected 500, got %d", apperr.StatusOf(err))
	}
	if f.metrics.outcomes["create:unknown"] != 1 {
		t.Fatalf("expected create:unknown metric, got %+v", f.metrics.outcomes)
	}
}

func TestCreate_RepositoryFailureIsUnknown(t *testing.T) {
	f := newFixture(t)
	f.repo.err = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), "", validInput())
	requireKind(t, err, apperr.KindUnknown)
	if len(f.observer.changes) != 0 {
		t.Fatalf("observer must not be notified on failure")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"missing", "", "   "} {
		_, err := f.svc.GetByID(context.Background(), id)
		requireKind(t, err, KindAppointmentNotFound)
	}
}

func TestUpdate_SkipsConflictCheck(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), "", validInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	other := validInput()
	other.Hour = "11H"
	b, err := f.svc.Create(context.Background(), "", other)
	if err != nil {
		t.Fatalf("seed b: %v", err)
	}

	// Mover b al slot de a no se rechaza en update.
	moved := validInput()
	moved.Observations = "moved"
	updated, err := f.svc.Update(context.Background(), "u", b.ID, moved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Hour != "10H" || updated.Observations != "moved" || updated.ID != b.ID {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("created_at must be preserved")
	}
}

func TestUpdate_Revalidates(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), "", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	in := validInput()
	in.PetID = "nope"
	_, err = f.svc.Update(context.Background(), "", a.ID, in)
	requireKind(t, err, KindPetNotFound)

	_, err = f.svc.Update(context.Background(), "", "missing", validInput())
	requireKind(t, err, KindAppointmentNotFound)
}

func TestUpdate_RejectsPastDate(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), "", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	in := validInput()
	in.Date = "2025-03-09"
	_, err = f.svc.Update(context.Background(), "", a.ID, in)
	requireKind(t, err, KindAppointmentValidation)

	got, err := f.svc.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Date.Equal(a.Date) {
		t.Fatalf("rejected update must not touch the stored date: %v", got.Date)
	}
}

func TestUpdate_ExistenceBeforeDate(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Date = "2025-03-09"
	_, err := f.svc.Update(context.Background(), "", "missing", in)
	requireKind(t, err, KindAppointmentNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), "", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	writes := f.repo.writes

	_, err = f.svc.UpdateStatus(context.Background(), "", a.ID, "")
	requireKind(t, err, KindAppointmentStatusField)
	if f.repo.writes != writes {
		t.Fatalf("empty status must not write")
	}

	_, err = f.svc.UpdateStatus(context.Background(), "", "missing", "CONFIRMED")
	requireKind(t, err, KindAppointmentNotFound)

	got, err := f.svc.UpdateStatus(context.Background(), "", a.ID, "completed")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}

	// Cualquier transición vale, incluso volver atrás.
	got, err = f.svc.UpdateStatus(context.Background(), "", a.ID, "SCHEDULED")
	if err != nil || got.Status != StatusScheduled {
		t.Fatalf("expected back to SCHEDULED, got %s err=%v", got.Status, err)
	}

	got, err = f.svc.UpdateStatus(context.Background(), "", a.ID, "not-a-status")
	if err != nil || got.Status != StatusScheduled {
		t.Fatalf("unknown status should coerce to SCHEDULED, got %s err=%v", got.Status, err)
	}

	last := f.observer.changes[len(f.observer.changes)-1]
	if last.Kind != ChangeStatusChanged {
		t.Fatalf("expected STATUS_CHANGED, got %s", last.Kind)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), "", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	deleted, err := f.svc.Delete(context.Background(), "admin", a.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != a.ID {
		t.Fatalf("expected deleted record to be returned")
	}

	_, err = f.svc.Delete(context.Background(), "admin", a.ID)
	requireKind(t, err, KindAppointmentNotFound)

	_, err = f.svc.GetByID(context.Background(), a.ID)
	requireKind(t, err, KindAppointmentNotFound)

	last := f.observer.changes[len(f.observer.changes)-1]
	if last.Kind != ChangeDeleted || last.ActorID != "admin" {
		t.Fatalf("unexpected last change: %+v", last)
	}
}

func TestListByRelated(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), "", validInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	other := validInput()
	other.VetID, other.OwnerID, other.PetID = "V2", "O2", "P2"
	if _, err := f.svc.Create(context.Background(), "", other); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	byPet, err := f.svc.ListByPet(context.Background(), "P1")
	if err != nil || len(byPet) != 1 {
		t.Fatalf("expected 1 by pet, got %d err=%v", len(byPet), err)
	}
	byVet, err := f.svc.ListByVet(context.Background(), "V2")
	if err != nil || len(byVet) != 1 || byVet[0].VetID != "V2" {
		t.Fatalf("unexpected by vet: %+v err=%v", byVet, err)
	}
	byOwner, err := f.svc.ListByOwner(context.Background(), "O1")
	if err != nil || len(byOwner) != 1 {
		t.Fatalf("expected 1 by owner, got %d err=%v", len(byOwner), err)
	}

	_, err = f.svc.ListByPet(context.Background(), "nope")
	requireKind(t, err, KindPetNotFound)
	_, err = f.svc.ListByVet(context.Background(), "nope")
	requireKind(t, err, KindVetNotFound)
	_, err = f.svc.ListByOwner(context.Background(), "nope")
	requireKind(t, err, KindOwnerNotFound)
}

func TestSlotKeys_SortedAndStable(t *testing.T) {
	d := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	a := SlotKeys("V1", "O1", d, "10H")
	b := SlotKeys("V1", "O1", d, "10H")

	if len(a) != 2 || !sort.StringsAreSorted(a) {
		t.Fatalf("expected two sorted keys, got %v", a)
	}
	if a[0] != b[0] || a[1] != b[1] {
		t.Fatalf("keys must be deterministic")
	}
}
