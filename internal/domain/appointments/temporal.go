package appointments

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// Formato histórico de los clientes (DD/MM/YYYY).
	legacyDateLayout = "02/01/2006"
)

// ParseDate acepta YYYY-MM-DD o DD/MM/YYYY y devuelve el día a medianoche UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrAppointmentValidation.Withf("the appointment date is required")
	}

	layout := DateLayout
	if strings.Contains(raw, "/") {
		layout = legacyDateLayout
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, ErrAppointmentValidation.Withf("the appointment date %q must be YYYY-MM-DD or DD/MM/YYYY", raw)
	}
	return t, nil
}

// CalendarDay lleva t al día calendario que corresponde en loc, como medianoche UTC.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDate rechaza días estrictamente anteriores a today (granularidad de día).
func ValidateDate(day, today time.Time) error {
	d := CalendarDay(day, time.UTC)
	t := CalendarDay(today, time.UTC)
	if d.Before(t) {
		return ErrAppointmentValidation.Withf("the appointment date %s is in the past", d.Format(DateLayout))
	}
	return nil
}

// Schedule es el vocabulario fijo de slots del día de la clínica.
type Schedule struct {
	slots []Slot
	set   map[Slot]struct{}
}

// NewSchedule arma los tokens "%02dH" desde openHour hasta closeHour inclusive.
func NewSchedule(openHour, closeHour int) (Schedule, error) {
	if openHour < 0 || closeHour > 24 || openHour > closeHour {
		return Schedule{}, fmt.Errorf("invalid clinic hours %d..%d", openHour, closeHour)
	}
	s := Schedule{
		slots: make([]Slot, 0, closeHour-openHour+1),
		set:   make(map[Slot]struct{}, closeHour-openHour+1),
	}
	for h := openHour; h <= closeHour; h++ {
		slot := Slot(fmt.Sprintf("%02dH", h))
		s.slots = append(s.slots, slot)
		s.set[slot] = struct{}{}
	}
	return s, nil
}

// DefaultSchedule cubre 00H..24H.
func DefaultSchedule() Schedule {
	s, _ := NewSchedule(0, 24)
	return s
}

func (s Schedule) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s Schedule) Contains(slot Slot) bool {
	_, ok := s.set[slot]
	return ok
}

// ValidateHour exige coincidencia exacta con un token del vocabulario (sensible a mayúsculas).
func (s Schedule) ValidateHour(raw string) (Slot, error) {
	if raw == "" {
		return "", ErrAppointmentValidation.Withf("the appointment hour is required")
	}
	slot := Slot(raw)
	if !s.Contains(slot) {
		return "", ErrAppointmentValidation.Withf("the appointment hour %q is not a clinic slot", raw)
	}
	return slot, nil
}
