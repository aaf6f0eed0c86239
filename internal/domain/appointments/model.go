package appointments

import "time"

// Status es el estado de ciclo de vida de un turno.
// @Enum SCHEDULED, CONFIRMED, RESCHEDULED, IN_PROGRESS, COMPLETED, CANCELLED, NO_SHOW
type Status string

const (
	StatusScheduled   Status = "SCHEDULED"
	StatusConfirmed   Status = "CONFIRMED"
	StatusRescheduled Status = "RESCHEDULED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusNoShow      Status = "NO_SHOW"
)

// Examination es el tipo de consulta.
type Examination string

const (
	ExaminationRoutine     Examination = "ROUTINE"
	ExaminationUrgent      Examination = "URGENT"
	ExaminationSurgery     Examination = "SURGERY"
	ExaminationCheckUp     Examination = "CHECK_UP"
	ExaminationFollowUp    Examination = "FOLLOW_UP"
	ExaminationEmergency   Examination = "EMERGENCY"
	ExaminationLabTests    Examination = "LAB_TESTS"
	ExaminationXRay        Examination = "X_RAY"
	ExaminationUltrasound  Examination = "ULTRASOUND"
	ExaminationVaccination Examination = "VACCINATION"
)

// Slot es un token horario del día ("10H"). No es aritmética de tiempo.
type Slot string

// Appointment es un turno de una mascota con un veterinario.
type Appointment struct {
	ID string

	// Día calendario, normalizado a medianoche UTC.
	Date time.Time
	Hour Slot

	Status       Status
	Examination  Examination
	Observations string

	VetID   string
	PetID   string
	OwnerID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active indica si el turno ocupa su slot (los cancelados no cuentan para conflictos).
func (a Appointment) Active() bool {
	return a.Status != StatusCancelled
}
