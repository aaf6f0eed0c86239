package appointments

import "strings"

var examinations = []Examination{
	ExaminationRoutine,
	ExaminationUrgent,
	ExaminationSurgery,
	ExaminationCheckUp,
	ExaminationFollowUp,
	ExaminationEmergency,
	ExaminationLabTests,
	ExaminationXRay,
	ExaminationUltrasound,
	ExaminationVaccination,
}

var statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusRescheduled,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// CoerceExamination es total: valores vacíos o desconocidos quedan en ROUTINE.
func CoerceExamination(raw string) Examination {
	v := Examination(strings.ToUpper(strings.TrimSpace(raw)))
	for _, e := range examinations {
		if e == v {
			return e
		}
	}
	return ExaminationRoutine
}

// CoerceStatus es total: valores vacíos o desconocidos quedan en SCHEDULED.
func CoerceStatus(raw string) Status {
	v := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range statuses {
		if s == v {
			return s
		}
	}
	return StatusScheduled
}

func Examinations() []Examination {
	out := make([]Examination, len(examinations))
	copy(out, examinations)
	return out
}

func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}
