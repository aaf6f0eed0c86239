package appointments

import (
	"net/http"

	"vet-clinic-api/internal/platform/apperr"
)

const (
	KindAppointmentNotFound      apperr.Kind = "APPOINTMENT_NOT_FOUND"
	KindAppointmentValidation    apperr.Kind = "APPOINTMENT_VALIDATION"
	KindAppointmentStatusField   apperr.Kind = "APPOINTMENT_STATUS_FIELD"
	KindAppointmentAlreadyExists apperr.Kind = "APPOINTMENT_ALREADY_EXISTS"
	KindOwnerNotFound            apperr.Kind = "OWNER_NOT_FOUND"
	KindVetNotFound              apperr.Kind = "VET_NOT_FOUND"
	KindPetNotFound              apperr.Kind = "PET_NOT_FOUND"
)

var (
	ErrAppointmentNotFound = apperr.New(KindAppointmentNotFound, http.StatusNotFound,
		"the appointment could not be found")
	ErrAppointmentValidation = apperr.New(KindAppointmentValidation, http.StatusMethodNotAllowed,
		"invalid appointment")
	ErrAppointmentStatusField = apperr.New(KindAppointmentStatusField, http.StatusMethodNotAllowed,
		"invalid input for the status field of the appointment")
	ErrAppointmentAlreadyExists = apperr.New(KindAppointmentAlreadyExists, http.StatusConflict,
		"an appointment already exists for this vet or owner at the requested date and hour")
	ErrOwnerNotFound = apperr.New(KindOwnerNotFound, http.StatusNotFound,
		"the owner could not be found")
	ErrVetNotFound = apperr.New(KindVetNotFound, http.StatusNotFound,
		"the vet could not be found")
	ErrPetNotFound = apperr.New(KindPetNotFound, http.StatusNotFound,
		"the pet could not be found")
)
