package pets

import (
	"net/http"

	"vet-clinic-api/internal/platform/apperr"
)

const (
	KindPetNotFound      apperr.Kind = "PET_NOT_FOUND"
	KindPetValidation    apperr.Kind = "PET_VALIDATION"
	KindPetAlreadyExists apperr.Kind = "PET_ALREADY_EXISTS"
	KindOwnerNotFound    apperr.Kind = "OWNER_NOT_FOUND"
)

var (
	ErrPetNotFound = apperr.New(KindPetNotFound, http.StatusNotFound,
		"the pet could not be found")
	ErrPetValidation = apperr.New(KindPetValidation, http.StatusMethodNotAllowed,
		"invalid pet")
	ErrPetAlreadyExists = apperr.New(KindPetAlreadyExists, http.StatusConflict,
		"the owner already has a pet with this name and type")
	ErrOwnerNotFound = apperr.New(KindOwnerNotFound, http.StatusNotFound,
		"the owner could not be found")
)
