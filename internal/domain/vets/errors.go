package vets

import (
	"net/http"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/apperr"
)

const (
	KindVetNotFound   apperr.Kind = "VET_NOT_FOUND"
	KindVetValidation apperr.Kind = "VET_VALIDATION"
)

var (
	ErrVetNotFound = apperr.New(KindVetNotFound, http.StatusNotFound,
		"the vet could not be found")
	ErrVetValidation = apperr.New(KindVetValidation, http.StatusMethodNotAllowed,
		"invalid vet")

	ErrVetAlreadyExists = users.ErrVetAlreadyExists
)
