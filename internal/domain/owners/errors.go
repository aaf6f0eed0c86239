package owners

import (
	"net/http"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/apperr"
)

const (
	KindOwnerNotFound   apperr.Kind = "OWNER_NOT_FOUND"
	KindOwnerValidation apperr.Kind = "OWNER_VALIDATION"
)

var (
	ErrOwnerNotFound = apperr.New(KindOwnerNotFound, http.StatusNotFound,
		"the owner could not be found")
	ErrOwnerValidation = apperr.New(KindOwnerValidation, http.StatusMethodNotAllowed,
		"invalid owner")

	ErrOwnerAlreadyExists = users.ErrOwnerAlreadyExists
)
