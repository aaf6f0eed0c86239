package users

import (
	"net/http"

	"vet-clinic-api/internal/platform/apperr"
)

const (
	KindUserNotFound       apperr.Kind = "USER_NOT_FOUND"
	KindUserValidation     apperr.Kind = "USER_VALIDATION"
	KindUserPasswordField  apperr.Kind = "USER_PASSWORD_FIELD"
	KindUserAlreadyExists  apperr.Kind = "USER_ALREADY_EXISTS"
	KindUserUnauthorized   apperr.Kind = "USER_UNAUTHORIZED"
	KindOwnerAlreadyExists apperr.Kind = "OWNER_ALREADY_EXISTS"
	KindVetAlreadyExists   apperr.Kind = "VET_ALREADY_EXISTS"
)

var (
	ErrUserNotFound = apperr.New(KindUserNotFound, http.StatusNotFound,
		"the user could not be found")
	ErrUserValidation = apperr.New(KindUserValidation, http.StatusMethodNotAllowed,
		"invalid user")
	ErrUserPasswordField = apperr.New(KindUserPasswordField, http.StatusMethodNotAllowed,
		"the password field is required")
	ErrUserAlreadyExists = apperr.New(KindUserAlreadyExists, http.StatusConflict,
		"a user with this email or username already exists")
	ErrUserUnauthorized = apperr.New(KindUserUnauthorized, http.StatusUnauthorized,
		"the user credentials are invalid")

	// La cuenta en conflicto ya está vinculada a un owner o a un vet.
	ErrOwnerAlreadyExists = apperr.New(KindOwnerAlreadyExists, http.StatusConflict,
		"an owner with this email or username already exists")
	ErrVetAlreadyExists = apperr.New(KindVetAlreadyExists, http.StatusConflict,
		"a vet with this email or username already exists")
)

// ConflictError elige el error 409 según a qué perfil está vinculada la cuenta existente.
func ConflictError(existing User) error {
	switch {
	case existing.OwnerID != "":
		return ErrOwnerAlreadyExists
	case existing.VetID != "":
		return ErrVetAlreadyExists
	default:
		return ErrUserAlreadyExists
	}
}
