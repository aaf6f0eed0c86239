// Package apperr define el error tipado que comparten los módulos de dominio:
// un Kind estable, el status HTTP sugerido y un mensaje apto para el cliente.
// La causa original (si existe) queda accesible vía Unwrap solo del lado servidor.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const KindUnknown Kind = "UNKNOWN"

type Error struct {
	Kind    Kind
	Status  int
	Message string

	cause error
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is compara por Kind: un error con mensaje distinto sigue siendo errors.Is del sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Withf devuelve una copia del sentinel con un mensaje más específico.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{
		Kind:    e.Kind,
		Status:  e.Status,
		Message: fmt.Sprintf(format, args...),
		cause:   e.cause,
	}
}

// Unknown envuelve una falla inesperada. El mensaje al cliente es fijo.
func Unknown(cause error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		cause:   cause,
	}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf devuelve el status sugerido; cualquier error no tipado es 500.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Response es el cuerpo JSON de error que devuelven los handlers.
type Response struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ToResponse nunca expone la causa de un error no tipado.
func ToResponse(err error) Response {
	e, ok := As(err)
	if !ok {
		e = Unknown(err)
	}
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Response{Kind: e.Kind, Message: e.Message, Status: status}
}
