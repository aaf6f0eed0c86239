package pets

import (
	"strings"
	"time"
)

// Type es la especie de la mascota.
// @Enum DOG, CAT, UNKNOWN
type Type string

const (
	TypeDog     Type = "DOG"
	TypeCat     Type = "CAT"
	TypeUnknown Type = "UNKNOWN"
)

// CoerceType: vacío o desconocido => UNKNOWN.
func CoerceType(raw string) Type {
	switch t := Type(strings.ToUpper(strings.TrimSpace(raw))); t {
	case TypeDog, TypeCat:
		return t
	default:
		return TypeUnknown
	}
}

// Pet representa el perfil básico de una mascota registrada en la clínica.
type Pet struct {
	ID      string
	OwnerID string

	Name  string
	Type  Type
	Breed string
	Color string

	Age    int     // años, >= 1
	Weight float64 // kg, >= 0

	CreatedAt time.Time
	UpdatedAt time.Time
}
