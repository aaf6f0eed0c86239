package vets

import (
	"strings"
	"time"
)

type Specialty string

const (
	SpecialtyCat    Specialty = "CAT"
	SpecialtyDog    Specialty = "DOG"
	SpecialtyCatDog Specialty = "CAT_DOG"
)

// CoerceSpecialty no falla: vacío o desconocido => CAT_DOG.
func CoerceSpecialty(raw string) Specialty {
	switch s := Specialty(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SpecialtyCat, SpecialtyDog, SpecialtyCatDog:
		return s
	default:
		return SpecialtyCatDog
	}
}

// Vet es el veterinario. Tiene una cuenta de usuario VET vinculada.
type Vet struct {
	ID        string
	Name      string
	Email     string
	Username  string
	Specialty Specialty

	CreatedAt time.Time
	UpdatedAt time.Time
}
