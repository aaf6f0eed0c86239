package auth

import "strings"

// Role es el rol del usuario autenticado.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleVet       Role = "VET"
	RoleOwner     Role = "OWNER"
	RoleAnonymous Role = "ANONYMOUS"
)

// ParseRole normaliza; vacío o desconocido => ANONYMOUS.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleVet, RoleOwner:
		return r
	default:
		return RoleAnonymous
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role

	// Vínculo opcional con el perfil de vet u owner.
	VetID   string
	OwnerID string
}
