package users

import (
	"time"

	"vet-clinic-api/internal/ports/auth"
)

// User es la cuenta de acceso. Los owners y vets tienen una cuenta vinculada.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role

	VetID   string
	OwnerID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Claims arma las claims de sesión de la cuenta.
func (u User) Claims() auth.Claims {
	return auth.Claims{
		UserID:  u.ID,
		Email:   u.Email,
		Role:    u.Role,
		VetID:   u.VetID,
		OwnerID: u.OwnerID,
	}
}
