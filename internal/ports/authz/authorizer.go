package authz

import (
	"context"

	"vet-clinic-api/internal/ports/auth"
)

// Authorizer responde si las claims tienen alguno de los permisos pedidos.
type Authorizer interface {
	Allowed(ctx context.Context, claims auth.Claims, permissions ...string) (bool, error)
}

const (
	PermViewAppointments  = "view_appointments"
	PermViewAppointment   = "view_appointment"
	PermCreateAppointment = "create_appointment"
	PermUpdateAppointment = "update_appointment"
	PermDeleteAppointment = "delete_appointment"
	PermAllAppointment    = "all_appointment"

	PermViewOwners  = "view_owners"
	PermViewOwner   = "view_owner"
	PermUpdateOwner = "update_owner"
	PermDeleteOwner = "delete_owner"
	PermAllOwner    = "all_owner"

	PermViewVets  = "view_vets"
	PermViewVet   = "view_vet"
	PermUpdateVet = "update_vet"
	PermDeleteVet = "delete_vet"
	PermAllVet    = "all_vet"

	PermViewPets  = "view_pets"
	PermViewPet   = "view_pet"
	PermCreatePet = "create_pet"
	PermUpdatePet = "update_pet"
	PermDeletePet = "delete_pet"
	PermAllPet    = "all_pet"

	PermAllUser = "all_user"
)
