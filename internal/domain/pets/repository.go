package pets

import "context"

// Repository devuelve ErrPetNotFound cuando no hay fila.
// Create/Update devuelven ErrPetAlreadyExists si choca (owner, name, type).
type Repository interface {
	Create(ctx context.Context, p Pet) (Pet, error)
	Update(ctx context.Context, p Pet) (Pet, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context) ([]Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	FindByOwnerNameType(ctx context.Context, ownerID, name string, t Type) (Pet, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// OwnerDirectory lo implementa *owners.Service.
type OwnerDirectory interface {
	ExistsOwnerByID(ctx context.Context, id string) (bool, error)
}
