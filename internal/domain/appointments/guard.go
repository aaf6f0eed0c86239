package appointments

import (
	"context"
	"strings"
)

// ReferentialGuard confirma que owner, vet y pet existen.
// Errores del colaborador se devuelven tal cual; el service los envuelve como Unknown.
type ReferentialGuard struct {
	owners OwnerDirectory
	vets   VetDirectory
	pets   PetDirectory
}

func NewReferentialGuard(owners OwnerDirectory, vets VetDirectory, pets PetDirectory) ReferentialGuard {
	return ReferentialGuard{owners: owners, vets: vets, pets: pets}
}

func (g ReferentialGuard) EnsureOwnerExists(ctx context.Context, id string) error {
	return ensure(ctx, id, g.owners.ExistsOwnerByID, ErrOwnerNotFound)
}

func (g ReferentialGuard) EnsureVetExists(ctx context.Context, id string) error {
	return ensure(ctx, id, g.vets.ExistsVetByID, ErrVetNotFound)
}

func (g ReferentialGuard) EnsurePetExists(ctx context.Context, id string) error {
	return ensure(ctx, id, g.pets.ExistsPetByID, ErrPetNotFound)
}

// Check corre owner, vet, pet en ese orden; gana el primero que falla.
func (g ReferentialGuard) Check(ctx context.Context, ownerID, vetID, petID string) error {
	if err := g.EnsureOwnerExists(ctx, ownerID); err != nil {
		return err
	}
	if err := g.EnsureVetExists(ctx, vetID); err != nil {
		return err
	}
	return g.EnsurePetExists(ctx, petID)
}

func ensure(ctx context.Context, id string, exists func(context.Context, string) (bool, error), notFound error) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return notFound
	}
	ok, err := exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}
