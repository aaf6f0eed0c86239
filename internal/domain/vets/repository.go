package vets

import "context"

type Repository interface {
	Create(ctx context.Context, v Vet) (Vet, error)
	Update(ctx context.Context, v Vet) (Vet, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (Vet, error)
	List(ctx context.Context) ([]Vet, error)
	Exists(ctx context.Context, id string) (bool, error)
}
