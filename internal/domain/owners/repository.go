package owners

import "context"

// Repository devuelve ErrOwnerNotFound cuando no hay fila. Create asigna ID y timestamps.
type Repository interface {
	Create(ctx context.Context, o Owner) (Owner, error)
	Update(ctx context.Context, o Owner) (Owner, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (Owner, error)
	List(ctx context.Context) ([]Owner, error)
	Exists(ctx context.Context, id string) (bool, error)
}
