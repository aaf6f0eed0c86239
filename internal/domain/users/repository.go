package users

import "context"

// Repository devuelve ErrUserNotFound cuando no hay fila.
// Create/Update devuelven ErrUserAlreadyExists si choca email o username.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByOwnerID(ctx context.Context, ownerID string) (User, error)
	FindByVetID(ctx context.Context, vetID string) (User, error)
}
