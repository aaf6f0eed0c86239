package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenRevoker invalida un token antes de su expiración (logout).
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}
