package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite tokens para un usuario autenticado (login).
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
}
