package users

import (
	"context"
	"errors"
)

// ErrDuplicate lo devuelven los repos cuando username (o email) ya existe.
var ErrDuplicate = errors.New("duplicate user")

type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	// Update persiste datos de perfil; no toca username ni password.
	Update(ctx context.Context, u User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}
