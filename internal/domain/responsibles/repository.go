package responsibles

import "context"

type Repository interface {
	Create(ctx context.Context, r Responsible) (int64, error)
	GetByID(ctx context.Context, id int64) (Responsible, error)
	ListByUser(ctx context.Context, userID int64) ([]Responsible, error)
	Update(ctx context.Context, r Responsible) error
	Delete(ctx context.Context, id int64) error
	OwnerOf(ctx context.Context, id int64) (int64, error)
	// ListEmails devuelve los emails de contacto de todos los responsables del usuario.
	ListEmails(ctx context.Context, userID int64) ([]string, error)
}
