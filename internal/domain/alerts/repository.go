package alerts

import "context"

type Repository interface {
	Create(ctx context.Context, a Alert) (int64, error)
	GetByID(ctx context.Context, id int64) (Alert, error)
	ListByUser(ctx context.Context, userID int64) ([]Alert, error)
	Update(ctx context.Context, a Alert) error
	Delete(ctx context.Context, id int64) error
	OwnerOf(ctx context.Context, id int64) (int64, error)
}
