package medications

import "context"

type Repository interface {
	// Create inserta el medicamento y sus horarios en una única transacción.
	Create(ctx context.Context, m Medication) (int64, error)
	GetByID(ctx context.Context, id int64) (Medication, error)
	ListByUser(ctx context.Context, userID int64) ([]Medication, error)
	// Update reemplaza datos y horarios en una única transacción.
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id int64) error
	OwnerOf(ctx context.Context, id int64) (int64, error)
}
