package adherence

import (
	"context"
	"time"
)

type Repository interface {
	// InsertLog persiste un registro en su propia transacción (begin/insert/commit en una conexión).
	InsertLog(ctx context.Context, l MedicationLog) (int64, error)

	// Summary incluye medicamentos del usuario sin registros (contadores en cero), ordenado por nombre.
	Summary(ctx context.Context, userID int64) ([]Summary, error)
	// MissedByWeek ordena por semana asc y luego nombre.
	MissedByWeek(ctx context.Context, userID int64) ([]MissedByWeek, error)
	// DailyConsumption cuenta tomas con taken_at >= since (si since != nil), ordenado por día ISO y nombre.
	DailyConsumption(ctx context.Context, userID int64, since *time.Time) ([]DailyConsumption, error)
}
