package alerts

import "time"

// Alert es un recordatorio sonoro ligado a un medicamento del usuario.
type Alert struct {
	ID           int64
	UserID       int64
	MedicationID int64

	// MedicationName solo se completa en lecturas (join con medications).
	MedicationName string

	Name      string
	PlayCount int
	IsActive  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
