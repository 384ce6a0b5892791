package adherence

import "time"

// MedicationLog es un registro inmutable de toma (o no toma) de una dosis.
type MedicationLog struct {
	ID           int64
	MedicationID int64
	UserID       int64
	Taken        bool
	TakenAt      time.Time
}

// Summary: tomas y omisiones por medicamento.
type Summary struct {
	Name        string `db:"name"`
	TakenCount  int64  `db:"taken_count"`
	MissedCount int64  `db:"missed_count"`
}

// MissedByWeek: omisiones por medicamento y semana (lunes 00:00 UTC).
type MissedByWeek struct {
	Name        string    `db:"name"`
	MissedCount int64     `db:"missed_count"`
	Week        time.Time `db:"week"`
}

// DailyConsumption: tomas por medicamento y día de la semana (nombre en inglés).
type DailyConsumption struct {
	Name       string `db:"name"`
	TakenCount int64  `db:"taken_count"`
	DayOfWeek  string `db:"day_of_week"`
}

// WeekStart trunca t al lunes 00:00 UTC de su semana ISO.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ISODay: lunes=1 .. domingo=7.
func ISODay(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
