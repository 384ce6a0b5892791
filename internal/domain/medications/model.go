package medications

import (
	"strings"
	"time"
)

// AdministrationSchedule es un horario recurrente: hora del día + días de la semana.
type AdministrationSchedule struct {
	Time       string   // "HH:MM" 24h
	DaysOfWeek []string // nombres canónicos en inglés (Monday..Sunday)
}

// Medication es un medicamento del usuario con sus horarios de administración.
type Medication struct {
	ID     int64
	UserID int64

	Name   string
	Dosage float64

	StartDate time.Time
	EndDate   *time.Time

	Observations string

	Schedules []AdministrationSchedule

	CreatedAt time.Time
	UpdatedAt time.Time
}

var weekdayAliases = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,

	// nombres que manda el frontend
	"domingo": time.Sunday,
	"segunda": time.Monday,
	"terça":   time.Tuesday,
	"terca":   time.Tuesday,
	"quarta":  time.Wednesday,
	"quinta":  time.Thursday,
	"sexta":   time.Friday,
	"sábado":  time.Saturday,
	"sabado":  time.Saturday,
}

// ParseWeekday acepta nombres en inglés o portugués (con o sin "-feira"), sin distinguir mayúsculas.
func ParseWeekday(s string) (time.Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, "-feira")
	d, ok := weekdayAliases[key]
	return d, ok
}
