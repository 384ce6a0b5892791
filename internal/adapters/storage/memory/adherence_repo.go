package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"siam-adherence/internal/domain/adherence"
)

// AdherenceRepo replica en memoria la semántica de las consultas agregadas de postgres.
type AdherenceRepo struct {
	mu     sync.RWMutex
	nextID int64
	logs   []adherence.MedicationLog

	meds *MedicationRepo

	// FailInserts simula una caída del datastore (tests/dev).
	FailInserts bool
}

func NewAdherenceRepo(meds *MedicationRepo) *AdherenceRepo {
	return &AdherenceRepo{meds: meds}
}

func (r *AdherenceRepo) InsertLog(ctx context.Context, l adherence.MedicationLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailInserts {
		return 0, errors.New("memory: insert failed")
	}
	if _, _, ok := r.meds.lookup(l.MedicationID); !ok {
		return 0, errors.New("memory: medication_id violates foreign key")
	}

	r.nextID++
	l.ID = r.nextID
	r.logs = append(r.logs, l)
	return l.ID, nil
}

// Logs devuelve una copia del ledger (tests).
func (r *AdherenceRepo) Logs() []adherence.MedicationLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]adherence.MedicationLog(nil), r.logs...)
}

// userLogs: logs del usuario cuyo medicamento sigue existiendo, con su nombre.
func (r *AdherenceRepo) userLogs(userID int64) []namedLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]namedLog, 0)
	for _, l := range r.logs {
		if l.UserID != userID {
			continue
		}
		name, _, ok := r.meds.lookup(l.MedicationID)
		if !ok {
			continue
		}
		out = append(out, namedLog{name: name, log: l})
	}
	return out
}

type namedLog struct {
	name string
	log  adherence.MedicationLog
}

func (r *AdherenceRepo) Summary(ctx context.Context, userID int64) ([]adherence.Summary, error) {
	byName := map[string]*adherence.Summary{}
	// LEFT JOIN: medicamentos sin registros aparecen en cero
	for _, m := range r.meds.listByUser(userID) {
		if _, ok := byName[m.Name]; !ok {
			byName[m.Name] = &adherence.Summary{Name: m.Name}
		}
	}
	for _, nl := range r.userLogs(userID) {
		s, ok := byName[nl.name]
		if !ok {
			s = &adherence.Summary{Name: nl.name}
			byName[nl.name] = s
		}
		if nl.log.Taken {
			s.TakenCount++
		} else {
			s.MissedCount++
		}
	}

	out := make([]adherence.Summary, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AdherenceRepo) MissedByWeek(ctx context.Context, userID int64) ([]adherence.MissedByWeek, error) {
	type key struct {
		name string
		week time.Time
	}
	counts := map[key]int64{}
	for _, nl := range r.userLogs(userID) {
		if nl.log.Taken {
			continue
		}
		counts[key{name: nl.name, week: adherence.WeekStart(nl.log.TakenAt)}]++
	}

	out := make([]adherence.MissedByWeek, 0, len(counts))
	for k, n := range counts {
		out = append(out, adherence.MissedByWeek{Name: k.name, MissedCount: n, Week: k.week})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Week.Equal(out[j].Week) {
			return out[i].Week.Before(out[j].Week)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *AdherenceRepo) DailyConsumption(ctx context.Context, userID int64, since *time.Time) ([]adherence.DailyConsumption, error) {
	type key struct {
		name string
		day  time.Weekday
	}
	counts := map[key]int64{}
	for _, nl := range r.userLogs(userID) {
		if !nl.log.Taken {
			continue
		}
		if since != nil && nl.log.TakenAt.Before(*since) {
			continue
		}
		counts[key{name: nl.name, day: nl.log.TakenAt.UTC().Weekday()}]++
	}

	type row struct {
		key
		n int64
	}
	rows := make([]row, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, row{key: k, n: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		di, dj := adherence.ISODay(rows[i].day), adherence.ISODay(rows[j].day)
		if di != dj {
			return di < dj
		}
		return rows[i].name < rows[j].name
	})

	out := make([]adherence.DailyConsumption, 0, len(rows))
	for _, rw := range rows {
		out = append(out, adherence.DailyConsumption{Name: rw.name, TakenCount: rw.n, DayOfWeek: rw.day.String()})
	}
	return out, nil
}
