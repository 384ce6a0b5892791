package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"siam-adherence/internal/domain/adherence"

	"github.com/jmoiron/sqlx"
)

// AdherenceRepo: escritura del ledger con database/sql + tx; lecturas agregadas con sqlx.
type AdherenceRepo struct {
	db  *sql.DB
	dbx *sqlx.DB
}

func NewAdherenceRepo(db *sql.DB) *AdherenceRepo {
	return &AdherenceRepo{
		db:  db,
		dbx: sqlx.NewDb(db, "pgx"),
	}
}

// InsertLog: begin / insert / commit en una conexión; cualquier fallo hace rollback.
func (r *AdherenceRepo) InsertLog(ctx context.Context, l adherence.MedicationLog) (int64, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO medication_logs (medication_id, user_id, taken, date_taken)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, l.MedicationID, l.UserID, l.Taken, l.TakenAt).Scan(&id); err != nil {
			return fmt.Errorf("insert medication log: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *AdherenceRepo) Summary(ctx context.Context, userID int64) ([]adherence.Summary, error) {
	out := make([]adherence.Summary, 0)
	err := r.dbx.SelectContext(ctx, &out, `
		SELECT m.name,
		       COUNT(ml.id) FILTER (WHERE ml.taken)     AS taken_count,
		       COUNT(ml.id) FILTER (WHERE NOT ml.taken) AS missed_count
		FROM medications m
		LEFT JOIN medication_logs ml
		       ON ml.medication_id = m.id AND ml.user_id = m.user_id
		WHERE m.user_id = $1
		GROUP BY m.name
		ORDER BY m.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AdherenceRepo) MissedByWeek(ctx context.Context, userID int64) ([]adherence.MissedByWeek, error) {
	out := make([]adherence.MissedByWeek, 0)
	err := r.dbx.SelectContext(ctx, &out, `
		SELECT m.name,
		       COUNT(ml.id) AS missed_count,
		       DATE_TRUNC('week', ml.date_taken AT TIME ZONE 'UTC') AS week
		FROM medication_logs ml
		JOIN medications m ON m.id = ml.medication_id
		WHERE ml.user_id = $1
		  AND ml.taken = false
		GROUP BY m.name, week
		ORDER BY week ASC, m.name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		// timestamp sin zona: lo fijamos explícitamente en UTC
		w := out[i].Week
		out[i].Week = time.Date(w.Year(), w.Month(), w.Day(), 0, 0, 0, 0, time.UTC)
	}
	return out, nil
}

func (r *AdherenceRepo) DailyConsumption(ctx context.Context, userID int64, since *time.Time) ([]adherence.DailyConsumption, error) {
	var from sql.NullTime
	if since != nil {
		from = sql.NullTime{Time: *since, Valid: true}
	}

	out := make([]adherence.DailyConsumption, 0)
	err := r.dbx.SelectContext(ctx, &out, `
		SELECT m.name,
		       COUNT(ml.id) AS taken_count,
		       TO_CHAR(ml.date_taken AT TIME ZONE 'UTC', 'FMDay') AS day_of_week
		FROM medication_logs ml
		JOIN medications m ON m.id = ml.medication_id
		WHERE ml.user_id = $1
		  AND ml.taken = true
		  AND ($2::timestamptz IS NULL OR ml.date_taken >= $2)
		GROUP BY m.name, day_of_week, EXTRACT(ISODOW FROM ml.date_taken AT TIME ZONE 'UTC')
		ORDER BY EXTRACT(ISODOW FROM ml.date_taken AT TIME ZONE 'UTC'), m.name
	`, userID, from)
	if err != nil {
		return nil, err
	}
	return out, nil
}
