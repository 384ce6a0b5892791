package postgres

import (
	"context"
	"database/sql"
	"errors"

	"siam-adherence/internal/domain/alerts"
)

type AlertsRepo struct {
	db *sql.DB
}

func NewAlertsRepo(db *sql.DB) *AlertsRepo {
	return &AlertsRepo{db: db}
}

const alertSelect = `
	SELECT a.id, a.user_id, a.medication_id, m.name,
	       a.name, a.play_count, a.is_active, a.created_at, a.updated_at
	FROM alerts a
	JOIN medications m ON m.id = a.medication_id`

func (r *AlertsRepo) Create(ctx context.Context, a alerts.Alert) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO alerts (user_id, medication_id, name, play_count, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		a.UserID,
		a.MedicationID,
		a.Name,
		a.PlayCount,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (r *AlertsRepo) GetByID(ctx context.Context, id int64) (alerts.Alert, error) {
	row := r.db.QueryRowContext(ctx, alertSelect+` WHERE a.id = $1`, id)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return alerts.Alert{}, ErrNotFound
		}
		return alerts.Alert{}, err
	}
	return a, nil
}

func (r *AlertsRepo) ListByUser(ctx context.Context, userID int64) ([]alerts.Alert, error) {
	rows, err := r.db.QueryContext(ctx, alertSelect+` WHERE a.user_id = $1 ORDER BY a.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]alerts.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AlertsRepo) Update(ctx context.Context, a alerts.Alert) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts
		SET
			medication_id = $2,
			name = $3,
			play_count = $4,
			is_active = $5,
			updated_at = $6
		WHERE id = $1
	`,
		a.ID,
		a.MedicationID,
		a.Name,
		a.PlayCount,
		a.IsActive,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AlertsRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, `DELETE FROM alerts WHERE id = $1`, id)
}

func (r *AlertsRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return ownerOf(ctx, r.db, `SELECT user_id FROM alerts WHERE id = $1`, id)
}

func scanAlert(s rowScanner) (alerts.Alert, error) {
	var a alerts.Alert
	err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.MedicationID,
		&a.MedicationName,
		&a.Name,
		&a.PlayCount,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
