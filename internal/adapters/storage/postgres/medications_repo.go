package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"siam-adherence/internal/domain/medications"

	"github.com/lib/pq"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

// Create inserta medicamento + horarios en una única transacción.
func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) (int64, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO medications (
				user_id, name, dosage, start_date, end_date, observations,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id
		`,
			m.UserID,
			m.Name,
			m.Dosage,
			m.StartDate,
			toNullDate(m.EndDate),
			m.Observations,
			m.CreatedAt,
			m.UpdatedAt,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert medication: %w", err)
		}
		return insertSchedules(ctx, tx, id, m.Schedules)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update reemplaza fila y horarios en una única transacción.
func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE medications
			SET
				name = $2,
				dosage = $3,
				start_date = $4,
				end_date = $5,
				observations = $6,
				updated_at = $7
			WHERE id = $1
		`,
			m.ID,
			m.Name,
			m.Dosage,
			m.StartDate,
			toNullDate(m.EndDate),
			m.Observations,
			m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update medication: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM administration_schedules WHERE medication_id = $1`, m.ID); err != nil {
			return fmt.Errorf("delete schedules: %w", err)
		}
		return insertSchedules(ctx, tx, m.ID, m.Schedules)
	})
}

func insertSchedules(ctx context.Context, tx *sql.Tx, medicationID int64, schedules []medications.AdministrationSchedule) error {
	for _, s := range schedules {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO administration_schedules (medication_id, time, days_of_week)
			VALUES ($1, $2::time, $3)
		`, medicationID, s.Time, pq.Array(s.DaysOfWeek)); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id int64) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, dosage, start_date, end_date, observations, created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}

	byMed, err := r.schedulesFor(ctx, []int64{m.ID})
	if err != nil {
		return medications.Medication{}, err
	}
	m.Schedules = byMed[m.ID]
	return m, nil
}

func (r *MedicationsRepo) ListByUser(ctx context.Context, userID int64) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, dosage, start_date, end_date, observations, created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	byMed, err := r.schedulesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Schedules = byMed[out[i].ID]
	}
	return out, nil
}

func (r *MedicationsRepo) schedulesFor(ctx context.Context, ids []int64) (map[int64][]medications.AdministrationSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT medication_id, to_char(time, 'HH24:MI'), days_of_week
		FROM administration_schedules
		WHERE medication_id = ANY($1)
		ORDER BY medication_id, time, id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]medications.AdministrationSchedule, len(ids))
	for rows.Next() {
		var medID int64
		var s medications.AdministrationSchedule
		var days pq.StringArray
		if err := rows.Scan(&medID, &s.Time, &days); err != nil {
			return nil, err
		}
		s.DaysOfWeek = []string(days)
		out[medID] = append(out[medID], s)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) Delete(ctx context.Context, id int64) error {
	// schedules, alerts y medication_logs caen por ON DELETE CASCADE
	return deleteByID(ctx, r.db, `DELETE FROM medications WHERE id = $1`, id)
}

func (r *MedicationsRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return ownerOf(ctx, r.db, `SELECT user_id FROM medications WHERE id = $1`, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(s rowScanner) (medications.Medication, error) {
	var m medications.Medication
	var end sql.NullTime
	if err := s.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.StartDate,
		&end,
		&m.Observations,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}
	m.EndDate = fromNullDate(end)
	return m, nil
}
