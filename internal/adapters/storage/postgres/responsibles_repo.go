package postgres

import (
	"context"
	"database/sql"
	"errors"

	"siam-adherence/internal/domain/responsibles"
)

type ResponsiblesRepo struct {
	db *sql.DB
}

func NewResponsiblesRepo(db *sql.DB) *ResponsiblesRepo {
	return &ResponsiblesRepo{db: db}
}

const responsibleColumns = `
	id, user_id, full_name, cpf, rg, birthdate, phone_number, email,
	address, city, zip_code, observations, created_at, updated_at`

func (r *ResponsiblesRepo) Create(ctx context.Context, resp responsibles.Responsible) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO responsibles (
			user_id, full_name, cpf, rg, birthdate, phone_number, email,
			address, city, zip_code, observations, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`,
		resp.UserID,
		resp.FullName,
		resp.CPF,
		resp.RG,
		toNullDate(resp.Birthdate),
		resp.PhoneNumber,
		resp.Email,
		resp.Address,
		resp.City,
		resp.ZipCode,
		resp.Observations,
		resp.CreatedAt,
		resp.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (r *ResponsiblesRepo) GetByID(ctx context.Context, id int64) (responsibles.Responsible, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+responsibleColumns+` FROM responsibles WHERE id = $1`, id)
	resp, err := scanResponsible(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return responsibles.Responsible{}, ErrNotFound
		}
		return responsibles.Responsible{}, err
	}
	return resp, nil
}

func (r *ResponsiblesRepo) ListByUser(ctx context.Context, userID int64) ([]responsibles.Responsible, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+responsibleColumns+`
		FROM responsibles
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]responsibles.Responsible, 0)
	for rows.Next() {
		resp, err := scanResponsible(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *ResponsiblesRepo) Update(ctx context.Context, resp responsibles.Responsible) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE responsibles
		SET
			full_name = $2,
			cpf = $3,
			rg = $4,
			birthdate = $5,
			phone_number = $6,
			email = $7,
			address = $8,
			city = $9,
			zip_code = $10,
			observations = $11,
			updated_at = $12
		WHERE id = $1
	`,
		resp.ID,
		resp.FullName,
		resp.CPF,
		resp.RG,
		toNullDate(resp.Birthdate),
		resp.PhoneNumber,
		resp.Email,
		resp.Address,
		resp.City,
		resp.ZipCode,
		resp.Observations,
		resp.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ResponsiblesRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, `DELETE FROM responsibles WHERE id = $1`, id)
}

func (r *ResponsiblesRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return ownerOf(ctx, r.db, `SELECT user_id FROM responsibles WHERE id = $1`, id)
}

func (r *ResponsiblesRepo) ListEmails(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email FROM responsibles WHERE user_id = $1 ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}

func scanResponsible(s rowScanner) (responsibles.Responsible, error) {
	var resp responsibles.Responsible
	var bd sql.NullTime
	if err := s.Scan(
		&resp.ID,
		&resp.UserID,
		&resp.FullName,
		&resp.CPF,
		&resp.RG,
		&bd,
		&resp.PhoneNumber,
		&resp.Email,
		&resp.Address,
		&resp.City,
		&resp.ZipCode,
		&resp.Observations,
		&resp.CreatedAt,
		&resp.UpdatedAt,
	); err != nil {
		return responsibles.Responsible{}, err
	}
	resp.Birthdate = fromNullDate(bd)
	return resp, nil
}
