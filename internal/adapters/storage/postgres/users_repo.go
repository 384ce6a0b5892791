package postgres

import (
	"context"
	"database/sql"
	"errors"

	"siam-adherence/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, full_name, nickname, email, phone_number, cpf, birthdate,
	address, city, zip_code, observations,
	username, password_hash, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (
			full_name, nickname, email, phone_number, cpf, birthdate,
			address, city, zip_code, observations,
			username, password_hash, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id
	`,
		u.FullName,
		u.Nickname,
		u.Email,
		u.PhoneNumber,
		u.CPF,
		toNullDate(u.Birthdate),
		u.Address,
		u.City,
		u.ZipCode,
		u.Observations,
		u.Username,
		u.PasswordHash,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, users.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
}

func (r *UsersRepo) getOne(ctx context.Context, query string, arg any) (users.User, error) {
	var u users.User
	var bd sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.FullName,
		&u.Nickname,
		&u.Email,
		&u.PhoneNumber,
		&u.CPF,
		&bd,
		&u.Address,
		&u.City,
		&u.ZipCode,
		&u.Observations,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	u.Birthdate = fromNullDate(bd)
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			full_name = $2,
			nickname = $3,
			email = $4,
			phone_number = $5,
			cpf = $6,
			birthdate = $7,
			address = $8,
			city = $9,
			zip_code = $10,
			observations = $11,
			updated_at = $12
		WHERE id = $1
	`,
		u.ID,
		u.FullName,
		u.Nickname,
		u.Email,
		u.PhoneNumber,
		u.CPF,
		toNullDate(u.Birthdate),
		u.Address,
		u.City,
		u.ZipCode,
		u.Observations,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, hash)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
