package users

import "time"

// User es la identidad autenticable. PasswordHash nunca sale por la API.
type User struct {
	ID int64

	FullName    string
	Nickname    string
	Email       string
	PhoneNumber string
	CPF         string
	Birthdate   *time.Time

	Address      string
	City         string
	ZipCode      string
	Observations string

	Username     string
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
