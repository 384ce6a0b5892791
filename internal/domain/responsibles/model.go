package responsibles

import "time"

// Responsible es un cuidador del usuario; recibe los avisos de dosis perdidas.
type Responsible struct {
	ID     int64
	UserID int64

	FullName    string
	CPF         string
	RG          string
	Birthdate   *time.Time
	PhoneNumber string
	Email       string

	Address      string
	City         string
	ZipCode      string
	Observations string

	CreatedAt time.Time
	UpdatedAt time.Time
}
