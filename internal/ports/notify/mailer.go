package notify

import "context"

// Message es un correo saliente de texto + HTML.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string

	// Tags opcionales para trazabilidad en el proveedor (dispatch id, etc).
	Tags map[string]string
}

// Mailer envía un único mensaje. Las implementaciones deben respetar ctx (timeout por envío).
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
