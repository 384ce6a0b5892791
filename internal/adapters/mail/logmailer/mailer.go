package logmailer

import (
	"context"

	"siam-adherence/internal/platform/logger"
	"siam-adherence/internal/ports/notify"
)

// Mailer no envía nada: deja el mensaje en el log. Se usa en dev cuando Mailgun no está configurado.
type Mailer struct {
	log logger.Logger
}

func New(log logger.Logger) *Mailer {
	if log == nil {
		log = logger.Nop()
	}
	return &Mailer{log: log.With(map[string]any{"component": "logmailer"})}
}

func (m *Mailer) Send(ctx context.Context, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info("mail not sent (dev mailer)", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"text":    msg.Text,
	})
	return nil
}
