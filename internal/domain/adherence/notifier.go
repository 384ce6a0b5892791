package adherence

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"siam-adherence/internal/domain/medications"
	"siam-adherence/internal/platform/logger"
	"siam-adherence/internal/platform/metrics"
	"siam-adherence/internal/ports/notify"

	"github.com/google/uuid"
)

const (
	DefaultSendTimeout = 10 * time.Second

	displayLayout = "02/01/2006 15:04"
)

// MedicationDetails resuelve nombre y dosis del medicamento (validando dueño).
type MedicationDetails interface {
	Owned(ctx context.Context, userID, id int64) (medications.Medication, error)
}

// Caregivers lista los emails de los responsables del usuario.
type Caregivers interface {
	ListEmails(ctx context.Context, userID int64) ([]string, error)
}

type NotifierOptions struct {
	SendTimeout time.Duration
	Location    *time.Location
	Metrics     *metrics.Metrics
}

// Notifier hace el fan-out de avisos de dosis perdida, un envío por responsable.
// Corre fuera del request: los errores se loguean y nunca vuelven al caller.
// Sin reintentos: como máximo un intento por responsable y evento.
type Notifier struct {
	medications MedicationDetails
	caregivers  Caregivers
	mailer      notify.Mailer
	log         logger.Logger
	metrics     *metrics.Metrics

	timeout time.Duration
	loc     *time.Location

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	newID  func() string
}

func NewNotifier(meds MedicationDetails, caregivers Caregivers, mailer notify.Mailer, log logger.Logger, opts NotifierOptions) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Notifier{
		medications: meds,
		caregivers:  caregivers,
		mailer:      mailer,
		log:         log.With(map[string]any{"component": "notifier"}),
		metrics:     opts.Metrics,
		timeout:     opts.SendTimeout,
		loc:         opts.Location,
		newID:       uuid.NewString,
	}
}

// MissedDose dispara el fan-out en background y retorna de inmediato.
// El contexto se desacopla de la cancelación del request pero conserva sus valores.
// Tras Wait el notifier queda cerrado y los eventos nuevos se descartan con un warning.
func (n *Notifier) MissedDose(ctx context.Context, l MedicationLog) {
	ctx = context.WithoutCancel(ctx)
	dispatchID := n.newID()

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.log.Warn("missed dose: notifier closed, notification dropped", map[string]any{
			"dispatch_id":   dispatchID,
			"log_id":        l.ID,
			"medication_id": l.MedicationID,
		})
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		n.dispatch(ctx, dispatchID, l)
	}()
}

// Wait cierra el notifier y bloquea hasta que terminen los envíos en curso o venza ctx
// (drain en shutdown).
func (n *Notifier) Wait(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) dispatch(ctx context.Context, dispatchID string, l MedicationLog) {
	log := n.log.With(map[string]any{
		"dispatch_id":   dispatchID,
		"log_id":        l.ID,
		"medication_id": l.MedicationID,
		"user_id":       l.UserID,
	})

	med, err := n.medications.Owned(ctx, l.UserID, l.MedicationID)
	if err != nil {
		log.Error("missed dose: medication lookup failed", map[string]any{"err": err})
		return
	}

	emails, err := n.caregivers.ListEmails(ctx, l.UserID)
	if err != nil {
		log.Error("missed dose: caregiver lookup failed", map[string]any{"err": err})
		return
	}
	if len(emails) == 0 {
		log.Debug("missed dose: no caregivers registered", nil)
		return
	}

	msg := n.message(med, l, dispatchID)

	var wg sync.WaitGroup
	for _, to := range emails {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			n.send(ctx, log, msg, to)
		}(to)
	}
	wg.Wait()
}

func (n *Notifier) send(ctx context.Context, log logger.Logger, msg notify.Message, to string) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg.To = to
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.metrics.NotificationSent(false)
		log.Warn("missed dose: send failed", map[string]any{"to": to, "err": err})
		return
	}
	n.metrics.NotificationSent(true)
	log.Info("missed dose: notification sent", map[string]any{"to": to})
}

func (n *Notifier) message(med medications.Medication, l MedicationLog, dispatchID string) notify.Message {
	when := l.TakenAt.In(n.loc).Format(displayLayout)
	dosage := formatDosage(med.Dosage)

	text := fmt.Sprintf(
		"A dose do medicamento %s (%s) não foi tomada.\nRegistro: %s",
		med.Name, dosage, when,
	)
	body := fmt.Sprintf(
		"<p>A dose do medicamento <strong>%s</strong> (%s) não foi tomada.</p><p>Registro: %s</p>",
		html.EscapeString(med.Name), html.EscapeString(dosage), when,
	)

	return notify.Message{
		Subject: "Dose não tomada: " + med.Name,
		Text:    text,
		HTML:    body,
		Tags: map[string]string{
			"dispatch_id": dispatchID,
			"event":       "missed_dose",
		},
	}
}

func formatDosage(d float64) string {
	return fmt.Sprintf("dosagem %g", d)
}
