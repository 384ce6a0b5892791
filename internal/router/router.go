package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"siam-adherence/docs"
	"siam-adherence/internal/adapters/auth/jwtauth"
	"siam-adherence/internal/adapters/mail/logmailer"
	mem "siam-adherence/internal/adapters/storage/memory"
	pg "siam-adherence/internal/adapters/storage/postgres"
	"siam-adherence/internal/domain/adherence"
	"siam-adherence/internal/domain/alerts"
	"siam-adherence/internal/domain/medications"
	"siam-adherence/internal/domain/responsibles"
	"siam-adherence/internal/domain/users"
	"siam-adherence/internal/middleware"
	"siam-adherence/internal/platform/logger"
	"siam-adherence/internal/platform/metrics"
	"siam-adherence/internal/ports/auth"
	"siam-adherence/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: X-Debug-User-ID)
	TokenIssuer  auth.TokenIssuer  // si es nil se crea uno efímero (solo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Mailer saliente; nil => logmailer.
	Mailer notify.Mailer

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Rate limit de /signup y /login por IP. RPS <= 0 lo desactiva.
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	NotifySendTimeout time.Duration
	NotifyLocation    *time.Location
}

// Router es el http.Handler de la API más el notifier, que main drena en el shutdown.
type Router struct {
	http.Handler

	notifier *adherence.Notifier
}

// Drain cierra el notifier y espera los envíos en curso (o hasta que venza ctx).
// Los avisos de dosis registradas después se descartan.
func (r *Router) Drain(ctx context.Context) error {
	return r.notifier.Wait(ctx)
}

type repos struct {
	users        users.Repository
	medications  medications.Repository
	responsibles responsibles.Repository
	alerts       alerts.Repository
	adherence    adherence.Repository
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			users:        pg.NewUsersRepo(db),
			medications:  pg.NewMedicationsRepo(db),
			responsibles: pg.NewResponsiblesRepo(db),
			alerts:       pg.NewAlertsRepo(db),
			adherence:    pg.NewAdherenceRepo(db),
		}
	}

	meds := mem.NewMedicationRepo()
	return repos{
		users:        mem.NewUserRepo(),
		medications:  meds,
		responsibles: mem.NewResponsibleRepo(),
		alerts:       mem.NewAlertRepo(meds),
		adherence:    mem.NewAdherenceRepo(meds),
	}
}

func NewRouter(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(m.Instrument)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))

	rp := newRepos(opts.DB)

	issuer := opts.TokenIssuer
	if issuer == nil {
		// sin secreto configurado: tokens firmados con una clave efímera (se invalidan al reiniciar)
		dev, err := jwtauth.NewManager(jwtauth.Config{Secret: uuid.NewString()})
		if err == nil {
			issuer = dev
		}
		log.Warn("token issuer not configured, using ephemeral dev secret", nil)
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = logmailer.New(log)
	}

	// Services por módulo
	usersSvc := users.NewService(rp.users, issuer)
	medsSvc := medications.NewService(rp.medications)
	respSvc := responsibles.NewService(rp.responsibles)
	alertsSvc := alerts.NewService(rp.alerts, medsSvc)

	notifier := adherence.NewNotifier(medsSvc, respSvc, mailer, log, adherence.NotifierOptions{
		SendTimeout: opts.NotifySendTimeout,
		Location:    opts.NotifyLocation,
		Metrics:     m,
	})
	adherenceSvc := adherence.NewService(rp.adherence, medsSvc, notifier, m)

	// Rutas por módulo
	r.Group(func(pr chi.Router) {
		if opts.AuthRateLimitRPS > 0 {
			pr.Use(middleware.NewRateLimiter(opts.AuthRateLimitRPS, opts.AuthRateLimitBurst, log).Handler)
		}
		users.RegisterAuthRoutes(pr, usersSvc)
	})
	users.RegisterRoutes(r, usersSvc)
	medications.RegisterRoutes(r, medsSvc)
	responsibles.RegisterRoutes(r, respSvc)
	alerts.RegisterRoutes(r, alertsSvc)
	adherence.RegisterRoutes(r, adherenceSvc)

	return &Router{Handler: r, notifier: notifier}
}
