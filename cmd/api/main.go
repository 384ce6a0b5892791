package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"siam-adherence/internal/adapters/auth/jwtauth"
	"siam-adherence/internal/adapters/mail/logmailer"
	"siam-adherence/internal/adapters/mail/mailgun"
	pg "siam-adherence/internal/adapters/storage/postgres"
	"siam-adherence/internal/platform/config"
	"siam-adherence/internal/platform/logger"
	"siam-adherence/internal/platform/metrics"
	"siam-adherence/internal/ports/auth"
	"siam-adherence/internal/ports/notify"
	"siam-adherence/internal/router"
)

// @title SIAM Adherence API
// @version 1.0
// @description API de adesão a medicamentos: cadastro de medicamentos, responsáveis e alertas, registro de doses e relatórios.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Error("config error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	var db *sql.DB
	if cfg.DBDSN != "" {
		if cfg.DBMigrate {
			if err := pg.Migrate(cfg.DBDSN); err != nil {
				return err
			}
			log.Info("migrations applied", nil)
		}

		var err error
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	var (
		verifier auth.AuthVerifier
		issuer   auth.TokenIssuer
	)
	if cfg.JWTSecret != "" {
		jwt, err := jwtauth.NewManager(jwtauth.Config{
			Secret: cfg.JWTSecret,
			TTL:    cfg.JWTTTL,
			Issuer: cfg.AppName,
		})
		if err != nil {
			return err
		}
		verifier, issuer = jwt, jwt
	} else {
		log.Warn("JWT_SECRET not set, accepting X-Debug-User-ID", nil)
	}

	var mailer notify.Mailer = logmailer.New(log)
	if cfg.MailgunConfigured() {
		mg, err := mailgun.NewClient(mailgun.Config{
			BaseURL: cfg.MailgunBaseURL,
			Domain:  cfg.MailgunDomain,
			APIKey:  cfg.MailgunAPIKey,
			From:    cfg.MailFrom,
			Timeout: cfg.NotifySendTimeout,
		})
		if err != nil {
			return err
		}
		mailer = mg
	}

	// validado en config.Load
	loc, _ := time.LoadLocation(cfg.NotifyTimezone)

	r := router.NewRouter(router.Options{
		AuthVerifier:       verifier,
		TokenIssuer:        issuer,
		DB:                 db,
		Mailer:             mailer,
		Logger:             log,
		Metrics:            metrics.New(),
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
		NotifySendTimeout:  cfg.NotifySendTimeout,
		NotifyLocation:     loc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", map[string]any{"err": err.Error()})
	}
	// avisos de dosis omitidas que todavía están en vuelo
	if err := r.Drain(shutdownCtx); err != nil {
		log.Warn("notifications still pending at exit", map[string]any{"err": err.Error()})
	}
	return nil
}
