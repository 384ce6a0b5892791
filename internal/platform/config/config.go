package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa todo lo que el proceso lee del entorno.
// Campos vacíos activan los modos dev (memoria, auth por header de debug, mailer a log).
type Config struct {
	Port string

	DBDSN     string
	DBMigrate bool

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string
	AppName   string

	MailgunDomain  string
	MailgunAPIKey  string
	MailgunBaseURL string
	MailFrom       string

	NotifySendTimeout time.Duration
	NotifyTimezone    string

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	ShutdownTimeout time.Duration
}

// Load lee variables de entorno. Si existen archivos .env (o los indicados en files)
// se cargan antes, sin pisar variables ya definidas en el proceso.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("config: load env files: %w", err)
		}
	}

	var errs []error

	cfg := Config{
		Port:           envOr("PORT", "8080"),
		DBDSN:          strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "text"),
		AppName:        envOr("APP_NAME", "siam-adherence"),
		MailgunDomain:  strings.TrimSpace(os.Getenv("MAILGUN_DOMAIN")),
		MailgunAPIKey:  strings.TrimSpace(os.Getenv("MAILGUN_API_KEY")),
		MailgunBaseURL: envOr("MAILGUN_BASE_URL", "https://api.mailgun.net"),
		MailFrom:       strings.TrimSpace(os.Getenv("MAIL_FROM")),
		NotifyTimezone: envOr("NOTIFY_TIMEZONE", "America/Sao_Paulo"),
	}

	cfg.DBMigrate = parseBool("DB_MIGRATE", true, &errs)
	cfg.JWTTTL = parseDuration("JWT_TTL", time.Hour, &errs)
	cfg.NotifySendTimeout = parseDuration("NOTIFY_SEND_TIMEOUT", 10*time.Second, &errs)
	cfg.ShutdownTimeout = parseDuration("SHUTDOWN_TIMEOUT", 15*time.Second, &errs)
	cfg.AuthRateLimitRPS = parseFloat("AUTH_RATE_LIMIT_RPS", 1, &errs)
	cfg.AuthRateLimitBurst = parseInt("AUTH_RATE_LIMIT_BURST", 5, &errs)

	if _, err := time.LoadLocation(cfg.NotifyTimezone); err != nil {
		errs = append(errs, fmt.Errorf("NOTIFY_TIMEZONE: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// MailgunConfigured indica si hay credenciales para enviar correo real.
func (c Config) MailgunConfigured() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != ""
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func parseBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid bool %q", key, v))
		return def
	}
	return b
}

func parseInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid positive int %q", key, v))
		return def
	}
	return n
}

func parseFloat(key string, def float64, errs *[]error) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid positive number %q", key, v))
		return def
	}
	return f
}
