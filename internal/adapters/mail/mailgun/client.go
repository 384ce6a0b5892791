package mailgun

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"siam-adherence/internal/platform/httpclient"
	"siam-adherence/internal/ports/notify"
)

var (
	ErrMailgunNotConfigured = errors.New("mailgun client not configured")
	ErrMailgunUpstream      = errors.New("mailgun upstream error")
)

const DefaultBaseURL = "https://api.mailgun.net"

// Config del cliente Mailgun.
// Domain y APIKey normalmente vienen de env vars (MAILGUN_DOMAIN / MAILGUN_API_KEY).
type Config struct {
	BaseURL string
	Domain  string
	APIKey  string
	From    string

	// Timeout HTTP de respaldo; el timeout real por envío lo pone el ctx del notifier.
	Timeout time.Duration
}

// Client implementa notify.Mailer usando la API HTTP de Mailgun (v3 messages).
type Client struct {
	http   *httpclient.Client
	domain string
	from   string
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	hc.User = "api"
	hc.Password = strings.TrimSpace(cfg.APIKey)

	domain := strings.TrimSpace(cfg.Domain)
	from := strings.TrimSpace(cfg.From)
	if from == "" && domain != "" {
		from = "SIAM <mailgun@" + domain + ">"
	}

	return &Client{
		http:   hc,
		domain: domain,
		from:   from,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.domain != "" && c.http.Password != ""
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (c *Client) Send(ctx context.Context, msg notify.Message) error {
	if !c.IsConfigured() {
		return ErrMailgunNotConfigured
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("mailgun: recipient required")
	}

	form := url.Values{}
	form.Set("from", c.from)
	form.Set("to", to)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	if msg.HTML != "" {
		form.Set("html", msg.HTML)
	}
	for k, v := range msg.Tags {
		form.Set("v:"+k, v)
	}

	var out sendResponse
	path := "/v3/" + url.PathEscape(c.domain) + "/messages"
	if err := c.http.PostForm(ctx, path, form, &out); err != nil {
		return fmt.Errorf("%w: %v", ErrMailgunUpstream, err)
	}
	return nil
}
