package mailgun

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siam-adherence/internal/ports/notify"
)

func TestClient_Send_PostsMessageForm(t *testing.T) {
	var gotPath string
	var form map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		_, _ = w.Write([]byte(`{"id":"<1@mg>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Domain: "mg.example.com", APIKey: "key-xyz", Timeout: time.Second})
	require.NoError(t, err)
	require.True(t, c.IsConfigured())

	err = c.Send(context.Background(), notify.Message{
		To:      "a@x.com",
		Subject: "Dose esquecida: Losartana",
		Text:    "texto",
		HTML:    "<p>texto</p>",
		Tags:    map[string]string{"dispatch-id": "d-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v3/mg.example.com/messages", gotPath)
	assert.Equal(t, "a@x.com", form["to"])
	assert.Equal(t, "SIAM <mailgun@mg.example.com>", form["from"])
	assert.Equal(t, "Dose esquecida: Losartana", form["subject"])
	assert.Equal(t, "d-1", form["v:dispatch-id"])
}

func TestClient_Send_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Domain: "mg.example.com", APIKey: "k"})
	require.NoError(t, err)

	err = c.Send(context.Background(), notify.Message{To: "a@x.com"})
	assert.True(t, errors.Is(err, ErrMailgunUpstream), "got %v", err)
}

func TestClient_Send_NotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)

	assert.False(t, c.IsConfigured())
	assert.ErrorIs(t, c.Send(context.Background(), notify.Message{To: "a@x.com"}), ErrMailgunNotConfigured)
}
