package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestPostForm_SendsBasicAuthAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "api" || pass != "key-1" {
			t.Errorf("unexpected basic auth %q %q %v", user, pass, ok)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content-type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("to") != "a@x.com" {
			t.Errorf("unexpected to %q", r.PostForm.Get("to"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<msg-1>","message":"Queued"}`))
	}))
	defer srv.Close()

	c, err := NewWithBaseURL(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.User, c.Password = "api", "key-1"

	var out struct {
		ID string `json:"id"`
	}
	if err := c.PostForm(context.Background(), "/v3/x/messages", url.Values{"to": {"a@x.com"}}, &out); err != nil {
		t.Fatalf("post form: %v", err)
	}
	if out.ID != "<msg-1>" {
		t.Fatalf("expected id decoded, got %q", out.ID)
	}
}

func TestPostForm_Non2xxReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(time.Second)
	err := c.PostForm(context.Background(), srv.URL+"/v3/x/messages", url.Values{}, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", httpErr.StatusCode)
	}
}

func TestResolveURL_RelativeNeedsBaseURL(t *testing.T) {
	c := New(0)
	if _, err := c.resolveURL("/v3/messages"); err == nil {
		t.Fatalf("expected error for relative url without BaseURL")
	}
	if _, err := NewWithBaseURL("::not a url", time.Second); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}
