package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoJSON_DecodesAndReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u-1"}`))
	}))
	defer srv.Close()

	c, err := NewWithBaseURL(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewWithBaseURL: %v", err)
	}

	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.DoJSON(context.Background(), http.MethodPost, "/ok", nil, map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out.UserID != "u-1" {
		t.Fatalf("expected u-1, got %q", out.UserID)
	}

	err = c.DoJSON(context.Background(), http.MethodGet, "bad", nil, nil, nil)
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected HTTPError 401, got %v", err)
	}
}

func TestDoJSON_RelativePathWithoutBaseURL(t *testing.T) {
	c := New(0)
	if err := c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil); err == nil {
		t.Fatalf("expected error for relative path without BaseURL")
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewWithBaseURL(srv.URL, time.Second)
	c.WithBreaker(BreakerConfig{Name: "test", ConsecutiveFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_ = c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil, nil)
	}
	if c.BreakerState() != "open" {
		t.Fatalf("expected open breaker, got %q", c.BreakerState())
	}

	err := c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil, nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected upstream hit twice, got %d", calls.Load())
	}
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := NewWithBaseURL(srv.URL, time.Second)
	c.WithBreaker(BreakerConfig{Name: "test", ConsecutiveFailures: 1})

	for i := 0; i < 3; i++ {
		_ = c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil, nil)
	}
	if c.BreakerState() != "closed" {
		t.Fatalf("expected closed breaker, got %q", c.BreakerState())
	}
}
