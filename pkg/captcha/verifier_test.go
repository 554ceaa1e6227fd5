package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amicofritto/orders-backend/pkg/config"
)

func TestVerifyAcceptsValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("secret") != "shh" {
			t.Errorf("unexpected secret %q", r.Form.Get("secret"))
		}
		if r.Form.Get("response") != "challenge-token" {
			t.Errorf("unexpected response %q", r.Form.Get("response"))
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	verifier := NewVerifier(config.CaptchaConfig{Secret: "shh", VerifyURL: srv.URL, Timeout: time.Second})
	res, err := verifier.Verify(context.Background(), "challenge-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success")
	}
}

func TestVerifyReportsProviderErrorCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	verifier := NewVerifier(config.CaptchaConfig{Secret: "shh", VerifyURL: srv.URL, Timeout: time.Second})
	res, err := verifier.Verify(context.Background(), "bad-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure")
	}
	if len(res.ErrorCodes) != 1 || res.ErrorCodes[0] != "invalid-input-response" {
		t.Fatalf("unexpected error codes %v", res.ErrorCodes)
	}
}

func TestVerifyMissingTokenFailsWithoutProviderCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	verifier := NewVerifier(config.CaptchaConfig{Secret: "shh", VerifyURL: srv.URL, Timeout: time.Second})
	res, err := verifier.Verify(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatalf("blank token must fail")
	}
	if called {
		t.Fatalf("provider should not be called for a blank token")
	}
}

func TestVerifyDisabledAcceptsEverything(t *testing.T) {
	verifier := NewVerifier(config.CaptchaConfig{})
	res, err := verifier.Verify(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("disabled verifier must accept tokens")
	}
}

func TestVerifyProviderOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	verifier := NewVerifier(config.CaptchaConfig{Secret: "shh", VerifyURL: srv.URL, Timeout: time.Second})
	if _, err := verifier.Verify(context.Background(), "token"); err == nil {
		t.Fatalf("expected error on provider outage")
	}
}
