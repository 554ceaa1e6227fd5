package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amicofritto/orders-backend/pkg/config"
)

func signAdminToken(t *testing.T, secret, issuer, subject string, expiry time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": expiry.Unix(),
		"iat": time.Now().Add(-time.Minute).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAdminAuth_AcceptsValidToken(t *testing.T) {
	cfg := config.AdminConfig{JWTSecret: "secret", JWTIssuer: "amicofritto"}
	var gotSubject string
	handler := AdminAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = AdminSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := signAdminToken(t, "secret", "amicofritto", "staff-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSubject != "staff-1" {
		t.Fatalf("expected subject in context, got %q", gotSubject)
	}
}

func TestAdminAuth_RejectsMissingHeader(t *testing.T) {
	cfg := config.AdminConfig{JWTSecret: "secret"}
	handler := AdminAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/1/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminAuth_RejectsWrongSecret(t *testing.T) {
	cfg := config.AdminConfig{JWTSecret: "secret"}
	handler := AdminAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	token := signAdminToken(t, "other-secret", "", "staff-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminAuth_RejectsExpiredToken(t *testing.T) {
	cfg := config.AdminConfig{JWTSecret: "secret"}
	handler := AdminAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	token := signAdminToken(t, "secret", "", "staff-1", time.Now().Add(-time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminAuth_RejectsWrongIssuer(t *testing.T) {
	cfg := config.AdminConfig{JWTSecret: "secret", JWTIssuer: "amicofritto"}
	handler := AdminAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	token := signAdminToken(t, "secret", "someone-else", "staff-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
