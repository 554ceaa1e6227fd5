package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	additionsvc "github.com/amicofritto/orders-backend/internal/additions"
	discountsvc "github.com/amicofritto/orders-backend/internal/discounts"
	ordersvc "github.com/amicofritto/orders-backend/internal/orders"
	storesvc "github.com/amicofritto/orders-backend/internal/store"
	"github.com/amicofritto/orders-backend/pkg/config"
	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/ratelimit"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubOrders struct{}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "AF000001",
		CustomerName:  "Mario Rossi",
		CustomerPhone: "333 1234567",
		OrderType:     enums.OrderTypeTakeaway,
		Subtotal:      decimal.NewFromFloat(19),
		Total:         decimal.NewFromFloat(19),
		Status:        enums.OrderStatusPending,
	}
}

func (stubOrders) Create(ctx context.Context, input ordersvc.CreateOrderInput) (*models.Order, error) {
	return sampleOrder(), nil
}

func (stubOrders) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return sampleOrder(), nil
}

func (stubOrders) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return []models.Order{*sampleOrder()}, nil
}

func (stubOrders) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	order := sampleOrder()
	order.Status = status
	return order, nil
}

type stubAdditions struct{}

func (stubAdditions) ListActive(ctx context.Context) ([]models.Addition, error) { return nil, nil }

func (stubAdditions) ResolveRule(ctx context.Context, categoryID uuid.UUID, categorySlug string) (additionsvc.Rule, error) {
	return additionsvc.DefaultRule(), nil
}

func (stubAdditions) ValidateSelection(ctx context.Context, rule additionsvc.Rule, additionIDs []uuid.UUID) (*additionsvc.Selection, error) {
	return &additionsvc.Selection{}, nil
}

func (stubAdditions) SaveRule(ctx context.Context, categoryID uuid.UUID, mode enums.SauceMode, maxSauces int, saucePrice decimal.Decimal, active bool) (additionsvc.Rule, error) {
	return additionsvc.DefaultRule(), nil
}

type stubDiscounts struct{}

func (stubDiscounts) Verify(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*discountsvc.Outcome, error) {
	return &discountsvc.Outcome{Valid: false, Reason: discountsvc.ReasonNotFound}, nil
}

type stubStore struct{}

func (stubStore) Profile(ctx context.Context, now time.Time) (*storesvc.Profile, error) {
	return &storesvc.Profile{Name: "Amico Fritto", IsOpen: true}, nil
}

func (stubStore) Gate(ctx context.Context, now time.Time) (storesvc.Gate, error) {
	return storesvc.Gate{IsOpen: true}, nil
}

func (stubStore) DeliveryTerms(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.NewFromFloat(2.5), decimal.NewFromFloat(15), nil
}

type stubPush struct{}

func (stubPush) Register(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string, userAgent *string) error {
	return nil
}

func (stubPush) Unregister(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string) error {
	return nil
}

func (stubPush) NotifyAdmins(ctx context.Context, msg fcm.Message) error { return nil }

func (stubPush) NotifyOrder(ctx context.Context, orderNumber string, msg fcm.Message) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		RateLimit: config.RateLimitConfig{
			OrderWindow:    10 * time.Minute,
			OrderMax:       10,
			ReadWindow:     time.Minute,
			ReadMax:        60,
			PushWindow:     10 * time.Minute,
			PushMax:        30,
			DiscountWindow: 5 * time.Minute,
			DiscountMax:    30,
		},
		Admin: config.AdminConfig{JWTSecret: "test-secret"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), func(scope string) string {
		return "af:rate_limit:" + scope
	})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	return NewRouter(Deps{
		Config:    testConfig(),
		Logger:    logger.New(logger.Options{ServiceName: "routes-test"}),
		DB:        stubPinger{},
		Redis:     stubPinger{},
		Limiter:   limiter,
		Orders:    stubOrders{},
		Additions: stubAdditions{},
		Discounts: stubDiscounts{},
		Store:     stubStore{},
		Push:      stubPush{},
	})
}

func signTestAdminToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "staff",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestPublicOrderRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/AF000001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET order = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatalf("expected rate-limit headers on public routes")
	}
	if !strings.Contains(rec.Body.String(), "AF000001") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	body := strings.NewReader(`{"customer_name":"Mario","customer_phone":"333 1234567","order_type":"takeaway","items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST order = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated admin request = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signTestAdminToken(t, "test-secret"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated admin request = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestOrderCreationRateLimited(t *testing.T) {
	router := newTestRouter(t)

	var last int
	for i := 0; i < 11; i++ {
		body := strings.NewReader(`{"customer_name":"Mario","customer_phone":"333 1234567","order_type":"takeaway","items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("11th request = %d, want 429", last)
	}
}
