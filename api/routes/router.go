package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amicofritto/orders-backend/api/controllers"
	"github.com/amicofritto/orders-backend/api/middleware"
	additionsvc "github.com/amicofritto/orders-backend/internal/additions"
	discountsvc "github.com/amicofritto/orders-backend/internal/discounts"
	ordersvc "github.com/amicofritto/orders-backend/internal/orders"
	pushsvc "github.com/amicofritto/orders-backend/internal/push"
	storesvc "github.com/amicofritto/orders-backend/internal/store"
	"github.com/amicofritto/orders-backend/pkg/config"
	"github.com/amicofritto/orders-backend/pkg/db"
	"github.com/amicofritto/orders-backend/pkg/enums"
	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/ratelimit"
	"github.com/amicofritto/orders-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     redis.Pinger
	Limiter   *ratelimit.Limiter
	Registry  *prometheus.Registry
	Orders    ordersvc.Service
	Additions additionsvc.Service
	Discounts discountsvc.Service
	Store     storesvc.Service
	Push      pushsvc.Service
}

// NewRouter assembles the public and staff HTTP surfaces.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	orderPolicy := ratelimit.Policy{Name: "order", Window: cfg.RateLimit.OrderWindow, Max: int64(cfg.RateLimit.OrderMax)}
	readPolicy := ratelimit.Policy{Name: "read", Window: cfg.RateLimit.ReadWindow, Max: int64(cfg.RateLimit.ReadMax)}
	pushPolicy := ratelimit.Policy{Name: "push", Window: cfg.RateLimit.PushWindow, Max: int64(cfg.RateLimit.PushMax)}
	discountPolicy := ratelimit.Policy{Name: "discount", Window: cfg.RateLimit.DiscountWindow, Max: int64(cfg.RateLimit.DiscountMax)}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(orderPolicy, deps.Limiter, logg)).
			Post("/orders", controllers.CreateOrder(deps.Orders, logg))
		r.With(middleware.RateLimit(readPolicy, deps.Limiter, logg)).
			Get("/orders/{orderNumber}", controllers.GetOrder(deps.Orders, logg))

		r.With(middleware.RateLimit(discountPolicy, deps.Limiter, logg)).
			Post("/discounts/verify", controllers.VerifyDiscount(deps.Discounts, logg))

		r.With(middleware.RateLimit(readPolicy, deps.Limiter, logg)).
			Get("/store", controllers.GetStore(deps.Store, logg))
		r.With(middleware.RateLimit(readPolicy, deps.Limiter, logg)).
			Get("/additions", controllers.ListAdditions(deps.Additions, logg))

		r.Route("/push", func(r chi.Router) {
			r.Use(middleware.RateLimit(pushPolicy, deps.Limiter, logg))
			r.Post("/register", controllers.RegisterPushToken(deps.Push, enums.PushAudienceCustomer, logg))
			r.Post("/unregister", controllers.UnregisterPushToken(deps.Push, enums.PushAudienceCustomer, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.Admin, logg))

		r.Get("/orders", controllers.AdminListOrders(deps.Orders, logg))
		r.Post("/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
		r.Put("/additions/rules", controllers.AdminSaveAdditionRule(deps.Additions, logg))

		r.Post("/push/register", controllers.RegisterPushToken(deps.Push, enums.PushAudienceAdmin, logg))
		r.Post("/push/unregister", controllers.UnregisterPushToken(deps.Push, enums.PushAudienceAdmin, logg))
	})

	return r
}
