package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BanSimplified567/isladelcafe2025-sub000/api/controllers"
	ordercontrollers "github.com/BanSimplified567/isladelcafe2025-sub000/api/controllers/orders"
	"github.com/BanSimplified567/isladelcafe2025-sub000/api/middleware"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/orders"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/redis"
)

// NewRouter wires the HTTP surface. Routes are registered with full paths
// inside groups so the idempotency middleware sees complete route patterns.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	ordersSvc orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var idempotencyStore redis.IdempotencyStore
	deps := map[string]controllers.Pinger{"database": dbP}
	if redisClient != nil {
		idempotencyStore = redisClient
		deps["redis"] = redisClient
	}

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, deps))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))
		r.Post("/api/v1/orders", ordercontrollers.Create(ordersSvc, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/api/v1/orders/{orderId}", ordercontrollers.Get(ordersSvc, logg))
		r.Get("/api/v1/orders/{orderId}/history", ordercontrollers.History(ordersSvc, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleStaff, enums.UserRoleAdmin))
		r.Get("/api/v1/admin/orders", ordercontrollers.List(ordersSvc, logg))
		r.Patch("/api/v1/admin/orders/{orderId}/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(idempotencyStore, logg))
		r.Delete("/api/v1/admin/orders/{orderId}", ordercontrollers.Delete(ordersSvc, logg))
		r.Post("/api/v1/admin/orders/sweep", ordercontrollers.Sweep(ordersSvc, logg))
	})

	return r
}
