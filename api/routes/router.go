package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mdfakih/inventory-backend/api/controllers"
	"github.com/mdfakih/inventory-backend/api/middleware"
	"github.com/mdfakih/inventory-backend/internal/designs"
	"github.com/mdfakih/inventory-backend/internal/entries"
	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/internal/orders"
	"github.com/mdfakih/inventory-backend/pkg/config"
	"github.com/mdfakih/inventory-backend/pkg/db"
	"github.com/mdfakih/inventory-backend/pkg/logger"
	"github.com/mdfakih/inventory-backend/pkg/redis"
)

type Services struct {
	Designs   designs.Service
	Inventory inventory.Service
	Entries   entries.Service
	Orders    orders.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(dbP, redisClient)))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/orders", controllers.OrderCreate(svcs.Orders, logg))
		r.Get("/orders", controllers.OrderList(svcs.Orders, logg))
		r.Get("/orders/{orderId}", controllers.OrderGet(svcs.Orders, logg))
		r.Patch("/orders/{orderId}", controllers.OrderUpdate(svcs.Orders, logg))
		r.Put("/orders/{orderId}/weight", controllers.OrderRecordFinalWeight(svcs.Orders, logg))
		r.Post("/orders/{orderId}/finalize", controllers.OrderFinalize(svcs.Orders, logg))
		r.Post("/orders/{orderId}/complete", controllers.OrderComplete(svcs.Orders, logg))
		r.Post("/orders/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
		r.Get("/orders/{orderId}/audits", controllers.OrderAudits(svcs.Orders, logg))

		r.Post("/inventory/entries", controllers.EntryRecord(svcs.Entries, logg))
		r.Get("/inventory/entries", controllers.EntryList(svcs.Entries, logg))
		r.Get("/inventory/entries/{entryId}", controllers.EntryGet(svcs.Entries, logg))
		r.Get("/inventory/{kind}", controllers.InventoryStock(svcs.Inventory, logg))
		r.Put("/inventory/{kind}", controllers.InventoryCorrect(svcs.Inventory, logg))

		r.Post("/designs", controllers.DesignCreate(svcs.Designs, logg))
		r.Get("/designs", controllers.DesignList(svcs.Designs, logg))
		r.Get("/designs/{designId}", controllers.DesignGet(svcs.Designs, logg))
	})

	return r
}

func readinessDeps(dbP db.Pinger, redisClient *redis.Client) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	return deps
}
