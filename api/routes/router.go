package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartforge/cartforge/api/controllers"
	cartcontrollers "github.com/cartforge/cartforge/api/controllers/cart"
	"github.com/cartforge/cartforge/api/middleware"
	"github.com/cartforge/cartforge/internal/cart"
	"github.com/cartforge/cartforge/internal/customers"
	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db"
	"github.com/cartforge/cartforge/pkg/logger"
	"github.com/cartforge/cartforge/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	customersRepo *customers.Repository,
	productsRepo *products.Repository,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	writePolicy := middleware.NewWriteRateLimitPolicy(
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteLimit,
	)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.WriteRateLimit(writePolicy, redisClient, logg))

		r.Get("/", cartcontrollers.FetchCart(cartService, logg))
		r.Get("/checkout/validate", cartcontrollers.ValidateCheckout(cartService, logg))
		r.Post("/items", cartcontrollers.AddItem(cartService, customersRepo, productsRepo, cfg.Cart, logg))
		r.Patch("/items/{itemId}", cartcontrollers.UpdateItemQuantity(cartService, logg))
		r.Post("/items/{itemId}/copy", cartcontrollers.CopyItem(cartService, logg))
		r.Delete("/items/{itemId}", cartcontrollers.DeleteItem(cartService, logg))
		r.Delete("/items", cartcontrollers.DeleteItems(cartService, logg))
		r.Post("/migrate", cartcontrollers.Migrate(cartService, logg))
	})

	return r
}
