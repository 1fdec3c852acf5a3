package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/adapter/metrics"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type Services struct {
	Catalog   interfaces.CatalogService
	Nutrition interfaces.NutritionService
	Plates    interfaces.PlateService
	Orders    interfaces.OrderService
	Users     interfaces.UserService
}

type RouterConfig struct {
	AllowedOrigins    []string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
	Version           string

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// RateLimiter is built from RequestsPerSecond and Burst when nil.
	RateLimiter *RateLimiter
}

const defaultRequestTimeout = 60 * time.Second

func NewRouter(svc Services, m *metrics.Metrics, log logger.Logger, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Nutrition, log)
	plateHandler := NewPlateHandler(svc.Plates, log)
	orderHandler := NewOrderHandler(svc.Orders, log)
	userHandler := NewUserHandler(svc.Users, log)
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, log)
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(chimw.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(LoggingMiddleware(log))
	r.Use(RecoveryMiddleware(log))
	r.Use(m.InstrumentHandler)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", chimw.RequestIDHeader},
		ExposedHeaders:   []string{chimw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Not found", http.StatusNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed, nil)
	})

	r.Get("/health", healthHandler(cfg.Version))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/ingredients", catalogHandler.ListIngredients)
		r.Get("/ingredients/{type}", catalogHandler.ListIngredientsByType)
		r.With(limiter.Handler).Post("/nutrition/preview", catalogHandler.PreviewNutrition)

		r.With(limiter.Handler).Post("/plates", plateHandler.CreatePlate)
		r.Get("/plate/{id}", plateHandler.GetPlate)
		r.Get("/plates/{userId}", plateHandler.ListUserPlates)
		r.Get("/plates/{userId}/favorites", plateHandler.ListUserFavorites)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.With(limiter.Handler).Post("/", orderHandler.CreateOrder)
			r.Get("/stats", orderHandler.GetOrderStats)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Get("/{id}/history", orderHandler.GetOrderHistory)
			r.With(limiter.Handler).Patch("/{id}/status", orderHandler.UpdateOrderStatus)
		})

		r.With(limiter.Handler).Post("/users", userHandler.Register)
	})

	return r
}
