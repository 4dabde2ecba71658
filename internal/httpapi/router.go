package httpapi

import (
	"net/http"
	"strings"

	"agrishop-be/internal/auth"
	"agrishop-be/internal/content"
	"agrishop-be/internal/logger"
	"agrishop-be/internal/metrics"
	"agrishop-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Tokens     middleware.TokenParser
	Limiter    *middleware.RateLimiter
	Metrics    *metrics.Metrics
	GraphQL    http.Handler
	CORSOrigin string
}

// strictRoutes are the POST endpoints an anonymous client can abuse.
var strictRoutes = map[string]bool{
	"/api/orders":      true,
	"/api/admin/login": true,
}

// RateTier picks the limiter tier for a request.
func RateTier(r *http.Request) middleware.Tier {
	if c, ok := auth.ClaimsFrom(r.Context()); ok && c.IsAdmin() {
		return middleware.TierAdmin
	}
	if r.Method == http.MethodPost && strictRoutes[strings.TrimSuffix(r.URL.Path, "/")] {
		return middleware.TierStrict
	}
	return middleware.TierGeneral
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/health", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	limit := func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}
	}

	aboutUs := contentHandler[*content.AboutUs]{svc: h.AboutUs, newEntry: content.AboutUsSchema.New}
	services := contentHandler[*content.ConsultingService]{svc: h.Services, newEntry: content.ServicesSchema.New}
	projects := contentHandler[*content.Project]{svc: h.Projects, newEntry: content.ProjectsSchema.New}

	r.Group(func(r chi.Router) {
		limit(r)

		r.Get("/api/products", h.ListProducts)
		r.Get("/api/products/{id}", h.GetProduct)
		r.Post("/api/orders", h.PlaceOrder)
		r.Post("/api/admin/login", h.Login)

		mountContentReads(r, aboutUs)
		mountContentReads(r, services)
		mountContentReads(r, projects)

		if cfg.GraphQL != nil {
			r.Method(http.MethodGet, "/graphql", cfg.GraphQL)
			r.Method(http.MethodPost, "/graphql", cfg.GraphQL)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.Tokens, writeError))
		limit(r)

		r.Post("/api/products", h.CreateProduct)
		r.Put("/api/products/{id}", h.UpdateProduct)
		r.Delete("/api/products/{id}", h.DeleteProduct)

		r.Get("/api/orders", h.ListOrders)
		r.Get("/api/orders/{id}", h.GetOrder)
		r.Patch("/api/orders/{id}/status", h.UpdateOrderStatus)

		mountContentWrites(r, aboutUs)
		mountContentWrites(r, services)
		mountContentWrites(r, projects)
	})

	return r
}
