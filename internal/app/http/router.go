package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"valour-interiors/quotes_backend/internal/app/http/handlers"
	"valour-interiors/quotes_backend/internal/app/http/middleware"
	"valour-interiors/quotes_backend/internal/app/metrics"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

type RouterDeps struct {
	Handlers    *handlers.Handlers
	Verifier    middleware.TokenVerifier
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Log         *logger.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(d.Log))
	r.Use(middleware.Logging(d.Log))
	r.Use(middleware.Recoverer(d.Log))
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Metrics(d.Metrics))

	h := d.Handlers

	r.Get("/health", h.Health)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Verifier, d.Log))

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", h.ListQuotes)
				r.Post("/", h.CreateQuote)
				r.Get("/next-number", h.NextNumber)
				r.Get("/items", h.Items)
				r.Get("/stats", h.Stats)
				r.Get("/export.xlsx", h.ExportXLSX)
				r.Post("/export", h.Export)

				r.Get("/{id}", h.GetQuote)
				r.Put("/{id}", h.ReplaceQuote)
				r.Patch("/{id}/status", h.UpdateStatus)
				r.Delete("/{id}", h.DeleteQuote)
				r.Get("/{id}/pdf", h.QuotePDF)
			})
		})
	})

	return r
}
