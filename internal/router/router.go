package router

import (
	"net/http"

	"micebot/internal/handler"
	"micebot/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Options holds the router dependencies besides the handlers.
type Options struct {
	WebhookSecret string
	Gatherer      prometheus.Gatherer
	HTTPMetrics   *middleware.HTTPMetrics
	Tracer        trace.Tracer
	Logger        zerolog.Logger
}

// New creates a new HTTP router with all routes and middleware configured.
func New(messageHandler *handler.MessageHandler, opts Options) http.Handler {
	r := chi.NewRouter()

	// Applied in order: Recovery -> Logging -> RequestID -> RealIP -> Metrics -> Tracing -> SecretAuth
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if opts.HTTPMetrics != nil {
		r.Use(middleware.Metrics(opts.HTTPMetrics))
	}
	if opts.Tracer != nil {
		r.Use(middleware.Tracing(opts.Tracer))
	}
	r.Use(middleware.SecretAuth(opts.WebhookSecret, opts.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/api/messages", messageHandler.Handle)

	return r
}
