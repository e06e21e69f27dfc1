package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkbeefcake/clinic-scheduler/internal/http/handlers"
	httpmiddleware "github.com/mkbeefcake/clinic-scheduler/internal/http/middleware"
	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	AppointmentHandler *handlers.AppointmentHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.AppointmentHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Webhook surface called by the voice/SMS front-end.
	r.Post("/book", cfg.AppointmentHandler.Book)
	r.Post("/cancel", cfg.AppointmentHandler.Cancel)
	r.Post("/reschedule", cfg.AppointmentHandler.Reschedule)
	r.Get("/find_existing", cfg.AppointmentHandler.FindExisting)
	r.Get("/get_available", cfg.AppointmentHandler.GetAvailable)

	return r
}
