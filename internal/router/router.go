package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/multi-image-host/internal/api"
	"github.com/leca/multi-image-host/internal/config"
	"github.com/leca/multi-image-host/internal/handler"
	"github.com/leca/multi-image-host/internal/provider"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	Gateway handler.Dispatcher
	Config  *config.Config
	Router  chi.Router
}

// New creates a new Server with a fully configured chi router. A nil
// metricsHandler leaves /metrics unmounted.
func New(gw handler.Dispatcher, cfg *config.Config, metricsHandler http.Handler) *Server {
	s := &Server{Gateway: gw, Config: cfg}

	h := &handler.Handler{
		Gateway: gw,
		Config:  cfg,
	}

	r := chi.NewRouter()

	// CORS runs first so preflight OPTIONS requests short-circuit.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/providers", h.ListProviders)

		// The bare upload route predates provider selection and always
		// targets freeimage.host.
		r.With(api.FixedProvider(provider.FreeImage)).Post("/upload", h.Upload)
		r.With(api.ProviderMiddleware).Post("/upload/{provider}", h.Upload)
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("Health: failed to encode response", "error", err)
	}
}
