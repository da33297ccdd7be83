package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-api/handlers"
	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-api/middleware"
	"github.com/cswnn/Capstone-Homefix2/internal/config"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// Services are the components the handlers call into.
type Services struct {
	Classifier  handlers.ImageClassifier
	Solver      handlers.Solver
	Chatter     handlers.Chatter
	Recommender handlers.Recommender
	Audit       handlers.Auditor
}

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Observability.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	if cfg.Session.Anonymous == "generate" {
		r.Use(middleware.AnonymousSession)
	}
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}

	health := handlers.NewHealthHandler(svc.Classifier)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	if cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	serverInfo := handlers.NewServerInfoHandler(cfg.Server.Port)
	analyze := handlers.NewAnalyzeHandler(logger, svc.Classifier, svc.Solver, svc.Audit)
	chat := handlers.NewChatHandler(logger, svc.Chatter, svc.Audit)
	recommend := handlers.NewRecommendHandler(logger, svc.Recommender, svc.Audit)

	// Paths keep their trailing slash; the bare form is accepted too.
	route := func(method, path string, h http.HandlerFunc) {
		r.Method(method, path, h)
		r.Method(method, path[:len(path)-1], h)
	}
	route(http.MethodGet, "/server-info/", serverInfo.Get)
	route(http.MethodPost, "/analyze/", analyze.Analyze)
	route(http.MethodPost, "/chat/", chat.Chat)
	route(http.MethodDelete, "/chat/session/", chat.EndSession)
	route(http.MethodPost, "/recommend/", recommend.Recommend)

	return r
}
