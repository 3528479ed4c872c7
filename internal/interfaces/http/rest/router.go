// Package rest wires the HTTP surface of the portfolio server.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest/handlers"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest/middleware"
	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/api"
)

// Options are the router's knobs that do not come from a dependency.
type Options struct {
	AllowedOrigins   []string
	SecureCookies    bool
	ServiceName      string
	ContactPerMinute int
}

// Router creates and configures the HTTP router
type Router struct {
	site      handlers.GraphService
	stores    handlers.StoreProvider
	search    handlers.Searcher
	visitors  handlers.VisitorCounter
	contact   handlers.ContactSender
	collector *observability.Collector
	sessions  http.Handler
	opts      Options
	logger    *zap.Logger
}

// NewRouter creates a new router instance. collector and sessions may be
// nil, which leaves /metrics and /ws unmounted.
func NewRouter(
	site handlers.GraphService,
	stores handlers.StoreProvider,
	search handlers.Searcher,
	visitors handlers.VisitorCounter,
	contact handlers.ContactSender,
	collector *observability.Collector,
	sessions http.Handler,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		site:      site,
		stores:    stores,
		search:    search,
		visitors:  visitors,
		contact:   contact,
		collector: collector,
		sessions:  sessions,
		opts:      opts,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(observability.RequestLogger(rt.logger))
	if rt.collector != nil {
		router.Use(observability.MetricsMiddleware(rt.collector))
	}
	if rt.opts.ServiceName != "" {
		router.Use(observability.TracingMiddleware(rt.opts.ServiceName))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", rt.collector.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Profile(rt.opts.SecureCookies))

		if rt.sessions != nil {
			r.Method(http.MethodGet, "/ws", rt.sessions)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/graph", func(r chi.Router) {
				graphHandler := handlers.NewGraphHandler(rt.site, rt.stores, rt.logger)
				r.Get("/", graphHandler.GetGraph)
				r.Get("/nodes/{nodeID}", graphHandler.GetNode)
				r.Get("/layout", graphHandler.GetLayout)
				r.Get("/scene.svg", graphHandler.GetSceneSVG)
			})

			r.Route("/positions", func(r chi.Router) {
				positionHandler := handlers.NewPositionHandler(rt.site, rt.stores, rt.logger)
				r.Get("/", positionHandler.ListPositions)
				r.Put("/{nodeID}", positionHandler.SavePosition)
			})

			collaborator := handlers.NewCollaboratorHandler(rt.search, rt.visitors, rt.contact, rt.logger)
			r.Get("/search", collaborator.Search)
			r.Get("/visitors", collaborator.Visitors)
			if rt.opts.ContactPerMinute > 0 {
				limiter := middleware.NewSlidingWindowLimiter(rt.opts.ContactPerMinute, time.Minute)
				r.With(middleware.RateLimit(limiter)).Post("/contact", collaborator.Contact)
			} else {
				r.Post("/contact", collaborator.Contact)
			}
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once a graph with at least one node is loaded.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if g := rt.site.Graph(); g == nil || g.Len() == 0 {
		api.Success(w, http.StatusServiceUnavailable, map[string]string{"status": "no graph loaded"})
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}
