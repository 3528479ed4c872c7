package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
	"github.com/g-s-k-zoro/gsk-man-page/internal/contact"
	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/websocket"
	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/scene"
	"github.com/g-s-k-zoro/gsk-man-page/internal/search"
	"github.com/g-s-k-zoro/gsk-man-page/internal/site"
	"github.com/g-s-k-zoro/gsk-man-page/internal/view"
	"github.com/g-s-k-zoro/gsk-man-page/internal/visitor"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Environment, cfg.LogLevel)
}

// ProvideCollector creates the Prometheus collector. It exists even when
// metrics are disabled so recorders never need a nil check; only the
// /metrics route is conditional.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideTracing installs the global tracer provider.
func ProvideTracing(ctx context.Context, cfg *config.Config) (observability.ShutdownFunc, error) {
	return observability.InitTracing(ctx, cfg.Tracing)
}

// ProvideGraphLoader creates the definition loader
func ProvideGraphLoader(logger *zap.Logger) *graph.Loader {
	return graph.NewLoader(logger)
}

// ProvideSite loads the graph definition. A missing or unparseable file is
// fatal; content problems inside it are only counted.
func ProvideSite(cfg *config.Config, loader *graph.Loader, collector *observability.Collector, logger *zap.Logger) (*site.Site, error) {
	g, issues, err := loader.LoadFile(cfg.Graph.DefinitionPath)
	if err != nil {
		return nil, err
	}
	collector.RecordConfigErrors(len(issues))

	opts := site.DefaultOptions()
	opts.Layout = cfg.Layout
	opts.Labels = cfg.Render.Labels
	opts.Viewport = cfg.Viewport
	opts.Visual = cfg.Render.Visual
	opts.Measurer = scene.DefaultMeasurer()
	return site.New(g, issues, opts, logger), nil
}

// ProvideSearch indexes the site content and keeps the index in step with
// graph reloads.
func ProvideSearch(cfg *config.Config, s *site.Site, logger *zap.Logger) (*search.Service, error) {
	content, err := search.LoadContent(cfg.Search.ContentPath)
	if err != nil {
		return nil, err
	}
	svc := search.NewService(content, s.Graph(), cfg.Search.Limit, logger)
	s.OnReplace(svc.Rebuild)
	return svc, nil
}

// ProvideVisitorCounter creates the visitor counter
func ProvideVisitorCounter(cfg *config.Config, collector *observability.Collector, logger *zap.Logger) *visitor.Counter {
	return visitor.NewCounter(cfg.Visitor, nil, logger, visitor.WithResultHook(collector.RecordVisitorFetch))
}

// ProvideContactSender creates the contact form sender
func ProvideContactSender(cfg *config.Config, logger *zap.Logger) *contact.Sender {
	return contact.NewSender(cfg.Contact, nil, logger)
}

// ProvidePositionDirectory creates the per-profile position stores
func ProvidePositionDirectory(cfg *config.Config, logger *zap.Logger) (*positions.Directory, error) {
	return positions.NewDirectory(cfg.Positions.Directory, logger)
}

// ProvideHub creates the session hub and forwards graph reloads to it.
func ProvideHub(s *site.Site, collector *observability.Collector, logger *zap.Logger) *websocket.Hub {
	hub := websocket.NewHub(collector, logger)
	s.OnReplace(hub.Reload)
	return hub
}

// ProvideSessionServer creates the live view endpoint
func ProvideSessionServer(
	cfg *config.Config,
	hub *websocket.Hub,
	s *site.Site,
	dir *positions.Directory,
	collector *observability.Collector,
	logger *zap.Logger,
) *websocket.Server {
	wsCfg := websocket.DefaultServerConfig()
	wsCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	wsCfg.View = view.Options{
		Layout:        cfg.Layout,
		Interaction:   cfg.Interaction,
		Viewport:      cfg.Viewport,
		Labels:        cfg.Render.Labels,
		Measurer:      scene.DefaultMeasurer(),
		FrameInterval: cfg.Render.FrameInterval(),
		Recorder:      collector,
	}
	return websocket.NewServer(hub, s, dir, wsCfg, logger)
}

// ProvideDefinitionWatcher watches the definition file when enabled, or
// returns nil.
func ProvideDefinitionWatcher(
	cfg *config.Config,
	s *site.Site,
	loader *graph.Loader,
	collector *observability.Collector,
	logger *zap.Logger,
) *config.DefinitionWatcher {
	if !cfg.Graph.Watch {
		return nil
	}
	w := config.NewDefinitionWatcher(cfg.Graph.DefinitionPath, s.Graph(), loader, logger)
	w.OnChange(func(g *graph.Graph, issues []error) {
		collector.RecordConfigErrors(len(issues))
		s.Replace(g, issues)
	})
	return w
}

// ProvideRouter builds the HTTP handler
func ProvideRouter(
	cfg *config.Config,
	s *site.Site,
	dir *positions.Directory,
	searchSvc *search.Service,
	visitors *visitor.Counter,
	sender *contact.Sender,
	collector *observability.Collector,
	sessions *websocket.Server,
	logger *zap.Logger,
) http.Handler {
	var metrics *observability.Collector
	if cfg.Metrics.Enabled {
		metrics = collector
	}
	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}
	return rest.NewRouter(s, dir, searchSvc, visitors, sender, metrics, sessions, rest.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		SecureCookies:    cfg.IsProduction(),
		ServiceName:      serviceName,
		ContactPerMinute: cfg.Contact.PerMinute,
	}, logger).Setup()
}

// ProvideHTTPServer creates the HTTP server
func ProvideHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
