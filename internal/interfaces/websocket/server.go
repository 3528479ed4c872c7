package websocket

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest/middleware"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/view"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

// GraphSource yields the graph new views mount.
type GraphSource interface {
	Graph() *graph.Graph
}

// StoreProvider resolves a profile's position store.
type StoreProvider interface {
	ForProfile(profile string) (positions.Store, error)
}

// ServerConfig holds WebSocket server configuration
type ServerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	AllowedOrigins  []string
	MaxPerProfile   int
	DefaultSize     viewport.Size
	View            view.Options
}

// DefaultServerConfig returns default WebSocket server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		MaxPerProfile:   10,
		DefaultSize:     viewport.Size{Width: 1200, Height: 800},
		View:            view.DefaultOptions(),
	}
}

// Server upgrades requests and starts a live view per connection.
type Server struct {
	hub      *Hub
	graphs   GraphSource
	stores   StoreProvider
	config   ServerConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer creates a new WebSocket server
func NewServer(hub *Hub, graphs GraphSource, stores StoreProvider, config ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:    hub,
		graphs: graphs,
		stores: stores,
		config: config,
		logger: logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// ServeHTTP handles GET /ws?width=&height=
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFrom(r.Context())
	store, err := s.stores.ForProfile(profile)
	if err != nil {
		http.Error(w, "Invalid profile", http.StatusBadRequest)
		return
	}

	if s.config.MaxPerProfile > 0 && s.hub.ConnectionCount(profile) >= s.config.MaxPerProfile {
		s.logger.Warn("Connection limit exceeded for profile",
			zap.String("profile", profile),
			zap.Int("currentConnections", s.hub.ConnectionCount(profile)),
		)
		http.Error(w, "Connection limit exceeded", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection",
			zap.Error(err),
			zap.String("remoteAddr", r.RemoteAddr),
		)
		return
	}

	opts := s.config.View
	opts.Logger = s.logger.With(zap.String("profile", profile))
	v := view.New(s.graphs.Graph(), store, s.size(r), opts)

	client := NewClient(profile, s.hub, conn, v, s.logger)
	if !client.Start() {
		return
	}

	s.logger.Info("New WebSocket connection established",
		zap.String("profile", profile),
		zap.String("connectionID", client.ID()),
		zap.String("remoteAddr", r.RemoteAddr),
	)
}

func (s *Server) size(r *http.Request) viewport.Size {
	size := s.config.DefaultSize
	if w, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64); err == nil && w > 0 {
		size.Width = w
	}
	if h, err := strconv.ParseFloat(r.URL.Query().Get("height"), 64); err == nil && h > 0 {
		size.Height = h
	}
	return size
}

// checkOrigin accepts same-origin requests, requests without an Origin
// header and the configured origins. "*" accepts everything.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Hub returns the server's hub.
func (s *Server) Hub() *Hub { return s.hub }
