package websocket

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/view"
)

// Sessions counts live views.
type Sessions interface {
	SessionStarted()
	SessionEnded()
}

type nopSessions struct{}

func (nopSessions) SessionStarted() {}
func (nopSessions) SessionEnded()   {}

// Hub tracks live connections per profile and fans graph reloads out to them.
type Hub struct {
	connections map[string]map[*Client]bool // profile -> set of clients
	mu          sync.RWMutex

	unregister chan *Client
	reload     chan *graph.Graph

	ctx      context.Context
	cancel   context.CancelFunc
	running  atomic.Bool
	done     chan struct{}
	sessions Sessions
	logger   *zap.Logger
}

// NewHub creates a new hub. sessions may be nil.
func NewHub(sessions Sessions, logger *zap.Logger) *Hub {
	if sessions == nil {
		sessions = nopSessions{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		connections: make(map[string]map[*Client]bool),
		unregister:  make(chan *Client, 100),
		reload:      make(chan *graph.Graph, 1),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		sessions:    sessions,
		logger:      logger,
	}
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	h.running.Store(true)
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllConnections()
			return

		case client := <-h.unregister:
			h.unregisterClient(client)

		case g := <-h.reload:
			h.broadcastReload(g)
		}
	}
}

// Stop closes every connection and waits for a running Run to return.
func (h *Hub) Stop() {
	h.cancel()
	if h.running.Load() {
		<-h.done
	}
}

// Reload queues g for every live view. Only the newest pending graph is kept.
func (h *Hub) Reload(g *graph.Graph) {
	for {
		select {
		case h.reload <- g:
			return
		default:
		}
		select {
		case <-h.reload:
		default:
		}
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// join adds a client unless the hub has stopped.
func (h *Hub) join(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return false
	}
	if h.connections[client.profile] == nil {
		h.connections[client.profile] = make(map[*Client]bool)
	}
	h.connections[client.profile][client] = true
	h.sessions.SessionStarted()

	h.logger.Info("Client registered",
		zap.String("profile", client.profile),
		zap.String("connectionID", client.id),
		zap.Int("profileConnections", len(h.connections[client.profile])),
	)
	return true
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.connections[client.profile]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.connections, client.profile)
	}
	h.sessions.SessionEnded()

	h.logger.Info("Client unregistered",
		zap.String("profile", client.profile),
		zap.String("connectionID", client.id),
		zap.Int("remainingConnections", len(clients)),
	)
}

func (h *Hub) broadcastReload(g *graph.Graph) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, clients := range h.connections {
		for client := range clients {
			if client.offer(view.Input{Reload: g}) {
				delivered++
				continue
			}
			dropped++
			h.logger.Warn("Reload not delivered, view inbox full",
				zap.String("connectionID", client.id),
			)
		}
	}
	h.logger.Info("Graph reload broadcast",
		zap.Int("nodes", g.Len()),
		zap.Int("delivered", delivered),
		zap.Int("dropped", dropped),
	)
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for profile, clients := range h.connections {
		for client := range clients {
			client.cancel()
			client.conn.Close()
			h.sessions.SessionEnded()
		}
		delete(h.connections, profile)
	}
}

// ConnectionCount returns the number of live connections for a profile.
func (h *Hub) ConnectionCount(profile string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[profile])
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.connections {
		n += len(clients)
	}
	return n
}
