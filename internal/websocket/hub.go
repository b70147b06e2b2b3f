package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tankreport/internal/infrastructure"
)

// Hub maintains the set of active clients
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	metrics *Metrics
	logger  *slog.Logger

	quit     chan struct{}
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

// NewHub creates a hub. metrics may be nil.
func NewHub(metrics *Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("Hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.connected(ctx)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			client.Send(newResponse(TypeConnection, "", map[string]any{
				"status":    "connected",
				"client_id": client.id,
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				client.close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				ctx := client.context()
				h.metrics.disconnected(ctx, time.Since(client.connectedAt))
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id))
			}
		}
	}
}

// Serve registers a client for conn and starts its pumps. The hub must be
// running; Serve returns nil once it has stopped.
func (h *Hub) Serve(conn Connection, traceID string, handler RequestHandler) *Client {
	client := NewClient(h, conn, traceID, handler, h.logger)
	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()
	return client
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop notifies every client, closes the connections and ends the loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
	})

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if running {
		<-h.done
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := context.Background()
	for client := range h.clients {
		client.Send(newResponse(TypeShutdown, "", nil))
		client.close()
		delete(h.clients, client)
		h.metrics.disconnected(ctx, time.Since(client.connectedAt))
	}
}
