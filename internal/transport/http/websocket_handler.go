package http

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"tankreport/internal/config"
	apierrors "tankreport/internal/errors"
	"tankreport/internal/middleware"
	"tankreport/internal/report"
	ws "tankreport/internal/websocket"
)

// WebSocketHandler upgrades /ws/dsd connections and answers district
// filter requests over them
type WebSocketHandler struct {
	hub            *ws.Hub
	service        ReportService
	allowedOrigins []string
	upgrader       websocket.Upgrader
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
}

// NewWebSocketHandler creates the handler. An empty allowedOrigins list
// accepts only same-origin requests.
func NewWebSocketHandler(hub *ws.Hub, service ReportService, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		service:        service,
		allowedOrigins: allowedOrigins,
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("component", "websocket_handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.WebSocketReadBufferSize,
		WriteBufferSize: config.WebSocketWriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			h.errorHandler.HandleError(w, r, apierrors.WebSocketUpgradeError(status, reason))
		},
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	if slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin) {
		return true
	}
	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin))
	return false
}

// ServeHTTP handles GET /ws/dsd
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the response
		return
	}

	client := h.hub.Serve(ws.NewConnectionWrapper(conn), middleware.GetRequestID(r.Context()), h.filter)
	if client == nil {
		h.logger.WarnContext(r.Context(), "WebSocket hub stopped, connection refused")
		return
	}
	h.logger.InfoContext(r.Context(), "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", middleware.GetRealIP(r)))
}

func (h *WebSocketHandler) filter(ctx context.Context, req ws.Request) (any, error) {
	table, err := h.service.FilterDSD(ctx, req.Districts)
	if err != nil {
		return nil, err
	}
	return report.SelectDSD(table), nil
}
