package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/vitalscope/vitalscope/internal/analyzer"
	"github.com/vitalscope/vitalscope/internal/auth"
	"github.com/vitalscope/vitalscope/pkg/plugin"
	"github.com/vitalscope/vitalscope/pkg/vitals"
	"go.uber.org/zap"
)

// Handler provides the WebSocket endpoint for the live alert feed.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenService
	bus    plugin.EventBus
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to detection events.
func NewHandler(tokens *auth.TokenService, bus plugin.EventBus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		tokens: tokens,
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/alerts", h.handleAlertStream)
}

// ClientCount returns the number of connected clients.
func (h *Handler) ClientCount() int {
	return h.hub.ClientCount()
}

// handleAlertStream upgrades the connection to WebSocket and streams
// detection alerts.
func (h *Handler) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	// Validate JWT from query parameter (browser WS API doesn't support headers).
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Allow any origin since we validate via JWT token.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		userID: claims.Subject,
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards analyzer detection events to all connected
// WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(analyzer.TopicAnomalyDetected, func(_ context.Context, event plugin.Event) {
		result, ok := event.Payload.(*vitals.AnomalyResult)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAnomaly,
			Metric:    result.Metric,
			Timestamp: event.Timestamp,
			Data:      AnomalyData{Result: result},
		})
	})

	h.bus.Subscribe(analyzer.TopicRegressionDetected, func(_ context.Context, event plugin.Event) {
		alert, ok := event.Payload.(*vitals.RegressionAlert)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageRegression,
			Metric:    alert.Metric,
			Timestamp: event.Timestamp,
			Data:      RegressionData{Alert: alert},
		})
	})

	h.logger.Info("subscribed to analyzer events for WebSocket broadcasting")
}
