// internal/handler/websocket_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsWriteWait  = 10 * time.Second
)

// WebSocketHandler streams state snapshots and device events
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	poller      *service.StatusPoller
	eventBus    *EventBus
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	poller *service.StatusPoller,
	eventBus *EventBus,
	allowedOrigins []string,
	logger *zap.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		connections: NewConnectionManager(),
		poller:      poller,
		eventBus:    eventBus,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/state", h.HandleStateConnection)
	router.GET("/events", h.HandleEventConnection)
}

// Run forwards bus events to clients until ctx is done
func (h *WebSocketHandler) Run(ctx context.Context) {
	events, unsubscribe := h.eventBus.Subscribe()
	defer unsubscribe()
	defer h.connections.CloseAll()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.BroadcastEvent(event)
		}
	}
}

// HandleStateConnection streams state snapshots
// @Summary State stream
// @Description WebSocket stream of processor state snapshots, starting with the latest one
// @Tags WebSocket
// @Router /ws/state [get]
func (h *WebSocketHandler) HandleStateConnection(c *gin.Context) {
	client := h.accept(c, ClientTypeState)
	if client == nil {
		return
	}

	if snap := h.poller.Latest(); snap != nil {
		h.sendMessage(client, &WebSocketMessage{
			Type:      "state",
			Data:      snap,
			Timestamp: time.Now(),
		})
	}
}

// HandleEventConnection streams every device event
// @Summary Event stream
// @Description WebSocket stream of connection, operation and state events
// @Tags WebSocket
// @Router /ws/events [get]
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	h.accept(c, ClientTypeEvents)
}

func (h *WebSocketHandler) accept(c *gin.Context, clientType string) *Client {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return nil
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Type:        clientType,
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.ClientIP(),
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("type", clientType),
	)

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
	return client
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
		h.logger.Info("WebSocket client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadLimit(4096)
	client.Connection.SetReadDeadline(time.Now().Add(wsPongWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			break
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.sendError(client, "invalid message")
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleClientMessage handles incoming client messages
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	case "get_state":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "state",
			Data:      h.poller.Latest(),
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	default:
		h.logger.Warn("Unknown message type",
			zap.String("type", message.Type),
			zap.String("client_id", client.ID),
		)
		h.sendError(client, "unknown message type: "+message.Type)
	}
}

// BroadcastEvent sends state changes to state clients and every event to
// event clients
func (h *WebSocketHandler) BroadcastEvent(event model.DeviceEvent) {
	if event.EventType == model.EventStatusChange {
		h.broadcastToClients(h.connections.GetClients(ClientTypeState), &WebSocketMessage{
			Type:      "state",
			Data:      event.Data,
			Timestamp: event.Timestamp,
		})
	}

	h.broadcastToClients(h.connections.GetClients(ClientTypeEvents), &WebSocketMessage{
		Type:      "device_event",
		Data:      event,
		Timestamp: event.Timestamp,
	})
}

// sendMessage sends a message to a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	if !client.trySend(messageBytes) {
		h.logger.Warn("Client send channel full, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// sendError sends an error message to a client
func (h *WebSocketHandler) sendError(client *Client, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type: "error",
		Data: map[string]interface{}{
			"error": errorMsg,
		},
		Timestamp: time.Now(),
	})
}

// broadcastToClients broadcasts message to specified clients
func (h *WebSocketHandler) broadcastToClients(clients []*Client, message *WebSocketMessage) {
	if len(clients) == 0 {
		return
	}
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	for _, client := range clients {
		if !client.trySend(messageBytes) {
			h.logger.Warn("Client send channel full during broadcast",
				zap.String("client_id", client.ID),
			)
		}
	}
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}

// originChecker allows requests without an Origin header, and otherwise
// only the configured origins ("*" allows any).
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
