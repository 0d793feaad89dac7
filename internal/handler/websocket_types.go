// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
)

// Client types
const (
	ClientTypeState  = "state"
	ClientTypeEvents = "events"
)

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	Type        string          `json:"type"` // state, events
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`

	mu     sync.Mutex
	closed bool
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// trySend queues message without blocking and reports whether it was queued
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ConnectionManager tracks connected WebSocket clients
type ConnectionManager struct {
	clients *xsync.MapOf[string, *Client]
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: xsync.NewMapOf[string, *Client](),
	}
}

// Register registers a new client
func (cm *ConnectionManager) Register(client *Client) {
	cm.clients.Store(client.ID, client)
}

// Unregister removes a client and closes its send channel
func (cm *ConnectionManager) Unregister(client *Client) {
	if _, ok := cm.clients.LoadAndDelete(client.ID); ok {
		client.closeSend()
	}
}

// CloseAll unregisters every client
func (cm *ConnectionManager) CloseAll() {
	cm.clients.Range(func(id string, client *Client) bool {
		cm.Unregister(client)
		return true
	})
}

// GetClients returns clients of the given type
func (cm *ConnectionManager) GetClients(clientType string) []*Client {
	var clients []*Client
	cm.clients.Range(func(id string, client *Client) bool {
		if client.Type == clientType {
			clients = append(clients, client)
		}
		return true
	})
	return clients
}

// GetStats returns connection statistics
func (cm *ConnectionManager) GetStats() *ConnectionStats {
	stats := &ConnectionStats{
		ByType:  make(map[string]int),
		Clients: make([]*Client, 0, cm.clients.Size()),
	}

	cm.clients.Range(func(id string, client *Client) bool {
		stats.TotalConnections++
		stats.ByType[client.Type]++
		stats.Clients = append(stats.Clients, client)
		return true
	})

	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ByType           map[string]int `json:"by_type"`
	Clients          []*Client      `json:"clients"`
}
