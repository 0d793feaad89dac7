// internal/protocol/protocol.go
package protocol

import (
	"context"
	"time"

	"mcintosh-service/internal/model"
)

// Terminator ends every command and every response line on the wire
const Terminator = '\r'

// Transport represents a byte-stream connection to the processor
type Transport interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication. Inbound bytes are pushed to the Handler the
	// transport was built with.
	Write(ctx context.Context, data []byte) error
	ResetBuffers() error

	// Protocol information
	GetProtocolType() model.ConnectionType
	Stats() ProtocolStats
}

// Handler receives inbound bytes and loss notifications from a Transport
type Handler interface {
	OnData(data []byte)
	OnConnectionLost(err error)
}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64     `json:"bytes_written"`
	BytesRead      int64     `json:"bytes_read"`
	OperationCount int64     `json:"operation_count"`
	ErrorCount     int64     `json:"error_count"`
	LastActivity   time.Time `json:"last_activity"`
	IsConnected    bool      `json:"is_connected"`
}
