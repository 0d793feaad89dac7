// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

// TCPConnection implements Transport for the processor's IP control port
type TCPConnection struct {
	config  *TCPConfig
	handler Handler
	conn    net.Conn
	logger  *zap.Logger
	mutex   sync.RWMutex
	isOpen  bool
	closing bool
	stats   connStats
}

// NewTCPConnection creates a new TCP connection
func NewTCPConnection(config *TCPConfig, handler Handler, logger *zap.Logger) *TCPConnection {
	return &TCPConnection{
		config:  config,
		handler: handler,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
	}
}

// Open dials the processor and starts delivering inbound bytes
func (tc *TCPConnection) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.isOpen {
		return nil
	}

	tc.logger.Info("Opening TCP connection",
		zap.String("host", tc.config.Host),
		zap.Int("port", tc.config.Port),
	)

	dialer := &net.Dialer{
		Timeout: tc.config.Timeout,
	}
	if tc.config.KeepAlive {
		dialer.KeepAlive = 30 * time.Second
	} else {
		dialer.KeepAlive = -1
	}

	address := net.JoinHostPort(tc.config.Host, strconv.Itoa(tc.config.Port))
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		tc.logger.Error("Failed to open TCP connection", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	tc.conn = conn
	tc.isOpen = true
	tc.closing = false
	tc.stats.connected.Store(true)
	tc.stats.touch()

	go tc.readLoop(conn)

	tc.logger.Info("TCP connection opened successfully")
	return nil
}

func (tc *TCPConnection) readLoop(conn net.Conn) {
	size := tc.config.BufferSize
	if size <= 0 {
		size = 1024
	}
	buffer := make([]byte, size)
	for {
		n, err := conn.Read(buffer)
		if n > 0 {
			tc.stats.read(n)
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			tc.handler.OnData(chunk)
		}
		if err != nil {
			tc.readFailed(conn, err)
			return
		}
	}
}

func (tc *TCPConnection) readFailed(conn net.Conn, err error) {
	tc.mutex.Lock()
	if tc.closing || tc.conn != conn {
		tc.mutex.Unlock()
		return
	}
	tc.isOpen = false
	tc.stats.connected.Store(false)
	tc.mutex.Unlock()

	tc.stats.failed()
	tc.logger.Warn("TCP connection dropped", zap.Error(err))
	tc.handler.OnConnectionLost(fmt.Errorf("tcp read: %w", err))
}

// Close closes the TCP connection
func (tc *TCPConnection) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.conn == nil {
		return nil
	}

	tc.closing = true
	err := tc.conn.Close()
	tc.conn = nil
	tc.isOpen = false
	tc.stats.connected.Store(false)

	if err != nil {
		tc.logger.Error("Failed to close TCP connection", zap.Error(err))
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}
	tc.logger.Info("TCP connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (tc *TCPConnection) IsOpen() bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.isOpen && tc.conn != nil
}

// Write writes data to the TCP connection
func (tc *TCPConnection) Write(ctx context.Context, data []byte) error {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	if !tc.isOpen || tc.conn == nil {
		return errors.New("TCP connection not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deadline := time.Time{}
	if tc.config.WriteTimeout > 0 {
		deadline = time.Now().Add(tc.config.WriteTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = tc.conn.SetWriteDeadline(deadline)

	n, err := tc.conn.Write(data)
	if err != nil {
		tc.stats.failed()
		tc.logger.Error("TCP write failed", zap.Error(err))
		return fmt.Errorf("failed to write to TCP connection: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	tc.stats.wrote(n)
	tc.logger.Debug("TCP write completed", zap.Int("bytes", n))
	return nil
}

// ResetBuffers is a no-op for sockets; stale input is dropped by the engine
func (tc *TCPConnection) ResetBuffers() error {
	return nil
}

// GetProtocolType returns the protocol type
func (tc *TCPConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeTCP
}

// Stats returns a snapshot of the connection counters
func (tc *TCPConnection) Stats() ProtocolStats {
	return tc.stats.snapshot()
}
