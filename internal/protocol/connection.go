// internal/protocol/connection.go
package protocol

import (
	"time"

	"go.uber.org/atomic"
)

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// TCPConfig represents TCP connection configuration
type TCPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	KeepAlive    bool          `json:"keep_alive"`
	BufferSize   int           `json:"buffer_size"`
	Timeout      time.Duration `json:"timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// connStats holds the counters shared by the transport implementations
type connStats struct {
	bytesWritten atomic.Int64
	bytesRead    atomic.Int64
	operations   atomic.Int64
	errors       atomic.Int64
	lastActivity atomic.Int64
	connected    atomic.Bool
}

func (s *connStats) wrote(n int) {
	s.bytesWritten.Add(int64(n))
	s.operations.Inc()
	s.touch()
}

func (s *connStats) read(n int) {
	s.bytesRead.Add(int64(n))
	s.touch()
}

func (s *connStats) failed() {
	s.errors.Inc()
}

func (s *connStats) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

func (s *connStats) snapshot() ProtocolStats {
	st := ProtocolStats{
		BytesWritten:   s.bytesWritten.Load(),
		BytesRead:      s.bytesRead.Load(),
		OperationCount: s.operations.Load(),
		ErrorCount:     s.errors.Load(),
		IsConnected:    s.connected.Load(),
	}
	if ts := s.lastActivity.Load(); ts > 0 {
		st.LastActivity = time.Unix(0, ts)
	}
	return st
}
