// internal/protocol/engine.go
package protocol

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// State is the connection state of an Engine
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateClosed       State = "CLOSED"
)

// Dialer builds a transport that reports to h. Called once per Connect.
type Dialer func(h Handler) (Transport, error)

// EngineConfig holds the timing parameters taken from the model profile
type EngineConfig struct {
	// MinInterval is the minimum spacing between two writes.
	MinInterval time.Duration
	// Timeout bounds the wait for a connection and the wait for a reply.
	Timeout time.Duration
	// Target is the connection url, used for logging only.
	Target string
}

// EngineStats exposes engine and transport counters
type EngineStats struct {
	State        State         `json:"state"`
	CommandsSent int64         `json:"commands_sent"`
	Timeouts     int64         `json:"timeouts"`
	NotConnected int64         `json:"not_connected"`
	Queued       int           `json:"queued"`
	Transport    ProtocolStats `json:"transport"`
}

// Engine serializes commands over one connection: a single request is in
// flight at any time, writes are spaced by MinInterval and each reply is the
// first CR-terminated line received after the write.
type Engine struct {
	dial   Dialer
	cfg    EngineConfig
	logger *zap.Logger

	lock     *fifoLock
	lastSend time.Time // guarded by lock

	mu         sync.Mutex
	state      State
	changed    chan struct{}
	transport  Transport
	lost       chan struct{}
	generation uint64
	buf        bytes.Buffer
	notify     chan struct{}

	sent         atomic.Int64
	timeouts     atomic.Int64
	notConnected atomic.Int64
}

// NewEngine creates an engine in the Disconnected state
func NewEngine(dial Dialer, cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		dial:    dial,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "engine"), zap.String("target", cfg.Target)),
		lock:    newFIFOLock(),
		state:   StateDisconnected,
		changed: make(chan struct{}),
		notify:  make(chan struct{}, 1),
	}
}

// Connect opens a new transport. Failure is reported once, without retry.
func (e *Engine) Connect(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateConnected || e.state == StateConnecting {
		e.mu.Unlock()
		return nil
	}
	e.generation++
	gen := e.generation
	e.setStateLocked(StateConnecting)
	e.mu.Unlock()

	e.logger.Info("Connecting")

	t, err := e.dial(&session{engine: e, generation: gen})
	if err == nil {
		err = t.Open(ctx)
	}
	if err != nil {
		e.mu.Lock()
		if e.generation == gen && e.state == StateConnecting {
			e.setStateLocked(StateDisconnected)
		}
		e.mu.Unlock()
		e.logger.Error("Connection failed", zap.Error(err))
		return err
	}

	e.mu.Lock()
	if e.generation != gen || e.state != StateConnecting {
		// closed while the transport was opening
		e.mu.Unlock()
		_ = t.Close()
		return ErrClosed
	}
	e.transport = t
	e.lost = make(chan struct{})
	e.setStateLocked(StateConnected)
	e.mu.Unlock()

	e.logger.Info("Connected", zap.String("protocol", string(t.GetProtocolType())))
	return nil
}

// Close tears down the connection. Pending and future sends fail with ErrClosed
// until Connect is called again.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return nil
	}
	t := e.transport
	e.dropSessionLocked()
	e.generation++
	e.setStateLocked(StateClosed)
	e.mu.Unlock()

	e.logger.Info("Closed")
	if t != nil {
		return t.Close()
	}
	return nil
}

// State returns the current connection state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsConnected reports whether the engine is in the Connected state
func (e *Engine) IsConnected() bool {
	return e.State() == StateConnected
}

// Stats returns engine counters along with the transport's statistics
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	st := EngineStats{State: e.state}
	if e.transport != nil {
		st.Transport = e.transport.Stats()
	}
	e.mu.Unlock()
	st.CommandsSent = e.sent.Load()
	st.Timeouts = e.timeouts.Load()
	st.NotConnected = e.notConnected.Load()
	st.Queued = e.lock.pending()
	return st
}

// Send writes command and, when expectReply is set, returns the first
// non-empty line received afterwards without its terminator. Requests are
// served one at a time in arrival order.
func (e *Engine) Send(ctx context.Context, command []byte, expectReply bool) (string, error) {
	if err := e.lock.Lock(ctx); err != nil {
		return "", err
	}
	defer e.lock.Unlock()

	t, lost, err := e.waitConnected(ctx)
	if err != nil {
		return "", err
	}

	if err := e.throttle(ctx); err != nil {
		return "", err
	}

	if err := t.ResetBuffers(); err != nil {
		e.logger.Debug("Buffer reset failed", zap.Error(err))
	}
	e.mu.Lock()
	e.buf.Reset()
	select {
	case <-e.notify:
	default:
	}
	e.mu.Unlock()

	e.lastSend = time.Now()
	e.logger.Debug("Sending command", zap.ByteString("command", command))
	if err := t.Write(ctx, command); err != nil {
		return "", fmt.Errorf("write %q: %w", bytes.TrimRight(command, "\r"), err)
	}
	e.sent.Inc()

	if !expectReply {
		return "", nil
	}
	return e.awaitReply(ctx, command, lost)
}

func (e *Engine) waitConnected(ctx context.Context) (Transport, chan struct{}, error) {
	var timer *time.Timer
	for {
		e.mu.Lock()
		switch e.state {
		case StateConnected:
			t, lost := e.transport, e.lost
			e.mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			return t, lost, nil
		case StateClosed:
			e.mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			return nil, nil, ErrClosed
		}
		changed := e.changed
		e.mu.Unlock()

		if timer == nil {
			timer = time.NewTimer(e.cfg.Timeout)
		}
		select {
		case <-changed:
		case <-timer.C:
			e.notConnected.Inc()
			e.logger.Debug("Send attempted while not connected")
			return nil, nil, ErrNotConnected
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, ctx.Err()
		}
	}
}

func (e *Engine) throttle(ctx context.Context) error {
	if e.lastSend.IsZero() || e.cfg.MinInterval <= 0 {
		return nil
	}
	wait := e.cfg.MinInterval - time.Since(e.lastSend)
	if wait <= 0 {
		return nil
	}
	e.logger.Debug("Throttling command", zap.Duration("wait", wait))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) awaitReply(ctx context.Context, command []byte, lost chan struct{}) (string, error) {
	timer := time.NewTimer(e.cfg.Timeout)
	defer timer.Stop()

	for {
		e.mu.Lock()
		line, extra, ok := firstLine(e.buf.Bytes())
		e.mu.Unlock()
		if ok {
			if len(extra) > 0 {
				e.logger.Debug("Discarding additional response lines", zap.Strings("lines", extra))
			}
			e.logger.Debug("Received response", zap.String("response", line))
			return line, nil
		}

		select {
		case <-e.notify:
		case <-timer.C:
			e.mu.Lock()
			partial := append([]byte(nil), e.buf.Bytes()...)
			e.mu.Unlock()
			e.timeouts.Inc()
			e.logger.Warn("Timed out waiting for response",
				zap.ByteString("command", bytes.TrimRight(command, "\r")),
				zap.ByteString("partial", partial),
			)
			return "", &TimeoutError{
				Command: string(bytes.TrimRight(command, "\r")),
				Partial: partial,
				Timeout: e.cfg.Timeout,
			}
		case <-lost:
			return "", ErrConnectionLost
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// firstLine returns the first non-empty terminated line in data and any
// further complete lines. ok is false until a non-empty line is complete.
func firstLine(data []byte) (line string, extra []string, ok bool) {
	end := bytes.LastIndexByte(data, Terminator)
	if end < 0 {
		return "", nil, false
	}
	for _, seg := range bytes.Split(data[:end], []byte{Terminator}) {
		if len(seg) == 0 {
			continue
		}
		if !ok {
			line, ok = string(seg), true
			continue
		}
		extra = append(extra, string(seg))
	}
	return line, extra, ok
}

func (e *Engine) onData(gen uint64, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.state != StateConnected {
		return
	}
	e.buf.Write(data)
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *Engine) onConnectionLost(gen uint64, err error) {
	e.mu.Lock()
	if gen != e.generation || e.state != StateConnected {
		e.mu.Unlock()
		return
	}
	t := e.transport
	e.dropSessionLocked()
	e.setStateLocked(StateDisconnected)
	e.mu.Unlock()

	e.logger.Warn("Connection lost", zap.Error(err))
	if t != nil {
		_ = t.Close()
	}
}

func (e *Engine) dropSessionLocked() {
	if e.lost != nil {
		close(e.lost)
		e.lost = nil
	}
	e.transport = nil
	e.buf.Reset()
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	e.state = s
	close(e.changed)
	e.changed = make(chan struct{})
}

// session binds transport callbacks to one Connect call so a stale
// transport cannot touch a newer connection.
type session struct {
	engine     *Engine
	generation uint64
}

func (s *session) OnData(data []byte) {
	s.engine.onData(s.generation, data)
}

func (s *session) OnConnectionLost(err error) {
	s.engine.onConnectionLost(s.generation, err)
}
