package protocol

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

type writeRecord struct {
	data string
	at   time.Time
}

// fakeTransport records writes and lets tests push inbound bytes.
type fakeTransport struct {
	handler Handler

	mu      sync.Mutex
	open    bool
	openErr error
	writes  []writeRecord
	replies []time.Time
	resets  int

	onWrite func(ft *fakeTransport, data string)
	onReset func(ft *fakeTransport)
}

var _ Transport = (*fakeTransport)(nil)

func (ft *fakeTransport) Open(ctx context.Context) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.openErr != nil {
		return ft.openErr
	}
	ft.open = true
	return nil
}

func (ft *fakeTransport) Close() error {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.open = false
	return nil
}

func (ft *fakeTransport) IsOpen() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.open
}

func (ft *fakeTransport) Write(ctx context.Context, data []byte) error {
	ft.mu.Lock()
	ft.writes = append(ft.writes, writeRecord{data: string(data), at: time.Now()})
	onWrite := ft.onWrite
	ft.mu.Unlock()
	if onWrite != nil {
		onWrite(ft, string(data))
	}
	return nil
}

func (ft *fakeTransport) ResetBuffers() error {
	ft.mu.Lock()
	ft.resets++
	onReset := ft.onReset
	ft.mu.Unlock()
	if onReset != nil {
		onReset(ft)
	}
	return nil
}

func (ft *fakeTransport) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeTCP
}

func (ft *fakeTransport) Stats() ProtocolStats {
	return ProtocolStats{IsConnected: ft.IsOpen()}
}

// inject delivers data as if it arrived from the device.
func (ft *fakeTransport) inject(data string) {
	ft.mu.Lock()
	ft.replies = append(ft.replies, time.Now())
	ft.mu.Unlock()
	ft.handler.OnData([]byte(data))
}

func (ft *fakeTransport) writeLog() []writeRecord {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]writeRecord(nil), ft.writes...)
}

func (ft *fakeTransport) replyLog() []time.Time {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]time.Time(nil), ft.replies...)
}

// echoReply answers every command with a fixed line.
func echoReply(line string) func(ft *fakeTransport, data string) {
	return func(ft *fakeTransport, data string) {
		ft.inject(line)
	}
}

func newTestEngine(t *testing.T, ft *fakeTransport, cfg EngineConfig) *Engine {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 200 * time.Millisecond
	}
	dial := func(h Handler) (Transport, error) {
		ft.handler = h
		return ft, nil
	}
	e := NewEngine(dial, cfg, zap.NewNop())
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngine_RoundTrip(t *testing.T) {
	require := require.New(t)

	ft := &fakeTransport{onWrite: echoReply("!VOL(50)\r")}
	e := newTestEngine(t, ft, EngineConfig{})
	require.NoError(e.Connect(context.Background()))
	require.Equal(StateConnected, e.State())

	resp, err := e.Send(context.Background(), []byte("!VOL?\r"), true)
	require.NoError(err)
	require.Equal("!VOL(50)", resp)

	writes := ft.writeLog()
	require.Len(writes, 1)
	require.Equal("!VOL?\r", writes[0].data)
	require.Equal(1, ft.resets)
	require.EqualValues(1, e.Stats().CommandsSent)
}

func TestEngine_NoReplyExpected(t *testing.T) {
	require := require.New(t)

	ft := &fakeTransport{}
	e := newTestEngine(t, ft, EngineConfig{Timeout: time.Second})
	require.NoError(e.Connect(context.Background()))

	start := time.Now()
	resp, err := e.Send(context.Background(), []byte("!PON\r"), false)
	require.NoError(err)
	require.Empty(resp)
	require.Less(time.Since(start), 500*time.Millisecond)
	require.Len(ft.writeLog(), 1)
}

func TestEngine_NotConnected(t *testing.T) {
	t.Run("never connected", func(t *testing.T) {
		dialed := false
		e := NewEngine(func(h Handler) (Transport, error) {
			dialed = true
			return &fakeTransport{handler: h}, nil
		}, EngineConfig{Timeout: 50 * time.Millisecond}, zap.NewNop())

		start := time.Now()
		_, err := e.Send(context.Background(), []byte("!POWER?\r"), true)
		elapsed := time.Since(start)

		require.ErrorIs(t, err, ErrNotConnected)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, time.Second)
		assert.False(t, dialed)
		assert.EqualValues(t, 1, e.Stats().NotConnected)
	})

	t.Run("after connection lost", func(t *testing.T) {
		require := require.New(t)

		ft := &fakeTransport{}
		e := newTestEngine(t, ft, EngineConfig{Timeout: 50 * time.Millisecond})
		require.NoError(e.Connect(context.Background()))

		ft.handler.OnConnectionLost(errors.New("cable pulled"))
		require.Equal(StateDisconnected, e.State())

		_, err := e.Send(context.Background(), []byte("!POWER?\r"), true)
		require.ErrorIs(err, ErrNotConnected)
		require.Empty(ft.writeLog())
	})

	t.Run("connects while waiting", func(t *testing.T) {
		require := require.New(t)

		ft := &fakeTransport{onWrite: echoReply("!POWER(1)\r")}
		e := newTestEngine(t, ft, EngineConfig{Timeout: time.Second})

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = e.Connect(context.Background())
		}()

		resp, err := e.Send(context.Background(), []byte("!POWER?\r"), true)
		require.NoError(err)
		require.Equal("!POWER(1)", resp)
	})
}

func TestEngine_Timeout(t *testing.T) {
	require := require.New(t)

	ft := &fakeTransport{onWrite: echoReply("!VOL(5")}
	e := newTestEngine(t, ft, EngineConfig{Timeout: 60 * time.Millisecond})
	require.NoError(e.Connect(context.Background()))

	_, err := e.Send(context.Background(), []byte("!VOL?\r"), true)
	require.ErrorIs(err, ErrTimeout)

	var te *TimeoutError
	require.True(errors.As(err, &te))
	require.Equal("!VOL(5", string(te.Partial))
	require.Equal("!VOL?", te.Command)
	require.EqualValues(1, e.Stats().Timeouts)

	// the lock is released after a timeout
	ft.mu.Lock()
	ft.onWrite = echoReply("!VOL(7)\r")
	ft.mu.Unlock()
	resp, err := e.Send(context.Background(), []byte("!VOL?\r"), true)
	require.NoError(err)
	require.Equal("!VOL(7)", resp)
}

func TestEngine_LateReplyNotMisattributed(t *testing.T) {
	t.Run("arrives during buffer clear", func(t *testing.T) {
		require := require.New(t)

		ft := &fakeTransport{}
		e := newTestEngine(t, ft, EngineConfig{Timeout: 50 * time.Millisecond})
		require.NoError(e.Connect(context.Background()))

		_, err := e.Send(context.Background(), []byte("!VOL?\r"), true)
		require.ErrorIs(err, ErrTimeout)

		ft.mu.Lock()
		ft.onReset = func(ft *fakeTransport) { ft.inject("!VOL(10)\r") }
		ft.onWrite = func(ft *fakeTransport, data string) {
			if data == "!MUTE?\r" {
				ft.inject("!MUTE(1)\r")
			}
		}
		ft.mu.Unlock()

		resp, err := e.Send(context.Background(), []byte("!MUTE?\r"), true)
		require.NoError(err)
		require.Equal("!MUTE(1)", resp)
	})

	t.Run("arrives between requests", func(t *testing.T) {
		require := require.New(t)

		ft := &fakeTransport{}
		e := newTestEngine(t, ft, EngineConfig{Timeout: 50 * time.Millisecond})
		require.NoError(e.Connect(context.Background()))

		_, err := e.Send(context.Background(), []byte("!VOL?\r"), true)
		require.ErrorIs(err, ErrTimeout)
		ft.inject("!VOL(10)\r")

		ft.mu.Lock()
		ft.onWrite = func(ft *fakeTransport, data string) {
			go func() {
				time.Sleep(10 * time.Millisecond)
				ft.inject("!MUTE(0)\r")
			}()
		}
		ft.mu.Unlock()

		resp, err := e.Send(context.Background(), []byte("!MUTE?\r"), true)
		require.NoError(err)
		require.Equal("!MUTE(0)", resp)
	})
}

func TestEngine_Framing(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{name: "single line", chunks: []string{"!SRC(1)\r"}, want: "!SRC(1)"},
		{name: "first of several lines", chunks: []string{"!VOL(50)\r!MUTE(0)\r"}, want: "!VOL(50)"},
		{name: "leading empty lines", chunks: []string{"\r\r!PONG\r"}, want: "!PONG"},
		{name: "split across chunks", chunks: []string{"!VO", "L(3", ")\r"}, want: "!VOL(3)"},
		{name: "trailing partial line", chunks: []string{"!VOL(1)\r!VO"}, want: "!VOL(1)"},
		{name: "quoted source name", chunks: []string{"!SRC(1) \"HDMI 2\"\r"}, want: "!SRC(1) \"HDMI 2\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{onWrite: func(ft *fakeTransport, data string) {
				go func() {
					for _, c := range tt.chunks {
						ft.inject(c)
						time.Sleep(5 * time.Millisecond)
					}
				}()
			}}
			e := newTestEngine(t, ft, EngineConfig{})
			require.NoError(t, e.Connect(context.Background()))

			resp, err := e.Send(context.Background(), []byte("!X?\r"), true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp)
		})
	}
}

func TestFirstLine(t *testing.T) {
	line, extra, ok := firstLine([]byte("!VOL(50)\r!MUTE(0)\r!SRC(2"))
	require.True(t, ok)
	assert.Equal(t, "!VOL(50)", line)
	assert.Equal(t, []string{"!MUTE(0)"}, extra)

	_, _, ok = firstLine([]byte("\r"))
	assert.False(t, ok)

	_, _, ok = firstLine([]byte("!VOL(50)"))
	assert.False(t, ok)
}

func TestEngine_FIFOOrdering(t *testing.T) {
	require := require.New(t)

	ft := &fakeTransport{onWrite: func(ft *fakeTransport, data string) {
		go func() {
			time.Sleep(30 * time.Millisecond)
			ft.inject(data)
		}()
	}}
	e := newTestEngine(t, ft, EngineConfig{Timeout: time.Second})
	require.NoError(e.Connect(context.Background()))

	commands := []string{"!A?\r", "!B?\r", "!C?\r", "!D?\r"}
	results := make([]string, len(commands))
	var wg sync.WaitGroup
	for i, cmd := range commands {
		wg.Add(1)
		go func(i int, cmd string) {
			defer wg.Done()
			resp, err := e.Send(context.Background(), []byte(cmd), true)
			if err == nil {
				results[i] = resp
			}
		}(i, cmd)

		// queue each caller before the next one arrives
		if i == 0 {
			require.Eventually(func() bool { return len(ft.writeLog()) == 1 }, time.Second, time.Millisecond)
		} else {
			want := i
			require.Eventually(func() bool { return e.Stats().Queued == want }, time.Second, time.Millisecond)
		}
	}
	wg.Wait()

	writes := ft.writeLog()
	replies := ft.replyLog()
	require.Len(writes, len(commands))
	require.Len(replies, len(commands))
	for i, cmd := range commands {
		require.Equal(cmd, writes[i].data)
		require.Equal(cmd[:len(cmd)-1], results[i])
		if i > 0 {
			// a write never starts before the previous round trip completed
			require.False(writes[i].at.Before(replies[i-1]), "write %d overlapped previous request", i)
		}
	}
}

func TestEngine_Throttle(t *testing.T) {
	require := require.New(t)

	const gap = 80 * time.Millisecond
	ft := &fakeTransport{onWrite: echoReply("!OK\r")}
	e := newTestEngine(t, ft, EngineConfig{MinInterval: gap, Timeout: time.Second})
	require.NoError(e.Connect(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Send(context.Background(), []byte("!VOL+\r"), i%2 == 0)
		}()
	}
	wg.Wait()

	writes := ft.writeLog()
	require.Len(writes, 4)
	for i := 1; i < len(writes); i++ {
		require.GreaterOrEqual(writes[i].at.Sub(writes[i-1].at), gap-5*time.Millisecond)
	}
}

func TestEngine_ConnectionLostDuringRequest(t *testing.T) {
	require := require.New(t)

	ft := &fakeTransport{onWrite: func(ft *fakeTransport, data string) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			ft.handler.OnConnectionLost(errors.New("eof"))
		}()
	}}
	e := newTestEngine(t, ft, EngineConfig{Timeout: time.Second})
	require.NoError(e.Connect(context.Background()))

	_, err := e.Send(context.Background(), []byte("!POWER?\r"), true)
	require.ErrorIs(err, ErrConnectionLost)
	require.Equal(StateDisconnected, e.State())
	require.False(ft.IsOpen())
}

func TestEngine_Lifecycle(t *testing.T) {
	t.Run("open failure", func(t *testing.T) {
		ft := &fakeTransport{openErr: errors.New("no such device")}
		e := newTestEngine(t, ft, EngineConfig{})

		err := e.Connect(context.Background())
		require.Error(t, err)
		require.Equal(t, StateDisconnected, e.State())
	})

	t.Run("dial failure", func(t *testing.T) {
		e := NewEngine(func(h Handler) (Transport, error) {
			return nil, errors.New("bad url")
		}, EngineConfig{Timeout: time.Second}, zap.NewNop())

		require.Error(t, e.Connect(context.Background()))
		require.Equal(t, StateDisconnected, e.State())
	})

	t.Run("close and reopen", func(t *testing.T) {
		require := require.New(t)

		ft := &fakeTransport{onWrite: echoReply("!PONG\r")}
		e := newTestEngine(t, ft, EngineConfig{Timeout: 50 * time.Millisecond})
		require.NoError(e.Connect(context.Background()))

		require.NoError(e.Close())
		require.Equal(StateClosed, e.State())
		require.False(ft.IsOpen())

		_, err := e.Send(context.Background(), []byte("!PING?\r"), true)
		require.ErrorIs(err, ErrClosed)

		require.NoError(e.Connect(context.Background()))
		require.Equal(StateConnected, e.State())
		resp, err := e.Send(context.Background(), []byte("!PING?\r"), true)
		require.NoError(err)
		require.Equal("!PONG", resp)
	})

	t.Run("stale session callbacks ignored", func(t *testing.T) {
		require := require.New(t)

		var handlers []Handler
		ft := &fakeTransport{}
		e := NewEngine(func(h Handler) (Transport, error) {
			handlers = append(handlers, h)
			ft.handler = h
			return ft, nil
		}, EngineConfig{Timeout: 50 * time.Millisecond}, zap.NewNop())
		t.Cleanup(func() { _ = e.Close() })

		require.NoError(e.Connect(context.Background()))
		require.NoError(e.Close())
		require.NoError(e.Connect(context.Background()))
		require.Len(handlers, 2)

		handlers[0].OnConnectionLost(errors.New("old transport"))
		require.Equal(StateConnected, e.State())
	})
}

func TestEngine_ContextCancelledWhileQueued(t *testing.T) {
	require := require.New(t)

	release := make(chan struct{})
	ft := &fakeTransport{onWrite: func(ft *fakeTransport, data string) {
		go func() {
			<-release
			ft.inject("!OK\r")
		}()
	}}
	e := newTestEngine(t, ft, EngineConfig{Timeout: time.Second})
	require.NoError(e.Connect(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := e.Send(context.Background(), []byte("!SLOW?\r"), true)
		done <- err
	}()
	require.Eventually(func() bool { return len(ft.writeLog()) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := e.Send(ctx, []byte("!QUEUED?\r"), true)
	require.ErrorIs(err, context.DeadlineExceeded)

	close(release)
	require.NoError(<-done)
	require.Len(ft.writeLog(), 1)
	require.Equal(0, e.Stats().Queued)
}
