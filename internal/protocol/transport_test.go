package protocol

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

// recordingHandler collects everything a transport reports.
type recordingHandler struct {
	mu   sync.Mutex
	data []byte
	lost []error
}

func (h *recordingHandler) OnData(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = append(h.data, data...)
}

func (h *recordingHandler) OnConnectionLost(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lost = append(h.lost, err)
}

func (h *recordingHandler) received() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return string(h.data)
}

func (h *recordingHandler) lostCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lost)
}

func TestTCPConnection(t *testing.T) {
	require := require.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	defer ln.Close()

	serverConn := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			serverConn <- conn
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	h := &recordingHandler{}
	tc := NewTCPConnection(&TCPConfig{
		Host:         "127.0.0.1",
		Port:         addr.Port,
		Timeout:      time.Second,
		WriteTimeout: time.Second,
	}, h, zap.NewNop())

	require.NoError(tc.Open(context.Background()))
	require.True(tc.IsOpen())

	var server net.Conn
	select {
	case server = <-serverConn:
	case <-time.After(time.Second):
		t.Fatal("server did not accept")
	}
	defer server.Close()

	require.NoError(tc.Write(context.Background(), []byte("!PING?\r")))
	line, err := bufio.NewReader(server).ReadString('\r')
	require.NoError(err)
	require.Equal("!PING?\r", line)

	_, err = server.Write([]byte("!PONG\r"))
	require.NoError(err)
	require.Eventually(func() bool { return h.received() == "!PONG\r" }, time.Second, 5*time.Millisecond)

	stats := tc.Stats()
	assert.EqualValues(t, 7, stats.BytesWritten)
	assert.EqualValues(t, 6, stats.BytesRead)
	assert.True(t, stats.IsConnected)

	// peer hang-up is reported as connection loss
	server.Close()
	require.Eventually(func() bool { return h.lostCount() == 1 }, time.Second, 5*time.Millisecond)
	require.False(tc.IsOpen())
	require.Error(tc.Write(context.Background(), []byte("!PING?\r")))
	require.NoError(tc.Close())
}

func TestTCPConnection_DeliberateCloseIsSilent(t *testing.T) {
	require := require.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(200 * time.Millisecond)
		}
	}()

	h := &recordingHandler{}
	tc := NewTCPConnection(&TCPConfig{
		Host:    "127.0.0.1",
		Port:    ln.Addr().(*net.TCPAddr).Port,
		Timeout: time.Second,
	}, h, zap.NewNop())
	require.NoError(tc.Open(context.Background()))
	require.NoError(tc.Close())

	time.Sleep(50 * time.Millisecond)
	require.Equal(0, h.lostCount())
}

func TestTCPConnection_OpenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tc := NewTCPConnection(&TCPConfig{Host: "127.0.0.1", Port: port, Timeout: 500 * time.Millisecond}, &recordingHandler{}, zap.NewNop())
	require.Error(t, tc.Open(context.Background()))
	require.False(t, tc.IsOpen())
}

// mockSerialPort stands in for an RS-232 port.
type mockSerialPort struct {
	mock.Mock

	mu     sync.Mutex
	inbox  chan []byte
	closed chan struct{}
}

func newMockSerialPort() *mockSerialPort {
	return &mockSerialPort{inbox: make(chan []byte, 8), closed: make(chan struct{})}
}

func (m *mockSerialPort) Read(p []byte) (int, error) {
	select {
	case data := <-m.inbox:
		return copy(p, data), nil
	case <-m.closed:
		return 0, errors.New("port closed")
	case <-time.After(serialPollInterval):
		return 0, nil
	}
}

func (m *mockSerialPort) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockSerialPort) ResetInputBuffer() error {
	return m.Called().Error(0)
}

func (m *mockSerialPort) ResetOutputBuffer() error {
	return m.Called().Error(0)
}

func (m *mockSerialPort) SetReadTimeout(d time.Duration) error {
	return m.Called(d).Error(0)
}

func (m *mockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.closed:
	default:
		close(m.closed)
	}
	return nil
}

func withSerialPort(t *testing.T, port serialPort, gotMode **serial.Mode) {
	t.Helper()
	orig := openSerialPort
	openSerialPort = func(name string, mode *serial.Mode) (serialPort, error) {
		if gotMode != nil {
			*gotMode = mode
		}
		return port, nil
	}
	t.Cleanup(func() { openSerialPort = orig })
}

func TestSerialConnection(t *testing.T) {
	require := require.New(t)

	port := newMockSerialPort()
	port.On("SetReadTimeout", serialPollInterval).Return(nil)
	port.On("Write", []byte("!VOL?\r")).Return(6, nil)
	port.On("ResetInputBuffer").Return(nil)
	port.On("ResetOutputBuffer").Return(nil)

	var mode *serial.Mode
	withSerialPort(t, port, &mode)

	h := &recordingHandler{}
	sc := NewSerialConnection(&SerialConfig{
		Port:     "/dev/ttyUSB0",
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
	}, h, zap.NewNop())

	require.NoError(sc.Open(context.Background()))
	require.True(sc.IsOpen())
	require.Equal(115200, mode.BaudRate)
	require.Equal(8, mode.DataBits)
	require.Equal(serial.OneStopBit, mode.StopBits)
	require.Equal(serial.NoParity, mode.Parity)

	require.NoError(sc.ResetBuffers())
	require.NoError(sc.Write(context.Background(), []byte("!VOL?\r")))
	port.inbox <- []byte("!VOL(")
	port.inbox <- []byte("42)\r")
	require.Eventually(func() bool { return h.received() == "!VOL(42)\r" }, time.Second, 5*time.Millisecond)

	require.NoError(sc.Close())
	require.False(sc.IsOpen())
	time.Sleep(2 * serialPollInterval)
	require.Equal(0, h.lostCount())
	port.AssertExpectations(t)
}

func TestSerialConnection_ReadErrorReportsLoss(t *testing.T) {
	port := newMockSerialPort()
	port.On("SetReadTimeout", serialPollInterval).Return(nil)
	withSerialPort(t, port, nil)

	h := &recordingHandler{}
	sc := NewSerialConnection(&SerialConfig{Port: "COM3", BaudRate: 115200, DataBits: 8}, h, zap.NewNop())
	require.NoError(t, sc.Open(context.Background()))

	// the device vanishing looks like the port closing underneath us
	port.Close()
	require.Eventually(t, func() bool { return h.lostCount() == 1 }, time.Second, 5*time.Millisecond)
	require.False(t, sc.IsOpen())
}

func TestSerialMode(t *testing.T) {
	mode, err := serialMode(&SerialConfig{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "even"})
	require.NoError(t, err)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)
	assert.Equal(t, 7, mode.DataBits)

	_, err = serialMode(&SerialConfig{BaudRate: 9600, DataBits: 8, StopBits: 3})
	require.Error(t, err)

	_, err = serialMode(&SerialConfig{BaudRate: 9600, DataBits: 8, Parity: "mark"})
	require.Error(t, err)
}
