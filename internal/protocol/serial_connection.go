// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

// serialPort is the part of serial.Port the connection uses
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// openSerialPort is replaced in tests
var openSerialPort = func(name string, mode *serial.Mode) (serialPort, error) {
	return serial.Open(name, mode)
}

// serialPollInterval bounds how long a blocked read holds the port
const serialPollInterval = 100 * time.Millisecond

// SerialConnection implements Transport for RS-232 connections
type SerialConnection struct {
	config  *SerialConfig
	handler Handler
	port    serialPort
	logger  *zap.Logger
	mutex   sync.RWMutex
	isOpen  bool
	closing bool
	stats   connStats
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, handler Handler, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config:  config,
		handler: handler,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// Open opens the serial port and starts delivering inbound bytes
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sc.logger.Info("Opening serial port",
		zap.String("port", sc.config.Port),
		zap.Int("baud_rate", sc.config.BaudRate),
	)

	mode, err := serialMode(sc.config)
	if err != nil {
		return err
	}

	port, err := openSerialPort(sc.config.Port, mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port %s: %w", sc.config.Port, err)
	}

	if err := port.SetReadTimeout(serialPollInterval); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	sc.port = port
	sc.isOpen = true
	sc.closing = false
	sc.stats.connected.Store(true)
	sc.stats.touch()

	go sc.readLoop(port)

	sc.logger.Info("Serial port opened successfully")
	return nil
}

func serialMode(config *SerialConfig) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
	}

	switch config.StopBits {
	case 0, 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("invalid stop bits: %d", config.StopBits)
	}

	switch config.Parity {
	case "", "none", "N":
		mode.Parity = serial.NoParity
	case "odd", "O":
		mode.Parity = serial.OddParity
	case "even", "E":
		mode.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("invalid parity: %s", config.Parity)
	}
	return mode, nil
}

func (sc *SerialConnection) readLoop(port serialPort) {
	buffer := make([]byte, 256)
	for {
		n, err := port.Read(buffer)
		if n > 0 {
			sc.stats.read(n)
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			sc.handler.OnData(chunk)
		}
		if err != nil {
			sc.readFailed(port, err)
			return
		}
		if n == 0 && !sc.IsOpen() {
			return
		}
	}
}

func (sc *SerialConnection) readFailed(port serialPort, err error) {
	sc.mutex.Lock()
	if sc.closing || sc.port != port {
		sc.mutex.Unlock()
		return
	}
	sc.isOpen = false
	sc.stats.connected.Store(false)
	sc.mutex.Unlock()

	sc.stats.failed()
	sc.logger.Error("Serial read failed", zap.Error(err))
	sc.handler.OnConnectionLost(fmt.Errorf("serial read: %w", err))
}

// Close closes the serial connection
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.port == nil {
		return nil
	}

	sc.closing = true
	err := sc.port.Close()
	sc.port = nil
	sc.isOpen = false
	sc.stats.connected.Store(false)

	if err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	sc.logger.Info("Serial port closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.isOpen && sc.port != nil
}

// Write writes data to the serial port
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if !sc.isOpen || sc.port == nil {
		return errors.New("serial port not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.failed()
		sc.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	sc.stats.wrote(n)
	sc.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return nil
}

// ResetBuffers drops unread input and unsent output held by the driver
func (sc *SerialConnection) ResetBuffers() error {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if !sc.isOpen || sc.port == nil {
		return errors.New("serial port not open")
	}
	if err := sc.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	if err := sc.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("reset output buffer: %w", err)
	}
	return nil
}

// GetProtocolType returns the protocol type
func (sc *SerialConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeSerial
}

// Stats returns a snapshot of the connection counters
func (sc *SerialConnection) Stats() ProtocolStats {
	return sc.stats.snapshot()
}
