// internal/protocol/factory.go
package protocol

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

// DefaultTCPPort is the processor's IP control port
const DefaultTCPPort = 84

// Endpoint is a parsed connection url
type Endpoint struct {
	Type model.ConnectionType
	// Port is the serial device path for serial endpoints
	Port string
	Host string
	// TCPPort is only set for TCP endpoints
	TCPPort int
}

// ParseURL resolves a connection url. socket://host[:port] selects TCP; a
// device path, optionally prefixed with serial://, selects serial.
func ParseURL(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("connection url is required")
	}

	// Windows COM ports and bare paths carry no scheme
	if !strings.Contains(raw, "://") {
		return Endpoint{Type: model.ConnectionTypeSerial, Port: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid connection url %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "socket", "tcp":
		host := u.Hostname()
		if host == "" {
			return Endpoint{}, fmt.Errorf("connection url %q has no host", raw)
		}
		port := DefaultTCPPort
		if p := u.Port(); p != "" {
			port, err = strconv.Atoi(p)
			if err != nil || port < 1 || port > 65535 {
				return Endpoint{}, fmt.Errorf("invalid port in connection url %q", raw)
			}
		}
		return Endpoint{Type: model.ConnectionTypeTCP, Host: host, TCPPort: port}, nil
	case "serial", "file":
		path := u.Host + u.Path
		if path == "" {
			return Endpoint{}, fmt.Errorf("connection url %q has no device path", raw)
		}
		return Endpoint{Type: model.ConnectionTypeSerial, Port: path}, nil
	default:
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// Address returns host:port for TCP endpoints and the device path otherwise
func (e Endpoint) Address() string {
	if e.Type == model.ConnectionTypeTCP {
		return net.JoinHostPort(e.Host, strconv.Itoa(e.TCPPort))
	}
	return e.Port
}

// TransportParams carries the serial line settings and I/O timeout for a transport
type TransportParams struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	Timeout  time.Duration
}

// NewDialer returns a Dialer that builds the transport selected by rawURL.
// The url is validated immediately; the transport is created per Connect.
func NewDialer(rawURL string, params TransportParams, logger *zap.Logger) (Dialer, error) {
	endpoint, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch endpoint.Type {
	case model.ConnectionTypeTCP:
		return func(h Handler) (Transport, error) {
			return CreateTCPTransport(endpoint, params, h, logger), nil
		}, nil
	default:
		if err := ValidateBaudRate(params.BaudRate); err != nil {
			return nil, err
		}
		return func(h Handler) (Transport, error) {
			return CreateSerialTransport(endpoint, params, h, logger), nil
		}, nil
	}
}

// CreateSerialTransport creates a serial transport for endpoint
func CreateSerialTransport(endpoint Endpoint, params TransportParams, h Handler, logger *zap.Logger) Transport {
	config := &SerialConfig{
		Port:     endpoint.Port,
		BaudRate: params.BaudRate,
		DataBits: params.DataBits,
		StopBits: params.StopBits,
		Parity:   params.Parity,
		Timeout:  params.Timeout,
	}
	if config.DataBits == 0 {
		config.DataBits = 8
	}

	logger.Info("Creating serial protocol",
		zap.String("port", config.Port),
		zap.Int("baud_rate", config.BaudRate),
	)
	return NewSerialConnection(config, h, logger)
}

// CreateTCPTransport creates a TCP transport for endpoint
func CreateTCPTransport(endpoint Endpoint, params TransportParams, h Handler, logger *zap.Logger) Transport {
	config := &TCPConfig{
		Host:         endpoint.Host,
		Port:         endpoint.TCPPort,
		KeepAlive:    true,
		BufferSize:   1024,
		Timeout:      params.Timeout,
		WriteTimeout: params.Timeout,
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	logger.Info("Creating TCP protocol",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
	)
	return NewTCPConnection(config, h, logger)
}

// ValidateBaudRate rejects rates the processor's RS-232 port does not offer
func ValidateBaudRate(rate int) error {
	validRates := []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}
	for _, validRate := range validRates {
		if rate == validRate {
			return nil
		}
	}
	return fmt.Errorf("invalid baud rate: %d", rate)
}
