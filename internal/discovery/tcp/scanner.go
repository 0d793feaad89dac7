// internal/discovery/tcp/scanner.go
package tcp

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/discovery"
	"mcintosh-service/internal/driver/mcintosh"
	"mcintosh-service/internal/model"
	"mcintosh-service/internal/protocol"
)

// Config for TCP scanner
type Config struct {
	Hosts       []string      `json:"hosts"`
	Port        int           `json:"port"`
	ConnTimeout time.Duration `json:"connection_timeout"`
}

// Scanner probes configured hosts on the IP control port
type Scanner struct {
	logger *zap.Logger
	config *Config
}

// NewScanner creates a new TCP scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if config.Port == 0 {
		config.Port = mcintosh.DefaultIPPort
	}
	if config.ConnTimeout <= 0 {
		config.ConnTimeout = 2 * time.Second
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "tcp")),
		config: config,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "tcp"
}

// IsAvailable reports whether any host is configured
func (s *Scanner) IsAvailable() bool {
	return len(s.config.Hosts) > 0
}

// Scan probes every host concurrently and returns those that answer !PONG
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	s.logger.Info("Starting TCP scan", zap.Int("hosts", len(s.config.Hosts)))

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		discovered = []*discovery.DiscoveredDevice{}
	)

	for _, host := range s.config.Hosts {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			device := s.probe(ctx, host)
			if device == nil {
				return
			}
			mu.Lock()
			discovered = append(discovered, device)
			mu.Unlock()
		}(host)
	}
	wg.Wait()

	s.logger.Info("TCP scan completed", zap.Int("devices_found", len(discovered)))
	return discovered, ctx.Err()
}

// probe connects to host, pings it and asks for its name
func (s *Scanner) probe(ctx context.Context, host string) *discovery.DiscoveredDevice {
	address := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		address = net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(s.config.Port))
	}
	url := "socket://" + address

	dial, err := protocol.NewDialer(url, protocol.TransportParams{Timeout: s.config.ConnTimeout}, s.logger)
	if err != nil {
		s.logger.Debug("Skipping host", zap.String("host", host), zap.Error(err))
		return nil
	}
	engine := protocol.NewEngine(dial, protocol.EngineConfig{Timeout: s.config.ConnTimeout, Target: url}, s.logger)
	defer engine.Close()

	probeCtx, cancel := context.WithTimeout(ctx, s.config.ConnTimeout)
	defer cancel()

	if err := engine.Connect(probeCtx); err != nil {
		s.logger.Debug("Host not reachable", zap.String("host", host), zap.Error(err))
		return nil
	}

	resp, err := engine.Send(probeCtx, mcintosh.Frame(mcintosh.PingCommand), true)
	if err != nil || !mcintosh.IsPong(resp) {
		s.logger.Debug("Host did not answer ping", zap.String("host", host), zap.String("response", resp), zap.Error(err))
		return nil
	}

	device := &discovery.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeTCP,
		URL:            url,
		Responding:     true,
		Confidence:     0.9,
	}

	resp, err = engine.Send(probeCtx, mcintosh.Frame(mcintosh.DeviceNameCommand), true)
	if err == nil {
		if name := mcintosh.DecodeText(resp, mcintosh.DeviceNamePrefix); name != nil {
			device.ReportedName = *name
			device.Confidence = 1.0
		}
	}
	return device
}
