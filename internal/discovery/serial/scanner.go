// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"mcintosh-service/internal/discovery"
	"mcintosh-service/internal/model"
)

// USB to RS-232 adapter vendors commonly used with the processors
var adapterVendors = map[string]string{
	"0403": "FTDI",
	"067B": "Prolific",
	"10C4": "Silicon Labs",
	"1A86": "WCH",
}

// PortLister returns the serial ports present on the host
type PortLister func() ([]*enumerator.PortDetails, error)

// Config for serial scanner
type Config struct {
	OnlyUSB bool `json:"only_usb"`
}

// Scanner lists serial ports. Ports are not opened, so a running
// connection on one of them is left alone.
type Scanner struct {
	logger *zap.Logger
	config *Config
	list   PortLister
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	return NewScannerWithLister(logger, config, enumerator.GetDetailedPortsList)
}

// NewScannerWithLister creates a scanner with a custom port source
func NewScannerWithLister(logger *zap.Logger, config *Config, list PortLister) *Scanner {
	if config == nil {
		config = &Config{}
	}
	return &Scanner{
		logger: logger.With(zap.String("scanner", "serial")),
		config: config,
		list:   list,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable checks if serial scanning is available
func (s *Scanner) IsAvailable() bool {
	return s.list != nil
}

// Scan reports every serial port as a candidate connection
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	s.logger.Info("Starting serial port scan")

	ports, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	discovered := []*discovery.DiscoveredDevice{}
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return discovered, ctx.Err()
		default:
		}

		if s.config.OnlyUSB && !port.IsUSB {
			continue
		}
		discovered = append(discovered, describePort(port))
	}

	s.logger.Info("Serial scan completed", zap.Int("ports_found", len(discovered)))
	return discovered, nil
}

func describePort(port *enumerator.PortDetails) *discovery.DiscoveredDevice {
	device := &discovery.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeSerial,
		URL:            port.Name,
		Description:    port.Product,
		Confidence:     0.1,
	}
	// COM ports need a scheme, device paths parse as they are
	if !strings.HasPrefix(port.Name, "/") {
		device.URL = "serial://" + port.Name
	}

	if !port.IsUSB {
		return device
	}

	device.VID = strings.ToUpper(port.VID)
	device.PID = strings.ToUpper(port.PID)
	device.SerialNumber = port.SerialNumber
	device.Confidence = 0.3
	if vendor, ok := adapterVendors[device.VID]; ok {
		device.Confidence = 0.5
		if device.Description == "" {
			device.Description = vendor + " USB serial adapter"
		}
	}
	return device
}
