// internal/service/discovery_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	"mcintosh-service/internal/discovery"
	"mcintosh-service/internal/discovery/serial"
	"mcintosh-service/internal/discovery/tcp"
	"mcintosh-service/internal/driver"
	"mcintosh-service/internal/utils"
)

// DiscoveryService finds candidate connections and checks them
type DiscoveryService struct {
	driverRegistry *driver.Registry
	scannerManager *discovery.ScannerManager
	config         config.DiscoveryConfig
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(
	driverRegistry *driver.Registry,
	cfg config.DiscoveryConfig,
	logger *zap.Logger,
) *DiscoveryService {
	ds := &DiscoveryService{
		driverRegistry: driverRegistry,
		scannerManager: discovery.NewScannerManager(logger),
		config:         cfg,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}

	ds.initializeScanners()

	return ds
}

// NewDiscoveryServiceWithScanners uses the given scanners instead of the defaults
func NewDiscoveryServiceWithScanners(
	driverRegistry *driver.Registry,
	cfg config.DiscoveryConfig,
	logger *zap.Logger,
	scanners ...discovery.DeviceScanner,
) *DiscoveryService {
	ds := &DiscoveryService{
		driverRegistry: driverRegistry,
		scannerManager: discovery.NewScannerManager(logger),
		config:         cfg,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}
	for _, s := range scanners {
		ds.scannerManager.RegisterScanner(s)
	}
	return ds
}

// initializeScanners registers all available scanners
func (ds *DiscoveryService) initializeScanners() {
	ds.scannerManager.RegisterScanner(serial.NewScanner(ds.logger.Logger, &serial.Config{
		OnlyUSB: ds.config.SerialOnlyUSB,
	}))
	ds.scannerManager.RegisterScanner(tcp.NewScanner(ds.logger.Logger, &tcp.Config{
		Hosts:       ds.config.TCPHosts,
		Port:        ds.config.TCPPort,
		ConnTimeout: ds.config.ProbeTimeout,
	}))

	ds.logger.Info("Discovery scanners initialized",
		zap.Strings("available_scanners", ds.scannerManager.GetAvailableScanners()),
	)
}

// ScanDevices runs the requested scanners
func (ds *DiscoveryService) ScanDevices(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	scanType := req.ScanType
	if scanType == "" {
		scanType = "all"
	}
	ds.logger.Info("Starting device scan", zap.String("type", scanType))

	if req.Timeout != "" {
		timeout, err := time.ParseDuration(req.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", req.Timeout, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	var devices []*discovery.DiscoveredDevice
	var err error

	switch scanType {
	case "all":
		devices, err = ds.scannerManager.ScanAll(ctx)
	case "serial", "tcp":
		devices, err = ds.scannerManager.ScanByType(ctx, scanType)
	default:
		return nil, fmt.Errorf("unsupported scan type: %s", scanType)
	}

	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	ds.logger.Info("Device scan completed",
		zap.Int("devices_found", len(devices)),
		zap.String("scan_type", scanType),
	)

	return &ScanResult{
		ScanType: scanType,
		Devices:  devices,
		Duration: time.Since(start).String(),
	}, nil
}

// VerifyConnection opens url as modelID, reads the device name and closes
func (ds *DiscoveryService) VerifyConnection(ctx context.Context, req *VerifyRequest) (*VerifyResult, error) {
	processor, err := ds.driverRegistry.CreateDriver(req.Model, driver.ConnectOptions{
		URL:      req.URL,
		BaudRate: req.BaudRate,
		Timeout:  ds.config.ProbeTimeout,
	})
	if err != nil {
		return nil, err
	}
	defer processor.Close()

	result := &VerifyResult{Model: req.Model, Target: RedactTarget(req.URL)}
	if err := processor.Reconnect(ctx); err != nil {
		result.Error = RedactError(err, req.URL)
		return result, nil
	}
	result.Connected = true

	ok, err := processor.Device().Ping(ctx)
	result.Responding = err == nil && ok

	name, err := processor.Device().Name(ctx)
	if err == nil && name != nil {
		result.ReportedName = *name
	}

	ds.logger.Info("Connection verified",
		zap.String("model", req.Model),
		zap.String("target", result.Target),
		zap.Bool("responding", result.Responding),
	)
	return result, nil
}

// GetSupportedModels lists the models a connection can be opened as
func (ds *DiscoveryService) GetSupportedModels() []driver.ModelInfo {
	return ds.driverRegistry.ListModels()
}

// GetAvailableScanners lists the scanners that can run on this host
func (ds *DiscoveryService) GetAvailableScanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}

// DTOs for Discovery Service

// ScanRequest represents scan request
type ScanRequest struct {
	ScanType string `json:"scan_type" form:"scan_type"` // all, serial, tcp
	Timeout  string `json:"timeout" form:"timeout"`
}

// ScanResult is the outcome of one scan
type ScanResult struct {
	ScanType string                        `json:"scan_type"`
	Devices  []*discovery.DiscoveredDevice `json:"devices"`
	Duration string                        `json:"duration"`
}

// VerifyRequest names a candidate connection
type VerifyRequest struct {
	Model    string `json:"model" binding:"required"`
	URL      string `json:"url" binding:"required"`
	BaudRate int    `json:"baud_rate"`
}

// VerifyResult reports whether a processor answered at the target
type VerifyResult struct {
	Model        string `json:"model"`
	Target       string `json:"target"`
	Connected    bool   `json:"connected"`
	Responding   bool   `json:"responding"`
	ReportedName string `json:"reported_name,omitempty"`
	Error        string `json:"error,omitempty"`
}
