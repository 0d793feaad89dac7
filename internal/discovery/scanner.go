// internal/discovery/scanner.go
package discovery

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

// DeviceScanner finds candidate processor connections
type DeviceScanner interface {
	Scan(ctx context.Context) ([]*DiscoveredDevice, error)
	GetScannerType() string
	IsAvailable() bool
}

// DiscoveredDevice is one candidate connection url
type DiscoveredDevice struct {
	ConnectionType model.ConnectionType `json:"connection_type"`
	URL            string               `json:"url"`
	ReportedName   string               `json:"reported_name,omitempty"`
	Description    string               `json:"description,omitempty"`
	VID            string               `json:"vid,omitempty"`
	PID            string               `json:"pid,omitempty"`
	SerialNumber   string               `json:"serial_number,omitempty"`
	Responding     bool                 `json:"responding"`
	Confidence     float64              `json:"confidence"` // 0.0-1.0
}

// ScannerManager runs the registered scanners
type ScannerManager struct {
	scanners map[string]DeviceScanner
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]DeviceScanner),
		logger:   logger,
	}
}

// RegisterScanner registers a device scanner
func (sm *ScannerManager) RegisterScanner(scanner DeviceScanner) {
	scannerType := scanner.GetScannerType()
	sm.scanners[scannerType] = scanner
	sm.logger.Info("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every available scanner. A failing scanner is logged and
// skipped. Results are ordered by confidence, then url.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*DiscoveredDevice, error) {
	allDevices := []*DiscoveredDevice{}

	for _, scannerType := range sm.scannerTypes() {
		scanner := sm.scanners[scannerType]
		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}

		devices, err := scanner.Scan(ctx)
		if err != nil {
			sm.logger.Error("Scanner failed", zap.String("type", scannerType), zap.Error(err))
			continue
		}

		allDevices = append(allDevices, devices...)
		sm.logger.Info("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("devices_found", len(devices)),
		)
	}

	SortDevices(allDevices)
	return allDevices, nil
}

// ScanByType scans specific scanner type
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]*DiscoveredDevice, error) {
	scanner, exists := sm.scanners[scannerType]
	if !exists {
		return nil, fmt.Errorf("scanner type not found: %s", scannerType)
	}

	if !scanner.IsAvailable() {
		return nil, fmt.Errorf("scanner not available: %s", scannerType)
	}

	devices, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	SortDevices(devices)
	return devices, nil
}

// GetAvailableScanners returns list of available scanner types
func (sm *ScannerManager) GetAvailableScanners() []string {
	available := []string{}
	for _, scannerType := range sm.scannerTypes() {
		if sm.scanners[scannerType].IsAvailable() {
			available = append(available, scannerType)
		}
	}
	return available
}

func (sm *ScannerManager) scannerTypes() []string {
	types := make([]string, 0, len(sm.scanners))
	for t := range sm.scanners {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SortDevices orders devices by confidence, highest first, then by url
func SortDevices(devices []*DiscoveredDevice) {
	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].Confidence != devices[j].Confidence {
			return devices[i].Confidence > devices[j].Confidence
		}
		return devices[i].URL < devices[j].URL
	})
}
