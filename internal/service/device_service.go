// internal/service/device_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	internalDriver "mcintosh-service/internal/driver"
	"mcintosh-service/internal/driver/mcintosh"
	"mcintosh-service/internal/model"
	"mcintosh-service/internal/protocol"
	"mcintosh-service/internal/utils"
	"mcintosh-service/pkg/driver"
)

// ErrUnsupportedModel is returned when the configured model has no driver
var ErrUnsupportedModel = errors.New("unsupported model")

// EventPublisher receives device events
type EventPublisher interface {
	Publish(event model.DeviceEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.DeviceEvent) {}

// statsProvider is implemented by drivers that expose engine counters
type statsProvider interface {
	Stats() protocol.EngineStats
}

// SourceInfo is one selectable input with its effective name
type SourceInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// DeviceService owns the connection to the configured processor
type DeviceService struct {
	processor   driver.AudioProcessor
	profile     mcintosh.ModelProfile
	config      config.DeviceConfig
	publisher   EventPublisher
	logger      *utils.ServiceLogger
	auditLogger *utils.AuditLogger

	mu           sync.RWMutex
	status       model.DeviceStatus
	lastPing     *time.Time
	reportedName *string
	lastError    error
}

// NewDeviceService builds the driver for cfg.Model without connecting
func NewDeviceService(
	registry *internalDriver.Registry,
	cfg config.DeviceConfig,
	publisher EventPublisher,
	logger *zap.Logger,
) (*DeviceService, error) {
	if !registry.IsSupported(cfg.Model) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, cfg.Model)
	}
	profile, err := mcintosh.LookupProfile(cfg.Model)
	if err != nil {
		return nil, err
	}

	processor, err := registry.CreateDriver(cfg.Model, internalDriver.ConnectOptions{
		URL:      cfg.URL,
		BaudRate: cfg.BaudRate,
		Timeout:  cfg.CommandTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return NewDeviceServiceWithProcessor(processor, profile, cfg, publisher, logger), nil
}

// NewDeviceServiceWithProcessor wraps an already built processor
func NewDeviceServiceWithProcessor(
	processor driver.AudioProcessor,
	profile mcintosh.ModelProfile,
	cfg config.DeviceConfig,
	publisher EventPublisher,
	logger *zap.Logger,
) *DeviceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	ds := &DeviceService{
		processor:   processor,
		profile:     profile,
		config:      cfg,
		publisher:   publisher,
		logger:      utils.NewServiceLogger(logger, "device-service"),
		auditLogger: utils.NewAuditLogger(logger),
		status:      model.DeviceStatusOffline,
	}
	ds.auditLogger.LogConfiguration(profile.ID, RedactTarget(cfg.URL), cfg.PollInterval)
	return ds
}

// Processor returns the control surface
func (ds *DeviceService) Processor() driver.AudioProcessor {
	return ds.processor
}

// Profile returns the model profile
func (ds *DeviceService) Profile() mcintosh.ModelProfile {
	return ds.profile
}

// Connect opens the connection and sends the model's init command
func (ds *DeviceService) Connect(ctx context.Context) error {
	if ds.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ds.config.ConnectTimeout)
		defer cancel()
	}

	previous := ds.setStatus(model.DeviceStatusConnecting, nil)

	if err := ds.processor.Reconnect(ctx); err != nil {
		ds.setStatus(model.DeviceStatusError, err)
		ds.logger.Error("Failed to connect to processor",
			zap.String("model", ds.profile.ID),
			zap.String("target", RedactTarget(ds.config.URL)),
			zap.Error(err),
		)
		ds.publisher.Publish(model.NewDeviceEvent(model.EventDeviceError, ds.profile.ID, "device-service", "ERROR",
			model.DeviceErrorEventData{
				ErrorCode:    "CONNECT_FAILED",
				ErrorMessage: RedactError(err, ds.config.URL),
				ErrorTime:    time.Now(),
				Recovery:     true,
			}))
		return err
	}

	name, err := ds.processor.Device().Name(ctx)
	if err != nil {
		ds.logger.Warn("Failed to read device name", zap.Error(err))
	}

	ds.mu.Lock()
	ds.reportedName = name
	ds.mu.Unlock()
	ds.setStatus(model.DeviceStatusOnline, nil)

	ds.logger.Info("Processor connected",
		zap.String("model", ds.profile.ID),
		zap.String("target", RedactTarget(ds.config.URL)),
	)
	ds.publisher.Publish(model.NewDeviceEvent(model.EventDeviceConnected, ds.profile.ID, "device-service", "INFO",
		model.DeviceConnectedEventData{
			ReportedName:   name,
			ConnectionTime: time.Now(),
			PreviousStatus: previous,
			ConnectionType: ds.connectionType(),
		}))
	return nil
}

// Supervise reconnects whenever the connection is down until ctx is done
func (ds *DeviceService) Supervise(ctx context.Context) {
	delay := ds.config.RetryDelay
	if delay <= 0 {
		delay = 30 * time.Second
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if ds.processor.IsConnected() {
			continue
		}
		if ds.markLost() {
			ds.publisher.Publish(model.NewDeviceEvent(model.EventDeviceDisconnected, ds.profile.ID, "device-service", "WARNING", nil))
		}
		if err := ds.Connect(ctx); err != nil {
			ds.logger.Warn("Reconnect attempt failed", zap.Duration("retry_in", delay))
		}
	}
}

// Close closes the connection
func (ds *DeviceService) Close() error {
	ds.setStatus(model.DeviceStatusOffline, nil)
	return ds.processor.Close()
}

// Ping checks the processor answers and records the time it did
func (ds *DeviceService) Ping(ctx context.Context) (bool, error) {
	ok, err := ds.processor.Device().Ping(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		now := time.Now()
		ds.mu.Lock()
		ds.lastPing = &now
		ds.mu.Unlock()
	}
	return ok, nil
}

// Status returns the connection status
func (ds *DeviceService) Status() model.DeviceStatus {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.status == model.DeviceStatusOnline && !ds.processor.IsConnected() {
		return model.DeviceStatusOffline
	}
	return ds.status
}

// Info returns the processor description for API callers
func (ds *DeviceService) Info() *model.DeviceInfo {
	status := ds.Status()

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return &model.DeviceInfo{
		ModelID:        ds.profile.ID,
		ModelName:      ds.profile.Name,
		Description:    ds.profile.Description,
		ReportedName:   ds.reportedName,
		ConnectionType: ds.connectionType(),
		Status:         status,
		Capabilities:   ds.profile.Capabilities.CapabilityNames(),
		LastPing:       ds.lastPing,
	}
}

// ConnectionStats returns transport and engine counters
func (ds *DeviceService) ConnectionStats() *model.ConnectionStats {
	stats := &model.ConnectionStats{
		IsConnected:    ds.processor.IsConnected(),
		ConnectionType: string(ds.connectionType()),
	}
	sp, ok := ds.processor.(statsProvider)
	if !ok {
		return stats
	}
	es := sp.Stats()
	stats.BytesWritten = es.Transport.BytesWritten
	stats.BytesRead = es.Transport.BytesRead
	stats.CommandsSent = es.CommandsSent
	stats.Timeouts = es.Timeouts
	stats.NotConnected = es.NotConnected
	stats.ErrorCount = es.Transport.ErrorCount
	stats.LastActivity = es.Transport.LastActivity
	return stats
}

// SourceName returns the configured name for index, else the table name
func (ds *DeviceService) SourceName(index int) string {
	if name, ok := ds.config.Sources[index]; ok && name != "" {
		return name
	}
	name, _ := mcintosh.SourceName(index)
	return name
}

// Sources lists every input with its effective name
func (ds *DeviceService) Sources() []SourceInfo {
	sources := make([]SourceInfo, 0, mcintosh.SourceCount)
	for i := 0; i < mcintosh.SourceCount; i++ {
		sources = append(sources, SourceInfo{
			Index: i,
			Name:  ds.SourceName(i),
			Group: mcintosh.SourceGroup(i),
		})
	}
	return sources
}

// Diagnostics returns connection details with the target redacted
func (ds *DeviceService) Diagnostics() map[string]interface{} {
	ds.mu.RLock()
	var lastError string
	if ds.lastError != nil {
		lastError = RedactError(ds.lastError, ds.config.URL)
	}
	ds.mu.RUnlock()

	return map[string]interface{}{
		"model":           ds.profile.ID,
		"target":          RedactTarget(ds.config.URL),
		"connection_type": ds.connectionType(),
		"status":          ds.Status(),
		"last_error":      lastError,
		"poll_interval":   ds.config.PollInterval.String(),
		"stats":           ds.ConnectionStats(),
		"profile": map[string]interface{}{
			"timeout":                   ds.profile.Timeout.String(),
			"min_time_between_commands": ds.profile.MinTimeBetweenCommands.String(),
			"tested":                    ds.profile.Tested,
		},
	}
}

func (ds *DeviceService) connectionType() model.ConnectionType {
	endpoint, err := protocol.ParseURL(ds.config.URL)
	if err != nil {
		return model.ConnectionTypeSerial
	}
	return endpoint.Type
}

func (ds *DeviceService) setStatus(status model.DeviceStatus, err error) model.DeviceStatus {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	previous := ds.status
	ds.status = status
	if err != nil {
		ds.lastError = err
	}
	return previous
}

// markLost moves an online service offline and reports whether it was online
func (ds *DeviceService) markLost() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.status != model.DeviceStatusOnline {
		return false
	}
	ds.status = model.DeviceStatusOffline
	ds.lastError = protocol.ErrConnectionLost
	return true
}

// Redact returns err with the connection target removed from its message.
// errors.Is and errors.As still see the original error.
func (ds *DeviceService) Redact(err error) error {
	if err == nil {
		return nil
	}
	return &redactedError{msg: RedactError(err, ds.config.URL), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactTarget hides the host or serial port of a connection url
func RedactTarget(rawURL string) string {
	endpoint, err := protocol.ParseURL(rawURL)
	if err != nil {
		return "**REDACTED**"
	}
	if endpoint.Type == model.ConnectionTypeTCP {
		return "socket://**REDACTED**:" + strconv.Itoa(endpoint.TCPPort)
	}
	return "serial://**REDACTED**"
}

// RedactError removes the connection target from an error message
func RedactError(err error, rawURL string) string {
	msg := err.Error()
	endpoint, perr := protocol.ParseURL(rawURL)
	if perr != nil {
		return msg
	}
	replacements := []string{rawURL}
	if endpoint.Type == model.ConnectionTypeTCP {
		replacements = append(replacements, endpoint.Address(), endpoint.Host)
	} else {
		replacements = append(replacements, endpoint.Port)
	}
	// longest first so an address is replaced before its host
	sort.Slice(replacements, func(i, j int) bool { return len(replacements[i]) > len(replacements[j]) })
	for _, r := range replacements {
		if r == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, r, "**REDACTED**")
	}
	return msg
}
