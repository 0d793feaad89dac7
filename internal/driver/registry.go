// internal/driver/registry.go
package driver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/pkg/driver"
)

// ConnectOptions carries the per-installation connection settings
type ConnectOptions struct {
	URL      string
	BaudRate int           // 0 keeps the model default
	Timeout  time.Duration // 0 keeps the model default
}

// DriverFactory builds an unconnected processor client. Callers open it
// with Reconnect.
type DriverFactory func(modelID string, opts ConnectOptions, logger *zap.Logger) (driver.AudioProcessor, error)

// ModelInfo describes a registered model
type ModelInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tested       bool     `json:"tested"`
	Capabilities []string `json:"capabilities"`
}

type registration struct {
	info    ModelInfo
	factory DriverFactory
}

// Registry manages driver registration and creation
type Registry struct {
	drivers map[string]registration
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewRegistry creates a new driver registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		drivers: make(map[string]registration),
		logger:  logger,
	}
}

func normalize(modelID string) string {
	return strings.ToLower(strings.TrimSpace(modelID))
}

// Register registers a driver factory for one model
func (r *Registry) Register(info ModelInfo, factory DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info.ID = normalize(info.ID)
	r.drivers[info.ID] = registration{info: info, factory: factory}
	r.logger.Info("Driver registered",
		zap.String("model", info.ID),
		zap.Bool("tested", info.Tested),
	)
}

// CreateDriver creates a driver instance for modelID
func (r *Registry) CreateDriver(modelID string, opts ConnectOptions) (driver.AudioProcessor, error) {
	r.mu.RLock()
	reg, exists := r.drivers[normalize(modelID)]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no driver found for model=%s", modelID)
	}
	if !reg.info.Tested {
		r.logger.Warn("Model has not been tested against real hardware", zap.String("model", reg.info.ID))
	}
	return reg.factory(reg.info.ID, opts, r.logger)
}

// ListModels returns all registered models sorted by id
func (r *Registry) ListModels() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]ModelInfo, 0, len(r.drivers))
	for _, reg := range r.drivers {
		models = append(models, reg.info)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models
}

// GetModel returns the registration info for modelID
func (r *Registry) GetModel(modelID string) (ModelInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.drivers[normalize(modelID)]
	return reg.info, exists
}

// IsSupported checks if a model is registered
func (r *Registry) IsSupported(modelID string) bool {
	_, exists := r.GetModel(modelID)
	return exists
}
