// internal/driver/registry_init.go
package driver

import (
	"go.uber.org/zap"

	"mcintosh-service/internal/driver/mcintosh"
	"mcintosh-service/pkg/driver"
)

// RegisterDefaultDrivers registers all default processor drivers
func RegisterDefaultDrivers(registry *Registry, logger *zap.Logger) {
	registerMcIntoshDrivers(registry, logger)
}

// registerMcIntoshDrivers registers one factory per McIntosh model profile
func registerMcIntoshDrivers(registry *Registry, logger *zap.Logger) {
	models := mcintosh.SupportedModels()
	for _, id := range models {
		profile, err := mcintosh.LookupProfile(id)
		if err != nil {
			continue
		}
		registry.Register(ModelInfo{
			ID:           profile.ID,
			Name:         profile.Name,
			Description:  profile.Description,
			Tested:       profile.Tested,
			Capabilities: profile.Capabilities.CapabilityNames(),
		}, newMcIntoshDriver)
	}

	logger.Info("McIntosh processor drivers registered",
		zap.Int("models", len(models)),
	)
}

func newMcIntoshDriver(modelID string, opts ConnectOptions, logger *zap.Logger) (driver.AudioProcessor, error) {
	var options []mcintosh.Option
	if opts.BaudRate > 0 {
		options = append(options, mcintosh.WithBaudRate(opts.BaudRate))
	}
	if opts.Timeout > 0 {
		options = append(options, mcintosh.WithTimeout(opts.Timeout))
	}
	d, err := mcintosh.New(modelID, opts.URL, logger, options...)
	if err != nil {
		return nil, err
	}
	return d, nil
}
