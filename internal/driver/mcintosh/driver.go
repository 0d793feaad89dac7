// internal/driver/mcintosh/driver.go
package mcintosh

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/protocol"
	"mcintosh-service/internal/utils"
	"mcintosh-service/pkg/driver"
)

// Driver controls one McIntosh processor over a single connection
type Driver struct {
	profile ModelProfile
	url     string
	conn    model.ConnectionType
	engine  *protocol.Engine
	logger  *utils.DeviceLogger

	power       *switchControl
	volume      *volumeControl
	mute        *switchControl
	source      *sourceControl
	zone2       *zone2Control
	bassTreble  *bassTrebleControl
	loudness    *switchControl
	lipsync     *lipsyncControl
	channelTrim *channelTrimControl
	device      *deviceControl
}

var _ driver.AudioProcessor = (*Driver)(nil)

type options struct {
	baudRate    int
	timeout     time.Duration
	minInterval time.Duration
	dialer      protocol.Dialer
}

// Option overrides a profile default for one client
type Option func(*options)

// WithBaudRate overrides the profile's serial baud rate
func WithBaudRate(rate int) Option {
	return func(o *options) { o.baudRate = rate }
}

// WithTimeout overrides the per-command timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMinInterval overrides the minimum spacing between commands
func WithMinInterval(d time.Duration) Option {
	return func(o *options) { o.minInterval = d }
}

// WithDialer replaces the url-selected transport
func WithDialer(dial protocol.Dialer) Option {
	return func(o *options) { o.dialer = dial }
}

// Connect resolves the profile for modelID, opens url and sends the model's
// initialization command. The client is returned only once it is ready.
func Connect(ctx context.Context, modelID, url string, logger *zap.Logger, opts ...Option) (*Driver, error) {
	d, err := New(modelID, url, logger, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.Reconnect(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// New builds a client without opening the connection
func New(modelID, url string, logger *zap.Logger, opts ...Option) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	profile, err := LookupProfile(modelID)
	if err != nil {
		return nil, err
	}

	o := options{
		baudRate:    profile.Serial.BaudRate,
		timeout:     profile.Timeout,
		minInterval: profile.MinTimeBetweenCommands,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baudRate != profile.Serial.BaudRate {
		logger.Debug("Overriding serial baud rate", zap.Int("baud_rate", o.baudRate))
	}

	deviceLogger := utils.NewDeviceLogger(logger, profile.ID, url)

	conn := model.ConnectionTypeSerial
	dial := o.dialer
	if dial == nil {
		endpoint, err := protocol.ParseURL(url)
		if err != nil {
			return nil, &OpenError{Model: profile.ID, URL: url, Err: err}
		}
		conn = endpoint.Type
		dial, err = protocol.NewDialer(url, protocol.TransportParams{
			BaudRate: o.baudRate,
			DataBits: profile.Serial.DataBits,
			StopBits: profile.Serial.StopBits,
			Parity:   profile.Serial.Parity,
			Timeout:  o.timeout,
		}, deviceLogger.Logger)
		if err != nil {
			return nil, &OpenError{Model: profile.ID, URL: url, Err: err}
		}
	} else if endpoint, err := protocol.ParseURL(url); err == nil {
		conn = endpoint.Type
	}

	engine := protocol.NewEngine(dial, protocol.EngineConfig{
		MinInterval: o.minInterval,
		Timeout:     o.timeout,
		Target:      url,
	}, deviceLogger.Logger)

	d := &Driver{
		profile: profile,
		url:     url,
		conn:    conn,
		engine:  engine,
		logger:  deviceLogger,
	}
	d.initControls()
	return d, nil
}

// Reconnect opens the connection if needed and sends the init command
func (d *Driver) Reconnect(ctx context.Context) error {
	if err := d.engine.Connect(ctx); err != nil {
		d.logger.LogConnection("open", false, err)
		return &OpenError{Model: d.profile.ID, URL: d.url, Err: err}
	}
	if d.profile.InitCommand != "" {
		if _, err := d.engine.Send(ctx, Frame(d.profile.InitCommand), true); err != nil {
			d.logger.LogConnection("init", false, err)
			_ = d.engine.Close()
			return &OpenError{Model: d.profile.ID, URL: d.url, Err: fmt.Errorf("init command %s: %w", d.profile.InitCommand, err)}
		}
	}
	d.logger.LogConnection("open", true, nil)
	return nil
}

// Close releases the connection
func (d *Driver) Close() error {
	return d.engine.Close()
}

// IsConnected reports whether the connection is up
func (d *Driver) IsConnected() bool {
	return d.engine.IsConnected()
}

// Profile returns the model profile the client was built with
func (d *Driver) Profile() ModelProfile {
	return d.profile
}

// URL returns the connection url
func (d *Driver) URL() string {
	return d.url
}

// ConnectionType returns the transport kind selected by the url
func (d *Driver) ConnectionType() model.ConnectionType {
	return d.conn
}

// Stats returns engine and transport counters
func (d *Driver) Stats() protocol.EngineStats {
	return d.engine.Stats()
}

func (d *Driver) Power() driver.PowerControl             { return d.power }
func (d *Driver) Volume() driver.VolumeControl           { return d.volume }
func (d *Driver) Mute() driver.SwitchControl             { return d.mute }
func (d *Driver) Source() driver.SourceControl           { return d.source }
func (d *Driver) Zone2() driver.Zone2Control             { return d.zone2 }
func (d *Driver) BassTreble() driver.BassTrebleControl   { return d.bassTreble }
func (d *Driver) Loudness() driver.LoudnessControl       { return d.loudness }
func (d *Driver) Lipsync() driver.LipsyncControl         { return d.lipsync }
func (d *Driver) ChannelTrim() driver.ChannelTrimControl { return d.channelTrim }
func (d *Driver) Device() driver.DeviceControl           { return d.device }

// send issues cmd and waits for its reply
func (d *Driver) send(ctx context.Context, cmd string) (string, error) {
	start := time.Now()
	resp, err := d.engine.Send(ctx, Frame(cmd), true)
	d.logger.LogCommand(cmd, time.Since(start), err)
	return resp, err
}

// supported logs and reports false when the model lacks feature
func (d *Driver) supported(ok bool, feature string) bool {
	if !ok {
		d.logger.Warn("Feature not supported by model",
			zap.String("feature", feature),
			zap.String("model", d.profile.ID),
		)
	}
	return ok
}

func (d *Driver) unexpected(cmd, resp string) {
	d.logger.Debug("Unexpected response",
		zap.String("command", cmd),
		zap.String("response", resp),
	)
}
