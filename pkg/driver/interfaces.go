// pkg/driver/interfaces.go
package driver

import (
	"context"
)

// Setters return the device's raw reply. Getters return nil with a nil error
// when the reply could not be decoded or the model lacks the feature.

// AudioProcessor is the control surface of a connected processor
type AudioProcessor interface {
	Power() PowerControl
	Volume() VolumeControl
	Mute() SwitchControl
	Source() SourceControl
	Zone2() Zone2Control
	BassTreble() BassTrebleControl
	Loudness() LoudnessControl
	Lipsync() LipsyncControl
	ChannelTrim() ChannelTrimControl
	Device() DeviceControl

	// Connection management
	IsConnected() bool
	Reconnect(ctx context.Context) error
	Close() error
}

// SwitchControl is an on/off feature with a toggle command
type SwitchControl interface {
	On(ctx context.Context) (string, error)
	Off(ctx context.Context) (string, error)
	Toggle(ctx context.Context) (string, error)
	Get(ctx context.Context) (*bool, error)
}

// PowerControl switches the processor or a zone on and off
type PowerControl interface {
	SwitchControl
}

// LevelControl is an absolute level with relative steps
type LevelControl interface {
	Set(ctx context.Context, level int) (string, error)
	Up(ctx context.Context, amount int) (string, error)
	Down(ctx context.Context, amount int) (string, error)
	Get(ctx context.Context) (*int, error)
}

// VolumeControl is the main zone volume
type VolumeControl interface {
	LevelControl
	Max(ctx context.Context) (*int, error)
}

// SelectorControl picks an input
type SelectorControl interface {
	Set(ctx context.Context, index int) (string, error)
	Get(ctx context.Context) (*Source, error)
	Next(ctx context.Context) (string, error)
	Previous(ctx context.Context) (string, error)
}

// SourceControl is the main zone input selector
type SourceControl interface {
	SelectorControl
	Info(ctx context.Context, index int) (*Source, error)
}

// Zone2Control mirrors power, volume, mute and source for zone 2
type Zone2Control interface {
	Power() PowerControl
	Volume() LevelControl
	Mute() SwitchControl
	Source() SelectorControl
}

// BassTrebleControl adjusts tone trims in tenths of a dB
type BassTrebleControl interface {
	Get(ctx context.Context, tone Tone) (*int, error)
	Set(ctx context.Context, tone Tone, level int) (string, error)
	Up(ctx context.Context, tone Tone) (string, error)
	Down(ctx context.Context, tone Tone) (string, error)
}

// LoudnessControl toggles loudness compensation
type LoudnessControl interface {
	On(ctx context.Context) (string, error)
	Off(ctx context.Context) (string, error)
	Get(ctx context.Context) (*bool, error)
}

// LipsyncControl adjusts audio delay
type LipsyncControl interface {
	Get(ctx context.Context) (*int, error)
	Set(ctx context.Context, value int) (string, error)
	Up(ctx context.Context) (string, error)
	Down(ctx context.Context) (string, error)
	GetRange(ctx context.Context) (*Range, error)
}

// ChannelTrimControl adjusts per-channel levels in tenths of a dB
type ChannelTrimControl interface {
	Get(ctx context.Context, ch Channel) (*int, error)
	Set(ctx context.Context, ch Channel, level int) (string, error)
	Up(ctx context.Context, ch Channel) (string, error)
	Down(ctx context.Context, ch Channel) (string, error)
}

// DeviceControl identifies the processor
type DeviceControl interface {
	Name(ctx context.Context) (*string, error)
	Ping(ctx context.Context) (bool, error)
}
