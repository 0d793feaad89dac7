// internal/service/status_poller.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/pkg/driver"
)

// ErrPowerUnavailable is returned when a poll cannot read the power state
var ErrPowerUnavailable = errors.New("power state unavailable")

// StatusPoller periodically reads the processor state and publishes it
type StatusPoller struct {
	device    *DeviceService
	interval  time.Duration
	publisher EventPublisher
	logger    *zap.Logger

	mu           sync.RWMutex
	latest       *model.StateSnapshot
	lastErr      error
	lipsyncRange *model.LipsyncRange
}

// NewStatusPoller creates a poller. interval <= 0 falls back to 10s.
func NewStatusPoller(device *DeviceService, interval time.Duration, publisher EventPublisher, logger *zap.Logger) *StatusPoller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &StatusPoller{
		device:    device,
		interval:  interval,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "status-poller")),
	}
}

// PollOnce performs exactly one poll cycle. Only the power query is
// required; any other field that fails is left out of the snapshot.
func (p *StatusPoller) PollOnce(ctx context.Context) (*model.StateSnapshot, error) {
	proc := p.device.Processor()
	caps := p.device.Profile().Capabilities

	power, err := proc.Power().Get(ctx)
	if err == nil && power == nil {
		err = ErrPowerUnavailable
	}
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return nil, fmt.Errorf("poll power: %w", err)
	}

	snap := &model.StateSnapshot{
		ModelID:   p.device.Profile().ID,
		Power:     *power,
		UpdatedAt: time.Now(),
	}

	if snap.Power {
		snap.Volume = p.readInt(ctx, "volume", proc.Volume().Get)
		snap.Muted = p.readBool(ctx, "mute", proc.Mute().Get)

		src, err := proc.Source().Get(ctx)
		if err != nil {
			p.fieldFailed("source", err)
		} else if src != nil {
			name := p.sourceName(src)
			snap.SourceID = &src.Index
			snap.SourceName = &name
		}

		if caps.Loudness {
			snap.Loudness = p.readBool(ctx, "loudness", proc.Loudness().Get)
		}
		if caps.AudioTrim {
			snap.Trims.Bass = p.readTrim(ctx, "bass", func(ctx context.Context) (*int, error) {
				return proc.BassTreble().Get(ctx, driver.ToneBass)
			})
			snap.Trims.Treble = p.readTrim(ctx, "treble", func(ctx context.Context) (*int, error) {
				return proc.BassTreble().Get(ctx, driver.ToneTreble)
			})
		}
		if caps.Lipsync {
			snap.Lipsync = p.readInt(ctx, "lipsync", proc.Lipsync().Get)
			snap.LipsyncRange = p.readLipsyncRange(ctx, proc.Lipsync())
		}
		if caps.ChannelTrim {
			snap.Trims.Center = p.readChannel(ctx, proc.ChannelTrim(), driver.ChannelCenter)
			snap.Trims.LFE = p.readChannel(ctx, proc.ChannelTrim(), driver.ChannelLFE)
			snap.Trims.Surrounds = p.readChannel(ctx, proc.ChannelTrim(), driver.ChannelSurrounds)
			snap.Trims.Height = p.readChannel(ctx, proc.ChannelTrim(), driver.ChannelHeight)
		}
	}

	p.mu.Lock()
	p.latest = snap
	p.lastErr = nil
	p.mu.Unlock()

	return snap, nil
}

// Run polls every interval until ctx is done, publishing each snapshot
func (p *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !p.device.Processor().IsConnected() {
			continue
		}
		snap, err := p.PollOnce(ctx)
		if err != nil {
			p.logger.Warn("Poll cycle failed", zap.Error(err))
			continue
		}
		p.publisher.Publish(model.NewDeviceEvent(model.EventStatusChange, snap.ModelID, "status-poller", "INFO", snap))
	}
}

// Latest returns the last successful snapshot, or nil
func (p *StatusPoller) Latest() *model.StateSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// LastError returns the error of the last failed cycle, or nil
func (p *StatusPoller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// sourceName prefers a configured name, then the reply, then the table
func (p *StatusPoller) sourceName(src *driver.Source) string {
	if name, ok := p.device.config.Sources[src.Index]; ok && name != "" {
		return name
	}
	if src.Name != "" {
		return src.Name
	}
	return p.device.SourceName(src.Index)
}

// readLipsyncRange fetches the range once and reuses it afterwards
func (p *StatusPoller) readLipsyncRange(ctx context.Context, lipsync driver.LipsyncControl) *model.LipsyncRange {
	p.mu.RLock()
	cached := p.lipsyncRange
	p.mu.RUnlock()
	if cached != nil {
		return cached
	}

	r, err := lipsync.GetRange(ctx)
	if err != nil {
		p.fieldFailed("lipsync_range", err)
		return nil
	}
	if r == nil {
		return nil
	}

	cached = &model.LipsyncRange{Min: r.Min, Max: r.Max}
	p.mu.Lock()
	p.lipsyncRange = cached
	p.mu.Unlock()
	return cached
}

func (p *StatusPoller) readChannel(ctx context.Context, trims driver.ChannelTrimControl, ch driver.Channel) *decimal.Decimal {
	return p.readTrim(ctx, string(ch), func(ctx context.Context) (*int, error) {
		return trims.Get(ctx, ch)
	})
}

func (p *StatusPoller) readTrim(ctx context.Context, field string, get func(context.Context) (*int, error)) *decimal.Decimal {
	raw := p.readInt(ctx, field, get)
	if raw == nil {
		return nil
	}
	db := model.TrimToDB(*raw)
	return &db
}

func (p *StatusPoller) readInt(ctx context.Context, field string, get func(context.Context) (*int, error)) *int {
	v, err := get(ctx)
	if err != nil {
		p.fieldFailed(field, err)
		return nil
	}
	return v
}

func (p *StatusPoller) readBool(ctx context.Context, field string, get func(context.Context) (*bool, error)) *bool {
	v, err := get(ctx)
	if err != nil {
		p.fieldFailed(field, err)
		return nil
	}
	return v
}

func (p *StatusPoller) fieldFailed(field string, err error) {
	p.logger.Debug("Failed to read field", zap.String("field", field), zap.Error(err))
}
