// internal/driver/mcintosh/controls.go
package mcintosh

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mcintosh-service/pkg/driver"
)

func (d *Driver) initControls() {
	caps := d.profile.Capabilities

	d.power = &switchControl{
		d: d, feature: "power", enabled: true,
		on: cmdPowerOn, off: cmdPowerOff, toggle: cmdPowerToggle,
		query: Query(kwPower), prefixes: []string{Prefix(kwPower)},
	}
	d.volume = &volumeControl{
		levelControl: levelControl{d: d, feature: "volume", enabled: true, keyword: kwVolume, clamp: ClampVolume},
	}
	d.mute = &switchControl{
		d: d, feature: "mute", enabled: true,
		on: cmdMuteOn, off: cmdMuteOff, toggle: cmdMuteToggle,
		query: Query(kwMute), prefixes: []string{Prefix(kwMute)},
	}
	d.source = &sourceControl{
		selectorControl: selectorControl{d: d, feature: "source", enabled: true, keyword: kwSource},
	}
	d.zone2 = &zone2Control{
		power: &switchControl{
			d: d, feature: "zone_2", enabled: caps.Zone2,
			on: cmdZone2PowerOn, off: cmdZone2PowerOff, toggle: cmdZone2PowerToggle,
			// some firmware answers the zone query with the main power prefix
			query: Query(kwZone2Power), prefixes: []string{Prefix(kwZone2Power), Prefix(kwPower)},
		},
		volume: &levelControl{d: d, feature: "zone_2", enabled: caps.Zone2, keyword: kwZone2Volume, clamp: ClampVolume},
		mute: &switchControl{
			d: d, feature: "zone_2", enabled: caps.Zone2,
			on: cmdZone2MuteOn, off: cmdZone2MuteOff, toggle: cmdZone2MuteToggle,
			query: Query(kwZone2Mute), prefixes: []string{Prefix(kwZone2Mute)},
		},
		source: &selectorControl{d: d, feature: "zone_2", enabled: caps.Zone2, keyword: kwZone2Source},
	}
	d.bassTreble = &bassTrebleControl{d: d, enabled: caps.AudioTrim}
	d.loudness = &switchControl{
		d: d, feature: "loudness", enabled: caps.Loudness,
		on: Set(kwLoudness, 1), off: Set(kwLoudness, 0),
		query: Query(kwLoudness), prefixes: []string{Prefix(kwLoudness)},
	}
	d.lipsync = &lipsyncControl{d: d, enabled: caps.Lipsync}
	d.channelTrim = &channelTrimControl{d: d, enabled: caps.ChannelTrim}
	d.device = &deviceControl{d: d}
}

// switchControl drives an on/off feature
type switchControl struct {
	d        *Driver
	feature  string
	enabled  bool
	on       string
	off      string
	toggle   string
	query    string
	prefixes []string
}

func (c *switchControl) command(ctx context.Context, cmd string) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	return c.d.send(ctx, cmd)
}

func (c *switchControl) On(ctx context.Context) (string, error) {
	return c.command(ctx, c.on)
}

func (c *switchControl) Off(ctx context.Context) (string, error) {
	return c.command(ctx, c.off)
}

func (c *switchControl) Toggle(ctx context.Context) (string, error) {
	if c.toggle == "" {
		return "", fmt.Errorf("%w: %s has no toggle", ErrInvalidControl, c.feature)
	}
	return c.command(ctx, c.toggle)
}

func (c *switchControl) Get(ctx context.Context) (*bool, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return nil, nil
	}
	resp, err := c.d.send(ctx, c.query)
	if err != nil {
		return nil, err
	}
	v := DecodeBool(resp, c.prefixes...)
	if v == nil {
		c.d.unexpected(c.query, resp)
	}
	return v, nil
}

// levelControl drives an absolute level with relative steps
type levelControl struct {
	d       *Driver
	feature string
	enabled bool
	keyword string
	clamp   func(int) int
}

func (c *levelControl) Set(ctx context.Context, level int) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	if c.clamp != nil {
		level = c.clamp(level)
	}
	return c.d.send(ctx, Set(c.keyword, level))
}

func (c *levelControl) Up(ctx context.Context, amount int) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	return c.d.send(ctx, Adjust(c.keyword, true, amount))
}

func (c *levelControl) Down(ctx context.Context, amount int) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	return c.d.send(ctx, Adjust(c.keyword, false, amount))
}

func (c *levelControl) Get(ctx context.Context) (*int, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return nil, nil
	}
	return c.d.queryInt(ctx, Query(c.keyword), Prefix(c.keyword))
}

type volumeControl struct {
	levelControl
}

func (c *volumeControl) Max(ctx context.Context) (*int, error) {
	if !c.d.supported(c.d.profile.Capabilities.MaxVolumeQuery, "max_volume_query") {
		return nil, nil
	}
	return c.d.queryInt(ctx, Query(kwMaxVolume), Prefix(kwMaxVolume))
}

// selectorControl drives an input selector
type selectorControl struct {
	d       *Driver
	feature string
	enabled bool
	keyword string
}

func (c *selectorControl) Set(ctx context.Context, index int) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	if _, ok := SourceName(index); !ok {
		c.d.logger.Warn("Source index outside the known table",
			zap.Int("source", index),
			zap.Int("max", SourceCount-1),
		)
	}
	return c.d.send(ctx, Set(c.keyword, index))
}

func (c *selectorControl) Get(ctx context.Context) (*driver.Source, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return nil, nil
	}
	return c.d.querySource(ctx, Query(c.keyword), Prefix(c.keyword))
}

func (c *selectorControl) Next(ctx context.Context) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	return c.d.send(ctx, Adjust(c.keyword, true, 0))
}

func (c *selectorControl) Previous(ctx context.Context) (string, error) {
	if !c.d.supported(c.enabled, c.feature) {
		return "", nil
	}
	return c.d.send(ctx, Adjust(c.keyword, false, 0))
}

type sourceControl struct {
	selectorControl
}

func (c *sourceControl) Info(ctx context.Context, index int) (*driver.Source, error) {
	return c.d.querySource(ctx, IndexedQuery(kwSource, index), Prefix(kwSource))
}

type zone2Control struct {
	power  *switchControl
	volume *levelControl
	mute   *switchControl
	source *selectorControl
}

func (z *zone2Control) Power() driver.PowerControl     { return z.power }
func (z *zone2Control) Volume() driver.LevelControl    { return z.volume }
func (z *zone2Control) Mute() driver.SwitchControl     { return z.mute }
func (z *zone2Control) Source() driver.SelectorControl { return z.source }

type bassTrebleControl struct {
	d       *Driver
	enabled bool
}

func toneKeyword(tone driver.Tone) (string, error) {
	switch tone {
	case driver.ToneBass:
		return kwBass, nil
	case driver.ToneTreble:
		return kwTreble, nil
	default:
		return "", fmt.Errorf("%w: tone %q", ErrInvalidControl, tone)
	}
}

func (c *bassTrebleControl) Get(ctx context.Context, tone driver.Tone) (*int, error) {
	kw, err := toneKeyword(tone)
	if err != nil {
		return nil, err
	}
	if !c.d.supported(c.enabled, "audio_trim") {
		return nil, nil
	}
	prefixes := []string{Prefix(kw)}
	if tone == driver.ToneTreble {
		prefixes = append(prefixes, Prefix(kwTrebleLong))
	}
	return c.d.queryInt(ctx, Query(kw), prefixes...)
}

func (c *bassTrebleControl) Set(ctx context.Context, tone driver.Tone, level int) (string, error) {
	kw, err := toneKeyword(tone)
	if err != nil {
		return "", err
	}
	if !c.d.supported(c.enabled, "audio_trim") {
		return "", nil
	}
	return c.d.send(ctx, Set(kw, ClampTrim(level)))
}

func (c *bassTrebleControl) Up(ctx context.Context, tone driver.Tone) (string, error) {
	return c.adjust(ctx, tone, true)
}

func (c *bassTrebleControl) Down(ctx context.Context, tone driver.Tone) (string, error) {
	return c.adjust(ctx, tone, false)
}

func (c *bassTrebleControl) adjust(ctx context.Context, tone driver.Tone, up bool) (string, error) {
	kw, err := toneKeyword(tone)
	if err != nil {
		return "", err
	}
	if !c.d.supported(c.enabled, "audio_trim") {
		return "", nil
	}
	return c.d.send(ctx, Adjust(kw, up, 0))
}

type lipsyncControl struct {
	d       *Driver
	enabled bool
}

func (c *lipsyncControl) Get(ctx context.Context) (*int, error) {
	if !c.d.supported(c.enabled, "lipsync") {
		return nil, nil
	}
	return c.d.queryInt(ctx, Query(kwLipsync), Prefix(kwLipsync))
}

func (c *lipsyncControl) Set(ctx context.Context, value int) (string, error) {
	if !c.d.supported(c.enabled, "lipsync") {
		return "", nil
	}
	return c.d.send(ctx, Set(kwLipsync, value))
}

func (c *lipsyncControl) Up(ctx context.Context) (string, error) {
	if !c.d.supported(c.enabled, "lipsync") {
		return "", nil
	}
	return c.d.send(ctx, Adjust(kwLipsync, true, 0))
}

func (c *lipsyncControl) Down(ctx context.Context) (string, error) {
	if !c.d.supported(c.enabled, "lipsync") {
		return "", nil
	}
	return c.d.send(ctx, Adjust(kwLipsync, false, 0))
}

func (c *lipsyncControl) GetRange(ctx context.Context) (*driver.Range, error) {
	if !c.d.supported(c.enabled, "lipsync") {
		return nil, nil
	}
	cmd := Query(kwLipsyncRange)
	resp, err := c.d.send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	r := DecodeRange(resp, Prefix(kwLipsyncRange))
	if r == nil {
		c.d.unexpected(cmd, resp)
	}
	return r, nil
}

type channelTrimControl struct {
	d       *Driver
	enabled bool
}

func channelKeyword(ch driver.Channel) (string, error) {
	switch ch {
	case driver.ChannelCenter:
		return kwCenter, nil
	case driver.ChannelLFE:
		return kwLFE, nil
	case driver.ChannelSurrounds:
		return kwSurrounds, nil
	case driver.ChannelHeight:
		return kwHeight, nil
	default:
		return "", fmt.Errorf("%w: channel %q", ErrInvalidControl, ch)
	}
}

func (c *channelTrimControl) Get(ctx context.Context, ch driver.Channel) (*int, error) {
	kw, err := channelKeyword(ch)
	if err != nil {
		return nil, err
	}
	if !c.d.supported(c.enabled, "channel_trim") {
		return nil, nil
	}
	return c.d.queryInt(ctx, Query(kw), Prefix(kw))
}

func (c *channelTrimControl) Set(ctx context.Context, ch driver.Channel, level int) (string, error) {
	kw, err := channelKeyword(ch)
	if err != nil {
		return "", err
	}
	if !c.d.supported(c.enabled, "channel_trim") {
		return "", nil
	}
	return c.d.send(ctx, Set(kw, ClampTrim(level)))
}

func (c *channelTrimControl) Up(ctx context.Context, ch driver.Channel) (string, error) {
	return c.adjust(ctx, ch, true)
}

func (c *channelTrimControl) Down(ctx context.Context, ch driver.Channel) (string, error) {
	return c.adjust(ctx, ch, false)
}

func (c *channelTrimControl) adjust(ctx context.Context, ch driver.Channel, up bool) (string, error) {
	kw, err := channelKeyword(ch)
	if err != nil {
		return "", err
	}
	if !c.d.supported(c.enabled, "channel_trim") {
		return "", nil
	}
	return c.d.send(ctx, Adjust(kw, up, 0))
}

type deviceControl struct {
	d *Driver
}

func (c *deviceControl) Name(ctx context.Context) (*string, error) {
	cmd := Query(kwDevice)
	resp, err := c.d.send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	name := DecodeText(resp, Prefix(kwDevice))
	if name == nil {
		c.d.unexpected(cmd, resp)
	}
	return name, nil
}

func (c *deviceControl) Ping(ctx context.Context) (bool, error) {
	resp, err := c.d.send(ctx, cmdPing)
	if err != nil {
		return false, err
	}
	return IsPong(resp), nil
}

func (d *Driver) queryInt(ctx context.Context, cmd string, prefixes ...string) (*int, error) {
	resp, err := d.send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	v := DecodeInt(resp, prefixes...)
	if v == nil {
		d.unexpected(cmd, resp)
	}
	return v, nil
}

func (d *Driver) querySource(ctx context.Context, cmd, prefix string) (*driver.Source, error) {
	resp, err := d.send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	src := DecodeSource(resp, prefix)
	if src == nil {
		d.unexpected(cmd, resp)
	}
	return src, nil
}
