// internal/driver/mcintosh/models.go
package mcintosh

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DefaultBaudRate = 115200
	DefaultTimeout  = 2 * time.Second
	DefaultIPPort   = 84

	// ConnectionInit switches the processor to verbose replies so every
	// command is answered.
	ConnectionInit = "!VERB(2)"
)

// Capabilities lists what a processor model supports
type Capabilities struct {
	MaxVolumeQuery bool `json:"max_volume_query"`
	HDMIInputs     int  `json:"hdmi_inputs"`
	Zones          int  `json:"zones"`
	Zone2          bool `json:"zone_2"`
	Zone3          bool `json:"zone_3"`
	Loudness       bool `json:"loudness"`
	AudioTrim      bool `json:"audio_trim"`
	ChannelTrim    bool `json:"channel_trim"`
	Lipsync        bool `json:"lipsync"`
	Atmos          bool `json:"atmos"`
	DTSX           bool `json:"dtsx"`
}

// SerialSettings holds the RS-232 line parameters
type SerialSettings struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	Parity   string `json:"parity"`
	StopBits int    `json:"stop_bits"`
}

// ModelProfile is the fixed configuration of one processor model. Profiles
// are handed out by value and never modified after registration.
type ModelProfile struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Description            string         `json:"description"`
	Tested                 bool           `json:"tested"`
	Serial                 SerialSettings `json:"serial"`
	IPPort                 int            `json:"ip_port"`
	Timeout                time.Duration  `json:"timeout"`
	MinTimeBetweenCommands time.Duration  `json:"min_time_between_commands"`
	InitCommand            string         `json:"init_command,omitempty"`
	Capabilities           Capabilities   `json:"capabilities"`
}

var defaultSerial = SerialSettings{
	BaudRate: DefaultBaudRate,
	DataBits: 8,
	Parity:   "N",
	StopBits: 1,
}

var profiles = map[string]ModelProfile{
	"mx160": {
		ID:                     "mx160",
		Name:                   "MX160",
		Description:            "McIntosh MX160 Processor",
		Tested:                 true,
		Serial:                 defaultSerial,
		IPPort:                 DefaultIPPort,
		Timeout:                DefaultTimeout,
		MinTimeBetweenCommands: 400 * time.Millisecond,
		InitCommand:            ConnectionInit,
		Capabilities: Capabilities{
			HDMIInputs:  8,
			Zones:       2,
			Zone2:       true,
			Loudness:    true,
			AudioTrim:   true,
			ChannelTrim: true,
			Lipsync:     true,
		},
	},
	"mx170": {
		ID:                     "mx170",
		Name:                   "MX170",
		Description:            "McIntosh MX170 Processor",
		Serial:                 defaultSerial,
		IPPort:                 DefaultIPPort,
		Timeout:                DefaultTimeout,
		MinTimeBetweenCommands: 400 * time.Millisecond,
		InitCommand:            ConnectionInit,
		Capabilities: Capabilities{
			MaxVolumeQuery: true,
			HDMIInputs:     8,
			Zones:          3,
			Zone2:          true,
			Zone3:          true,
			Loudness:       true,
			AudioTrim:      true,
			ChannelTrim:    true,
			Lipsync:        true,
			Atmos:          true,
		},
	},
	"mx180": {
		ID:                     "mx180",
		Name:                   "MX180",
		Description:            "McIntosh MX180 Processor",
		Serial:                 defaultSerial,
		IPPort:                 DefaultIPPort,
		Timeout:                DefaultTimeout,
		MinTimeBetweenCommands: 100 * time.Millisecond,
		InitCommand:            ConnectionInit,
		Capabilities: Capabilities{
			MaxVolumeQuery: true,
			HDMIInputs:     8,
			Zones:          3,
			Zone2:          true,
			Zone3:          true,
			Loudness:       true,
			AudioTrim:      true,
			ChannelTrim:    true,
			Lipsync:        true,
			Atmos:          true,
			DTSX:           true,
		},
	},
}

// LookupProfile returns a copy of the profile registered for modelID
func LookupProfile(modelID string) (ModelProfile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(modelID))]
	if !ok {
		return ModelProfile{}, fmt.Errorf("%w %q, supported: %s",
			ErrUnknownModel, modelID, strings.Join(SupportedModels(), ", "))
	}
	return p, nil
}

// SupportedModels returns the known model ids in sorted order
func SupportedModels() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CapabilityNames lists the enabled capability flags by name
func (c Capabilities) CapabilityNames() []string {
	var names []string
	add := func(ok bool, name string) {
		if ok {
			names = append(names, name)
		}
	}
	add(c.MaxVolumeQuery, "max_volume_query")
	add(c.Zone2, "zone_2")
	add(c.Zone3, "zone_3")
	add(c.Loudness, "loudness")
	add(c.AudioTrim, "audio_trim")
	add(c.ChannelTrim, "channel_trim")
	add(c.Lipsync, "lipsync")
	add(c.Atmos, "atmos")
	add(c.DTSX, "dtsx")
	return names
}
