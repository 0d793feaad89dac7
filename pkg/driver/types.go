// pkg/driver/types.go
package driver

// Source is a selected input: its index and display name
type Source struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Range is an inclusive bound reported by the device
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Channel identifies a per-channel trim
type Channel string

const (
	ChannelCenter    Channel = "center"
	ChannelLFE       Channel = "lfe"
	ChannelSurrounds Channel = "surrounds"
	ChannelHeight    Channel = "height"
)

// Channels lists every trimmable channel
var Channels = []Channel{ChannelCenter, ChannelLFE, ChannelSurrounds, ChannelHeight}

// Valid reports whether c is a known channel
func (c Channel) Valid() bool {
	for _, ch := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// Tone identifies a tone control
type Tone string

const (
	ToneBass   Tone = "bass"
	ToneTreble Tone = "treble"
)
