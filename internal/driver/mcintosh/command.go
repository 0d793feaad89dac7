// internal/driver/mcintosh/command.go
package mcintosh

import (
	"strconv"
)

// Command words. A command is "!" KEYWORD [ "(" param ")" ] [ "+" | "-" ] [ "?" ].
const (
	cmdPowerOn     = "!PON"
	cmdPowerOff    = "!POFF"
	cmdPowerToggle = "!PTOGGLE"
	cmdMuteOn      = "!MUTEON"
	cmdMuteOff     = "!MUTEOFF"
	cmdMuteToggle  = "!MUTE"

	cmdZone2PowerOn     = "!POWERONZONE2"
	cmdZone2PowerOff    = "!POWEROFFZONE2"
	cmdZone2PowerToggle = "!ZPTOGGLE"
	cmdZone2MuteOn      = "!ZMUTEON"
	cmdZone2MuteOff     = "!ZMUTEOFF"
	cmdZone2MuteToggle  = "!ZMUTE"

	cmdPing = "!PING?"
)

// Keywords used with parameters, adjustments or queries
const (
	kwPower        = "POWER"
	kwVolume       = "VOL"
	kwMaxVolume    = "MAXVOL"
	kwMute         = "MUTE"
	kwSource       = "SRC"
	kwZone2Power   = "POWERZONE2"
	kwZone2Volume  = "ZVOL"
	kwZone2Mute    = "ZMUTE"
	kwZone2Source  = "ZSRC"
	kwBass         = "TRIMBASS"
	kwTreble       = "TRIMTREB"
	kwTrebleLong   = "TRIMTREBLE"
	kwLoudness     = "LOUDNESS"
	kwLipsync      = "LIPSYNC"
	kwLipsyncRange = "LIPSYNCRANGE"
	kwCenter       = "TRIMCENTER"
	kwLFE          = "TRIMLFE"
	kwSurrounds    = "TRIMSURRS"
	kwHeight       = "TRIMHEIGHT"
	kwDevice       = "DEVICE"
)

const pong = "!PONG"

// Identification commands, also used by network discovery
const (
	PingCommand       = cmdPing
	DeviceNameCommand = "!" + kwDevice + "?"
	DeviceNamePrefix  = "!" + kwDevice + "("
)

// Parameter limits
const (
	VolumeMin = 0
	VolumeMax = 99
	TrimMin   = -120
	TrimMax   = 120
	// TrimStep is one wire unit per tenth of a dB
	TrimStep = 10
)

// Set renders "!KW(value)"
func Set(keyword string, value int) string {
	return "!" + keyword + "(" + strconv.Itoa(value) + ")"
}

// Query renders "!KW?"
func Query(keyword string) string {
	return "!" + keyword + "?"
}

// IndexedQuery renders "!KW(index)?"
func IndexedQuery(keyword string, index int) string {
	return Set(keyword, index) + "?"
}

// Adjust renders "!KW+" or "!KW-", with "(amount)" appended when amount > 0
func Adjust(keyword string, up bool, amount int) string {
	cmd := "!" + keyword
	if up {
		cmd += "+"
	} else {
		cmd += "-"
	}
	if amount > 0 {
		cmd += "(" + strconv.Itoa(amount) + ")"
	}
	return cmd
}

// Prefix is the reply prefix for keyword, e.g. "!VOL("
func Prefix(keyword string) string {
	return "!" + keyword + "("
}

// Frame appends the line terminator
func Frame(cmd string) []byte {
	return []byte(cmd + "\r")
}

// ClampVolume limits level to the volume range
func ClampVolume(level int) int {
	return clamp(level, VolumeMin, VolumeMax)
}

// ClampTrim limits level to the trim range
func ClampTrim(level int) int {
	return clamp(level, TrimMin, TrimMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
