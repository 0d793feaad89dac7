// internal/model/state.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrimLevels holds tone and channel trims converted to dB. A nil level was
// not available in the last poll.
type TrimLevels struct {
	Bass      *decimal.Decimal `json:"bass,omitempty"`
	Treble    *decimal.Decimal `json:"treble,omitempty"`
	Center    *decimal.Decimal `json:"center,omitempty"`
	LFE       *decimal.Decimal `json:"lfe,omitempty"`
	Surrounds *decimal.Decimal `json:"surrounds,omitempty"`
	Height    *decimal.Decimal `json:"height,omitempty"`
}

// LipsyncRange is the delay range reported by the processor
type LipsyncRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// StateSnapshot is one polling cycle's view of the processor. Only Power is
// guaranteed; every other field is omitted when it could not be read or
// the processor is off.
type StateSnapshot struct {
	ModelID      string        `json:"model_id"`
	Power        bool          `json:"power"`
	Volume       *int          `json:"volume,omitempty"`
	Muted        *bool         `json:"muted,omitempty"`
	SourceID     *int          `json:"source_id,omitempty"`
	SourceName   *string       `json:"source_name,omitempty"`
	Loudness     *bool         `json:"loudness,omitempty"`
	Lipsync      *int          `json:"lipsync,omitempty"`
	LipsyncRange *LipsyncRange `json:"lipsync_range,omitempty"`
	Trims        TrimLevels    `json:"trims_db"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TrimToDB converts a wire trim value (tenths of a dB) to dB
func TrimToDB(raw int) decimal.Decimal {
	return decimal.New(int64(raw), -1)
}

// trimLimitDB bounds every trim in either direction
var trimLimitDB = decimal.NewFromInt(12)

// TrimFromDB converts dB to the nearest wire trim value, limited to ±12 dB
func TrimFromDB(db decimal.Decimal) int {
	if db.GreaterThan(trimLimitDB) {
		db = trimLimitDB
	} else if db.LessThan(trimLimitDB.Neg()) {
		db = trimLimitDB.Neg()
	}
	return int(db.Shift(1).Round(0).IntPart())
}
