// internal/model/device.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ConnectionType represents how the processor is reached
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeTCP    ConnectionType = "TCP"
)

// DeviceStatus represents the current status of the processor connection
type DeviceStatus string

const (
	DeviceStatusOnline     DeviceStatus = "ONLINE"
	DeviceStatusOffline    DeviceStatus = "OFFLINE"
	DeviceStatusError      DeviceStatus = "ERROR"
	DeviceStatusConnecting DeviceStatus = "CONNECTING"
)

// JSONObject type for PostgreSQL JSONB objects
type JSONObject map[string]interface{}

func (j *JSONObject) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// DeviceInfo describes the connected processor as seen by API callers
type DeviceInfo struct {
	ModelID        string         `json:"model_id"`
	ModelName      string         `json:"model_name"`
	Description    string         `json:"description"`
	ReportedName   *string        `json:"reported_name,omitempty"`
	ConnectionType ConnectionType `json:"connection_type"`
	Status         DeviceStatus   `json:"status"`
	Capabilities   []string       `json:"capabilities"`
	LastPing       *time.Time     `json:"last_ping,omitempty"`
}

// ConnectionStats mirrors transport and engine counters for diagnostics
type ConnectionStats struct {
	BytesWritten   int64     `json:"bytes_written"`
	BytesRead      int64     `json:"bytes_read"`
	CommandsSent   int64     `json:"commands_sent"`
	Timeouts       int64     `json:"timeouts"`
	NotConnected   int64     `json:"not_connected"`
	ErrorCount     int64     `json:"error_count"`
	LastActivity   time.Time `json:"last_activity"`
	IsConnected    bool      `json:"is_connected"`
	ConnectionType string    `json:"connection_type"`
}
