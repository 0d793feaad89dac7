// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventDeviceConnected    EventType = "DEVICE_CONNECTED"
	EventDeviceDisconnected EventType = "DEVICE_DISCONNECTED"
	EventDeviceError        EventType = "DEVICE_ERROR"
	EventOperationCompleted EventType = "OPERATION_COMPLETED"
	EventOperationFailed    EventType = "OPERATION_FAILED"
	EventStatusChange       EventType = "STATUS_CHANGE"
)

// DeviceEvent represents an event in the system
type DeviceEvent struct {
	ID        uuid.UUID   `json:"id"`
	EventType EventType   `json:"event_type"`
	ModelID   string      `json:"model_id"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Severity  string      `json:"severity"` // INFO, WARNING, ERROR
}

// NewDeviceEvent stamps a new event with an id and the current time
func NewDeviceEvent(eventType EventType, modelID, source, severity string, data interface{}) DeviceEvent {
	return DeviceEvent{
		ID:        uuid.New(),
		EventType: eventType,
		ModelID:   modelID,
		Data:      data,
		Timestamp: time.Now(),
		Source:    source,
		Severity:  severity,
	}
}

// EventData structures for different event types

// DeviceConnectedEventData represents device connection event
type DeviceConnectedEventData struct {
	ReportedName   *string        `json:"reported_name,omitempty"`
	ConnectionTime time.Time      `json:"connection_time"`
	PreviousStatus DeviceStatus   `json:"previous_status"`
	ConnectionType ConnectionType `json:"connection_type"`
}

// DeviceErrorEventData represents device error event
type DeviceErrorEventData struct {
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
	ErrorTime    time.Time `json:"error_time"`
	Recovery     bool      `json:"auto_recovery_possible"`
}

// OperationEventData represents operation-related events
type OperationEventData struct {
	OperationID   uuid.UUID       `json:"operation_id"`
	OperationType OperationType   `json:"operation_type"`
	Action        string          `json:"action"`
	Status        OperationStatus `json:"status"`
	Duration      *int            `json:"duration_ms,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
}
