// internal/model/operation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// OperationType represents the control surface group a command belongs to
type OperationType string

const (
	OperationTypePower       OperationType = "POWER"
	OperationTypeVolume      OperationType = "VOLUME"
	OperationTypeMute        OperationType = "MUTE"
	OperationTypeSource      OperationType = "SOURCE"
	OperationTypeLoudness    OperationType = "LOUDNESS"
	OperationTypeTrim        OperationType = "TRIM"
	OperationTypeLipsync     OperationType = "LIPSYNC"
	OperationTypeZone2       OperationType = "ZONE2"
	OperationTypePing        OperationType = "PING"
	OperationTypeStatusCheck OperationType = "STATUS_CHECK"
)

// OperationStatus represents the status of an operation
type OperationStatus string

const (
	OperationStatusPending      OperationStatus = "PENDING"
	OperationStatusSuccess      OperationStatus = "SUCCESS"
	OperationStatusFailed       OperationStatus = "FAILED"
	OperationStatusTimeout      OperationStatus = "TIMEOUT"
	OperationStatusNotConnected OperationStatus = "NOT_CONNECTED"
)

// DeviceOperation is one audited command issued through the control API
type DeviceOperation struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ModelID       string          `json:"model_id" db:"model_id"`
	OperationType OperationType   `json:"operation_type" db:"operation_type"`
	Action        string          `json:"action" db:"action"`
	OperationData JSONObject      `json:"operation_data" db:"operation_data"`
	Status        OperationStatus `json:"status" db:"status"`
	StartedAt     time.Time       `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at" db:"completed_at"`
	DurationMs    *int            `json:"duration_ms" db:"duration_ms"`
	ErrorMessage  *string         `json:"error_message" db:"error_message"`
	RequestID     *string         `json:"request_id" db:"request_id"`
	Result        JSONObject      `json:"result" db:"result"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// IsCompleted checks if operation is completed
func (op *DeviceOperation) IsCompleted() bool {
	return op.Status != OperationStatusPending
}

// Complete stamps the completion time, duration and final status
func (op *DeviceOperation) Complete(status OperationStatus, err error) {
	now := time.Now()
	duration := int(now.Sub(op.StartedAt).Milliseconds())
	op.CompletedAt = &now
	op.DurationMs = &duration
	op.Status = status
	if err != nil {
		msg := err.Error()
		op.ErrorMessage = &msg
	}
}
