// internal/service/operation_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/protocol"
	"mcintosh-service/internal/repository"
	"mcintosh-service/internal/utils"
)

// CommandFunc performs one control command and returns its result payload
type CommandFunc func(ctx context.Context) (interface{}, error)

// OperationService runs control commands and keeps the audit log
type OperationService struct {
	operationRepo repository.OperationRepository
	modelID       string
	publisher     EventPublisher
	logger        *utils.ServiceLogger
	auditLogger   *utils.AuditLogger
}

// NewOperationService creates a new operation service instance
func NewOperationService(
	operationRepo repository.OperationRepository,
	modelID string,
	publisher EventPublisher,
	logger *zap.Logger,
) *OperationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &OperationService{
		operationRepo: operationRepo,
		modelID:       modelID,
		publisher:     publisher,
		logger:        utils.NewServiceLogger(logger, "operation-service"),
		auditLogger:   utils.NewAuditLogger(logger),
	}
}

// Execute records an operation, runs fn and stores its outcome. The
// returned error is fn's own error; audit log failures are only logged.
func (os *OperationService) Execute(ctx context.Context, req *OperationRequest, fn CommandFunc) (*OperationResponse, error) {
	now := time.Now()
	operation := &model.DeviceOperation{
		ID:            uuid.New(),
		ModelID:       os.modelID,
		OperationType: req.OperationType,
		Action:        req.Action,
		OperationData: model.JSONObject(req.Params),
		Status:        model.OperationStatusPending,
		StartedAt:     now,
		CreatedAt:     now,
	}
	if req.RequestID != "" {
		requestID := req.RequestID
		operation.RequestID = &requestID
	}

	if err := os.operationRepo.Create(ctx, operation); err != nil {
		os.logger.Error("Failed to record operation", zap.Error(err))
	}

	opLogger := utils.NewOperationLogger(os.logger.Logger, string(req.OperationType), operation.ID.String())
	opLogger.Start(zap.String("action", req.Action))

	result, err := fn(ctx)

	status := OperationStatusFor(err)
	operation.Complete(status, err)
	if err == nil && result != nil {
		operation.Result = model.JSONObject{"value": result}
	}

	// the request context may already be done; the outcome must still be stored
	if updateErr := os.operationRepo.Update(context.WithoutCancel(ctx), operation); updateErr != nil {
		os.logger.Error("Failed to update operation", zap.Error(updateErr))
	}

	duration := time.Duration(*operation.DurationMs) * time.Millisecond
	os.auditLogger.LogCommand(operation.ID.String(), string(req.OperationType), req.Action, string(status), duration)

	eventData := model.OperationEventData{
		OperationID:   operation.ID,
		OperationType: req.OperationType,
		Action:        req.Action,
		Status:        status,
		Duration:      operation.DurationMs,
	}

	if err != nil {
		opLogger.Error(err)
		eventData.ErrorMessage = operation.ErrorMessage
		os.publisher.Publish(model.NewDeviceEvent(model.EventOperationFailed, os.modelID, "operation-service", "WARNING", eventData))
		return &OperationResponse{
			OperationID:  operation.ID,
			Success:      false,
			Status:       status,
			Duration:     duration.String(),
			ErrorMessage: err.Error(),
		}, err
	}

	opLogger.Success(zap.Any("result", result))
	os.publisher.Publish(model.NewDeviceEvent(model.EventOperationCompleted, os.modelID, "operation-service", "INFO", eventData))

	return &OperationResponse{
		OperationID: operation.ID,
		Success:     true,
		Status:      status,
		Result:      result,
		Duration:    duration.String(),
	}, nil
}

// GetOperation retrieves operation details
func (os *OperationService) GetOperation(ctx context.Context, operationID uuid.UUID) (*model.DeviceOperation, error) {
	operation, err := os.operationRepo.GetByID(ctx, operationID)
	if err != nil {
		return nil, fmt.Errorf("operation not found: %w", err)
	}
	return operation, nil
}

// ListOperations lists operations with filtering
func (os *OperationService) ListOperations(ctx context.Context, filter *repository.OperationFilter) ([]*model.DeviceOperation, *PaginationResult, error) {
	operations, total, err := os.operationRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list operations: %w", err)
	}

	pagination := &PaginationResult{
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: (total + filter.PerPage - 1) / filter.PerPage,
	}

	return operations, pagination, nil
}

// GetStats summarizes the audit log
func (os *OperationService) GetStats(ctx context.Context, filter *repository.OperationStatsFilter) (*repository.OperationStats, error) {
	stats, err := os.operationRepo.GetOperationStats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get operation stats: %w", err)
	}
	return stats, nil
}

// Cleanup removes audit records older than retention
func (os *OperationService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return os.operationRepo.DeleteOldOperations(ctx, time.Now().Add(-retention))
}

// OperationStatusFor maps a command error to the recorded status
func OperationStatusFor(err error) model.OperationStatus {
	switch {
	case err == nil:
		return model.OperationStatusSuccess
	case errors.Is(err, protocol.ErrTimeout):
		return model.OperationStatusTimeout
	case errors.Is(err, protocol.ErrNotConnected), errors.Is(err, protocol.ErrConnectionLost), errors.Is(err, protocol.ErrClosed):
		return model.OperationStatusNotConnected
	default:
		return model.OperationStatusFailed
	}
}

// DTOs for Operation Service

// OperationRequest describes a control command to run
type OperationRequest struct {
	OperationType model.OperationType    `json:"operation_type"`
	Action        string                 `json:"action"`
	Params        map[string]interface{} `json:"params,omitempty"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// OperationResponse represents operation execution response
type OperationResponse struct {
	OperationID  uuid.UUID             `json:"operation_id"`
	Success      bool                  `json:"success"`
	Status       model.OperationStatus `json:"status"`
	Result       interface{}           `json:"result,omitempty"`
	Duration     string                `json:"duration"`
	ErrorMessage string                `json:"error_message,omitempty"`
}

// PaginationResult describes one page of a listing
type PaginationResult struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}
