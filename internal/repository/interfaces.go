// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"
	"time"

	"mcintosh-service/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an operation id has no record
var ErrNotFound = errors.New("repository: operation not found")

// OperationRepository defines command audit log access
type OperationRepository interface {
	// CRUD operations
	Create(ctx context.Context, operation *model.DeviceOperation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.DeviceOperation, error)
	Update(ctx context.Context, operation *model.DeviceOperation) error

	// Listing and filtering
	List(ctx context.Context, filter *OperationFilter) ([]*model.DeviceOperation, int, error)

	// Analytics and reporting
	GetOperationStats(ctx context.Context, filter *OperationStatsFilter) (*OperationStats, error)

	// Cleanup
	DeleteOldOperations(ctx context.Context, olderThan time.Time) (int64, error)
}

// Filter structures

// OperationFilter represents operation listing filters
type OperationFilter struct {
	OperationType *model.OperationType   `json:"operation_type,omitempty"`
	Status        *model.OperationStatus `json:"status,omitempty"`
	StartDate     *time.Time             `json:"start_date,omitempty"`
	EndDate       *time.Time             `json:"end_date,omitempty"`
	Page          int                    `json:"page"`
	PerPage       int                    `json:"per_page"`
	SortOrder     string                 `json:"sort_order"`
}

// Normalize applies paging defaults
func (f *OperationFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 50
	}
	if f.PerPage > 500 {
		f.PerPage = 500
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

// OperationStatsFilter represents operation statistics filters
type OperationStatsFilter struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Statistics structures

// OperationStats represents operation statistics
type OperationStats struct {
	TotalOperations int                           `json:"total_operations"`
	SuccessfulOps   int                           `json:"successful_operations"`
	FailedOps       int                           `json:"failed_operations"`
	TimeoutOps      int                           `json:"timeout_operations"`
	AvgDuration     time.Duration                 `json:"average_duration"`
	ByType          map[model.OperationType]int   `json:"by_type"`
	ByStatus        map[model.OperationStatus]int `json:"by_status"`
}
