// internal/repository/memory_repository.go
package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

// DefaultMemoryCapacity bounds the in-memory audit log
const DefaultMemoryCapacity = 10000

// memoryOperationRepository keeps the audit log in process when no
// database is configured. The oldest records are dropped past capacity.
type memoryOperationRepository struct {
	mu       sync.RWMutex
	order    []uuid.UUID
	byID     map[uuid.UUID]model.DeviceOperation
	capacity int
	logger   *zap.Logger
}

// NewMemoryOperationRepository creates an in-memory operation repository
func NewMemoryOperationRepository(capacity int, logger *zap.Logger) OperationRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &memoryOperationRepository{
		byID:     make(map[uuid.UUID]model.DeviceOperation),
		capacity: capacity,
		logger:   logger,
	}
}

func (r *memoryOperationRepository) Create(ctx context.Context, operation *model.DeviceOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[operation.ID]; exists {
		return fmt.Errorf("failed to create operation: duplicate id %s", operation.ID)
	}
	r.byID[operation.ID] = *operation
	r.order = append(r.order, operation.ID)

	if len(r.order) > r.capacity {
		evicted := r.order[0]
		r.order = r.order[1:]
		delete(r.byID, evicted)
	}
	return nil
}

func (r *memoryOperationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DeviceOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &op, nil
}

func (r *memoryOperationRepository) Update(ctx context.Context, operation *model.DeviceOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[operation.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, operation.ID)
	}
	r.byID[operation.ID] = *operation
	return nil
}

func (r *memoryOperationRepository) List(ctx context.Context, filter *OperationFilter) ([]*model.DeviceOperation, int, error) {
	filter.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.DeviceOperation, 0)
	for i := range r.order {
		// newest first unless ascending was requested
		idx := len(r.order) - 1 - i
		if filter.SortOrder == "asc" {
			idx = i
		}
		op := r.byID[r.order[idx]]
		if !matches(&op, filter.OperationType, filter.Status, filter.StartDate, filter.EndDate) {
			continue
		}
		matched = append(matched, &op)
	}

	total := len(matched)
	start := (filter.Page - 1) * filter.PerPage
	if start >= total {
		return []*model.DeviceOperation{}, total, nil
	}
	end := start + filter.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryOperationRepository) GetOperationStats(ctx context.Context, filter *OperationStatsFilter) (*OperationStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &OperationStats{
		ByType:   make(map[model.OperationType]int),
		ByStatus: make(map[model.OperationStatus]int),
	}

	var totalMs, timed int
	for _, id := range r.order {
		op := r.byID[id]
		if !matches(&op, nil, nil, filter.StartDate, filter.EndDate) {
			continue
		}
		stats.TotalOperations++
		stats.ByType[op.OperationType]++
		stats.ByStatus[op.Status]++
		switch op.Status {
		case model.OperationStatusSuccess:
			stats.SuccessfulOps++
		case model.OperationStatusFailed:
			stats.FailedOps++
		case model.OperationStatusTimeout:
			stats.TimeoutOps++
		}
		if op.DurationMs != nil {
			totalMs += *op.DurationMs
			timed++
		}
	}
	if timed > 0 {
		stats.AvgDuration = time.Duration(totalMs) * time.Millisecond / time.Duration(timed)
	}
	return stats, nil
}

func (r *memoryOperationRepository) DeleteOldOperations(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	var deleted int64
	for _, id := range r.order {
		if r.byID[id].CreatedAt.Before(olderThan) {
			delete(r.byID, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept

	r.logger.Info("Deleted old operations",
		zap.Int64("rows_deleted", deleted),
		zap.Time("older_than", olderThan),
	)
	return deleted, nil
}

func matches(op *model.DeviceOperation, opType *model.OperationType, status *model.OperationStatus, start, end *time.Time) bool {
	if opType != nil && op.OperationType != *opType {
		return false
	}
	if status != nil && op.Status != *status {
		return false
	}
	if start != nil && op.CreatedAt.Before(*start) {
		return false
	}
	if end != nil && op.CreatedAt.After(*end) {
		return false
	}
	return true
}
