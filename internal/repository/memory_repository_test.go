package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcintosh-service/internal/model"
)

func newOperation(opType model.OperationType, status model.OperationStatus, createdAt time.Time, durationMs int) *model.DeviceOperation {
	return &model.DeviceOperation{
		ID:            uuid.New(),
		ModelID:       "mx160",
		OperationType: opType,
		Action:        "set",
		Status:        status,
		StartedAt:     createdAt,
		DurationMs:    &durationMs,
		CreatedAt:     createdAt,
	}
}

func TestMemoryRepository_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(0, nil)

	op := newOperation(model.OperationTypeVolume, model.OperationStatusPending, time.Now(), 0)
	require.NoError(t, repo.Create(ctx, op))
	require.Error(t, repo.Create(ctx, op))

	op.Complete(model.OperationStatusSuccess, nil)
	require.NoError(t, repo.Update(ctx, op))

	got, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OperationStatusSuccess, got.Status)
	assert.NotNil(t, got.CompletedAt)

	// returned records are copies
	got.Status = model.OperationStatusFailed
	again, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OperationStatusSuccess, again.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, repo.Update(ctx, newOperation(model.OperationTypeMute, model.OperationStatusPending, time.Now(), 0)), ErrNotFound)
}

func TestMemoryRepository_ListFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(0, nil)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newOperation(model.OperationTypeVolume, model.OperationStatusSuccess, base.Add(time.Duration(i)*time.Minute), 10)))
	}
	require.NoError(t, repo.Create(ctx, newOperation(model.OperationTypePower, model.OperationStatusTimeout, base.Add(10*time.Minute), 2000)))

	ops, total, err := repo.List(ctx, &OperationFilter{PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, ops, 2)
	assert.Equal(t, model.OperationTypePower, ops[0].OperationType)

	volume := model.OperationTypeVolume
	ops, total, err = repo.List(ctx, &OperationFilter{OperationType: &volume, Page: 3, PerPage: 2, SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, ops, 1)
	assert.Equal(t, base.Add(4*time.Minute), ops[0].CreatedAt)

	timeout := model.OperationStatusTimeout
	ops, total, err = repo.List(ctx, &OperationFilter{Status: &timeout})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, ops, 1)

	ops, _, err = repo.List(ctx, &OperationFilter{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestMemoryRepository_Capacity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(3, nil)

	first := newOperation(model.OperationTypeMute, model.OperationStatusSuccess, time.Now(), 1)
	require.NoError(t, repo.Create(ctx, first))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newOperation(model.OperationTypeMute, model.OperationStatusSuccess, time.Now(), 1)))
	}

	_, total, err := repo.List(ctx, &OperationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_StatsAndCleanup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(0, nil)
	old := time.Now().Add(-48 * time.Hour)

	require.NoError(t, repo.Create(ctx, newOperation(model.OperationTypeVolume, model.OperationStatusSuccess, old, 100)))
	require.NoError(t, repo.Create(ctx, newOperation(model.OperationTypeVolume, model.OperationStatusFailed, time.Now(), 300)))
	require.NoError(t, repo.Create(ctx, newOperation(model.OperationTypeSource, model.OperationStatusTimeout, time.Now(), 2000)))

	stats, err := repo.GetOperationStats(ctx, &OperationStatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOperations)
	assert.Equal(t, 1, stats.SuccessfulOps)
	assert.Equal(t, 1, stats.FailedOps)
	assert.Equal(t, 1, stats.TimeoutOps)
	assert.Equal(t, 2, stats.ByType[model.OperationTypeVolume])
	assert.Equal(t, 800*time.Millisecond, stats.AvgDuration)

	since := time.Now().Add(-time.Hour)
	stats, err = repo.GetOperationStats(ctx, &OperationStatsFilter{StartDate: &since})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOperations)

	deleted, err := repo.DeleteOldOperations(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	_, total, err := repo.List(ctx, &OperationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestBuildWhere(t *testing.T) {
	clause, args := buildWhere(nil, nil, nil, nil)
	assert.Empty(t, clause)
	assert.Empty(t, args)

	opType := model.OperationTypeVolume
	status := model.OperationStatusSuccess
	start := time.Now()
	clause, args = buildWhere(&opType, &status, &start, nil)
	assert.Equal(t, "WHERE operation_type = $1 AND status = $2 AND created_at >= $3", clause)
	assert.Equal(t, []interface{}{opType, status, start}, args)
}

func TestOperationFilter_Normalize(t *testing.T) {
	f := &OperationFilter{PerPage: 1000, SortOrder: "sideways"}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 500, f.PerPage)
	assert.Equal(t, "desc", f.SortOrder)
}
