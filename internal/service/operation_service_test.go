package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/protocol"
	"mcintosh-service/internal/repository"
)

func TestOperationStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.OperationStatus
	}{
		{"success", nil, model.OperationStatusSuccess},
		{"timeout", &protocol.TimeoutError{Command: "!VOL?", Timeout: time.Second}, model.OperationStatusTimeout},
		{"wrapped timeout", fmt.Errorf("query: %w", protocol.ErrTimeout), model.OperationStatusTimeout},
		{"not connected", protocol.ErrNotConnected, model.OperationStatusNotConnected},
		{"connection lost", protocol.ErrConnectionLost, model.OperationStatusNotConnected},
		{"other", errors.New("boom"), model.OperationStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OperationStatusFor(tt.err))
		})
	}
}

func TestOperationService_ExecuteSuccess(t *testing.T) {
	repo := repository.NewMemoryOperationRepository(0, nil)
	pub := &recordingPublisher{}
	svc := NewOperationService(repo, "mx160", pub, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Execute(ctx, &OperationRequest{
		OperationType: model.OperationTypeVolume,
		Action:        "set",
		Params:        map[string]interface{}{"level": 40},
		RequestID:     "req-1",
	}, func(ctx context.Context) (interface{}, error) {
		return "!VOL(40)", nil
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, model.OperationStatusSuccess, resp.Status)
	assert.Equal(t, "!VOL(40)", resp.Result)

	op, err := svc.GetOperation(ctx, resp.OperationID)
	require.NoError(t, err)
	assert.Equal(t, "mx160", op.ModelID)
	assert.Equal(t, model.OperationStatusSuccess, op.Status)
	assert.Equal(t, "!VOL(40)", op.Result["value"])
	assert.Equal(t, 40, op.OperationData["level"])
	require.NotNil(t, op.RequestID)
	assert.Equal(t, "req-1", *op.RequestID)
	assert.NotNil(t, op.CompletedAt)
	assert.NotNil(t, op.DurationMs)

	assert.Equal(t, []model.EventType{model.EventOperationCompleted}, pub.types())
}

func TestOperationService_ExecuteTimeout(t *testing.T) {
	repo := repository.NewMemoryOperationRepository(0, nil)
	pub := &recordingPublisher{}
	svc := NewOperationService(repo, "mx160", pub, zap.NewNop())
	ctx := context.Background()

	cmdErr := &protocol.TimeoutError{Command: "!POWER?", Timeout: time.Second}
	resp, err := svc.Execute(ctx, &OperationRequest{
		OperationType: model.OperationTypePower,
		Action:        "get",
	}, func(ctx context.Context) (interface{}, error) {
		return nil, cmdErr
	})
	require.ErrorIs(t, err, protocol.ErrTimeout)
	assert.False(t, resp.Success)
	assert.Equal(t, model.OperationStatusTimeout, resp.Status)
	assert.Equal(t, cmdErr.Error(), resp.ErrorMessage)

	op, err := svc.GetOperation(ctx, resp.OperationID)
	require.NoError(t, err)
	assert.Equal(t, model.OperationStatusTimeout, op.Status)
	require.NotNil(t, op.ErrorMessage)
	assert.Nil(t, op.Result)

	event := pub.last()
	assert.Equal(t, model.EventOperationFailed, event.EventType)
	data, ok := event.Data.(model.OperationEventData)
	require.True(t, ok)
	assert.Equal(t, resp.OperationID, data.OperationID)
	assert.Equal(t, model.OperationStatusTimeout, data.Status)
}

func TestOperationService_ListAndStats(t *testing.T) {
	repo := repository.NewMemoryOperationRepository(0, nil)
	svc := NewOperationService(repo, "mx160", nil, zap.NewNop())
	ctx := context.Background()

	ok := func(ctx context.Context) (interface{}, error) { return true, nil }
	fail := func(ctx context.Context) (interface{}, error) { return nil, protocol.ErrNotConnected }

	for i := 0; i < 3; i++ {
		_, err := svc.Execute(ctx, &OperationRequest{OperationType: model.OperationTypeMute, Action: "on"}, ok)
		require.NoError(t, err)
	}
	_, err := svc.Execute(ctx, &OperationRequest{OperationType: model.OperationTypeSource, Action: "next"}, fail)
	require.Error(t, err)

	ops, page, err := svc.ListOperations(ctx, &repository.OperationFilter{PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, ops, 2)
	assert.Equal(t, &PaginationResult{Total: 4, Page: 1, PerPage: 2, TotalPages: 2}, page)
	assert.Equal(t, model.OperationTypeSource, ops[0].OperationType)

	stats, err := svc.GetStats(ctx, &repository.OperationStatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOperations)
	assert.Equal(t, 3, stats.SuccessfulOps)
	assert.Equal(t, 1, stats.ByStatus[model.OperationStatusNotConnected])

	_, err = svc.GetOperation(ctx, ops[0].ID)
	require.NoError(t, err)

	deleted, err := svc.Cleanup(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
