package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

func receive(t *testing.T, ch <-chan model.DeviceEvent) model.DeviceEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return model.DeviceEvent{}
	}
}

func TestEventBus_FiltersByType(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	all, unsubAll := bus.Subscribe()
	defer unsubAll()
	status, unsubStatus := bus.Subscribe(model.EventStatusChange)
	defer unsubStatus()

	bus.Publish(model.NewDeviceEvent(model.EventOperationCompleted, "mx160", "test", "INFO", nil))
	bus.Publish(model.NewDeviceEvent(model.EventStatusChange, "mx160", "test", "INFO", nil))

	assert.Equal(t, model.EventOperationCompleted, receive(t, all).EventType)
	assert.Equal(t, model.EventStatusChange, receive(t, all).EventType)
	assert.Equal(t, model.EventStatusChange, receive(t, status).EventType)

	select {
	case event := <-status:
		t.Fatalf("unexpected event %s", event.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	events, unsubscribe := bus.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-events
	assert.False(t, ok)
}

func TestEventBus_StopClosesSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	done := make(chan struct{})
	go func() {
		bus.Start()
		close(done)
	}()

	events, unsubscribe := bus.Subscribe()
	bus.Stop()
	<-done

	_, ok := <-events
	assert.False(t, ok)
	unsubscribe()

	// publishing after stop is a no-op
	bus.Publish(model.NewDeviceEvent(model.EventDeviceError, "mx160", "test", "ERROR", nil))
	late, _ := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	defer bus.Stop()

	// nothing distributes, so the buffer fills
	for i := 0; i < 1005; i++ {
		bus.Publish(model.NewDeviceEvent(model.EventStatusChange, "mx160", "test", "INFO", nil))
	}
	assert.Equal(t, int64(5), bus.Dropped())
}
