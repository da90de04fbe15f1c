package handler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartvns/internal/model"
)

func TestEventBus_DeliversToTypeSubscriber(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	batteryEvents := bus.Subscribe(model.EventBatteryUpdate)
	deviceID := uuid.New()

	bus.Publish(model.NewDeviceEvent(model.EventBatteryUpdate, deviceID, "SERIAL", model.JSONObject{
		"battery_level": 42,
	}))

	select {
	case event := <-batteryEvents:
		assert.Equal(t, model.EventBatteryUpdate, event.EventType)
		assert.Equal(t, deviceID, event.DeviceID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_WildcardSubscriberSeesAllTypes(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	all := bus.SubscribeAll()

	bus.Publish(model.NewDeviceEvent(model.EventDeviceConnected, uuid.New(), "SERIAL", nil))
	bus.Publish(model.NewDeviceEvent(model.EventStimTriggered, uuid.New(), "SERIAL", nil))

	var seen []model.EventType
	for len(seen) < 2 {
		select {
		case event := <-all:
			seen = append(seen, event.EventType)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	require.Len(t, seen, 2)
	assert.Contains(t, seen, model.EventDeviceConnected)
	assert.Contains(t, seen, model.EventStimTriggered)
}

func TestEventBus_TypeSubscriberIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	stimEvents := bus.Subscribe(model.EventStimTriggered)
	bus.Publish(model.NewDeviceEvent(model.EventBatteryUpdate, uuid.New(), "SERIAL", nil))

	select {
	case event := <-stimEvents:
		t.Fatalf("unexpected event: %s", event.EventType)
	case <-time.After(100 * time.Millisecond):
	}
}
