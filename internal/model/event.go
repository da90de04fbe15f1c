// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	EventDeviceConnected    EventType = "DEVICE_CONNECTED"
	EventDeviceDisconnected EventType = "DEVICE_DISCONNECTED"
	EventDeviceError        EventType = "DEVICE_ERROR"
	EventConfigRead         EventType = "CONFIG_READ"
	EventConfigWritten      EventType = "CONFIG_WRITTEN"
	EventStimTriggered      EventType = "STIM_TRIGGERED"
	EventIntensityChanged   EventType = "INTENSITY_CHANGED"
	EventBatteryUpdate      EventType = "BATTERY_UPDATE"
	EventStatusChange       EventType = "STATUS_CHANGE"
)

// DeviceEvent represents an event in the system.
type DeviceEvent struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	EventType EventType  `json:"event_type" db:"event_type"`
	DeviceID  uuid.UUID  `json:"device_id" db:"device_id"`
	Data      JSONObject `json:"data" db:"data"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
	Source    string     `json:"source" db:"source"`
	Severity  string     `json:"severity" db:"severity"` // INFO, WARNING, ERROR
}

// NewDeviceEvent creates an event with a fresh id and timestamp.
func NewDeviceEvent(eventType EventType, deviceID uuid.UUID, source string, data JSONObject) *DeviceEvent {
	return &DeviceEvent{
		ID:        uuid.New(),
		EventType: eventType,
		DeviceID:  deviceID,
		Data:      data,
		Timestamp: time.Now(),
		Source:    source,
		Severity:  "INFO",
	}
}
