// internal/model/device.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeviceRole represents the role of a SmartVNS device.
type DeviceRole string

const (
	RoleTracker    DeviceRole = "TRACKER"
	RoleStimulator DeviceRole = "STIMULATOR"
)

// DeviceStatus represents the current status of a device.
type DeviceStatus string

const (
	DeviceStatusOnline     DeviceStatus = "ONLINE"
	DeviceStatusOffline    DeviceStatus = "OFFLINE"
	DeviceStatusError      DeviceStatus = "ERROR"
	DeviceStatusConnecting DeviceStatus = "CONNECTING"
)

// ConnectionType represents how the device is reached.
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeUSB    ConnectionType = "USB"
	ConnectionTypeBLE    ConnectionType = "BLE"
)

// JSONObject type for PostgreSQL JSONB objects.
type JSONObject map[string]interface{}

func (j *JSONObject) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Device represents a SmartVNS device known to the service.
type Device struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	DeviceID         string         `json:"device_id" db:"device_id"`
	Name             string         `json:"name" db:"name"`
	Role             DeviceRole     `json:"role" db:"role"`
	FirmwareVersion  *string        `json:"firmware_version" db:"firmware_version"`
	ConnectionType   ConnectionType `json:"connection_type" db:"connection_type"`
	ConnectionConfig JSONObject     `json:"connection_config" db:"connection_config"`
	Status           DeviceStatus   `json:"status" db:"status"`
	BatteryLevel     *int           `json:"battery_level" db:"battery_level"`
	LastSeen         *time.Time     `json:"last_seen" db:"last_seen"`
	ErrorInfo        JSONObject     `json:"error_info" db:"error_info"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// CanStimulate reports whether the device accepts stimulation
// commands.
func (d *Device) CanStimulate() bool {
	return d.Role == RoleStimulator
}

// SerialPort returns the configured serial port, if any.
func (d *Device) SerialPort() string {
	if d.ConnectionConfig == nil {
		return ""
	}
	if port, ok := d.ConnectionConfig["port"].(string); ok {
		return port
	}
	return ""
}

// IsReachable reports whether the service currently considers the
// device addressable.
func (d *Device) IsReachable() bool {
	return d.Status == DeviceStatusOnline || d.Status == DeviceStatusConnecting
}
