// Package vns is the host-side SDK for SmartVNS Tracker and
// Stimulator devices reached over BLE.
//
// The package does not implement a BLE stack. Callers supply a
// GATTClient backed by whatever platform stack they use; the SDK
// layers device semantics (configuration, stimulation control,
// notification streaming) on top of it.
package vns

import "context"

// Characteristic UUIDs exposed by SmartVNS firmware.
const (
	SysConfigCharUUID  = "ce60014d-ae91-11e1-4496-9fc5dd4aff01"
	StimConfigCharUUID = "ce60014e-ae91-11e1-4496-9fc5dd4aff01"
	DataCharUUID       = "ce60014d-ae91-11e1-4495-9fc5dd4aff08"
	BatteryCharUUID    = "2a19"
)

// NotificationHandler receives the payload of a characteristic
// notification.
type NotificationHandler func(data []byte)

// GATTClient is the transport-level collaborator the SDK drives. It is
// implemented outside this repository by the platform BLE stack.
type GATTClient interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Connected() bool

	ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error)
	WriteCharacteristic(ctx context.Context, uuid string, data []byte) error

	Subscribe(ctx context.Context, uuid string, handler NotificationHandler) error
	Unsubscribe(ctx context.Context, uuid string) error
}
