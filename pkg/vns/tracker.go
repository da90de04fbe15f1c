package vns

import (
	"context"
	"fmt"

	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

// Tracker handles SmartVNS Tracker specific operations: system
// configuration and the sensor data stream.
type Tracker struct {
	Device
}

// NewTracker creates a Tracker over an established GATT client.
func NewTracker(name string, client GATTClient, opts *Options) *Tracker {
	return &Tracker{Device: newDevice(name, client, opts)}
}

// GetSysConfig reads and decodes the system configuration from the
// device.
func (t *Tracker) GetSysConfig(ctx context.Context) (*smartvnspb.SysConfig, error) {
	data, err := t.client.ReadCharacteristic(ctx, SysConfigCharUUID)
	if err != nil {
		return nil, fmt.Errorf("read sys config: %w", err)
	}
	cfg, err := configcodec.DecodeSysConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetSysConfig encodes and writes the system configuration to the
// device.
func (t *Tracker) SetSysConfig(ctx context.Context, cfg *smartvnspb.SysConfig) error {
	data, err := configcodec.EncodeSysConfig(cfg)
	if err != nil {
		return err
	}
	if err := t.client.WriteCharacteristic(ctx, SysConfigCharUUID, data); err != nil {
		return fmt.Errorf("write sys config: %w", err)
	}
	return nil
}

// StartNotifications subscribes to the data characteristic. Incoming
// payloads are passed to the handler until StopNotifications is
// called.
func (t *Tracker) StartNotifications(ctx context.Context, handler NotificationHandler) error {
	if err := t.client.Subscribe(ctx, DataCharUUID, handler); err != nil {
		return fmt.Errorf("start notifications: %w", err)
	}
	t.logger.Info("Notifications started")
	return nil
}

// StopNotifications unsubscribes from the data characteristic.
func (t *Tracker) StopNotifications(ctx context.Context) error {
	if err := t.client.Unsubscribe(ctx, DataCharUUID); err != nil {
		return fmt.Errorf("stop notifications: %w", err)
	}
	t.logger.Info("Notifications stopped")
	return nil
}
