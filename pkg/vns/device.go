package vns

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultConnectRetries is the number of connection attempts made
	// before giving up.
	DefaultConnectRetries = 3
	// DefaultConnectTimeout bounds a single connection attempt.
	DefaultConnectTimeout = 5 * time.Second
)

// Options tune device connection behavior.
type Options struct {
	ConnectRetries int
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

func (o *Options) withDefaults() Options {
	out := Options{
		ConnectRetries: DefaultConnectRetries,
		ConnectTimeout: DefaultConnectTimeout,
		Logger:         zap.NewNop(),
	}
	if o == nil {
		return out
	}
	if o.ConnectRetries > 0 {
		out.ConnectRetries = o.ConnectRetries
	}
	if o.ConnectTimeout > 0 {
		out.ConnectTimeout = o.ConnectTimeout
	}
	if o.Logger != nil {
		out.Logger = o.Logger
	}
	return out
}

// Device holds the BLE logic shared by Tracker and Stimulator.
type Device struct {
	name   string
	client GATTClient
	opts   Options
	logger *zap.Logger
}

func newDevice(name string, client GATTClient, opts *Options) Device {
	resolved := opts.withDefaults()
	return Device{
		name:   name,
		client: client,
		opts:   resolved,
		logger: resolved.Logger.With(zap.String("device", name)),
	}
}

// Name returns the advertised device name.
func (d *Device) Name() string { return d.name }

// Connected reports whether the underlying client holds a connection.
func (d *Device) Connected() bool { return d.client.Connected() }

// Connect establishes the BLE connection, retrying up to the
// configured attempt count. Each attempt is bounded by the connect
// timeout.
func (d *Device) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= d.opts.ConnectRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.opts.ConnectTimeout)
		err := d.client.Connect(attemptCtx)
		cancel()

		if err == nil {
			d.logger.Info("Device connected", zap.Int("attempt", attempt))
			return nil
		}

		lastErr = err
		d.logger.Warn("Connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("connect %s after %d attempts: %w", d.name, d.opts.ConnectRetries, lastErr)
}

// Disconnect drops the BLE connection.
func (d *Device) Disconnect(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect %s: %w", d.name, err)
	}
	d.logger.Info("Device disconnected")
	return nil
}

// Battery reads the standard battery level characteristic and returns
// the charge percentage.
func (d *Device) Battery(ctx context.Context) (int, error) {
	data, err := d.client.ReadCharacteristic(ctx, BatteryCharUUID)
	if err != nil {
		return 0, fmt.Errorf("read battery level: %w", err)
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("read battery level: empty payload")
	}
	return int(data[0]), nil
}
