// internal/protocol/shell.go
package protocol

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

// okPrefix marks a successful console reply; the payload follows it.
const okPrefix = "OK:"

// ConfigKind selects which configuration blob a cfg command addresses.
type ConfigKind string

const (
	ConfigKindSys  ConfigKind = "sys"
	ConfigKindStim ConfigKind = "stim"
)

// bondSlot is the pairing slot used for the companion device key.
const bondSlot = "vns"

// ShellError reports a console command the device rejected.
type ShellError struct {
	Command string
	Output  string
}

func (e *ShellError) Error() string {
	return fmt.Sprintf("console command %q failed: %s", e.Command, e.Output)
}

// ShellClient layers SmartVNS management commands on a console
// Transport.
type ShellClient struct {
	transport Transport
	logger    *zap.Logger
}

// NewShellClient creates a management client over an opened transport.
func NewShellClient(transport Transport, logger *zap.Logger) *ShellClient {
	return &ShellClient{
		transport: transport,
		logger:    logger.With(zap.String("component", "shell-client")),
	}
}

// exec runs one console command and returns the payload after the OK
// prefix.
func (c *ShellClient) exec(ctx context.Context, argv ...string) (string, error) {
	command := strings.Join(argv, " ")
	reply, err := c.transport.Request(ctx, command)
	if err != nil {
		return "", fmt.Errorf("console command %q: %w", command, err)
	}

	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, okPrefix) {
		c.logger.Error("Console command rejected",
			zap.String("command", command),
			zap.String("output", reply),
		)
		return "", &ShellError{Command: command, Output: reply}
	}
	return strings.TrimSpace(reply[len(okPrefix):]), nil
}

// GetSysConfig reads and decodes the system configuration.
func (c *ShellClient) GetSysConfig(ctx context.Context) (*smartvnspb.SysConfig, error) {
	data, err := c.getConfigBytes(ctx, ConfigKindSys)
	if err != nil {
		return nil, err
	}
	return configcodec.DecodeSysConfig(data)
}

// GetStimConfig reads and decodes the stimulation configuration.
func (c *ShellClient) GetStimConfig(ctx context.Context) (*smartvnspb.StimConfig, error) {
	data, err := c.getConfigBytes(ctx, ConfigKindStim)
	if err != nil {
		return nil, err
	}
	return configcodec.DecodeStimConfig(data)
}

// SetSysConfig encodes and writes the system configuration.
func (c *ShellClient) SetSysConfig(ctx context.Context, cfg *smartvnspb.SysConfig) error {
	data, err := configcodec.EncodeSysConfig(cfg)
	if err != nil {
		return err
	}
	return c.setConfigBytes(ctx, ConfigKindSys, data)
}

// SetStimConfig encodes and writes the stimulation configuration.
func (c *ShellClient) SetStimConfig(ctx context.Context, cfg *smartvnspb.StimConfig) error {
	data, err := configcodec.EncodeStimConfig(cfg)
	if err != nil {
		return err
	}
	return c.setConfigBytes(ctx, ConfigKindStim, data)
}

// getConfigBytes fetches the raw configuration blob for a kind. The
// console transfers blobs base64-encoded.
func (c *ShellClient) getConfigBytes(ctx context.Context, kind ConfigKind) ([]byte, error) {
	payload, err := c.exec(ctx, "cfg", "get", string(kind))
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s config payload: %w", kind, err)
	}
	return data, nil
}

func (c *ShellClient) setConfigBytes(ctx context.Context, kind ConfigKind, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	if _, err := c.exec(ctx, "cfg", "set", string(kind), encoded); err != nil {
		return err
	}
	c.logger.Info("Config written", zap.String("kind", string(kind)))
	return nil
}

// Battery returns the battery charge percentage.
func (c *ShellClient) Battery(ctx context.Context) (int, error) {
	payload, err := c.exec(ctx, "batt")
	if err != nil {
		return 0, err
	}
	level, err := strconv.Atoi(payload)
	if err != nil {
		return 0, fmt.Errorf("parse battery level %q: %w", payload, err)
	}
	return level, nil
}

// Version returns the firmware version string.
func (c *ShellClient) Version(ctx context.Context) (string, error) {
	return c.exec(ctx, "version")
}

// SetTime writes the host clock to the device RTC.
func (c *ShellClient) SetTime(ctx context.Context, now time.Time) error {
	_, err := c.exec(ctx, "time", "set", now.Format(time.RFC3339))
	return err
}

// Reboot resets the device.
func (c *ShellClient) Reboot(ctx context.Context) error {
	if _, err := c.exec(ctx, "reset"); err != nil {
		return err
	}
	c.logger.Info("Device reset command sent")
	return nil
}

// FactoryReset erases on-device storage and reboots.
func (c *ShellClient) FactoryReset(ctx context.Context) error {
	if _, err := c.exec(ctx, "storage", "erase"); err != nil {
		return err
	}
	c.logger.Info("Storage erase command sent")
	return c.Reboot(ctx)
}

// GetOOBKey reads the device's out-of-band pairing key.
func (c *ShellClient) GetOOBKey(ctx context.Context) (string, error) {
	return c.exec(ctx, "bond", "get")
}

// SetOOBKey stores a companion device's out-of-band pairing key.
func (c *ShellClient) SetOOBKey(ctx context.Context, key string) error {
	_, err := c.exec(ctx, "bond", "set", bondSlot, key)
	return err
}

// DeleteOOBKey clears the stored pairing key.
func (c *ShellClient) DeleteOOBKey(ctx context.Context) error {
	_, err := c.exec(ctx, "bond", "del", bondSlot)
	return err
}

// Pair exchanges out-of-band keys between two connected devices.
func Pair(ctx context.Context, first, second *ShellClient) error {
	firstKey, err := first.GetOOBKey(ctx)
	if err != nil {
		return fmt.Errorf("get key from first device: %w", err)
	}
	secondKey, err := second.GetOOBKey(ctx)
	if err != nil {
		return fmt.Errorf("get key from second device: %w", err)
	}

	if err := first.SetOOBKey(ctx, secondKey); err != nil {
		return fmt.Errorf("set key on first device: %w", err)
	}
	if err := second.SetOOBKey(ctx, firstKey); err != nil {
		return fmt.Errorf("set key on second device: %w", err)
	}
	return nil
}

// Unpair clears pairing keys on both devices.
func Unpair(ctx context.Context, first, second *ShellClient) error {
	if err := first.DeleteOOBKey(ctx); err != nil {
		return fmt.Errorf("clear key on first device: %w", err)
	}
	if err := second.DeleteOOBKey(ctx); err != nil {
		return fmt.Errorf("clear key on second device: %w", err)
	}
	return nil
}
