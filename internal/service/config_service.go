// internal/service/config_service.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartvns/internal/model"
	"smartvns/internal/protocol"
	"smartvns/internal/repository"
	"smartvns/internal/utils"
	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

// ConfigService reads and writes device configurations and keeps an
// audit trail of snapshots.
type ConfigService struct {
	deviceRepo repository.DeviceRepository
	configRepo repository.ConfigRepository
	eventRepo  repository.EventRepository
	sessions   *SessionManager
	logger     *utils.ServiceLogger
	publisher  EventPublisher
}

// NewConfigService creates a new config service instance
func NewConfigService(
	deviceRepo repository.DeviceRepository,
	configRepo repository.ConfigRepository,
	eventRepo repository.EventRepository,
	sessions *SessionManager,
	logger *zap.Logger,
	publisher EventPublisher,
) *ConfigService {
	return &ConfigService{
		deviceRepo: deviceRepo,
		configRepo: configRepo,
		eventRepo:  eventRepo,
		sessions:   sessions,
		logger:     utils.NewServiceLogger(logger, "config-service"),
		publisher:  publisher,
	}
}

// ReadSysConfig reads the system configuration from a device and
// returns it as a plain mapping.
func (cs *ConfigService) ReadSysConfig(ctx context.Context, deviceID string) (map[string]interface{}, error) {
	device, client, err := cs.openSession(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	cfg, err := client.GetSysConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sys config: %w", err)
	}

	mapping := configcodec.SysConfigToMap(cfg)
	cs.snapshotSys(ctx, device.ID, cfg, mapping, "SERIAL")
	cs.recordEvent(ctx, model.NewDeviceEvent(model.EventConfigRead, device.ID, "SERIAL", model.JSONObject{
		"kind": "sys",
	}))
	return mapping, nil
}

// WriteSysConfig validates and writes a system configuration mapping.
func (cs *ConfigService) WriteSysConfig(ctx context.Context, deviceID string, mapping map[string]interface{}) error {
	device, client, err := cs.openSession(ctx, deviceID)
	if err != nil {
		return err
	}

	cfg, err := configcodec.SysConfigFromMap(mapping)
	if err != nil {
		return err
	}

	if err := client.SetSysConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to write sys config: %w", err)
	}

	cs.snapshotSys(ctx, device.ID, cfg, configcodec.SysConfigToMap(cfg), "API")
	cs.recordEvent(ctx, model.NewDeviceEvent(model.EventConfigWritten, device.ID, "SERIAL", model.JSONObject{
		"kind": "sys",
	}))
	return nil
}

// ReadStimConfig reads the stimulation configuration from a device.
func (cs *ConfigService) ReadStimConfig(ctx context.Context, deviceID string) (map[string]interface{}, error) {
	device, client, err := cs.openSession(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	cfg, err := client.GetStimConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stim config: %w", err)
	}

	mapping := configcodec.StimConfigToMap(cfg)
	cs.snapshotStim(ctx, device.ID, cfg, mapping, "SERIAL")
	cs.recordEvent(ctx, model.NewDeviceEvent(model.EventConfigRead, device.ID, "SERIAL", model.JSONObject{
		"kind": "stim",
	}))
	return mapping, nil
}

// WriteStimConfig validates and writes a stimulation configuration
// mapping. The target must be a stimulator.
func (cs *ConfigService) WriteStimConfig(ctx context.Context, deviceID string, mapping map[string]interface{}) error {
	device, client, err := cs.openSession(ctx, deviceID)
	if err != nil {
		return err
	}

	if !device.CanStimulate() {
		return fmt.Errorf("device %s is not a stimulator", deviceID)
	}

	cfg, err := configcodec.StimConfigFromMap(mapping)
	if err != nil {
		return err
	}

	if err := client.SetStimConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to write stim config: %w", err)
	}

	cs.snapshotStim(ctx, device.ID, cfg, configcodec.StimConfigToMap(cfg), "API")
	cs.recordEvent(ctx, model.NewDeviceEvent(model.EventConfigWritten, device.ID, "SERIAL", model.JSONObject{
		"kind": "stim",
	}))
	return nil
}

// TriggerStimulation rewrites the pulse duration of the current
// stimulation configuration, which fires a pulse train on the device.
func (cs *ConfigService) TriggerStimulation(ctx context.Context, deviceID string, durationMs uint32) error {
	device, client, err := cs.openSession(ctx, deviceID)
	if err != nil {
		return err
	}

	if !device.CanStimulate() {
		return fmt.Errorf("device %s is not a stimulator", deviceID)
	}

	cfg, err := client.GetStimConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stim config: %w", err)
	}

	cfg.TriggerMs = durationMs
	if err := client.SetStimConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to trigger stimulation: %w", err)
	}

	deviceLogger := utils.NewDeviceLogger(cs.logger.Logger, device.DeviceID, string(device.Role))
	deviceLogger.LogStimulation("trigger", durationMs, cfg.GetIntensityUA())

	cs.recordEvent(ctx, model.NewDeviceEvent(model.EventStimTriggered, device.ID, "SERIAL", model.JSONObject{
		"duration_ms":  durationMs,
		"intensity_uA": cfg.GetIntensityUA(),
	}))
	return nil
}

// SetIntensity rewrites the stimulation amplitude in microamperes.
func (cs *ConfigService) SetIntensity(ctx context.Context, deviceID string, intensityUA uint32) error {
	device, client, err := cs.openSession(ctx, deviceID)
	if err != nil {
		return err
	}

	if !device.CanStimulate() {
		return fmt.Errorf("device %s is not a stimulator", deviceID)
	}

	cfg, err := client.GetStimConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stim config: %w", err)
	}

	previous := cfg.GetIntensityUA()
	cfg.IntensityUA = intensityUA
	if err := client.SetStimConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to set intensity: %w", err)
	}

	deviceLogger := utils.NewDeviceLogger(cs.logger.Logger, device.DeviceID, string(device.Role))
	deviceLogger.LogStimulation("set_intensity", cfg.GetTriggerMs(), intensityUA)

	cs.snapshotStim(ctx, device.ID, cfg, configcodec.StimConfigToMap(cfg), "API")
	cs.recordEvent(ctx, model.NewDeviceEvent(model.EventIntensityChanged, device.ID, "SERIAL", model.JSONObject{
		"previous_uA": previous,
		"current_uA":  intensityUA,
	}))
	return nil
}

// GetConfigHistory returns stored snapshots for a device, newest first.
func (cs *ConfigService) GetConfigHistory(ctx context.Context, deviceID string, kind *model.ConfigKind, limit int) ([]*model.ConfigSnapshot, error) {
	device, err := cs.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("device not found: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	return cs.configRepo.ListByDevice(ctx, device.ID, kind, limit)
}

// Helper methods

func (cs *ConfigService) openSession(ctx context.Context, deviceID string) (*model.Device, *protocol.ShellClient, error) {
	device, err := cs.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, nil, fmt.Errorf("device not found: %w", err)
	}

	client, err := cs.sessions.Get(device.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("device not connected: %w", err)
	}
	return device, client, nil
}

func (cs *ConfigService) snapshotSys(ctx context.Context, deviceID uuid.UUID, cfg *smartvnspb.SysConfig, mapping map[string]interface{}, source string) {
	raw, err := configcodec.EncodeSysConfig(cfg)
	if err != nil {
		cs.logger.Warn("Failed to encode sys config for snapshot", zap.Error(err))
		return
	}

	snapshot := &model.ConfigSnapshot{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Kind:      model.ConfigKindSys,
		Config:    model.JSONObject(mapping),
		RawConfig: raw,
		Source:    source,
	}
	if err := cs.configRepo.Create(ctx, snapshot); err != nil {
		cs.logger.Warn("Failed to store sys config snapshot", zap.Error(err))
	}
}

func (cs *ConfigService) snapshotStim(ctx context.Context, deviceID uuid.UUID, cfg *smartvnspb.StimConfig, mapping map[string]interface{}, source string) {
	raw, err := configcodec.EncodeStimConfig(cfg)
	if err != nil {
		cs.logger.Warn("Failed to encode stim config for snapshot", zap.Error(err))
		return
	}

	charge := model.PulseCharge(cfg)
	snapshot := &model.ConfigSnapshot{
		ID:            uuid.New(),
		DeviceID:      deviceID,
		Kind:          model.ConfigKindStim,
		Config:        model.JSONObject(mapping),
		RawConfig:     raw,
		PulseChargeUC: &charge,
		Source:        source,
	}
	if err := cs.configRepo.Create(ctx, snapshot); err != nil {
		cs.logger.Warn("Failed to store stim config snapshot", zap.Error(err))
	}
}

func (cs *ConfigService) recordEvent(ctx context.Context, event *model.DeviceEvent) {
	if err := cs.eventRepo.Create(ctx, event); err != nil {
		cs.logger.Warn("Failed to persist device event", zap.Error(err))
	}
	if cs.publisher != nil {
		cs.publisher.Publish(event)
	}
}
