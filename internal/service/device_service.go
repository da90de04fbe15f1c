// internal/service/device_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartvns/internal/config"
	"smartvns/internal/model"
	"smartvns/internal/protocol"
	"smartvns/internal/repository"
	"smartvns/internal/utils"
)

// EventPublisher delivers device events to live subscribers.
type EventPublisher interface {
	Publish(event *model.DeviceEvent)
}

// DeviceService handles device management business logic
type DeviceService struct {
	deviceRepo repository.DeviceRepository
	eventRepo  repository.EventRepository
	sessions   *SessionManager
	config     *config.Config
	logger     *utils.ServiceLogger
	publisher  EventPublisher
}

// NewDeviceService creates a new device service instance
func NewDeviceService(
	deviceRepo repository.DeviceRepository,
	eventRepo repository.EventRepository,
	sessions *SessionManager,
	cfg *config.Config,
	logger *zap.Logger,
	publisher EventPublisher,
) *DeviceService {
	return &DeviceService{
		deviceRepo: deviceRepo,
		eventRepo:  eventRepo,
		sessions:   sessions,
		config:     cfg,
		logger:     utils.NewServiceLogger(logger, "device-service"),
		publisher:  publisher,
	}
}

// RegisterDevice registers a new device in the system
func (ds *DeviceService) RegisterDevice(ctx context.Context, req *RegisterDeviceRequest) (*model.Device, error) {
	if err := ds.validateRegisterRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := ds.deviceRepo.GetByDeviceID(ctx, req.DeviceID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("device with ID %s already exists", req.DeviceID)
	}

	device := &model.Device{
		ID:               uuid.New(),
		DeviceID:         req.DeviceID,
		Name:             req.Name,
		Role:             req.Role,
		FirmwareVersion:  req.FirmwareVersion,
		ConnectionType:   req.ConnectionType,
		ConnectionConfig: model.JSONObject(req.ConnectionConfig),
		Status:           model.DeviceStatusOffline,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := ds.deviceRepo.Create(ctx, device); err != nil {
		ds.logger.Error("Failed to create device", zap.Error(err))
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	ds.logger.Info("Device registered successfully",
		zap.String("device_id", device.DeviceID),
		zap.String("role", string(device.Role)),
	)

	return device, nil
}

// ConnectDevice opens a console session to a device and refreshes its
// identity and battery state.
func (ds *DeviceService) ConnectDevice(ctx context.Context, deviceID string) error {
	device, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("device not found: %w", err)
	}

	deviceLogger := utils.NewDeviceLogger(ds.logger.Logger, device.DeviceID, string(device.Role))

	device.Status = model.DeviceStatusConnecting
	if err := ds.deviceRepo.UpdateStatus(ctx, device.ID, device.Status); err != nil {
		deviceLogger.Error("Failed to update device status", zap.Error(err))
	}

	connectCtx, cancel := context.WithTimeout(ctx, ds.config.Device.OperationTimeout)
	defer cancel()

	client, err := ds.sessions.Open(connectCtx, device)
	if err != nil {
		deviceLogger.LogConnection("connect", false, err)
		ds.updateDeviceError(ctx, device, err)
		return fmt.Errorf("failed to connect to device: %w", err)
	}

	version, err := client.Version(connectCtx)
	if err != nil {
		deviceLogger.LogConnection("identify", false, err)
		ds.sessions.Close(device.ID)
		ds.updateDeviceError(ctx, device, err)
		return fmt.Errorf("failed to identify device: %w", err)
	}
	device.FirmwareVersion = &version

	if level, err := client.Battery(connectCtx); err == nil {
		device.BatteryLevel = &level
	} else {
		deviceLogger.Warn("Failed to read battery on connect", zap.Error(err))
	}

	now := time.Now()
	device.Status = model.DeviceStatusOnline
	device.LastSeen = &now
	device.ErrorInfo = model.JSONObject{}

	if err := ds.deviceRepo.Update(ctx, device); err != nil {
		deviceLogger.Error("Failed to update device after connection", zap.Error(err))
	}

	deviceLogger.LogConnection("connect", true, nil)
	ds.recordEvent(ctx, model.NewDeviceEvent(model.EventDeviceConnected, device.ID, "SERIAL", model.JSONObject{
		"firmware_version": version,
	}))

	return nil
}

// DisconnectDevice closes the console session for a device
func (ds *DeviceService) DisconnectDevice(ctx context.Context, deviceID string) error {
	device, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("device not found: %w", err)
	}

	deviceLogger := utils.NewDeviceLogger(ds.logger.Logger, device.DeviceID, string(device.Role))

	if err := ds.sessions.Close(device.ID); err != nil {
		deviceLogger.Warn("Failed to close console session", zap.Error(err))
	}

	device.Status = model.DeviceStatusOffline
	if err := ds.deviceRepo.UpdateStatus(ctx, device.ID, device.Status); err != nil {
		deviceLogger.Error("Failed to update device status", zap.Error(err))
	}

	deviceLogger.LogConnection("disconnect", true, nil)
	ds.recordEvent(ctx, model.NewDeviceEvent(model.EventDeviceDisconnected, device.ID, "SERIAL", nil))
	return nil
}

// GetDevice retrieves device information
func (ds *DeviceService) GetDevice(ctx context.Context, deviceID string) (*model.Device, error) {
	device, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("device not found: %w", err)
	}
	return device, nil
}

// ListDevices retrieves devices with filtering
func (ds *DeviceService) ListDevices(ctx context.Context, filter *repository.DeviceFilter) ([]*model.Device, *PaginationResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 20
	}

	devices, total, err := ds.deviceRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list devices: %w", err)
	}

	pagination := &PaginationResult{
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: (total + filter.PerPage - 1) / filter.PerPage,
	}

	return devices, pagination, nil
}

// DeleteDevice removes a device from the system
func (ds *DeviceService) DeleteDevice(ctx context.Context, deviceID string) error {
	device, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("device not found: %w", err)
	}

	if device.Status == model.DeviceStatusOnline {
		return fmt.Errorf("cannot delete online device, disconnect first")
	}

	if err := ds.deviceRepo.Delete(ctx, device.ID); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	ds.logger.Info("Device deleted", zap.String("device_id", deviceID))
	return nil
}

// GetDeviceEvents retrieves recent events recorded for a device
func (ds *DeviceService) GetDeviceEvents(ctx context.Context, deviceID string, limit int) ([]*model.DeviceEvent, error) {
	device, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("device not found: %w", err)
	}
	return ds.eventRepo.ListByDevice(ctx, device.ID, limit)
}

// GetDeviceStats retrieves fleet statistics
func (ds *DeviceService) GetDeviceStats(ctx context.Context) (*repository.DeviceStats, error) {
	return ds.deviceRepo.GetDeviceStats(ctx)
}

// ReadBattery reads the battery level over the console session
func (ds *DeviceService) ReadBattery(ctx context.Context, deviceID string) (int, error) {
	device, client, err := ds.openSession(ctx, deviceID)
	if err != nil {
		return 0, err
	}

	level, err := client.Battery(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read battery: %w", err)
	}

	deviceLogger := utils.NewDeviceLogger(ds.logger.Logger, device.DeviceID, string(device.Role))
	deviceLogger.LogBattery(level)

	if err := ds.deviceRepo.UpdateBatteryLevel(ctx, device.ID, level); err != nil {
		ds.logger.Warn("Failed to persist battery level", zap.Error(err))
	}

	ds.recordEvent(ctx, model.NewDeviceEvent(model.EventBatteryUpdate, device.ID, "SERIAL", model.JSONObject{
		"battery_level": level,
	}))
	return level, nil
}

// SetClock writes the host clock to the device RTC
func (ds *DeviceService) SetClock(ctx context.Context, deviceID string, now time.Time) error {
	_, client, err := ds.openSession(ctx, deviceID)
	if err != nil {
		return err
	}
	return client.SetTime(ctx, now)
}

// RebootDevice resets a device
func (ds *DeviceService) RebootDevice(ctx context.Context, deviceID string) error {
	device, client, err := ds.openSession(ctx, deviceID)
	if err != nil {
		return err
	}

	if err := client.Reboot(ctx); err != nil {
		return err
	}

	ds.sessions.Close(device.ID)
	ds.deviceRepo.UpdateStatus(ctx, device.ID, model.DeviceStatusOffline)
	return nil
}

// FactoryResetDevice erases storage and reboots a device
func (ds *DeviceService) FactoryResetDevice(ctx context.Context, deviceID string) error {
	device, client, err := ds.openSession(ctx, deviceID)
	if err != nil {
		return err
	}

	if err := client.FactoryReset(ctx); err != nil {
		return err
	}

	ds.sessions.Close(device.ID)
	ds.deviceRepo.UpdateStatus(ctx, device.ID, model.DeviceStatusOffline)

	ds.logger.Info("Device factory reset", zap.String("device_id", deviceID))
	return nil
}

// PairDevices exchanges pairing keys between a tracker and a stimulator
func (ds *DeviceService) PairDevices(ctx context.Context, firstID, secondID string) error {
	_, firstClient, err := ds.openSession(ctx, firstID)
	if err != nil {
		return fmt.Errorf("first device: %w", err)
	}
	_, secondClient, err := ds.openSession(ctx, secondID)
	if err != nil {
		return fmt.Errorf("second device: %w", err)
	}

	if err := protocol.Pair(ctx, firstClient, secondClient); err != nil {
		return fmt.Errorf("pairing failed: %w", err)
	}

	ds.logger.Info("Devices paired",
		zap.String("first", firstID),
		zap.String("second", secondID),
	)
	return nil
}

// UnpairDevices clears pairing keys on both devices
func (ds *DeviceService) UnpairDevices(ctx context.Context, firstID, secondID string) error {
	_, firstClient, err := ds.openSession(ctx, firstID)
	if err != nil {
		return fmt.Errorf("first device: %w", err)
	}
	_, secondClient, err := ds.openSession(ctx, secondID)
	if err != nil {
		return fmt.Errorf("second device: %w", err)
	}

	if err := protocol.Unpair(ctx, firstClient, secondClient); err != nil {
		return fmt.Errorf("unpairing failed: %w", err)
	}

	ds.logger.Info("Devices unpaired",
		zap.String("first", firstID),
		zap.String("second", secondID),
	)
	return nil
}

// StartBatteryPolling periodically reads battery levels of online
// devices until the context is cancelled.
func (ds *DeviceService) StartBatteryPolling(ctx context.Context) {
	interval := ds.config.Device.BatteryPollInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ds.pollBatteries(ctx)
		}
	}
}

func (ds *DeviceService) pollBatteries(ctx context.Context) {
	devices, err := ds.deviceRepo.ListByStatus(ctx, model.DeviceStatusOnline)
	if err != nil {
		ds.logger.Error("Battery poll: failed to list online devices", zap.Error(err))
		return
	}

	for _, device := range devices {
		pollCtx, cancel := context.WithTimeout(ctx, ds.config.Device.OperationTimeout)
		if _, err := ds.ReadBattery(pollCtx, device.DeviceID); err != nil {
			ds.logger.Warn("Battery poll failed",
				zap.String("device_id", device.DeviceID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Helper methods

// openSession resolves a device and its open console session.
func (ds *DeviceService) openSession(ctx context.Context, deviceID string) (*model.Device, *protocol.ShellClient, error) {
	device, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, nil, fmt.Errorf("device not found: %w", err)
	}

	client, err := ds.sessions.Get(device.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("device not connected: %w", err)
	}
	return device, client, nil
}

// validateRegisterRequest validates device registration request
func (ds *DeviceService) validateRegisterRequest(req *RegisterDeviceRequest) error {
	if req.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Role != model.RoleTracker && req.Role != model.RoleStimulator {
		return fmt.Errorf("role must be TRACKER or STIMULATOR")
	}
	if req.ConnectionType == "" {
		return fmt.Errorf("connection_type is required")
	}
	if req.ConnectionConfig == nil {
		return fmt.Errorf("connection_config is required")
	}
	return nil
}

// updateDeviceError updates device with error information
func (ds *DeviceService) updateDeviceError(ctx context.Context, device *model.Device, err error) {
	device.Status = model.DeviceStatusError
	device.ErrorInfo = model.JSONObject{
		"last_error": err.Error(),
		"error_time": time.Now(),
	}

	if updateErr := ds.deviceRepo.Update(ctx, device); updateErr != nil {
		ds.logger.Error("Failed to update device error", zap.Error(updateErr))
	}

	ds.recordEvent(ctx, model.NewDeviceEvent(model.EventDeviceError, device.ID, "SERIAL", model.JSONObject{
		"error": err.Error(),
	}))
}

// recordEvent persists an event and publishes it to live subscribers.
func (ds *DeviceService) recordEvent(ctx context.Context, event *model.DeviceEvent) {
	if err := ds.eventRepo.Create(ctx, event); err != nil {
		ds.logger.Warn("Failed to persist device event", zap.Error(err))
	}
	if ds.publisher != nil {
		ds.publisher.Publish(event)
	}
}

// Data Transfer Objects

// RegisterDeviceRequest represents device registration request
type RegisterDeviceRequest struct {
	DeviceID         string                 `json:"device_id"`
	Name             string                 `json:"name"`
	Role             model.DeviceRole       `json:"role"`
	FirmwareVersion  *string                `json:"firmware_version,omitempty"`
	ConnectionType   model.ConnectionType   `json:"connection_type"`
	ConnectionConfig map[string]interface{} `json:"connection_config"`
}

// PaginationResult represents pagination information
type PaginationResult struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}
