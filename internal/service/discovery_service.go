// internal/service/discovery_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartvns/internal/config"
	"smartvns/internal/discovery"
	"smartvns/internal/model"
	"smartvns/internal/repository"
	"smartvns/internal/utils"
)

// DiscoveryService coordinates device scanning and registration of
// discovered devices.
type DiscoveryService struct {
	scannerManager *discovery.ScannerManager
	deviceRepo     repository.DeviceRepository
	config         *config.Config
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a new discovery service instance
func NewDiscoveryService(
	scannerManager *discovery.ScannerManager,
	deviceRepo repository.DeviceRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		scannerManager: scannerManager,
		deviceRepo:     deviceRepo,
		config:         cfg,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}
}

// Scan runs all available scanners and returns what they found.
func (ds *DiscoveryService) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	opLogger := utils.NewOperationLogger(ds.logger.Logger, "discovery_scan", time.Now().Format(time.RFC3339Nano))
	opLogger.Start()

	devices, err := ds.scannerManager.ScanAll(ctx)
	if err != nil {
		opLogger.Error(err)
		return nil, fmt.Errorf("discovery scan failed: %w", err)
	}

	opLogger.Success(zap.Int("devices_found", len(devices)))
	return devices, nil
}

// ScanByType runs a single scanner type.
func (ds *DiscoveryService) ScanByType(ctx context.Context, scannerType string) ([]*discovery.DiscoveredDevice, error) {
	return ds.scannerManager.ScanByType(ctx, scannerType)
}

// AvailableScanners lists the scanner types usable on this host.
func (ds *DiscoveryService) AvailableScanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}

// RegisterDiscovered creates device records for discovered devices not
// yet known, keyed by serial number or BLE address. Returns the
// registered devices.
func (ds *DiscoveryService) RegisterDiscovered(ctx context.Context, discovered []*discovery.DiscoveredDevice) ([]*model.Device, error) {
	var registered []*model.Device

	for _, found := range discovered {
		deviceID := ds.deviceIdentity(found)
		if deviceID == "" {
			ds.logger.Debug("Skipping discovered device without identity",
				zap.String("name", found.Name),
			)
			continue
		}

		if existing, err := ds.deviceRepo.GetByDeviceID(ctx, deviceID); err == nil && existing != nil {
			now := time.Now()
			ds.deviceRepo.UpdateLastSeen(ctx, existing.ID, now)
			continue
		}

		device := &model.Device{
			ID:               uuid.New(),
			DeviceID:         deviceID,
			Name:             found.Name,
			Role:             found.Role,
			ConnectionType:   found.ConnectionType,
			ConnectionConfig: model.JSONObject(found.ConnectionInfo),
			Status:           model.DeviceStatusOffline,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}

		if err := ds.deviceRepo.Create(ctx, device); err != nil {
			ds.logger.Error("Failed to register discovered device",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
			continue
		}

		ds.logger.Info("Discovered device registered",
			zap.String("device_id", deviceID),
			zap.String("connection_type", string(found.ConnectionType)),
		)
		registered = append(registered, device)
	}

	return registered, nil
}

// deviceIdentity derives a stable device id from discovery info.
func (ds *DiscoveryService) deviceIdentity(found *discovery.DiscoveredDevice) string {
	if found.SerialNumber != "" {
		return found.SerialNumber
	}
	if addr, ok := found.ConnectionInfo["address"].(string); ok && addr != "" {
		return addr
	}
	return ""
}
