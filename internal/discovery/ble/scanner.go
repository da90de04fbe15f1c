// internal/discovery/ble/scanner.go
package ble

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"smartvns/internal/discovery"
	"smartvns/internal/model"
	"smartvns/pkg/vns"
)

// AdvertisementSource yields BLE advertisements observed during a scan
// window. The central (OS Bluetooth stack) side is supplied by the
// host application.
type AdvertisementSource interface {
	Advertisements(ctx context.Context, window time.Duration) ([]vns.Advertisement, error)
}

// Scanner implements BLE device scanning on top of an advertisement
// source.
type Scanner struct {
	logger *zap.Logger
	source AdvertisementSource
	config *Config
}

// Config for BLE scanner
type Config struct {
	ScanTimeout time.Duration `json:"scan_timeout"`
}

// NewScanner creates a new BLE scanner
func NewScanner(logger *zap.Logger, source AdvertisementSource, config *Config) *Scanner {
	if config == nil {
		config = &Config{
			ScanTimeout: 30 * time.Second,
		}
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "ble")),
		source: source,
		config: config,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "ble"
}

// IsAvailable checks if BLE scanning is available
func (s *Scanner) IsAvailable() bool {
	return s.source != nil
}

// Scan performs BLE device discovery
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	s.logger.Info("Starting BLE scan", zap.Duration("window", s.config.ScanTimeout))

	advertisements, err := s.source.Advertisements(ctx, s.config.ScanTimeout)
	if err != nil {
		return nil, fmt.Errorf("BLE advertisement scan failed: %w", err)
	}

	matched := vns.FilterAdvertisements(advertisements)

	discovered := make([]*discovery.DiscoveredDevice, 0, len(matched))
	for _, adv := range matched {
		role := model.RoleTracker
		if vns.IsStimulator(adv.Name) {
			role = model.RoleStimulator
		}

		discovered = append(discovered, &discovery.DiscoveredDevice{
			ConnectionType: model.ConnectionTypeBLE,
			ConnectionInfo: map[string]interface{}{
				"address": adv.Address,
			},
			Name:       adv.Name,
			Role:       role,
			Confidence: 1.0,
			RSSI:       adv.RSSI,
		})
	}

	s.logger.Info("BLE scan completed", zap.Int("devices_found", len(discovered)))
	return discovered, nil
}
