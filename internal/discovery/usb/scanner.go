// internal/discovery/usb/scanner.go
package usb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"smartvns/internal/discovery"
	"smartvns/internal/model"
)

// Scanner implements USB device scanning
type Scanner struct {
	logger  *zap.Logger
	config  *Config
	timeout time.Duration
}

// Config for USB scanner
type Config struct {
	ScanTimeout time.Duration `json:"scan_timeout"`
	VendorID    gousb.ID      `json:"vendor_id"`
	ProductID   gousb.ID      `json:"product_id"`
	EnableDebug bool          `json:"enable_debug"`
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{
			ScanTimeout: 10 * time.Second,
			VendorID:    0x1915,
			ProductID:   0x520F,
		}
	}

	return &Scanner{
		logger:  logger.With(zap.String("scanner", "usb")),
		config:  config,
		timeout: config.ScanTimeout,
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "usb"
}

// IsAvailable checks if USB scanning is available on this system
func (s *Scanner) IsAvailable() bool {
	testCtx := gousb.NewContext()
	defer testCtx.Close()

	_, err := testCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return false // access test only, open nothing
	})
	if err != nil {
		s.logger.Debug("USB subsystem not accessible", zap.Error(err))
		return false
	}
	return true
}

// Scan performs USB device discovery
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	startTime := time.Now()
	s.logger.Info("Starting USB device scan")

	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()

	if s.config.EnableDebug {
		usbCtx.Debug(3)
	}

	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == s.config.VendorID && desc.Product == s.config.ProductID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}
	defer func() {
		for _, dev := range devices {
			dev.Close()
		}
	}()

	var discovered []*discovery.DiscoveredDevice
	for _, dev := range devices {
		select {
		case <-scanCtx.Done():
			return discovered, scanCtx.Err()
		default:
		}

		serialNumber, err := dev.SerialNumber()
		if err != nil {
			s.logger.Debug("Failed to read USB serial number", zap.Error(err))
			serialNumber = ""
		}

		discovered = append(discovered, &discovery.DiscoveredDevice{
			ConnectionType: model.ConnectionTypeUSB,
			ConnectionInfo: map[string]interface{}{
				"vendor_id":  fmt.Sprintf("0x%04X", uint16(dev.Desc.Vendor)),
				"product_id": fmt.Sprintf("0x%04X", uint16(dev.Desc.Product)),
				"bus":        dev.Desc.Bus,
				"address":    dev.Desc.Address,
			},
			Name:         "SmartVNS dock",
			Role:         model.RoleTracker,
			Confidence:   0.9,
			SerialNumber: serialNumber,
		})
	}

	s.logger.Info("USB scan completed",
		zap.Int("devices_found", len(discovered)),
		zap.Duration("scan_duration", time.Since(startTime)),
	)

	return discovered, nil
}
