// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"smartvns/internal/discovery"
	"smartvns/internal/model"
)

// Scanner implements serial port device scanning
type Scanner struct {
	logger *zap.Logger
	config *Config
}

// Config for serial scanner
type Config struct {
	ScanTimeout time.Duration `json:"scan_timeout"`
	VendorID    uint16        `json:"vendor_id"`
	ProductID   uint16        `json:"product_id"`
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{
			ScanTimeout: 10 * time.Second,
			VendorID:    0x1915,
			ProductID:   0x520F,
		}
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "serial")),
		config: config,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable checks if serial scanning is available
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan performs serial port device discovery
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	s.logger.Info("Starting serial port scan")

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var discovered []*discovery.DiscoveredDevice
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return discovered, ctx.Err()
		default:
		}

		if !port.IsUSB {
			continue
		}
		if !s.matchesDevice(port.VID, port.PID) {
			continue
		}

		s.logger.Info("Found device console port",
			zap.String("port", port.Name),
			zap.String("vid", port.VID),
			zap.String("pid", port.PID),
			zap.String("serial_number", port.SerialNumber),
		)

		discovered = append(discovered, &discovery.DiscoveredDevice{
			ConnectionType: model.ConnectionTypeSerial,
			ConnectionInfo: map[string]interface{}{
				"port": port.Name,
				"vid":  port.VID,
				"pid":  port.PID,
			},
			Name:         "SmartVNS console",
			Role:         model.RoleTracker,
			Confidence:   0.9,
			SerialNumber: port.SerialNumber,
		})
	}

	s.logger.Info("Serial scan completed", zap.Int("devices_found", len(discovered)))
	return discovered, nil
}

// matchesDevice reports whether the USB ids identify a SmartVNS console.
func (s *Scanner) matchesDevice(vid, pid string) bool {
	parsedVID, err := strconv.ParseUint(strings.TrimPrefix(vid, "0x"), 16, 16)
	if err != nil {
		return false
	}
	parsedPID, err := strconv.ParseUint(strings.TrimPrefix(pid, "0x"), 16, 16)
	if err != nil {
		return false
	}
	return uint16(parsedVID) == s.config.VendorID && uint16(parsedPID) == s.config.ProductID
}
