// internal/service/session_manager.go
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartvns/internal/config"
	"smartvns/internal/model"
	"smartvns/internal/protocol"
)

// TransportFactory builds a console transport for a device. Swapped for
// an in-memory transport in tests.
type TransportFactory func(cfg *protocol.SerialConfig) protocol.Transport

type session struct {
	client    *protocol.ShellClient
	transport protocol.Transport
}

// SessionManager tracks open console sessions per device.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	factory  TransportFactory
	serial   config.SerialConfig
	logger   *zap.Logger
}

// NewSessionManager creates a session manager using real serial ports.
func NewSessionManager(cfg *config.Config, logger *zap.Logger) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[uuid.UUID]*session),
		serial:   cfg.Device.Serial,
		logger:   logger,
	}
	sm.factory = func(serialCfg *protocol.SerialConfig) protocol.Transport {
		return protocol.NewSerialTransport(serialCfg, logger)
	}
	return sm
}

// SetTransportFactory overrides how transports are built.
func (sm *SessionManager) SetTransportFactory(factory TransportFactory) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.factory = factory
}

// Open opens a console session for the device, reusing one if present.
func (sm *SessionManager) Open(ctx context.Context, device *model.Device) (*protocol.ShellClient, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if existing, ok := sm.sessions[device.ID]; ok && existing.transport.IsOpen() {
		return existing.client, nil
	}

	port := device.SerialPort()
	if port == "" {
		return nil, fmt.Errorf("device %s has no serial port configured", device.DeviceID)
	}

	transport := sm.factory(&protocol.SerialConfig{
		Port:     port,
		BaudRate: sm.serial.BaudRate,
		DataBits: sm.serial.DataBits,
		StopBits: sm.serial.StopBits,
		Parity:   sm.serial.Parity,
		Timeout:  sm.serial.Timeout,
	})

	if err := transport.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open console session: %w", err)
	}

	client := protocol.NewShellClient(transport, sm.logger)
	sm.sessions[device.ID] = &session{client: client, transport: transport}

	sm.logger.Info("Console session opened",
		zap.String("device_id", device.DeviceID),
		zap.String("port", port),
	)
	return client, nil
}

// Get returns the open session for a device.
func (sm *SessionManager) Get(deviceID uuid.UUID) (*protocol.ShellClient, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	existing, ok := sm.sessions[deviceID]
	if !ok || !existing.transport.IsOpen() {
		return nil, fmt.Errorf("no open session for device: %s", deviceID)
	}
	return existing.client, nil
}

// Close closes the session for a device.
func (sm *SessionManager) Close(deviceID uuid.UUID) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	existing, ok := sm.sessions[deviceID]
	if !ok {
		return nil
	}
	delete(sm.sessions, deviceID)

	if err := existing.transport.Close(); err != nil {
		return fmt.Errorf("failed to close console session: %w", err)
	}
	return nil
}

// CloseAll closes every open session.
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, existing := range sm.sessions {
		if err := existing.transport.Close(); err != nil {
			sm.logger.Warn("Failed to close console session",
				zap.String("device_id", id.String()),
				zap.Error(err),
			)
		}
		delete(sm.sessions, id)
	}
}
