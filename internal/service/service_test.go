package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartvns/internal/config"
	"smartvns/internal/model"
	"smartvns/internal/protocol"
	"smartvns/internal/repository"
)

// In-memory repository fakes shared by the service tests.

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]*model.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*model.Device)}
}

func (r *fakeDeviceRepo) Create(ctx context.Context, device *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[device.DeviceID]; ok {
		return fmt.Errorf("duplicate device_id: %s", device.DeviceID)
	}
	r.devices[device.DeviceID] = device
	return nil
}

func (r *fakeDeviceRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, device := range r.devices {
		if device.ID == id {
			return device, nil
		}
	}
	return nil, fmt.Errorf("device not found with id: %s", id)
}

func (r *fakeDeviceRepo) GetByDeviceID(ctx context.Context, deviceID string) (*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, fmt.Errorf("device not found with device_id: %s", deviceID)
	}
	return device, nil
}

func (r *fakeDeviceRepo) Update(ctx context.Context, device *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[device.DeviceID] = device
	return nil
}

func (r *fakeDeviceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeviceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, device := range r.devices {
		if device.ID == id {
			device.Status = status
			return nil
		}
	}
	return fmt.Errorf("device not found with id: %s", id)
}

func (r *fakeDeviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for deviceID, device := range r.devices {
		if device.ID == id {
			delete(r.devices, deviceID)
			return nil
		}
	}
	return fmt.Errorf("device not found with id: %s", id)
}

func (r *fakeDeviceRepo) List(ctx context.Context, filter *repository.DeviceFilter) ([]*model.Device, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := []*model.Device{}
	for _, device := range r.devices {
		devices = append(devices, device)
	}
	return devices, len(devices), nil
}

func (r *fakeDeviceRepo) ListByRole(ctx context.Context, role model.DeviceRole) ([]*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := []*model.Device{}
	for _, device := range r.devices {
		if device.Role == role {
			devices = append(devices, device)
		}
	}
	return devices, nil
}

func (r *fakeDeviceRepo) ListByStatus(ctx context.Context, status model.DeviceStatus) ([]*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := []*model.Device{}
	for _, device := range r.devices {
		if device.Status == status {
			devices = append(devices, device)
		}
	}
	return devices, nil
}

func (r *fakeDeviceRepo) UpdateLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, device := range r.devices {
		if device.ID == id {
			device.LastSeen = &seenAt
			return nil
		}
	}
	return fmt.Errorf("device not found with id: %s", id)
}

func (r *fakeDeviceRepo) UpdateBatteryLevel(ctx context.Context, id uuid.UUID, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, device := range r.devices {
		if device.ID == id {
			device.BatteryLevel = &level
			return nil
		}
	}
	return fmt.Errorf("device not found with id: %s", id)
}

func (r *fakeDeviceRepo) GetDeviceStats(ctx context.Context) (*repository.DeviceStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repository.DeviceStats{
		ByRole:   make(map[model.DeviceRole]int),
		ByStatus: make(map[model.DeviceStatus]int),
	}
	for _, device := range r.devices {
		stats.TotalDevices++
		stats.ByRole[device.Role]++
		stats.ByStatus[device.Status]++
	}
	return stats, nil
}

type fakeConfigRepo struct {
	mu        sync.Mutex
	snapshots []*model.ConfigSnapshot
}

func (r *fakeConfigRepo) Create(ctx context.Context, snapshot *model.ConfigSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *fakeConfigRepo) GetLatest(ctx context.Context, deviceID uuid.UUID, kind model.ConfigKind) (*model.ConfigSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].DeviceID == deviceID && r.snapshots[i].Kind == kind {
			return r.snapshots[i], nil
		}
	}
	return nil, fmt.Errorf("no snapshot")
}

func (r *fakeConfigRepo) ListByDevice(ctx context.Context, deviceID uuid.UUID, kind *model.ConfigKind, limit int) ([]*model.ConfigSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.ConfigSnapshot{}
	for _, snapshot := range r.snapshots {
		if snapshot.DeviceID != deviceID {
			continue
		}
		if kind != nil && snapshot.Kind != *kind {
			continue
		}
		result = append(result, snapshot)
	}
	return result, nil
}

func (r *fakeConfigRepo) DeleteOldSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*model.DeviceEvent
}

func (r *fakeEventRepo) Create(ctx context.Context, event *model.DeviceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*model.DeviceEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.DeviceEvent{}
	for _, event := range r.events {
		if event.DeviceID == deviceID {
			result = append(result, event)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) ListByType(ctx context.Context, eventType model.EventType, limit int) ([]*model.DeviceEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.DeviceEvent{}
	for _, event := range r.events {
		if event.EventType == eventType {
			result = append(result, event)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeEventRepo) typesSeen() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := []model.EventType{}
	for _, event := range r.events {
		types = append(types, event.EventType)
	}
	return types
}

// testConfig returns a config with short timeouts for tests.
func testConfig() *config.Config {
	return &config.Config{
		Device: config.DeviceConfig{
			OperationTimeout:    5 * time.Second,
			BatteryPollInterval: time.Minute,
			Serial: config.SerialConfig{
				BaudRate: 115200,
				DataBits: 8,
				StopBits: 1,
				Parity:   "none",
				Timeout:  time.Second,
			},
		},
	}
}

// memoryTransportFactory wires every session to one shared scripted
// transport keyed by port name.
type memoryTransportFactory struct {
	mu         sync.Mutex
	transports map[string]*protocol.InMemoryTransport
}

func newMemoryTransportFactory() *memoryTransportFactory {
	return &memoryTransportFactory{transports: make(map[string]*protocol.InMemoryTransport)}
}

func (f *memoryTransportFactory) transport(port string) *protocol.InMemoryTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.transports[port]; ok {
		return existing
	}
	transport := protocol.NewInMemoryTransport()
	f.transports[port] = transport
	return transport
}

func (f *memoryTransportFactory) factory(cfg *protocol.SerialConfig) protocol.Transport {
	return f.transport(cfg.Port)
}
