package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smartvns/internal/model"
)

func newDeviceServiceForTest(t *testing.T) (*DeviceService, *fakeDeviceRepo, *fakeEventRepo, *memoryTransportFactory) {
	t.Helper()

	deviceRepo := newFakeDeviceRepo()
	eventRepo := &fakeEventRepo{}
	factory := newMemoryTransportFactory()

	sessions := NewSessionManager(testConfig(), zap.NewNop())
	sessions.SetTransportFactory(factory.factory)

	service := NewDeviceService(deviceRepo, eventRepo, sessions, testConfig(), zap.NewNop(), nil)
	return service, deviceRepo, eventRepo, factory
}

func registerSerialDevice(t *testing.T, service *DeviceService, deviceID string, role model.DeviceRole, port string) *model.Device {
	t.Helper()

	device, err := service.RegisterDevice(context.Background(), &RegisterDeviceRequest{
		DeviceID:       deviceID,
		Name:           "SmartVNS " + deviceID,
		Role:           role,
		ConnectionType: model.ConnectionTypeSerial,
		ConnectionConfig: map[string]interface{}{
			"port": port,
		},
	})
	require.NoError(t, err)
	return device
}

func TestDeviceService_RegisterValidation(t *testing.T) {
	service, _, _, _ := newDeviceServiceForTest(t)

	_, err := service.RegisterDevice(context.Background(), &RegisterDeviceRequest{
		DeviceID:       "VNS-001",
		Name:           "Tracker",
		Role:           "WATCH",
		ConnectionType: model.ConnectionTypeSerial,
		ConnectionConfig: map[string]interface{}{
			"port": "/dev/ttyACM0",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role")
}

func TestDeviceService_RegisterRejectsDuplicate(t *testing.T) {
	service, _, _, _ := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-001", model.RoleTracker, "mem0")

	_, err := service.RegisterDevice(context.Background(), &RegisterDeviceRequest{
		DeviceID:       "VNS-001",
		Name:           "Tracker again",
		Role:           model.RoleTracker,
		ConnectionType: model.ConnectionTypeSerial,
		ConnectionConfig: map[string]interface{}{
			"port": "mem0",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestDeviceService_ConnectRefreshesIdentity(t *testing.T) {
	service, deviceRepo, eventRepo, factory := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-001", model.RoleTracker, "mem0")

	transport := factory.transport("mem0")
	transport.Script("version", "OK: 2.4.1")
	transport.Script("batt", "OK: 91")

	require.NoError(t, service.ConnectDevice(context.Background(), "VNS-001"))

	device, err := deviceRepo.GetByDeviceID(context.Background(), "VNS-001")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOnline, device.Status)
	require.NotNil(t, device.FirmwareVersion)
	assert.Equal(t, "2.4.1", *device.FirmwareVersion)
	require.NotNil(t, device.BatteryLevel)
	assert.Equal(t, 91, *device.BatteryLevel)

	assert.Contains(t, eventRepo.typesSeen(), model.EventDeviceConnected)
}

func TestDeviceService_ConnectFailureMarksError(t *testing.T) {
	service, deviceRepo, _, factory := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-002", model.RoleTracker, "mem1")

	// "version" not scripted: console rejects the command
	factory.transport("mem1")

	require.Error(t, service.ConnectDevice(context.Background(), "VNS-002"))

	device, err := deviceRepo.GetByDeviceID(context.Background(), "VNS-002")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusError, device.Status)
	assert.Contains(t, device.ErrorInfo, "last_error")
}

func TestDeviceService_ReadBattery(t *testing.T) {
	service, deviceRepo, eventRepo, factory := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-003", model.RoleStimulator, "mem2")

	transport := factory.transport("mem2")
	transport.Script("version", "OK: 2.4.1")
	transport.Script("batt", "OK: 64")
	require.NoError(t, service.ConnectDevice(context.Background(), "VNS-003"))

	level, err := service.ReadBattery(context.Background(), "VNS-003")
	require.NoError(t, err)
	assert.Equal(t, 64, level)

	device, err := deviceRepo.GetByDeviceID(context.Background(), "VNS-003")
	require.NoError(t, err)
	require.NotNil(t, device.BatteryLevel)
	assert.Equal(t, 64, *device.BatteryLevel)
	assert.Contains(t, eventRepo.typesSeen(), model.EventBatteryUpdate)
}

func TestDeviceService_OperationsRequireConnection(t *testing.T) {
	service, _, _, _ := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-004", model.RoleTracker, "mem3")

	_, err := service.ReadBattery(context.Background(), "VNS-004")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestDeviceService_DeleteRejectsOnlineDevice(t *testing.T) {
	service, _, _, factory := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-005", model.RoleTracker, "mem4")

	transport := factory.transport("mem4")
	transport.Script("version", "OK: 2.4.1")
	transport.Script("batt", "OK: 50")
	require.NoError(t, service.ConnectDevice(context.Background(), "VNS-005"))

	err := service.DeleteDevice(context.Background(), "VNS-005")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disconnect first")

	require.NoError(t, service.DisconnectDevice(context.Background(), "VNS-005"))
	require.NoError(t, service.DeleteDevice(context.Background(), "VNS-005"))
}

func TestDeviceService_PairDevices(t *testing.T) {
	service, _, _, factory := newDeviceServiceForTest(t)
	registerSerialDevice(t, service, "VNS-T1", model.RoleTracker, "memA")
	registerSerialDevice(t, service, "VNS-S1", model.RoleStimulator, "memB")

	tracker := factory.transport("memA")
	tracker.Script("version", "OK: 2.4.1")
	tracker.Script("batt", "OK: 70")
	tracker.Script("bond get", "OK: KEY-T")
	tracker.Script("bond set vns KEY-S", "OK:")

	stimulator := factory.transport("memB")
	stimulator.Script("version", "OK: 2.4.1")
	stimulator.Script("batt", "OK: 80")
	stimulator.Script("bond get", "OK: KEY-S")
	stimulator.Script("bond set vns KEY-T", "OK:")

	require.NoError(t, service.ConnectDevice(context.Background(), "VNS-T1"))
	require.NoError(t, service.ConnectDevice(context.Background(), "VNS-S1"))

	require.NoError(t, service.PairDevices(context.Background(), "VNS-T1", "VNS-S1"))
	assert.Contains(t, tracker.Requests, "bond set vns KEY-S")
	assert.Contains(t, stimulator.Requests, "bond set vns KEY-T")
}

func TestDeviceService_ReadBatteryLogsReading(t *testing.T) {
	deviceRepo := newFakeDeviceRepo()
	eventRepo := &fakeEventRepo{}
	factory := newMemoryTransportFactory()

	sessions := NewSessionManager(testConfig(), zap.NewNop())
	sessions.SetTransportFactory(factory.factory)

	core, logs := observer.New(zapcore.InfoLevel)
	service := NewDeviceService(deviceRepo, eventRepo, sessions, testConfig(), zap.New(core), nil)

	registerSerialDevice(t, service, "VNS-B1", model.RoleTracker, "memB1")
	transport := factory.transport("memB1")
	transport.Script("version", "OK: 2.4.1")
	transport.Script("batt", "OK: 64")
	require.NoError(t, service.ConnectDevice(context.Background(), "VNS-B1"))

	level, err := service.ReadBattery(context.Background(), "VNS-B1")
	require.NoError(t, err)
	assert.Equal(t, 64, level)

	entries := logs.FilterMessage("Battery level read").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "VNS-B1", fields["device_id"])
	assert.Equal(t, int64(64), fields["battery_level"])
}
