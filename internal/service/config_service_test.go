package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smartvns/internal/model"
	"smartvns/internal/protocol"
	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

func newConfigServiceForTest(t *testing.T) (*ConfigService, *DeviceService, *fakeConfigRepo, *fakeEventRepo, *memoryTransportFactory) {
	t.Helper()

	deviceRepo := newFakeDeviceRepo()
	configRepo := &fakeConfigRepo{}
	eventRepo := &fakeEventRepo{}
	factory := newMemoryTransportFactory()

	sessions := NewSessionManager(testConfig(), zap.NewNop())
	sessions.SetTransportFactory(factory.factory)

	deviceService := NewDeviceService(deviceRepo, eventRepo, sessions, testConfig(), zap.NewNop(), nil)
	configService := NewConfigService(deviceRepo, configRepo, eventRepo, sessions, zap.NewNop(), nil)
	return configService, deviceService, configRepo, eventRepo, factory
}

func connectStimulator(t *testing.T, deviceService *DeviceService, factory *memoryTransportFactory, deviceID, port string) *protocol.InMemoryTransport {
	t.Helper()

	registerSerialDevice(t, deviceService, deviceID, model.RoleStimulator, port)
	transport := factory.transport(port)
	transport.Script("version", "OK: 2.4.1")
	transport.Script("batt", "OK: 75")
	require.NoError(t, deviceService.ConnectDevice(context.Background(), deviceID))
	return transport
}

func scriptStimConfig(t *testing.T, transport *protocol.InMemoryTransport, cfg *smartvnspb.StimConfig) {
	t.Helper()
	raw, err := configcodec.EncodeStimConfig(cfg)
	require.NoError(t, err)
	transport.Script("cfg get stim", "OK: "+base64.StdEncoding.EncodeToString(raw))
}

func scriptStimWrite(t *testing.T, transport *protocol.InMemoryTransport, cfg *smartvnspb.StimConfig) string {
	t.Helper()
	raw, err := configcodec.EncodeStimConfig(cfg)
	require.NoError(t, err)
	command := "cfg set stim " + base64.StdEncoding.EncodeToString(raw)
	transport.Script(command, "OK:")
	return command
}

func TestConfigService_ReadStimConfigStoresSnapshot(t *testing.T) {
	configService, deviceService, configRepo, eventRepo, factory := newConfigServiceForTest(t)
	transport := connectStimulator(t, deviceService, factory, "VNS-S1", "memS1")

	scriptStimConfig(t, transport, &smartvnspb.StimConfig{
		TriggerMs: 1000, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	})

	mapping, err := configService.ReadStimConfig(context.Background(), "VNS-S1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), mapping["trigger_ms"])
	assert.Equal(t, uint32(100), mapping["intensity_uA"])

	require.Len(t, configRepo.snapshots, 1)
	snapshot := configRepo.snapshots[0]
	assert.Equal(t, model.ConfigKindStim, snapshot.Kind)
	require.NotNil(t, snapshot.PulseChargeUC)
	// 100 µA for 1000 ms is 100 µC per pulse
	assert.Equal(t, "100", snapshot.PulseChargeUC.String())

	assert.Contains(t, eventRepo.typesSeen(), model.EventConfigRead)
}

func TestConfigService_WriteStimConfigRoundTrip(t *testing.T) {
	configService, deviceService, configRepo, _, factory := newConfigServiceForTest(t)
	transport := connectStimulator(t, deviceService, factory, "VNS-S2", "memS2")

	target := &smartvnspb.StimConfig{
		TriggerMs: 500, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 150,
	}
	command := scriptStimWrite(t, transport, target)

	err := configService.WriteStimConfig(context.Background(), "VNS-S2", map[string]interface{}{
		"retain_cfg":   false,
		"trigger_ms":   500,
		"forward_us":   250,
		"deadband_us":  100,
		"period_us":    40000,
		"intensity_uA": 150,
	})
	require.NoError(t, err)
	assert.Contains(t, transport.Requests, command)
	require.Len(t, configRepo.snapshots, 1)
}

func TestConfigService_WriteStimConfigRejectsUnknownField(t *testing.T) {
	configService, deviceService, _, _, factory := newConfigServiceForTest(t)
	connectStimulator(t, deviceService, factory, "VNS-S3", "memS3")

	err := configService.WriteStimConfig(context.Background(), "VNS-S3", map[string]interface{}{
		"trigger_msec": 500,
	})
	var validationErr *configcodec.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "trigger_msec", validationErr.Field)
}

func TestConfigService_WriteStimConfigRejectsTracker(t *testing.T) {
	configService, deviceService, _, _, factory := newConfigServiceForTest(t)

	registerSerialDevice(t, deviceService, "VNS-T1", model.RoleTracker, "memT1")
	transport := factory.transport("memT1")
	transport.Script("version", "OK: 2.4.1")
	transport.Script("batt", "OK: 88")
	require.NoError(t, deviceService.ConnectDevice(context.Background(), "VNS-T1"))

	err := configService.WriteStimConfig(context.Background(), "VNS-T1", map[string]interface{}{
		"trigger_ms": 500,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a stimulator")
}

func TestConfigService_TriggerStimulationRewritesDuration(t *testing.T) {
	configService, deviceService, _, eventRepo, factory := newConfigServiceForTest(t)
	transport := connectStimulator(t, deviceService, factory, "VNS-S4", "memS4")

	current := &smartvnspb.StimConfig{
		TriggerMs: 0, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	}
	scriptStimConfig(t, transport, current)

	triggered := &smartvnspb.StimConfig{
		TriggerMs: 2000, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	}
	command := scriptStimWrite(t, transport, triggered)

	require.NoError(t, configService.TriggerStimulation(context.Background(), "VNS-S4", 2000))
	assert.Contains(t, transport.Requests, command)
	assert.Contains(t, eventRepo.typesSeen(), model.EventStimTriggered)
}

func TestConfigService_ReadSysConfig(t *testing.T) {
	configService, deviceService, configRepo, _, factory := newConfigServiceForTest(t)
	transport := connectStimulator(t, deviceService, factory, "VNS-S5", "memS5")

	cfg := &smartvnspb.SysConfig{
		RetainCfg: true,
		Imu: &smartvnspb.IMUConf{
			GyroFs: smartvnspb.GyroFS_FS_500DPS,
			AccFs:  smartvnspb.AccFS_FS_4G,
			Odr:    60,
		},
	}
	raw, err := configcodec.EncodeSysConfig(cfg)
	require.NoError(t, err)
	transport.Script("cfg get sys", "OK: "+base64.StdEncoding.EncodeToString(raw))

	mapping, err := configService.ReadSysConfig(context.Background(), "VNS-S5")
	require.NoError(t, err)
	assert.Equal(t, true, mapping["retain_cfg"])

	imu, ok := mapping["imu"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FS_500DPS", imu["gyro_fs"])

	require.Len(t, configRepo.snapshots, 1)
	assert.Equal(t, model.ConfigKindSys, configRepo.snapshots[0].Kind)
	assert.Nil(t, configRepo.snapshots[0].PulseChargeUC)
}

func TestConfigService_TriggerStimulationLogsCommand(t *testing.T) {
	deviceRepo := newFakeDeviceRepo()
	configRepo := &fakeConfigRepo{}
	eventRepo := &fakeEventRepo{}
	factory := newMemoryTransportFactory()

	sessions := NewSessionManager(testConfig(), zap.NewNop())
	sessions.SetTransportFactory(factory.factory)

	deviceService := NewDeviceService(deviceRepo, eventRepo, sessions, testConfig(), zap.NewNop(), nil)

	core, logs := observer.New(zapcore.InfoLevel)
	configService := NewConfigService(deviceRepo, configRepo, eventRepo, sessions, zap.New(core), nil)

	transport := connectStimulator(t, deviceService, factory, "VNS-S6", "memS6")
	scriptStimConfig(t, transport, &smartvnspb.StimConfig{
		TriggerMs: 0, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	})
	scriptStimWrite(t, transport, &smartvnspb.StimConfig{
		TriggerMs: 1500, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	})

	require.NoError(t, configService.TriggerStimulation(context.Background(), "VNS-S6", 1500))

	entries := logs.FilterMessage("Stimulation command").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "trigger", fields["action"])
	assert.Equal(t, uint32(1500), fields["duration_ms"])
	assert.Equal(t, uint32(100), fields["intensity_uA"])
	assert.Equal(t, "VNS-S6", fields["device_id"])
}
