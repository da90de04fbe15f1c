package configcodec

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartvns/pkg/smartvnspb"
)

func sampleSysConfig() *smartvnspb.SysConfig {
	return &smartvnspb.SysConfig{
		RetainCfg: true,
		Imu: &smartvnspb.IMUConf{
			GyroFs: smartvnspb.GyroFS_FS_500DPS,
			AccFs:  smartvnspb.AccFS_FS_4G,
			Odr:    60,
		},
		Mag: &smartvnspb.MAGConf{Odr: 10},
		Dispatch: &smartvnspb.Dispatcher{
			ToBle: &smartvnspb.Dispatcher_Stream{Imu: true, Mag: true},
			ToMem: &smartvnspb.Dispatcher_Stream{Imu: true, Mag: true, Vnsdata: true},
		},
	}
}

func sampleStimConfig() *smartvnspb.StimConfig {
	return &smartvnspb.StimConfig{
		RetainCfg:   false,
		TriggerMs:   1000,
		ForwardUs:   250,
		DeadbandUs:  100,
		PeriodUs:    40000,
		IntensityUA: 100,
	}
}

func TestSysConfig_EncodeDecodeRoundTrip(t *testing.T) {
	cfg := sampleSysConfig()

	buf, err := EncodeSysConfig(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, buf)

	decoded, err := DecodeSysConfig(buf)
	require.NoError(t, err)
	assert.True(t, proto.Equal(cfg, decoded))
}

func TestStimConfig_EncodeDecodeRoundTrip(t *testing.T) {
	cfg := sampleStimConfig()

	buf, err := EncodeStimConfig(cfg)
	require.NoError(t, err)

	decoded, err := DecodeStimConfig(buf)
	require.NoError(t, err)
	assert.True(t, proto.Equal(cfg, decoded))
	assert.Equal(t, uint32(1000), decoded.GetTriggerMs())
	assert.Equal(t, uint32(100), decoded.GetIntensityUA())
}

func TestEncode_Deterministic(t *testing.T) {
	first, err := EncodeStimConfig(sampleStimConfig())
	require.NoError(t, err)
	second, err := EncodeStimConfig(sampleStimConfig())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecode_EmptyBuffer(t *testing.T) {
	_, err := DecodeSysConfig(nil)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	_, err = DecodeStimConfig([]byte{})
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecode_TruncatedBuffer(t *testing.T) {
	buf, err := EncodeStimConfig(sampleStimConfig())
	require.NoError(t, err)

	_, err = DecodeStimConfig(buf[:len(buf)-1])
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestSysConfig_MapRoundTrip(t *testing.T) {
	cfg := sampleSysConfig()

	m := SysConfigToMap(cfg)
	rebuilt, err := SysConfigFromMap(m)
	require.NoError(t, err)

	assert.True(t, proto.Equal(cfg, rebuilt))
}

func TestSysConfigToMap_EnumNames(t *testing.T) {
	m := SysConfigToMap(sampleSysConfig())

	imu, ok := m["imu"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FS_500DPS", imu["gyro_fs"])
	assert.Equal(t, "FS_4G", imu["acc_fs"])
}

func TestSysConfigToMap_OmitsUnsetSubMessages(t *testing.T) {
	m := SysConfigToMap(&smartvnspb.SysConfig{RetainCfg: true})

	assert.Equal(t, true, m["retain_cfg"])
	assert.NotContains(t, m, "imu")
	assert.NotContains(t, m, "mag")
	assert.NotContains(t, m, "dispatch")
}

func TestSysConfigFromMap_NumericEnum(t *testing.T) {
	cfg, err := SysConfigFromMap(map[string]interface{}{
		"imu": map[string]interface{}{"gyro_fs": 2, "acc_fs": "FS_16G", "odr": 120},
	})
	require.NoError(t, err)

	assert.Equal(t, smartvnspb.GyroFS_FS_1000DPS, cfg.GetImu().GetGyroFs())
	assert.Equal(t, smartvnspb.AccFS_FS_16G, cfg.GetImu().GetAccFs())
	assert.Equal(t, uint32(120), cfg.GetImu().GetOdr())
}

func TestSysConfigFromMap_UnknownKey(t *testing.T) {
	_, err := SysConfigFromMap(map[string]interface{}{"bogus": 1})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "bogus", validationErr.Field)

	_, err = SysConfigFromMap(map[string]interface{}{
		"dispatch": map[string]interface{}{
			"to_ble": map[string]interface{}{"quats": true},
		},
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "dispatch.to_ble.quats", validationErr.Field)
}

func TestSysConfigFromMap_BadValueType(t *testing.T) {
	_, err := SysConfigFromMap(map[string]interface{}{"retain_cfg": "yes"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = SysConfigFromMap(map[string]interface{}{
		"imu": map[string]interface{}{"odr": -1},
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "imu.odr", validationErr.Field)
}

func TestStimConfig_MapRoundTrip(t *testing.T) {
	cfg := sampleStimConfig()

	m := StimConfigToMap(cfg)
	rebuilt, err := StimConfigFromMap(m)
	require.NoError(t, err)

	assert.True(t, proto.Equal(cfg, rebuilt))
}

func TestStimConfigFromMap_JSONNumbers(t *testing.T) {
	// encoding/json decodes numbers to float64
	cfg, err := StimConfigFromMap(map[string]interface{}{
		"retain_cfg":   false,
		"trigger_ms":   float64(1000),
		"forward_us":   float64(250),
		"deadband_us":  float64(100),
		"period_us":    float64(40000),
		"intensity_uA": float64(100),
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(1000), cfg.GetTriggerMs())
	assert.Equal(t, uint32(40000), cfg.GetPeriodUs())
}

func TestStimConfigFromMap_RejectsFractional(t *testing.T) {
	_, err := StimConfigFromMap(map[string]interface{}{"period_us": 1.5})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestStimConfigFromMap_UnknownKey(t *testing.T) {
	_, err := StimConfigFromMap(map[string]interface{}{"amplitude_mA": 5})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "amplitude_mA", validationErr.Field)
}

func TestStimCommandEnvelope(t *testing.T) {
	cmd := &smartvnspb.Stim{Cmd: &smartvnspb.Stim_Config{Config: sampleStimConfig()}}

	buf, err := proto.Marshal(cmd)
	require.NoError(t, err)

	decoded := &smartvnspb.Stim{}
	require.NoError(t, proto.Unmarshal(buf, decoded))
	require.NotNil(t, decoded.GetConfig())
	assert.Equal(t, uint32(100), decoded.GetConfig().GetIntensityUA())
}
