// Package configcodec converts SmartVNS configuration messages between
// their binary wire form and plain key-value mappings.
//
// The package is a thin facade over pkg/smartvnspb: it does not alter
// field semantics, it only moves values between representations. Keys
// in the mapping form match the schema field names exactly; enum
// values are rendered as their symbolic names and accepted by name or
// number.
package configcodec

import (
	"github.com/golang/protobuf/proto"

	"smartvns/pkg/smartvnspb"
)

// DecodeSysConfig parses the binary wire form of a system
// configuration. It returns a DecodeError for empty, truncated or
// otherwise malformed input.
func DecodeSysConfig(buf []byte) (*smartvnspb.SysConfig, error) {
	if len(buf) == 0 {
		return nil, newDecodeError("SysConfig", errEmptyBuffer)
	}
	cfg := &smartvnspb.SysConfig{}
	if err := proto.Unmarshal(buf, cfg); err != nil {
		return nil, newDecodeError("SysConfig", err)
	}
	return cfg, nil
}

// EncodeSysConfig serializes a system configuration to its canonical
// binary form.
func EncodeSysConfig(cfg *smartvnspb.SysConfig) ([]byte, error) {
	return proto.Marshal(cfg)
}

// DecodeStimConfig parses the binary wire form of a stimulation
// configuration. It returns a DecodeError for empty, truncated or
// otherwise malformed input.
func DecodeStimConfig(buf []byte) (*smartvnspb.StimConfig, error) {
	if len(buf) == 0 {
		return nil, newDecodeError("StimConfig", errEmptyBuffer)
	}
	cfg := &smartvnspb.StimConfig{}
	if err := proto.Unmarshal(buf, cfg); err != nil {
		return nil, newDecodeError("StimConfig", err)
	}
	return cfg, nil
}

// EncodeStimConfig serializes a stimulation configuration to its
// canonical binary form.
func EncodeStimConfig(cfg *smartvnspb.StimConfig) ([]byte, error) {
	return proto.Marshal(cfg)
}

// SysConfigToMap produces a field-name-to-value mapping suitable for
// display or JSON emission. Scalar fields are always present with
// their schema default when unset; unset sub-messages are omitted.
func SysConfigToMap(cfg *smartvnspb.SysConfig) map[string]interface{} {
	m := map[string]interface{}{
		"retain_cfg": cfg.GetRetainCfg(),
	}
	if imu := cfg.GetImu(); imu != nil {
		m["imu"] = map[string]interface{}{
			"gyro_fs": imu.GetGyroFs().String(),
			"acc_fs":  imu.GetAccFs().String(),
			"odr":     imu.GetOdr(),
		}
	}
	if mag := cfg.GetMag(); mag != nil {
		m["mag"] = map[string]interface{}{
			"odr": mag.GetOdr(),
		}
	}
	if d := cfg.GetDispatch(); d != nil {
		dm := map[string]interface{}{}
		if s := d.GetToBle(); s != nil {
			dm["to_ble"] = streamToMap(s)
		}
		if s := d.GetToMem(); s != nil {
			dm["to_mem"] = streamToMap(s)
		}
		m["dispatch"] = dm
	}
	return m
}

// SysConfigFromMap builds a system configuration from a mapping. It
// returns a ValidationError when a key is unrecognized or a value
// cannot be coerced to the field's declared type.
func SysConfigFromMap(m map[string]interface{}) (*smartvnspb.SysConfig, error) {
	cfg := &smartvnspb.SysConfig{}
	for key, value := range m {
		switch key {
		case "retain_cfg":
			b, err := coerceBool(key, value)
			if err != nil {
				return nil, err
			}
			cfg.RetainCfg = b
		case "imu":
			sub, err := coerceMap(key, value)
			if err != nil {
				return nil, err
			}
			imu, err := imuFromMap(sub)
			if err != nil {
				return nil, err
			}
			cfg.Imu = imu
		case "mag":
			sub, err := coerceMap(key, value)
			if err != nil {
				return nil, err
			}
			mag, err := magFromMap(sub)
			if err != nil {
				return nil, err
			}
			cfg.Mag = mag
		case "dispatch":
			sub, err := coerceMap(key, value)
			if err != nil {
				return nil, err
			}
			d, err := dispatcherFromMap(sub)
			if err != nil {
				return nil, err
			}
			cfg.Dispatch = d
		default:
			return nil, unknownField(key)
		}
	}
	return cfg, nil
}

// StimConfigToMap produces a field-name-to-value mapping of the
// stimulation parameters.
func StimConfigToMap(cfg *smartvnspb.StimConfig) map[string]interface{} {
	return map[string]interface{}{
		"retain_cfg":   cfg.GetRetainCfg(),
		"trigger_ms":   cfg.GetTriggerMs(),
		"forward_us":   cfg.GetForwardUs(),
		"deadband_us":  cfg.GetDeadbandUs(),
		"period_us":    cfg.GetPeriodUs(),
		"intensity_uA": cfg.GetIntensityUA(),
	}
}

// StimConfigFromMap builds a stimulation configuration from a mapping.
// It returns a ValidationError when a key is unrecognized or a value
// cannot be coerced to the field's declared type.
func StimConfigFromMap(m map[string]interface{}) (*smartvnspb.StimConfig, error) {
	cfg := &smartvnspb.StimConfig{}
	for key, value := range m {
		switch key {
		case "retain_cfg":
			b, err := coerceBool(key, value)
			if err != nil {
				return nil, err
			}
			cfg.RetainCfg = b
		case "trigger_ms":
			u, err := coerceUint32(key, value)
			if err != nil {
				return nil, err
			}
			cfg.TriggerMs = u
		case "forward_us":
			u, err := coerceUint32(key, value)
			if err != nil {
				return nil, err
			}
			cfg.ForwardUs = u
		case "deadband_us":
			u, err := coerceUint32(key, value)
			if err != nil {
				return nil, err
			}
			cfg.DeadbandUs = u
		case "period_us":
			u, err := coerceUint32(key, value)
			if err != nil {
				return nil, err
			}
			cfg.PeriodUs = u
		case "intensity_uA":
			u, err := coerceUint32(key, value)
			if err != nil {
				return nil, err
			}
			cfg.IntensityUA = u
		default:
			return nil, unknownField(key)
		}
	}
	return cfg, nil
}

func streamToMap(s *smartvnspb.Dispatcher_Stream) map[string]interface{} {
	return map[string]interface{}{
		"imu":     s.GetImu(),
		"mag":     s.GetMag(),
		"quat":    s.GetQuat(),
		"log":     s.GetLog(),
		"vnsdata": s.GetVnsdata(),
	}
}

func imuFromMap(m map[string]interface{}) (*smartvnspb.IMUConf, error) {
	imu := &smartvnspb.IMUConf{}
	for key, value := range m {
		switch key {
		case "gyro_fs":
			v, err := coerceEnum("imu.gyro_fs", value, smartvnspb.GyroFS_value)
			if err != nil {
				return nil, err
			}
			imu.GyroFs = smartvnspb.GyroFS(v)
		case "acc_fs":
			v, err := coerceEnum("imu.acc_fs", value, smartvnspb.AccFS_value)
			if err != nil {
				return nil, err
			}
			imu.AccFs = smartvnspb.AccFS(v)
		case "odr":
			u, err := coerceUint32("imu.odr", value)
			if err != nil {
				return nil, err
			}
			imu.Odr = u
		default:
			return nil, unknownField("imu." + key)
		}
	}
	return imu, nil
}

func magFromMap(m map[string]interface{}) (*smartvnspb.MAGConf, error) {
	mag := &smartvnspb.MAGConf{}
	for key, value := range m {
		switch key {
		case "odr":
			u, err := coerceUint32("mag.odr", value)
			if err != nil {
				return nil, err
			}
			mag.Odr = u
		default:
			return nil, unknownField("mag." + key)
		}
	}
	return mag, nil
}

func dispatcherFromMap(m map[string]interface{}) (*smartvnspb.Dispatcher, error) {
	d := &smartvnspb.Dispatcher{}
	for key, value := range m {
		switch key {
		case "to_ble":
			sub, err := coerceMap("dispatch.to_ble", value)
			if err != nil {
				return nil, err
			}
			s, err := streamFromMap("dispatch.to_ble", sub)
			if err != nil {
				return nil, err
			}
			d.ToBle = s
		case "to_mem":
			sub, err := coerceMap("dispatch.to_mem", value)
			if err != nil {
				return nil, err
			}
			s, err := streamFromMap("dispatch.to_mem", sub)
			if err != nil {
				return nil, err
			}
			d.ToMem = s
		default:
			return nil, unknownField("dispatch." + key)
		}
	}
	return d, nil
}

func streamFromMap(prefix string, m map[string]interface{}) (*smartvnspb.Dispatcher_Stream, error) {
	s := &smartvnspb.Dispatcher_Stream{}
	for key, value := range m {
		var target *bool
		switch key {
		case "imu":
			target = &s.Imu
		case "mag":
			target = &s.Mag
		case "quat":
			target = &s.Quat
		case "log":
			target = &s.Log
		case "vnsdata":
			target = &s.Vnsdata
		default:
			return nil, unknownField(prefix + "." + key)
		}
		b, err := coerceBool(prefix+"."+key, value)
		if err != nil {
			return nil, err
		}
		*target = b
	}
	return s, nil
}
