// Package smartvnspb contains the Go form of the SmartVNS device
// messages defined in protobuf/smartvns.proto.
//
// The messages are maintained by hand in the pre-APIv2 generated style
// (struct tags drive the wire format) because the canonical schema
// lives with the firmware build. Field numbers and types here must
// stay in sync with smartvns.proto.
package smartvnspb

import (
	"github.com/golang/protobuf/proto"
)

// AccFS is the accelerometer full-scale range.
type AccFS int32

const (
	AccFS_FS_2G  AccFS = 0
	AccFS_FS_4G  AccFS = 1
	AccFS_FS_8G  AccFS = 2
	AccFS_FS_16G AccFS = 3
)

var AccFS_name = map[int32]string{
	0: "FS_2G",
	1: "FS_4G",
	2: "FS_8G",
	3: "FS_16G",
}

var AccFS_value = map[string]int32{
	"FS_2G":  0,
	"FS_4G":  1,
	"FS_8G":  2,
	"FS_16G": 3,
}

func (x AccFS) String() string {
	return proto.EnumName(AccFS_name, int32(x))
}

// GyroFS is the gyroscope full-scale range.
type GyroFS int32

const (
	GyroFS_FS_250DPS  GyroFS = 0
	GyroFS_FS_500DPS  GyroFS = 1
	GyroFS_FS_1000DPS GyroFS = 2
	GyroFS_FS_2000DPS GyroFS = 3
)

var GyroFS_name = map[int32]string{
	0: "FS_250DPS",
	1: "FS_500DPS",
	2: "FS_1000DPS",
	3: "FS_2000DPS",
}

var GyroFS_value = map[string]int32{
	"FS_250DPS":  0,
	"FS_500DPS":  1,
	"FS_1000DPS": 2,
	"FS_2000DPS": 3,
}

func (x GyroFS) String() string {
	return proto.EnumName(GyroFS_name, int32(x))
}

// IMUConf holds gyro and accelerometer full-scale ranges and the
// output data rate in Hz.
type IMUConf struct {
	GyroFs               GyroFS   `protobuf:"varint,1,opt,name=gyro_fs,json=gyroFs,proto3,enum=smartvns.GyroFS" json:"gyro_fs,omitempty"`
	AccFs                AccFS    `protobuf:"varint,2,opt,name=acc_fs,json=accFs,proto3,enum=smartvns.AccFS" json:"acc_fs,omitempty"`
	Odr                  uint32   `protobuf:"varint,3,opt,name=odr,proto3" json:"odr,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *IMUConf) Reset()         { *m = IMUConf{} }
func (m *IMUConf) String() string { return proto.CompactTextString(m) }
func (*IMUConf) ProtoMessage()    {}

func (m *IMUConf) GetGyroFs() GyroFS {
	if m != nil {
		return m.GyroFs
	}
	return GyroFS_FS_250DPS
}

func (m *IMUConf) GetAccFs() AccFS {
	if m != nil {
		return m.AccFs
	}
	return AccFS_FS_2G
}

func (m *IMUConf) GetOdr() uint32 {
	if m != nil {
		return m.Odr
	}
	return 0
}

// MAGConf holds the magnetometer output data rate in Hz.
type MAGConf struct {
	Odr                  uint32   `protobuf:"varint,1,opt,name=odr,proto3" json:"odr,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *MAGConf) Reset()         { *m = MAGConf{} }
func (m *MAGConf) String() string { return proto.CompactTextString(m) }
func (*MAGConf) ProtoMessage()    {}

func (m *MAGConf) GetOdr() uint32 {
	if m != nil {
		return m.Odr
	}
	return 0
}

// Dispatcher routes data streams to the BLE interface and/or on-device
// memory.
type Dispatcher struct {
	ToBle                *Dispatcher_Stream `protobuf:"bytes,1,opt,name=to_ble,json=toBle,proto3" json:"to_ble,omitempty"`
	ToMem                *Dispatcher_Stream `protobuf:"bytes,2,opt,name=to_mem,json=toMem,proto3" json:"to_mem,omitempty"`
	XXX_NoUnkeyedLiteral struct{}           `json:"-"`
	XXX_unrecognized     []byte             `json:"-"`
	XXX_sizecache        int32              `json:"-"`
}

func (m *Dispatcher) Reset()         { *m = Dispatcher{} }
func (m *Dispatcher) String() string { return proto.CompactTextString(m) }
func (*Dispatcher) ProtoMessage()    {}

func (m *Dispatcher) GetToBle() *Dispatcher_Stream {
	if m != nil {
		return m.ToBle
	}
	return nil
}

func (m *Dispatcher) GetToMem() *Dispatcher_Stream {
	if m != nil {
		return m.ToMem
	}
	return nil
}

// Dispatcher_Stream selects which data streams are included.
type Dispatcher_Stream struct {
	Imu                  bool     `protobuf:"varint,1,opt,name=imu,proto3" json:"imu,omitempty"`
	Mag                  bool     `protobuf:"varint,2,opt,name=mag,proto3" json:"mag,omitempty"`
	Quat                 bool     `protobuf:"varint,3,opt,name=quat,proto3" json:"quat,omitempty"`
	Log                  bool     `protobuf:"varint,4,opt,name=log,proto3" json:"log,omitempty"`
	Vnsdata              bool     `protobuf:"varint,5,opt,name=vnsdata,proto3" json:"vnsdata,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Dispatcher_Stream) Reset()         { *m = Dispatcher_Stream{} }
func (m *Dispatcher_Stream) String() string { return proto.CompactTextString(m) }
func (*Dispatcher_Stream) ProtoMessage()    {}

func (m *Dispatcher_Stream) GetImu() bool {
	if m != nil {
		return m.Imu
	}
	return false
}

func (m *Dispatcher_Stream) GetMag() bool {
	if m != nil {
		return m.Mag
	}
	return false
}

func (m *Dispatcher_Stream) GetQuat() bool {
	if m != nil {
		return m.Quat
	}
	return false
}

func (m *Dispatcher_Stream) GetLog() bool {
	if m != nil {
		return m.Log
	}
	return false
}

func (m *Dispatcher_Stream) GetVnsdata() bool {
	if m != nil {
		return m.Vnsdata
	}
	return false
}

// SysConfig is the system configuration for Tracker and Stimulator
// devices.
type SysConfig struct {
	RetainCfg            bool        `protobuf:"varint,1,opt,name=retain_cfg,json=retainCfg,proto3" json:"retain_cfg,omitempty"`
	Imu                  *IMUConf    `protobuf:"bytes,2,opt,name=imu,proto3" json:"imu,omitempty"`
	Mag                  *MAGConf    `protobuf:"bytes,3,opt,name=mag,proto3" json:"mag,omitempty"`
	Dispatch             *Dispatcher `protobuf:"bytes,4,opt,name=dispatch,proto3" json:"dispatch,omitempty"`
	XXX_NoUnkeyedLiteral struct{}    `json:"-"`
	XXX_unrecognized     []byte      `json:"-"`
	XXX_sizecache        int32       `json:"-"`
}

func (m *SysConfig) Reset()         { *m = SysConfig{} }
func (m *SysConfig) String() string { return proto.CompactTextString(m) }
func (*SysConfig) ProtoMessage()    {}

func (m *SysConfig) GetRetainCfg() bool {
	if m != nil {
		return m.RetainCfg
	}
	return false
}

func (m *SysConfig) GetImu() *IMUConf {
	if m != nil {
		return m.Imu
	}
	return nil
}

func (m *SysConfig) GetMag() *MAGConf {
	if m != nil {
		return m.Mag
	}
	return nil
}

func (m *SysConfig) GetDispatch() *Dispatcher {
	if m != nil {
		return m.Dispatch
	}
	return nil
}

// StimConfig holds the stimulation parameters. All time and amplitude
// fields are non-negative; the firmware treats every field as required.
type StimConfig struct {
	RetainCfg            bool     `protobuf:"varint,1,opt,name=retain_cfg,json=retainCfg,proto3" json:"retain_cfg,omitempty"`
	TriggerMs            uint32   `protobuf:"varint,2,opt,name=trigger_ms,json=triggerMs,proto3" json:"trigger_ms,omitempty"`
	ForwardUs            uint32   `protobuf:"varint,3,opt,name=forward_us,json=forwardUs,proto3" json:"forward_us,omitempty"`
	DeadbandUs           uint32   `protobuf:"varint,4,opt,name=deadband_us,json=deadbandUs,proto3" json:"deadband_us,omitempty"`
	PeriodUs             uint32   `protobuf:"varint,5,opt,name=period_us,json=periodUs,proto3" json:"period_us,omitempty"`
	IntensityUA          uint32   `protobuf:"varint,6,opt,name=intensity_uA,json=intensityUA,proto3" json:"intensity_uA,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *StimConfig) Reset()         { *m = StimConfig{} }
func (m *StimConfig) String() string { return proto.CompactTextString(m) }
func (*StimConfig) ProtoMessage()    {}

func (m *StimConfig) GetRetainCfg() bool {
	if m != nil {
		return m.RetainCfg
	}
	return false
}

func (m *StimConfig) GetTriggerMs() uint32 {
	if m != nil {
		return m.TriggerMs
	}
	return 0
}

func (m *StimConfig) GetForwardUs() uint32 {
	if m != nil {
		return m.ForwardUs
	}
	return 0
}

func (m *StimConfig) GetDeadbandUs() uint32 {
	if m != nil {
		return m.DeadbandUs
	}
	return 0
}

func (m *StimConfig) GetPeriodUs() uint32 {
	if m != nil {
		return m.PeriodUs
	}
	return 0
}

func (m *StimConfig) GetIntensityUA() uint32 {
	if m != nil {
		return m.IntensityUA
	}
	return 0
}

type Empty struct {
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Empty) Reset()         { *m = Empty{} }
func (m *Empty) String() string { return proto.CompactTextString(m) }
func (*Empty) ProtoMessage()    {}

// Stim is the command envelope written to the stimulation
// characteristic.
type Stim struct {
	// Types that are valid to be assigned to Cmd:
	//	*Stim_Config
	//	*Stim_IntIncrease
	//	*Stim_IntDecrease
	Cmd                  isStim_Cmd `protobuf_oneof:"cmd"`
	XXX_NoUnkeyedLiteral struct{}   `json:"-"`
	XXX_unrecognized     []byte     `json:"-"`
	XXX_sizecache        int32      `json:"-"`
}

func (m *Stim) Reset()         { *m = Stim{} }
func (m *Stim) String() string { return proto.CompactTextString(m) }
func (*Stim) ProtoMessage()    {}

type isStim_Cmd interface {
	isStim_Cmd()
}

type Stim_Config struct {
	Config *StimConfig `protobuf:"bytes,1,opt,name=config,proto3,oneof"`
}

type Stim_IntIncrease struct {
	IntIncrease *Empty `protobuf:"bytes,2,opt,name=int_increase,json=intIncrease,proto3,oneof"`
}

type Stim_IntDecrease struct {
	IntDecrease *Empty `protobuf:"bytes,3,opt,name=int_decrease,json=intDecrease,proto3,oneof"`
}

func (*Stim_Config) isStim_Cmd()      {}
func (*Stim_IntIncrease) isStim_Cmd() {}
func (*Stim_IntDecrease) isStim_Cmd() {}

func (m *Stim) GetCmd() isStim_Cmd {
	if m != nil {
		return m.Cmd
	}
	return nil
}

func (m *Stim) GetConfig() *StimConfig {
	if x, ok := m.GetCmd().(*Stim_Config); ok {
		return x.Config
	}
	return nil
}

func (m *Stim) GetIntIncrease() *Empty {
	if x, ok := m.GetCmd().(*Stim_IntIncrease); ok {
		return x.IntIncrease
	}
	return nil
}

func (m *Stim) GetIntDecrease() *Empty {
	if x, ok := m.GetCmd().(*Stim_IntDecrease); ok {
		return x.IntDecrease
	}
	return nil
}

// XXX_OneofWrappers is for the internal use of the proto package.
func (*Stim) XXX_OneofWrappers() []interface{} {
	return []interface{}{
		(*Stim_Config)(nil),
		(*Stim_IntIncrease)(nil),
		(*Stim_IntDecrease)(nil),
	}
}

func init() {
	proto.RegisterEnum("smartvns.AccFS", AccFS_name, AccFS_value)
	proto.RegisterEnum("smartvns.GyroFS", GyroFS_name, GyroFS_value)
	proto.RegisterType((*IMUConf)(nil), "smartvns.IMUConf")
	proto.RegisterType((*MAGConf)(nil), "smartvns.MAGConf")
	proto.RegisterType((*Dispatcher)(nil), "smartvns.Dispatcher")
	proto.RegisterType((*Dispatcher_Stream)(nil), "smartvns.Dispatcher.Stream")
	proto.RegisterType((*SysConfig)(nil), "smartvns.SysConfig")
	proto.RegisterType((*StimConfig)(nil), "smartvns.StimConfig")
	proto.RegisterType((*Empty)(nil), "smartvns.Empty")
	proto.RegisterType((*Stim)(nil), "smartvns.Stim")
}
