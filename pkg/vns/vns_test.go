package vns

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

// fakeGATTClient records characteristic traffic and serves canned
// payloads, standing in for the platform BLE stack.
type fakeGATTClient struct {
	connected    bool
	connectErrs  []error
	connectCalls int

	chars    map[string][]byte
	writes   map[string][][]byte
	handlers map[string]NotificationHandler
}

func newFakeGATTClient() *fakeGATTClient {
	return &fakeGATTClient{
		chars:    make(map[string][]byte),
		writes:   make(map[string][][]byte),
		handlers: make(map[string]NotificationHandler),
	}
}

func (f *fakeGATTClient) Connect(ctx context.Context) error {
	f.connectCalls++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		if err != nil {
			return err
		}
	}
	f.connected = true
	return nil
}

func (f *fakeGATTClient) Disconnect(ctx context.Context) error {
	f.connected = false
	return nil
}

func (f *fakeGATTClient) Connected() bool { return f.connected }

func (f *fakeGATTClient) ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error) {
	data, ok := f.chars[uuid]
	if !ok {
		return nil, errors.New("no such characteristic")
	}
	return data, nil
}

func (f *fakeGATTClient) WriteCharacteristic(ctx context.Context, uuid string, data []byte) error {
	f.writes[uuid] = append(f.writes[uuid], data)
	// mirror config writes back so read-modify-write sequences work
	if uuid == StimConfigCharUUID {
		cmd := &smartvnspb.Stim{}
		if err := proto.Unmarshal(data, cmd); err == nil && cmd.GetConfig() != nil {
			raw, _ := configcodec.EncodeStimConfig(cmd.GetConfig())
			f.chars[StimConfigCharUUID] = raw
		}
	}
	return nil
}

func (f *fakeGATTClient) Subscribe(ctx context.Context, uuid string, handler NotificationHandler) error {
	f.handlers[uuid] = handler
	return nil
}

func (f *fakeGATTClient) Unsubscribe(ctx context.Context, uuid string) error {
	delete(f.handlers, uuid)
	return nil
}

func (f *fakeGATTClient) notify(uuid string, data []byte) {
	if handler, ok := f.handlers[uuid]; ok {
		handler(data)
	}
}

func TestDevice_ConnectRetries(t *testing.T) {
	client := newFakeGATTClient()
	client.connectErrs = []error{errors.New("timeout"), errors.New("timeout")}

	tracker := NewTracker("SmartVNS Tracker", client, nil)
	require.NoError(t, tracker.Connect(context.Background()))
	assert.Equal(t, 3, client.connectCalls)
	assert.True(t, tracker.Connected())
}

func TestDevice_ConnectExhaustsRetries(t *testing.T) {
	client := newFakeGATTClient()
	client.connectErrs = []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}

	tracker := NewTracker("SmartVNS Tracker", client, &Options{ConnectRetries: 3})
	err := tracker.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, tracker.Connected())
}

func TestTracker_SysConfigRoundTrip(t *testing.T) {
	client := newFakeGATTClient()
	want := &smartvnspb.SysConfig{
		RetainCfg: true,
		Imu:       &smartvnspb.IMUConf{GyroFs: smartvnspb.GyroFS_FS_500DPS, Odr: 60},
	}
	raw, err := configcodec.EncodeSysConfig(want)
	require.NoError(t, err)
	client.chars[SysConfigCharUUID] = raw

	tracker := NewTracker("SmartVNS Tracker", client, nil)
	got, err := tracker.GetSysConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, proto.Equal(want, got))

	require.NoError(t, tracker.SetSysConfig(context.Background(), got))
	require.Len(t, client.writes[SysConfigCharUUID], 1)
	assert.Equal(t, raw, client.writes[SysConfigCharUUID][0])
}

func TestTracker_Notifications(t *testing.T) {
	client := newFakeGATTClient()
	tracker := NewTracker("SmartVNS Tracker", client, nil)

	var received [][]byte
	require.NoError(t, tracker.StartNotifications(context.Background(), func(data []byte) {
		received = append(received, data)
	}))

	client.notify(DataCharUUID, []byte{0x01, 0x02})
	client.notify(DataCharUUID, []byte{0x03})

	require.NoError(t, tracker.StopNotifications(context.Background()))
	client.notify(DataCharUUID, []byte{0x04})

	require.Len(t, received, 2)
	assert.Equal(t, []byte{0x01, 0x02}, received[0])
}

func TestDevice_Battery(t *testing.T) {
	client := newFakeGATTClient()
	client.chars[BatteryCharUUID] = []byte{87}

	tracker := NewTracker("SmartVNS Tracker", client, nil)
	level, err := tracker.Battery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 87, level)
}

func TestStimulator_SetStimConfigUsesEnvelope(t *testing.T) {
	client := newFakeGATTClient()
	stim := NewStimulator("SmartVNS Stimulator", client, nil)

	cfg := &smartvnspb.StimConfig{TriggerMs: 1000, IntensityUA: 150}
	require.NoError(t, stim.SetStimConfig(context.Background(), cfg))

	require.Len(t, client.writes[StimConfigCharUUID], 1)
	cmd := &smartvnspb.Stim{}
	require.NoError(t, proto.Unmarshal(client.writes[StimConfigCharUUID][0], cmd))
	require.NotNil(t, cmd.GetConfig())
	assert.Equal(t, uint32(150), cmd.GetConfig().GetIntensityUA())
}

func TestStimulator_IntensitySteps(t *testing.T) {
	client := newFakeGATTClient()
	stim := NewStimulator("SmartVNS Stimulator", client, nil)

	require.NoError(t, stim.IncreaseIntensity(context.Background()))
	require.NoError(t, stim.DecreaseIntensity(context.Background()))

	require.Len(t, client.writes[StimConfigCharUUID], 2)

	up := &smartvnspb.Stim{}
	require.NoError(t, proto.Unmarshal(client.writes[StimConfigCharUUID][0], up))
	assert.NotNil(t, up.GetIntIncrease())

	down := &smartvnspb.Stim{}
	require.NoError(t, proto.Unmarshal(client.writes[StimConfigCharUUID][1], down))
	assert.NotNil(t, down.GetIntDecrease())
}

func TestStimulator_TriggerRewritesDuration(t *testing.T) {
	client := newFakeGATTClient()
	initial := &smartvnspb.StimConfig{
		TriggerMs: 500, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	}
	raw, err := configcodec.EncodeStimConfig(initial)
	require.NoError(t, err)
	client.chars[StimConfigCharUUID] = raw

	stim := NewStimulator("SmartVNS Stimulator", client, nil)
	require.NoError(t, stim.Trigger(context.Background(), 2000))

	got, err := stim.GetStimConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(2000), got.GetTriggerMs())
	assert.Equal(t, uint32(100), got.GetIntensityUA())
}

func TestFilterAdvertisements(t *testing.T) {
	adverts := []Advertisement{
		{Address: "aa", Name: "SmartVNS Tracker", RSSI: -40},
		{Address: "bb", Name: "Fitness Band"},
		{Address: "cc", Name: ""},
		{Address: "dd", Name: "SmartVNS Stimulator", RSSI: -60},
	}

	filtered := FilterAdvertisements(adverts)
	require.Len(t, filtered, 2)
	assert.Equal(t, "aa", filtered[0].Address)
	assert.Equal(t, "dd", filtered[1].Address)
	assert.False(t, IsStimulator(filtered[0].Name))
	assert.True(t, IsStimulator(filtered[1].Name))
}
