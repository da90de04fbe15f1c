package protocol

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

func newTestClient(t *testing.T) (*ShellClient, *InMemoryTransport) {
	t.Helper()
	transport := NewInMemoryTransport()
	require.NoError(t, transport.Open(context.Background()))
	return NewShellClient(transport, zap.NewNop()), transport
}

func TestShellClient_GetStimConfig(t *testing.T) {
	client, transport := newTestClient(t)

	cfg := &smartvnspb.StimConfig{
		TriggerMs: 1000, ForwardUs: 250, DeadbandUs: 100, PeriodUs: 40000, IntensityUA: 100,
	}
	raw, err := configcodec.EncodeStimConfig(cfg)
	require.NoError(t, err)
	transport.Script("cfg get stim", "OK: "+base64.StdEncoding.EncodeToString(raw))

	got, err := client.GetStimConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, proto.Equal(cfg, got))
}

func TestShellClient_SetSysConfig(t *testing.T) {
	client, transport := newTestClient(t)

	cfg := &smartvnspb.SysConfig{
		RetainCfg: true,
		Imu:       &smartvnspb.IMUConf{GyroFs: smartvnspb.GyroFS_FS_500DPS, Odr: 60},
	}
	raw, err := configcodec.EncodeSysConfig(cfg)
	require.NoError(t, err)
	command := "cfg set sys " + base64.StdEncoding.EncodeToString(raw)
	transport.Script(command, "OK:")

	require.NoError(t, client.SetSysConfig(context.Background(), cfg))
	require.Len(t, transport.Requests, 1)
	assert.Equal(t, command, transport.Requests[0])
}

func TestShellClient_GetConfigRejected(t *testing.T) {
	client, transport := newTestClient(t)
	transport.Script("cfg get sys", "ERR: not provisioned")

	_, err := client.GetSysConfig(context.Background())
	var shellErr *ShellError
	require.ErrorAs(t, err, &shellErr)
	assert.Equal(t, "cfg get sys", shellErr.Command)
}

func TestShellClient_GetConfigBadPayload(t *testing.T) {
	client, transport := newTestClient(t)
	transport.Script("cfg get stim", "OK: %%%not-base64%%%")

	_, err := client.GetStimConfig(context.Background())
	require.Error(t, err)
}

func TestShellClient_Battery(t *testing.T) {
	client, transport := newTestClient(t)
	transport.Script("batt", "OK: 87")

	level, err := client.Battery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 87, level)
}

func TestShellClient_Version(t *testing.T) {
	client, transport := newTestClient(t)
	transport.Script("version", "OK: 2.4.1")

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.4.1", version)
}

func TestShellClient_SetTime(t *testing.T) {
	client, transport := newTestClient(t)
	now := time.Date(2026, 8, 27, 10, 30, 0, 0, time.UTC)
	transport.Script("time set "+now.Format(time.RFC3339), "OK:")

	require.NoError(t, client.SetTime(context.Background(), now))
}

func TestShellClient_FactoryReset(t *testing.T) {
	client, transport := newTestClient(t)
	transport.Script("storage erase", "OK:")
	transport.Script("reset", "OK:")

	require.NoError(t, client.FactoryReset(context.Background()))
	assert.Equal(t, []string{"storage erase", "reset"}, transport.Requests)
}

func TestShellClient_FactoryResetStopsOnEraseFailure(t *testing.T) {
	client, transport := newTestClient(t)
	transport.Script("storage erase", "ERR: busy")

	err := client.FactoryReset(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"storage erase"}, transport.Requests)
}

func TestPair_ExchangesKeys(t *testing.T) {
	first, firstTransport := newTestClient(t)
	second, secondTransport := newTestClient(t)

	firstTransport.Script("bond get", "OK: KEY-A")
	firstTransport.Script("bond set vns KEY-B", "OK:")
	secondTransport.Script("bond get", "OK: KEY-B")
	secondTransport.Script("bond set vns KEY-A", "OK:")

	require.NoError(t, Pair(context.Background(), first, second))
	assert.Contains(t, firstTransport.Requests, "bond set vns KEY-B")
	assert.Contains(t, secondTransport.Requests, "bond set vns KEY-A")
}

func TestPair_FailsWithoutKeys(t *testing.T) {
	first, _ := newTestClient(t)
	second, secondTransport := newTestClient(t)
	secondTransport.Script("bond get", "OK: KEY-B")

	require.Error(t, Pair(context.Background(), first, second))
}

func TestUnpair_ClearsBothDevices(t *testing.T) {
	first, firstTransport := newTestClient(t)
	second, secondTransport := newTestClient(t)
	firstTransport.Script("bond del vns", "OK:")
	secondTransport.Script("bond del vns", "OK:")

	require.NoError(t, Unpair(context.Background(), first, second))
	assert.Equal(t, []string{"bond del vns"}, firstTransport.Requests)
	assert.Equal(t, []string{"bond del vns"}, secondTransport.Requests)
}

func TestInMemoryTransport_RequiresOpen(t *testing.T) {
	transport := NewInMemoryTransport()
	_, err := transport.Request(context.Background(), "version")
	require.Error(t, err)
}
