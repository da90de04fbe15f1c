package ble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartvns/internal/model"
	"smartvns/pkg/vns"
)

type fakeSource struct {
	advertisements []vns.Advertisement
	err            error
}

func (f *fakeSource) Advertisements(ctx context.Context, window time.Duration) ([]vns.Advertisement, error) {
	return f.advertisements, f.err
}

func TestScanner_FiltersAndClassifies(t *testing.T) {
	source := &fakeSource{
		advertisements: []vns.Advertisement{
			{Address: "AA:BB:CC:DD:EE:01", Name: "SmartVNS Tracker", RSSI: -52},
			{Address: "AA:BB:CC:DD:EE:02", Name: "SmartVNS Stimulator", RSSI: -61},
			{Address: "AA:BB:CC:DD:EE:03", Name: "FitBand", RSSI: -40},
		},
	}
	scanner := NewScanner(zap.NewNop(), source, nil)

	devices, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, model.RoleTracker, devices[0].Role)
	assert.Equal(t, "AA:BB:CC:DD:EE:01", devices[0].ConnectionInfo["address"])
	assert.Equal(t, -52, devices[0].RSSI)

	assert.Equal(t, model.RoleStimulator, devices[1].Role)
	assert.Equal(t, model.ConnectionTypeBLE, devices[1].ConnectionType)
}

func TestScanner_SourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("adapter off")}
	scanner := NewScanner(zap.NewNop(), source, nil)

	_, err := scanner.Scan(context.Background())
	require.Error(t, err)
}

func TestScanner_UnavailableWithoutSource(t *testing.T) {
	scanner := NewScanner(zap.NewNop(), nil, nil)
	assert.False(t, scanner.IsAvailable())
}
