package vns

import (
	"context"
	"fmt"

	"github.com/golang/protobuf/proto"

	"smartvns/pkg/configcodec"
	"smartvns/pkg/smartvnspb"
)

// Stimulator handles SmartVNS Stimulator specific operations on top of
// the Tracker surface: stimulation configuration and intensity
// control.
type Stimulator struct {
	Tracker
}

// NewStimulator creates a Stimulator over an established GATT client.
func NewStimulator(name string, client GATTClient, opts *Options) *Stimulator {
	return &Stimulator{Tracker: Tracker{Device: newDevice(name, client, opts)}}
}

// GetStimConfig reads and decodes the stimulation configuration from
// the device. The characteristic carries a bare StimConfig payload.
func (s *Stimulator) GetStimConfig(ctx context.Context) (*smartvnspb.StimConfig, error) {
	data, err := s.client.ReadCharacteristic(ctx, StimConfigCharUUID)
	if err != nil {
		return nil, fmt.Errorf("read stim config: %w", err)
	}
	cfg, err := configcodec.DecodeStimConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetStimConfig writes the stimulation configuration. Writes travel
// inside the Stim command envelope.
func (s *Stimulator) SetStimConfig(ctx context.Context, cfg *smartvnspb.StimConfig) error {
	return s.writeStimCommand(ctx, &smartvnspb.Stim{
		Cmd: &smartvnspb.Stim_Config{Config: cfg},
	})
}

// IncreaseIntensity steps the stimulation intensity up by the
// firmware-defined increment.
func (s *Stimulator) IncreaseIntensity(ctx context.Context) error {
	return s.writeStimCommand(ctx, &smartvnspb.Stim{
		Cmd: &smartvnspb.Stim_IntIncrease{IntIncrease: &smartvnspb.Empty{}},
	})
}

// DecreaseIntensity steps the stimulation intensity down by the
// firmware-defined increment.
func (s *Stimulator) DecreaseIntensity(ctx context.Context) error {
	return s.writeStimCommand(ctx, &smartvnspb.Stim{
		Cmd: &smartvnspb.Stim_IntDecrease{IntDecrease: &smartvnspb.Empty{}},
	})
}

// Trigger sets the stimulation pulse duration by re-writing the
// current configuration with the new trigger_ms.
func (s *Stimulator) Trigger(ctx context.Context, durationMs uint32) error {
	cfg, err := s.GetStimConfig(ctx)
	if err != nil {
		return err
	}
	cfg.TriggerMs = durationMs
	return s.SetStimConfig(ctx, cfg)
}

func (s *Stimulator) writeStimCommand(ctx context.Context, cmd *smartvnspb.Stim) error {
	data, err := proto.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal stim command: %w", err)
	}
	if err := s.client.WriteCharacteristic(ctx, StimConfigCharUUID, data); err != nil {
		return fmt.Errorf("write stim command: %w", err)
	}
	return nil
}
