// internal/model/snapshot.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartvns/pkg/smartvnspb"
)

// ConfigKind identifies which configuration blob a snapshot holds.
type ConfigKind string

const (
	ConfigKindSys  ConfigKind = "SYS"
	ConfigKindStim ConfigKind = "STIM"
)

// ConfigSnapshot is a point-in-time record of a device configuration,
// kept for study audit trails.
type ConfigSnapshot struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	DeviceID      uuid.UUID        `json:"device_id" db:"device_id"`
	Kind          ConfigKind       `json:"kind" db:"kind"`
	Config        JSONObject       `json:"config" db:"config"`
	RawConfig     []byte           `json:"-" db:"raw_config"`
	PulseChargeUC *decimal.Decimal `json:"pulse_charge_uC,omitempty" db:"pulse_charge_uc"`
	Source        string           `json:"source" db:"source"` // BLE, SERIAL, API
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

var microsecondsPerMillisecond = decimal.NewFromInt(1000)

// PulseCharge computes the charge delivered per stimulation pulse in
// microcoulombs: intensity (µA) times pulse duration (ms) / 1000.
func PulseCharge(cfg *smartvnspb.StimConfig) decimal.Decimal {
	intensity := decimal.NewFromInt(int64(cfg.GetIntensityUA()))
	duration := decimal.NewFromInt(int64(cfg.GetTriggerMs()))
	return intensity.Mul(duration).Div(microsecondsPerMillisecond)
}
