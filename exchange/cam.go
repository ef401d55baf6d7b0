package exchange

import (
	"encoding/json"
	"slices"

	"github.com/encodeous/quadrant/state"
)

// CAM is a cooperative awareness message.
type CAM struct {
	ProtocolVersion         uint8                   `json:"protocol_version"`
	StationId               uint32                  `json:"station_id"`
	GenerationDeltaTime     uint16                  `json:"generation_delta_time"`
	BasicContainer          BasicContainer          `json:"basic_container"`
	HighFrequencyContainer  *HighFrequencyContainer `json:"high_frequency_container,omitempty"`
	LowFrequencyContainer   json.RawMessage         `json:"low_frequency_container,omitempty"`
	SpecialVehicleContainer json.RawMessage         `json:"special_vehicle_container,omitempty"`

	terminated bool
}

type BasicContainer struct {
	StationType       uint8             `json:"station_type"`
	ReferencePosition ReferencePosition `json:"reference_position"`
	Confidence        json.RawMessage   `json:"confidence,omitempty"`
}

// HighFrequencyContainer carries motion in ETSI units: 0.1 degree and 0.01 m/s.
type HighFrequencyContainer struct {
	Heading                  *uint16         `json:"heading,omitempty"`
	Speed                    *uint16         `json:"speed,omitempty"`
	DriveDirection           *uint8          `json:"drive_direction,omitempty"`
	VehicleLength            *uint16         `json:"vehicle_length,omitempty"`
	VehicleWidth             *uint8          `json:"vehicle_width,omitempty"`
	LongitudinalAcceleration *int16          `json:"longitudinal_acceleration,omitempty"`
	YawRate                  *int16          `json:"yaw_rate,omitempty"`
	Confidence               json.RawMessage `json:"confidence,omitempty"`
}

const (
	unavailableHeading = 3601
	unavailableSpeed   = 16383
)

func (c *CAM) Kind() Kind { return KindCAM }

func (c *CAM) Position() (Position, bool) {
	ref := c.BasicContainer.ReferencePosition
	if !ref.Available() {
		return Position{}, false
	}
	p := ref.Position()
	if hf := c.HighFrequencyContainer; hf != nil {
		if hf.Heading != nil && *hf.Heading != unavailableHeading {
			h := float64(*hf.Heading) / 10
			p.Heading = &h
		}
		if hf.Speed != nil && *hf.Speed != unavailableSpeed {
			s := float64(*hf.Speed) / 100
			p.Speed = &s
		}
	}
	return p, true
}

// Timeout is always elapsed: CAMs carry no validity of their own.
func (c *CAM) Timeout() uint64 { return 0 }

func (c *CAM) Expired() bool { return expired(c.Timeout()) }

func (c *CAM) Terminate() { c.terminated = true }

func (c *CAM) appropriate(cfg *state.NodeConfiguration, timestamp uint64) {
	c.StationId = cfg.StationId(state.CamStationOffset)
	c.GenerationDeltaTime = GenerationDeltaTime(timestamp)
}

func (c *CAM) clone() Message {
	n := *c
	n.BasicContainer.Confidence = slices.Clone(c.BasicContainer.Confidence)
	if c.HighFrequencyContainer != nil {
		hf := *c.HighFrequencyContainer
		hf.Heading = clonePtr(hf.Heading)
		hf.Speed = clonePtr(hf.Speed)
		hf.DriveDirection = clonePtr(hf.DriveDirection)
		hf.VehicleLength = clonePtr(hf.VehicleLength)
		hf.VehicleWidth = clonePtr(hf.VehicleWidth)
		hf.LongitudinalAcceleration = clonePtr(hf.LongitudinalAcceleration)
		hf.YawRate = clonePtr(hf.YawRate)
		hf.Confidence = slices.Clone(hf.Confidence)
		n.HighFrequencyContainer = &hf
	}
	n.LowFrequencyContainer = slices.Clone(c.LowFrequencyContainer)
	n.SpecialVehicleContainer = slices.Clone(c.SpecialVehicleContainer)
	return &n
}

func (c *CAM) traceFields() []any {
	return []any{"station_id", c.StationId, "generation_delta_time", c.GenerationDeltaTime}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
