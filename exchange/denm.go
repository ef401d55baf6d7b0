package exchange

import (
	"encoding/json"
	"slices"

	"github.com/encodeous/quadrant/state"
)

// DefaultValidityDuration is the DENM validity, in seconds, when none is given.
const DefaultValidityDuration = 600

// DENM is a decentralized environmental notification message.
type DENM struct {
	ProtocolVersion     uint8               `json:"protocol_version"`
	StationId           uint32              `json:"station_id"`
	ManagementContainer ManagementContainer `json:"management_container"`
	SituationContainer  *SituationContainer `json:"situation_container,omitempty"`
	LocationContainer   json.RawMessage     `json:"location_container,omitempty"`
	AlacarteContainer   json.RawMessage     `json:"alacarte_container,omitempty"`

	terminated bool
}

type ActionId struct {
	OriginatingStationId uint32 `json:"originating_station_id"`
	SequenceNumber       uint16 `json:"sequence_number"`
}

// ManagementContainer times are TimestampIts values.
type ManagementContainer struct {
	ActionId                  ActionId          `json:"action_id"`
	DetectionTime             uint64            `json:"detection_time"`
	ReferenceTime             uint64            `json:"reference_time"`
	Termination               *uint8            `json:"termination,omitempty"`
	EventPosition             ReferencePosition `json:"event_position"`
	RelevanceDistance         *uint8            `json:"relevance_distance,omitempty"`
	RelevanceTrafficDirection *uint8            `json:"relevance_traffic_direction,omitempty"`
	ValidityDuration          *uint32           `json:"validity_duration,omitempty"`
	StationType               *uint8            `json:"station_type,omitempty"`
	Confidence                json.RawMessage   `json:"confidence,omitempty"`
}

type EventType struct {
	Cause    uint8 `json:"cause"`
	Subcause uint8 `json:"subcause"`
}

type SituationContainer struct {
	InformationQuality *uint8     `json:"information_quality,omitempty"`
	EventType          EventType  `json:"event_type"`
	LinkedCause        *EventType `json:"linked_cause,omitempty"`
}

func (d *DENM) Kind() Kind { return KindDENM }

func (d *DENM) Position() (Position, bool) {
	ref := d.ManagementContainer.EventPosition
	if !ref.Available() {
		return Position{}, false
	}
	return ref.Position(), true
}

// IsTermination reports whether the DENM cancels or negates an event.
func (d *DENM) IsTermination() bool {
	return d.ManagementContainer.Termination != nil
}

func (d *DENM) ValidityDuration() uint32 {
	if v := d.ManagementContainer.ValidityDuration; v != nil {
		return *v
	}
	return DefaultValidityDuration
}

func (d *DENM) Timeout() uint64 {
	if d.terminated {
		return 0
	}
	return UnixTimestamp(d.ManagementContainer.ReferenceTime) + uint64(d.ValidityDuration())*1000
}

func (d *DENM) Expired() bool { return expired(d.Timeout()) }

func (d *DENM) Terminate() { d.terminated = true }

func (d *DENM) appropriate(cfg *state.NodeConfiguration, timestamp uint64) {
	d.StationId = cfg.StationId(state.DenmStationOffset)
	d.ManagementContainer.ActionId.OriginatingStationId = d.StationId
	d.ManagementContainer.ReferenceTime = ItsTimestamp(timestamp)
}

func (d *DENM) clone() Message {
	n := *d
	mc := &n.ManagementContainer
	mc.Termination = clonePtr(mc.Termination)
	mc.RelevanceDistance = clonePtr(mc.RelevanceDistance)
	mc.RelevanceTrafficDirection = clonePtr(mc.RelevanceTrafficDirection)
	mc.ValidityDuration = clonePtr(mc.ValidityDuration)
	mc.StationType = clonePtr(mc.StationType)
	mc.Confidence = slices.Clone(mc.Confidence)
	if d.SituationContainer != nil {
		sc := *d.SituationContainer
		sc.InformationQuality = clonePtr(sc.InformationQuality)
		sc.LinkedCause = clonePtr(sc.LinkedCause)
		n.SituationContainer = &sc
	}
	n.LocationContainer = slices.Clone(d.LocationContainer)
	n.AlacarteContainer = slices.Clone(d.AlacarteContainer)
	return &n
}

func (d *DENM) traceFields() []any {
	mc := d.ManagementContainer
	return []any{
		"station_id", d.StationId,
		"originating_station_id", mc.ActionId.OriginatingStationId,
		"sequence_number", mc.ActionId.SequenceNumber,
		"reference_time", mc.ReferenceTime,
		"detection_time", mc.DetectionTime,
	}
}
