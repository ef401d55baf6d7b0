package exchange

import (
	"encoding/json"
	"slices"

	"github.com/encodeous/quadrant/state"
)

// MAPEM describes intersection and road segment topology. The topology itself
// is carried opaquely.
type MAPEM struct {
	ProtocolVersion  uint8           `json:"protocol_version"`
	StationId        uint32          `json:"station_id"`
	Timestamp        *uint32         `json:"timestamp,omitempty"` // minute of the year
	MsgIssueRevision uint8           `json:"msg_issue_revision"`
	Intersections    json.RawMessage `json:"intersections,omitempty"`
	RoadSegments     json.RawMessage `json:"road_segments,omitempty"`
}

func (m *MAPEM) Kind() Kind { return KindMAPEM }

func (m *MAPEM) appropriate(cfg *state.NodeConfiguration, timestamp uint64) {
	m.StationId = cfg.StationId(state.MapemStationOffset)
	moy := MinuteOfYear(timestamp)
	m.Timestamp = &moy
}

func (m *MAPEM) clone() Message {
	n := *m
	n.Timestamp = clonePtr(m.Timestamp)
	n.Intersections = slices.Clone(m.Intersections)
	n.RoadSegments = slices.Clone(m.RoadSegments)
	return &n
}

func (m *MAPEM) traceFields() []any {
	return []any{"station_id", m.StationId}
}

// SPATEM carries signal phase and timing of intersections.
type SPATEM struct {
	ProtocolVersion uint8           `json:"protocol_version"`
	StationId       uint32          `json:"station_id"`
	Timestamp       *uint32         `json:"timestamp,omitempty"`
	Name            string          `json:"name,omitempty"`
	Intersections   json.RawMessage `json:"intersections"`
}

func (s *SPATEM) Kind() Kind { return KindSPATEM }

func (s *SPATEM) appropriate(cfg *state.NodeConfiguration, timestamp uint64) {
	s.StationId = cfg.StationId(state.SpatemStationOffset)
	moy := MinuteOfYear(timestamp)
	s.Timestamp = &moy
}

func (s *SPATEM) clone() Message {
	n := *s
	n.Timestamp = clonePtr(s.Timestamp)
	n.Intersections = slices.Clone(s.Intersections)
	return &n
}

func (s *SPATEM) traceFields() []any {
	return []any{"station_id", s.StationId}
}
