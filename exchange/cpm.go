package exchange

import (
	"encoding/json"
	"slices"

	"github.com/encodeous/quadrant/state"
)

// CPM is a collective perception message.
type CPM struct {
	ProtocolVersion            uint8                  `json:"protocol_version"`
	StationId                  uint32                 `json:"station_id"`
	GenerationDeltaTime        uint16                 `json:"generation_delta_time"`
	ManagementContainer        CPMManagementContainer `json:"management_container"`
	StationDataContainer       json.RawMessage        `json:"station_data_container,omitempty"`
	SensorInformationContainer json.RawMessage        `json:"sensor_information_container,omitempty"`
	PerceivedObjectContainer   json.RawMessage        `json:"perceived_object_container,omitempty"`
	FreeSpaceAddendumContainer json.RawMessage        `json:"free_space_addendum_container,omitempty"`

	terminated bool
}

type CPMManagementContainer struct {
	StationType       uint8             `json:"station_type"`
	ReferencePosition ReferencePosition `json:"reference_position"`
	Confidence        json.RawMessage   `json:"confidence,omitempty"`
}

func (c *CPM) Kind() Kind { return KindCPM }

func (c *CPM) Position() (Position, bool) {
	ref := c.ManagementContainer.ReferencePosition
	if !ref.Available() {
		return Position{}, false
	}
	return ref.Position(), true
}

// Timeout is always elapsed: CPMs carry no validity of their own.
func (c *CPM) Timeout() uint64 { return 0 }

func (c *CPM) Expired() bool { return expired(c.Timeout()) }

func (c *CPM) Terminate() { c.terminated = true }

func (c *CPM) appropriate(cfg *state.NodeConfiguration, timestamp uint64) {
	c.StationId = cfg.StationId(state.CpmStationOffset)
	c.GenerationDeltaTime = GenerationDeltaTime(timestamp)
}

func (c *CPM) clone() Message {
	n := *c
	n.ManagementContainer.Confidence = slices.Clone(c.ManagementContainer.Confidence)
	n.StationDataContainer = slices.Clone(c.StationDataContainer)
	n.SensorInformationContainer = slices.Clone(c.SensorInformationContainer)
	n.PerceivedObjectContainer = slices.Clone(c.PerceivedObjectContainer)
	n.FreeSpaceAddendumContainer = slices.Clone(c.FreeSpaceAddendumContainer)
	return &n
}

func (c *CPM) traceFields() []any {
	return []any{"station_id", c.StationId, "generation_delta_time", c.GenerationDeltaTime}
}
