package mock

import (
	"fmt"

	"github.com/encodeous/quadrant/state"
)

// MockCfg is a small valid configuration for pipeline tests: geo routing on,
// two analyser workers and a short backoff.
func MockCfg() *state.Cfg {
	cfg := state.DefaultConfig()
	cfg.Mobility.SourceUUID = "com_application_42"
	cfg.Mobility.StationId = 42
	cfg.Node.ThreadCount = 2
	cfg.Pipeline.Backoff = 0
	cfg.Pipeline.QueueSize = 64
	return cfg
}

// MockInfo renders an information document for a gateway and its region.
func MockInfo(instanceId string, timestamp uint64, quadkeys ...string) string {
	keys := ""
	for i, k := range quadkeys {
		if i > 0 {
			keys += ","
		}
		keys += fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf(`{"type":"info","version":"2.2.0","instance_id":%q,"instance_type":"local","running":true,`+
		`"timestamp":%d,"validity_duration":3600,"service_area":{"type":"tiles","quadkeys":[%s]}}`, instanceId, timestamp, keys)
}

// MockCam renders an enveloped CAM from a station at a position in 0.1 microdegrees.
func MockCam(source string, stationId uint32, lat, lon int32) string {
	return fmt.Sprintf(`{"type":"cam","origin":"self","version":"1.1.3","source_uuid":%q,"timestamp":1574778515424,"path":[],`+
		`"message":{"protocol_version":1,"station_id":%d,"generation_delta_time":3,`+
		`"basic_container":{"station_type":5,"reference_position":{"latitude":%d,"longitude":%d,"altitude":800001}}}}`,
		source, stationId, lat, lon)
}

// MockDenm renders an enveloped DENM with the given action and reference time (TimestampIts).
func MockDenm(source string, stationId uint32, sequence uint16, referenceTime uint64, lat, lon int32) string {
	return fmt.Sprintf(`{"type":"denm","origin":"self","version":"1.1.3","source_uuid":%q,"timestamp":1574778515424,"path":[],`+
		`"message":{"protocol_version":1,"station_id":%d,"management_container":{`+
		`"action_id":{"originating_station_id":%d,"sequence_number":%d},"detection_time":%d,"reference_time":%d,`+
		`"event_position":{"latitude":%d,"longitude":%d,"altitude":800001},"validity_duration":600,"station_type":5},`+
		`"situation_container":{"event_type":{"cause":97,"subcause":0}}}}`,
		source, stationId, stationId, sequence, referenceTime, referenceTime, lat, lon)
}
