package exchange

import (
	"errors"
	"testing"
	"time"

	"github.com/encodeous/quadrant/state"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const camPayload = `{
	"type": "cam",
	"origin": "self",
	"version": "1.1.3",
	"source_uuid": "com_car_4242",
	"timestamp": 1574778515424,
	"path": [],
	"message": {
		"protocol_version": 1,
		"station_id": 4242,
		"generation_delta_time": 3,
		"basic_container": {
			"station_type": 5,
			"reference_position": {"latitude": 486263556, "longitude": 22492123, "altitude": 20000}
		},
		"high_frequency_container": {"heading": 900, "speed": 1500}
	}
}`

const denmPayload = `{
	"type": "denm",
	"origin": "self",
	"version": "1.1.3",
	"source_uuid": "com_car_12",
	"timestamp": 1574778515424,
	"path": [],
	"message": {
		"protocol_version": 1,
		"station_id": 12,
		"management_container": {
			"action_id": {"originating_station_id": 12, "sequence_number": 7},
			"detection_time": 503253300000,
			"reference_time": 503253300000,
			"event_position": {"latitude": 486263556, "longitude": 22492123, "altitude": 900},
			"validity_duration": 60,
			"station_type": 5
		},
		"situation_container": {"event_type": {"cause": 97, "subcause": 0}}
	}
}`

const cpmPayload = `{
	"type": "cpm",
	"origin": "self",
	"version": "1.1.3",
	"source_uuid": "com_rsu_3",
	"timestamp": 1574778515424,
	"path": [],
	"message": {
		"protocol_version": 1,
		"station_id": 3,
		"generation_delta_time": 65535,
		"management_container": {
			"station_type": 15,
			"reference_position": {"latitude": 407128000, "longitude": -740060000, "altitude": 1000}
		},
		"perceived_object_container": [{"object_id":1}]
	}
}`

const mapemPayload = `{
	"type": "mapem",
	"origin": "self",
	"version": "1.1.3",
	"source_uuid": "com_rsu_9",
	"timestamp": 1574778515424,
	"path": [],
	"message": {
		"protocol_version": 1,
		"station_id": 9,
		"msg_issue_revision": 2,
		"intersections": [{"id":{"id":1},"lane_set":[{"lane_id":1}]}]
	}
}`

const spatemPayload = `{
	"type": "spatem",
	"origin": "self",
	"version": "1.1.3",
	"source_uuid": "com_rsu_9",
	"timestamp": 1574778515424,
	"path": [],
	"message": {
		"protocol_version": 1,
		"station_id": 9,
		"intersections": [{"id":{"id":1},"states":[{"signal_group":1}]}]
	}
}`

const infoPayload = `{
	"type": "info",
	"version": "2.2.0",
	"instance_id": "broker_7",
	"instance_type": "local",
	"running": true,
	"timestamp": 1574778515424,
	"validity_duration": 3600,
	"service_area": {"type": "tiles", "quadkeys": ["120220011203", "1202#", "12x"]}
}`

func fixClock(t *testing.T, at time.Time) {
	old := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = old })
}

func gatewayConfig(t *testing.T, gateway string) *state.NodeConfiguration {
	cfg := state.NewNodeConfiguration(state.DefaultConfig())
	require.NoError(t, cfg.UpdateGateway(gateway))
	return cfg
}

func TestDecodeExchange_CAM(t *testing.T) {
	e, err := DecodeExchange([]byte(camPayload))
	require.NoError(t, err)
	assert.Equal(t, KindCAM, e.Kind())
	assert.Equal(t, "com_car_4242", e.SourceUUID)

	cam := e.Message.(*CAM)
	assert.Equal(t, uint32(4242), cam.StationId)
	assert.Equal(t, uint16(3), cam.GenerationDeltaTime)

	pos, ok := e.Position()
	require.True(t, ok)
	assert.InDelta(t, 48.6263556, pos.Latitude, 1e-9)
	assert.InDelta(t, 200.0, pos.Altitude, 1e-9)
	require.NotNil(t, pos.Heading)
	assert.InDelta(t, 90.0, *pos.Heading, 1e-9)
	require.NotNil(t, pos.Speed)
	assert.InDelta(t, 15.0, *pos.Speed, 1e-9)

	qk, ok := e.Quadkey(18)
	require.True(t, ok)
	assert.Equal(t, "120220011203100323", qk.String())
	assert.Equal(t, []any{"station_id", uint32(4242), "generation_delta_time", uint16(3)}, e.TraceFields())
}

func TestDecodeExchange_Kinds(t *testing.T) {
	cases := []struct {
		payload string
		kind    Kind
	}{
		{camPayload, KindCAM},
		{denmPayload, KindDENM},
		{cpmPayload, KindCPM},
		{mapemPayload, KindMAPEM},
		{spatemPayload, KindSPATEM},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			e, err := DecodeExchange([]byte(c.payload))
			require.NoError(t, err)
			assert.Equal(t, c.kind, e.Kind())
			assert.Equal(t, c.kind.Tag(), e.Type)
		})
	}
}

func TestDecodeExchange_Errors(t *testing.T) {
	_, err := DecodeExchange([]byte(`{"type":"cam"}`))
	assert.ErrorIs(t, err, ErrNoMessage)

	_, err = DecodeExchange([]byte(`{"type":"cam","message":{"station_id":1}}`))
	assert.ErrorIs(t, err, ErrUnknownSchema)

	_, err = DecodeExchange([]byte(`not json`))
	assert.Error(t, err)

	// a CAM body under a DENM tag
	mislabelled := []byte(`{"type":"denm","message":{"generation_delta_time":1,"basic_container":{"reference_position":{}}}}`)
	_, err = DecodeExchange(mislabelled)
	var mismatch *KindMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, KindCAM, mismatch.Decoded)
	assert.Equal(t, "denm", mismatch.Tag)
}

func TestDecodeInformation(t *testing.T) {
	e, err := DecodeInformation([]byte(infoPayload))
	require.NoError(t, err)
	assert.Equal(t, KindInfo, e.Kind())
	assert.Equal(t, "broker_7", e.SourceUUID)

	info := e.Message.(*Information)
	assert.Equal(t, []string{"120220011203", "1202#", "12x"}, info.Quadkeys())
	assert.Equal(t, uint64(1574778515424+3600*1000), info.Timeout())

	_, ok := e.Position()
	assert.False(t, ok)

	_, err = DecodeInformation([]byte(`{"type":"cam","instance_id":"x"}`))
	assert.Error(t, err)
	_, err = DecodeInformation([]byte(`{"type":"info"}`))
	assert.ErrorIs(t, err, ErrNoInstanceId)
}

func TestDENM_Lifetime(t *testing.T) {
	e, err := DecodeExchange([]byte(denmPayload))
	require.NoError(t, err)
	denm := e.Message.(*DENM)

	deadline := UnixTimestamp(503253300000) + 60*1000
	assert.Equal(t, deadline, denm.Timeout())

	fixClock(t, time.UnixMilli(int64(deadline)))
	assert.False(t, denm.Expired())
	fixClock(t, time.UnixMilli(int64(deadline)+1))
	assert.True(t, denm.Expired())

	fixClock(t, time.UnixMilli(int64(deadline)-10_000))
	m, ok := e.Mortal()
	require.True(t, ok)
	assert.False(t, m.Expired())
	m.Terminate()
	assert.True(t, m.Expired())
}

func TestDENM_DefaultValidity(t *testing.T) {
	denm := &DENM{}
	denm.ManagementContainer.ReferenceTime = 1000
	assert.Equal(t, uint32(DefaultValidityDuration), denm.ValidityDuration())
	assert.Equal(t, UnixTimestamp(1000)+DefaultValidityDuration*1000, denm.Timeout())
}

func TestAwareness_AlwaysExpired(t *testing.T) {
	for _, payload := range []string{camPayload, cpmPayload} {
		e, err := DecodeExchange([]byte(payload))
		require.NoError(t, err)
		m, ok := e.Mortal()
		require.True(t, ok)
		assert.Zero(t, m.Timeout())
		assert.True(t, m.Expired())
	}

	e, err := DecodeExchange([]byte(mapemPayload))
	require.NoError(t, err)
	_, ok := e.Mortal()
	assert.False(t, ok)
}

func TestAppropriate_StableIdentityFreshTime(t *testing.T) {
	cfg := gatewayConfig(t, "broker_7")
	e, err := DecodeExchange([]byte(camPayload))
	require.NoError(t, err)

	first := uint64(1700000000000)
	e.Appropriate(cfg, first)
	cam := e.Message.(*CAM)
	assert.Equal(t, uint32(701), cam.StationId)
	assert.Equal(t, GenerationDeltaTime(first), cam.GenerationDeltaTime)
	assert.Equal(t, "com_application_42", e.SourceUUID)
	assert.Equal(t, OriginMecApplication, e.Origin)
	assert.Equal(t, first, e.Timestamp)

	second := first + 1234
	e.Appropriate(cfg, second)
	assert.Equal(t, uint32(701), cam.StationId)
	assert.Equal(t, GenerationDeltaTime(second), cam.GenerationDeltaTime)
	assert.NotEqual(t, GenerationDeltaTime(first), cam.GenerationDeltaTime)
	assert.Equal(t, second, e.Timestamp)
}

func TestAppropriate_PerKind(t *testing.T) {
	cfg := gatewayConfig(t, "broker_7")
	ts := uint64(1700000000000)

	e, err := DecodeExchange([]byte(denmPayload))
	require.NoError(t, err)
	e.Appropriate(cfg, ts)
	denm := e.Message.(*DENM)
	assert.Equal(t, uint32(702), denm.StationId)
	assert.Equal(t, uint32(702), denm.ManagementContainer.ActionId.OriginatingStationId)
	assert.Equal(t, ItsTimestamp(ts), denm.ManagementContainer.ReferenceTime)
	assert.Equal(t, uint64(503253300000), denm.ManagementContainer.DetectionTime)

	e, err = DecodeExchange([]byte(cpmPayload))
	require.NoError(t, err)
	e.Appropriate(cfg, ts)
	assert.Equal(t, uint32(703), e.Message.(*CPM).StationId)

	e, err = DecodeExchange([]byte(mapemPayload))
	require.NoError(t, err)
	e.Appropriate(cfg, ts)
	mapem := e.Message.(*MAPEM)
	assert.Equal(t, uint32(704), mapem.StationId)
	require.NotNil(t, mapem.Timestamp)
	assert.Equal(t, MinuteOfYear(ts), *mapem.Timestamp)

	e, err = DecodeExchange([]byte(spatemPayload))
	require.NoError(t, err)
	e.Appropriate(cfg, ts)
	assert.Equal(t, uint32(705), e.Message.(*SPATEM).StationId)
}

func TestAppropriate_WithoutGateway(t *testing.T) {
	cfg := state.NewNodeConfiguration(state.DefaultConfig())
	e, err := DecodeExchange([]byte(camPayload))
	require.NoError(t, err)
	e.Appropriate(cfg, 1700000000000)
	assert.Equal(t, uint32(42), e.Message.(*CAM).StationId)
}

func TestClone_Independent(t *testing.T) {
	e, err := DecodeExchange([]byte(camPayload))
	require.NoError(t, err)
	c := e.Clone()

	*c.Message.(*CAM).HighFrequencyContainer.Heading = 1800
	c.Message.(*CAM).StationId = 1
	c.SourceUUID = "other"

	orig := e.Message.(*CAM)
	assert.Equal(t, uint16(900), *orig.HighFrequencyContainer.Heading)
	assert.Equal(t, uint32(4242), orig.StationId)
	assert.Equal(t, "com_car_4242", e.SourceUUID)

	info, err := DecodeInformation([]byte(infoPayload))
	require.NoError(t, err)
	ic := info.Clone()
	ic.Message.(*Information).ServiceArea.Quadkeys[0] = "0"
	assert.Equal(t, "120220011203", info.Message.(*Information).Quadkeys()[0])
}

func TestClone_Equal(t *testing.T) {
	ignore := cmpopts.IgnoreUnexported(CAM{}, DENM{}, CPM{}, MAPEM{}, SPATEM{}, Information{})
	for _, payload := range []string{camPayload, denmPayload, cpmPayload, mapemPayload, spatemPayload} {
		e, err := DecodeExchange([]byte(payload))
		require.NoError(t, err)
		if diff := cmp.Diff(e, e.Clone(), ignore); diff != "" {
			t.Errorf("clone of %s differs (-orig +clone):\n%s", e.Kind(), diff)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, payload := range []string{camPayload, denmPayload, cpmPayload, mapemPayload, spatemPayload} {
		e, err := DecodeExchange([]byte(payload))
		require.NoError(t, err)
		data, err := e.Encode()
		require.NoError(t, err)
		back, err := DecodeExchange(data)
		require.NoError(t, err)
		assert.Equal(t, e, back)
	}

	info, err := DecodeInformation([]byte(infoPayload))
	require.NoError(t, err)
	data, err := info.Encode()
	require.NoError(t, err)
	back, err := DecodeInformation(data)
	require.NoError(t, err)
	assert.Equal(t, info, back)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		parsed, err = ParseKind(k.Tag())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("ivim")
	assert.Error(t, err)
}

func TestTime(t *testing.T) {
	now := uint64(1700000000000)
	assert.Equal(t, now, UnixTimestamp(ItsTimestamp(now)))
	assert.Equal(t, LeapSecondsMillis, ItsTimestamp(EtsiEpochMillis))
	assert.Zero(t, ItsTimestamp(0))
	assert.Zero(t, ItsTimestamp(EtsiEpochMillis-LeapSecondsMillis-1))
	assert.Equal(t, uint16(0), GenerationDeltaTime(0))

	at := time.Date(2024, 1, 1, 1, 1, 30, 0, time.UTC)
	assert.Equal(t, uint32(61), MinuteOfYear(uint64(at.UnixMilli())))
}
