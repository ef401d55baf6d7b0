package topic

import (
	"errors"
	"testing"

	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/geo"
	"github.com/encodeous/quadrant/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoTopic_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"default/inQueue/cam/120220011203100323/com_car_4242",
		"5GCroutingQueue/outQueue/denm/1202/broker_7",
		"a/b/c/inQueue/info/0/x",
		"default/inQueue/+/3/y",
		"default/outQueue/map/1202#/rsu",
	} {
		tp, err := ParseGeo(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, tp.String())

		again, err := ParseGeo(tp.String())
		require.NoError(t, err)
		assert.Equal(t, tp, again)
	}
}

func TestGeoTopic_Fields(t *testing.T) {
	tp, err := ParseGeoTopic("a/b/inQueue/cpm/1202/com_rsu_3")
	require.NoError(t, err)
	assert.Equal(t, "a/b", tp.Prefix)
	assert.Equal(t, InQueue, tp.Queue)
	assert.Equal(t, exchange.KindCPM, tp.Kind())
	assert.Equal(t, "1202", tp.Quadkey.String())
	assert.Equal(t, "com_rsu_3", tp.SourceId)
	assert.Equal(t, "a/b/inQueue/cpm", tp.Route())
	assert.Equal(t, "a/b/inQueue/cpm/#", tp.Subscription())
}

func TestGeoTopic_SharedRoute(t *testing.T) {
	a, err := ParseGeo("default/inQueue/cam/1202/car_a")
	require.NoError(t, err)
	b, err := ParseGeo("default/inQueue/cam/0320/car_b")
	require.NoError(t, err)
	assert.Equal(t, a.Route(), b.Route())
}

func TestGeoTopic_Malformed(t *testing.T) {
	cases := []struct {
		topic   string
		segment string
	}{
		{"default/sideQueue/cam/1202/car", "sideQueue"},
		{"default/inQueue/ivim/1202/car", "ivim"},
		{"default/inQueue/cam/12x/car", "12x"},
		{"default/inQueue/cam//car", ""},
		{"default/inQueue/cam/1202/", ""},
		{"/inQueue/cam/1202/car", ""},
		{"inQueue/cam/1202/car", "inQueue/cam/1202/car"},
	}
	for _, c := range cases {
		_, err := ParseGeo(c.topic)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), c.topic)
		assert.Equal(t, c.topic, perr.Topic)
		assert.Equal(t, c.segment, perr.Segment, c.topic)
	}

	_, err := ParseGeo("default/inQueue/cam/12x/car")
	var tileErr geo.InvalidTileCharError
	require.True(t, errors.As(err, &tileErr))
	assert.Equal(t, 'x', tileErr.Char)
}

func TestGeoTopic_Appropriate(t *testing.T) {
	tp, err := ParseGeoTopic("default/inQueue/cam/1202/com_car_4242")
	require.NoError(t, err)
	out := tp.WithQueue(OutQueue)
	out.Appropriate(state.NewNodeConfiguration(state.DefaultConfig()))

	assert.Equal(t, "default/outQueue/cam/1202/com_application_42", out.String())
	assert.Equal(t, "default/inQueue/cam/1202/com_car_4242", tp.String())

	moved := out.WithQuadkey(geo.MustParseQuadkey("0320"))
	assert.Equal(t, "default/outQueue/cam/0320/com_application_42", moved.String())
	assert.Equal(t, "1202", out.Quadkey.String())
}

func TestV2XTopic(t *testing.T) {
	for _, s := range []string{"default/v2x/cam", "a/b/v2x/denm", "default/v2x/spat", "default/info", "a/b/info"} {
		tp, err := ParseV2X(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, tp.String())
		assert.Equal(t, s, tp.Route())
	}

	tp, err := ParseV2XTopic("a/b/v2x/map")
	require.NoError(t, err)
	assert.Equal(t, &V2XTopic{Root: "a/b", Suffix: "v2x", MessageKind: exchange.KindMAPEM}, tp)
	assert.Equal(t, "default/info", NewV2XTopic("default", "v2x", exchange.KindInfo).String())
	assert.Equal(t, "default/v2x/cpm", NewV2XTopic("default", "v2x", exchange.KindCPM).String())

	for _, s := range []string{"cam", "v2x/cam", "default/v2x/ivim", "default/v2x/Info", "default//cam", "/info"} {
		_, err := ParseV2X(s)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr), s)
	}
}

func TestParse_NonCanonicalKind(t *testing.T) {
	for _, s := range []string{
		"default/v2x/CAM",
		"default/v2x/mapem",
		"default/v2x/spatem",
		"default/v2x/Denm",
		"default/inQueue/spatem/12/src",
		"default/inQueue/DENM/12/src",
		"default/outQueue/Info/12/src",
	} {
		_, err := Parse(s)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), s)
		assert.NotEqual(t, "src", perr.Segment, s)
	}

	for _, k := range exchange.Kinds {
		var s string
		if k == exchange.KindInfo {
			s = NewV2XTopic("default", "v2x", k).String()
		} else {
			s = "default/v2x/" + k.String()
		}
		tp, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, tp.String())

		g := "default/inQueue/" + k.String() + "/12/src"
		tp, err = Parse(g)
		require.NoError(t, err, g)
		assert.Equal(t, g, tp.String())
	}
}

func TestParse_Dispatch(t *testing.T) {
	tp, err := Parse("default/inQueue/cam/1202/car")
	require.NoError(t, err)
	assert.IsType(t, &GeoTopic{}, tp)

	tp, err = Parse("default/v2x/cam")
	require.NoError(t, err)
	assert.IsType(t, &V2XTopic{}, tp)

	tp, err = Parse("default/info")
	require.NoError(t, err)
	assert.Equal(t, exchange.KindInfo, tp.Kind())
}
