package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuadkey_RoundTrip(t *testing.T) {
	inputs := []string{"0", "1", "2", "3", "0123", "120220011203", "333333333333333333", "10203010203012"}
	for _, in := range inputs {
		qk, err := ParseQuadkey(in)
		require.NoError(t, err)
		assert.Equal(t, in, qk.String())
		assert.Equal(t, len(in), qk.Zoom())
	}
}

func TestParseQuadkey_AllShortStrings(t *testing.T) {
	// every string over {0,1,2,3} up to length 5
	var gen func(prefix string, n int)
	gen = func(prefix string, n int) {
		if prefix != "" {
			qk, err := ParseQuadkey(prefix)
			require.NoError(t, err)
			require.Equal(t, prefix, qk.String())
		}
		if n == 0 {
			return
		}
		for _, c := range "0123" {
			gen(prefix+string(c), n-1)
		}
	}
	gen("", 5)
}

func TestParseQuadkey_Slashes(t *testing.T) {
	qk, err := ParseQuadkey("1/2/0/2")
	require.NoError(t, err)
	assert.Equal(t, "1202", qk.String())

	_, err = ParseQuadkey("1//2")
	assert.ErrorIs(t, err, ErrEmptyTileStr)
}

func TestParseQuadkey_Errors(t *testing.T) {
	_, err := ParseQuadkey("")
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = ParseQuadkey("12x")
	var tileErr InvalidTileCharError
	require.ErrorAs(t, err, &tileErr)
	assert.Equal(t, 'x', tileErr.Char)

	_, err = ParseQuadkey("1#2")
	require.ErrorAs(t, err, &tileErr)
	assert.Equal(t, '#', tileErr.Char)
}

func TestQuadkey_Wildcard(t *testing.T) {
	qk := MustParseQuadkey("12#")
	assert.True(t, qk.HasWildcard())
	assert.Equal(t, "12#", qk.String())
	assert.Equal(t, "12", qk.Trim().String())
	assert.True(t, MustParseQuadkey("1203").HasPrefix(qk))
	assert.False(t, MustParseQuadkey("1303").HasPrefix(qk))
	assert.False(t, MustParseQuadkey("1").HasPrefix(qk))
}

func TestLatLonToQuadkey_Known(t *testing.T) {
	assert.Equal(t, "120220011203", LatLonToQuadkey(48.6263556, 2.2492123, 12).String())
	assert.Equal(t, "120220011203100323", LatLonToQuadkey(48.6263556, 2.2492123, 18).String())
	assert.Equal(t, "1202203303121131", LatLonToQuadkey(45.7578137, 4.8320114, 16).String())
	assert.Equal(t, "3112301330022332", LatLonToQuadkey(-33.8688, 151.2093, 16).String())
	assert.Equal(t, "0320101103011111", LatLonToQuadkey(40.7128, -74.0060, 16).String())
}

func TestLatLonToQuadkey_Clipping(t *testing.T) {
	assert.Equal(t, "2222222222222222", LatLonToQuadkey(-89, -180, 16).String())
	assert.Equal(t, LatLonToQuadkey(85.05112878, 10, 8), LatLonToQuadkey(89.9, 10, 8))
	assert.Empty(t, LatLonToQuadkey(10, 10, 0))
}

func TestLatLonToQuadkey_PrefixStable(t *testing.T) {
	points := [][2]float64{
		{48.6263556, 2.2492123},
		{45.7578137, 4.8320114},
		{-33.8688, 151.2093},
		{40.7128, -74.0060},
		{89, 179.9},
		{-89, -180},
	}
	for _, p := range points {
		deep := LatLonToQuadkey(p[0], p[1], 22).String()
		for z := 1; z < 22; z++ {
			shallow := LatLonToQuadkey(p[0], p[1], z).String()
			assert.True(t, strings.HasPrefix(deep, shallow), "%v at zoom %d: %s not a prefix of %s", p, z, shallow, deep)
		}
	}
}
