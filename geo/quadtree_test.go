package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadtree_Contains(t *testing.T) {
	qt, err := NewQuadtree(MustParseQuadkey("12"))
	require.NoError(t, err)

	assert.True(t, qt.Contains(MustParseQuadkey("12")))
	assert.True(t, qt.Contains(MustParseQuadkey("120220011203")))
	assert.True(t, qt.Contains(MustParseQuadkey("123333")))
	assert.False(t, qt.Contains(MustParseQuadkey("13")))
	assert.False(t, qt.Contains(MustParseQuadkey("130220011203")))
	assert.False(t, qt.Contains(MustParseQuadkey("1")))
}

func TestQuadtree_Wildcard(t *testing.T) {
	qt, err := NewQuadtree(MustParseQuadkey("1202#"), MustParseQuadkey("0320"))
	require.NoError(t, err)

	assert.True(t, qt.Contains(MustParseQuadkey("1202")))
	assert.True(t, qt.Contains(MustParseQuadkey("12020000")))
	assert.True(t, qt.Contains(MustParseQuadkey("03201")))
	assert.False(t, qt.Contains(MustParseQuadkey("1203")))
	assert.False(t, qt.Contains(MustParseQuadkey("120")))
}

func TestQuadtree_Empty(t *testing.T) {
	qt, err := NewQuadtree()
	require.NoError(t, err)
	assert.False(t, qt.Contains(MustParseQuadkey("0")))
	assert.Equal(t, 0, qt.Len())

	var nilTree *Quadtree
	assert.False(t, nilTree.Contains(MustParseQuadkey("0")))
}

func TestQuadtree_WorldWildcard(t *testing.T) {
	qt, err := NewQuadtree(MustParseQuadkey("#"))
	require.NoError(t, err)
	assert.True(t, qt.Contains(MustParseQuadkey("3")))
	assert.True(t, qt.Contains(LatLonToQuadkey(-33.8688, 151.2093, 18)))
}

func TestQuadtree_ProjectedPoint(t *testing.T) {
	region, errs := ParseQuadtree([]string{"120220011203", "0320101103"})
	require.Empty(t, errs)
	assert.True(t, region.Contains(LatLonToQuadkey(48.6263556, 2.2492123, 18)))
	assert.True(t, region.Contains(LatLonToQuadkey(40.7128, -74.0060, 18)))
	assert.False(t, region.Contains(LatLonToQuadkey(-33.8688, 151.2093, 18)))
}

func TestParseQuadtree_SkipsMalformed(t *testing.T) {
	region, errs := ParseQuadtree([]string{"12", "1x", "", "03"})
	assert.Len(t, errs, 2)
	assert.Equal(t, 2, region.Len())
	assert.Equal(t, []string{"12", "03"}, []string{region.Keys()[0].String(), region.Keys()[1].String()})
	assert.True(t, region.Contains(MustParseQuadkey("0312")))
}

func TestQuadtree_TooDeep(t *testing.T) {
	_, err := NewQuadtree(MustParseQuadkey(strings.Repeat("1", MaxZoom+1)))
	assert.Error(t, err)

	qt, err := NewQuadtree(MustParseQuadkey(strings.Repeat("1", MaxZoom)))
	require.NoError(t, err)
	assert.True(t, qt.Contains(MustParseQuadkey(strings.Repeat("1", MaxZoom+3))))
	assert.False(t, qt.Contains(MustParseQuadkey(strings.Repeat("1", MaxZoom-1)+"2")))
}

func TestQuadtree_DeepSiblings(t *testing.T) {
	// keys that differ only in their last digit share all but two prefix bits
	qt, err := NewQuadtree(MustParseQuadkey("1202200112031003"))
	require.NoError(t, err)
	assert.True(t, qt.Contains(MustParseQuadkey("120220011203100323")))
	assert.False(t, qt.Contains(MustParseQuadkey("1202200112031002")))
	assert.False(t, qt.Contains(MustParseQuadkey("120220011203100")))
}
