package geo

import (
	"math"
	"strings"
)

const (
	MinLatitude  = -85.05112878
	MaxLatitude  = 85.05112878
	MinLongitude = -180.0
	MaxLongitude = 180.0
	tileSize     = 256

	// MaxProjectionZoom keeps the pixel grid within uint64.
	MaxProjectionZoom = 31
)

// Quadkey is a tile path from the world tile down to a zoom level. Only the
// last tile may be a Wildcard.
type Quadkey []Tile

// ParseQuadkey accepts plain digit strings ("1202") as well as the
// slash separated form ("1/2/0/2") found in some region definitions.
func ParseQuadkey(s string) (Quadkey, error) {
	if s == "" {
		return nil, ErrEmptyString
	}
	var parts []string
	if strings.Contains(s, "/") {
		parts = strings.Split(s, "/")
	} else {
		parts = []string{s}
	}
	qk := make(Quadkey, 0, len(s))
	for _, part := range parts {
		if part == "" {
			return nil, ErrEmptyTileStr
		}
		for _, c := range part {
			t, err := ParseTile(c)
			if err != nil {
				return nil, err
			}
			qk = append(qk, t)
		}
	}
	for i, t := range qk {
		if t == Wildcard && i != len(qk)-1 {
			return nil, InvalidTileCharError{Char: wildcardChar}
		}
	}
	return qk, nil
}

func MustParseQuadkey(s string) Quadkey {
	qk, err := ParseQuadkey(s)
	if err != nil {
		panic(err)
	}
	return qk
}

func (q Quadkey) String() string {
	sb := strings.Builder{}
	sb.Grow(len(q))
	for _, t := range q {
		sb.WriteRune(t.Rune())
	}
	return sb.String()
}

func (q Quadkey) Zoom() int {
	return len(q)
}

func (q Quadkey) HasWildcard() bool {
	return len(q) > 0 && q[len(q)-1] == Wildcard
}

// Trim returns the key without its trailing wildcard.
func (q Quadkey) Trim() Quadkey {
	if q.HasWildcard() {
		return q[:len(q)-1]
	}
	return q
}

// HasPrefix reports whether prefix (wildcard stripped) is a literal prefix of q.
func (q Quadkey) HasPrefix(prefix Quadkey) bool {
	prefix = prefix.Trim()
	if len(prefix) > len(q) {
		return false
	}
	for i, t := range prefix {
		if q[i] != t {
			return false
		}
	}
	return true
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// LatLonToQuadkey projects a WGS84 point onto the spherical-Mercator tile grid
// used by web map tile servers and returns its quadkey at the given zoom.
func LatLonToQuadkey(lat, lon float64, zoom int) Quadkey {
	if zoom <= 0 {
		return Quadkey{}
	}
	zoom = min(zoom, MaxProjectionZoom)
	lat = clip(lat, MinLatitude, MaxLatitude)
	lon = clip(lon, MinLongitude, MaxLongitude)

	x := (lon + 180) / 360
	sinLat := math.Sin(lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)

	mapSize := float64(tileSize) * math.Pow(2, float64(zoom))
	pixelX := clip(x*mapSize+0.5, 0, mapSize-1)
	pixelY := clip(y*mapSize+0.5, 0, mapSize-1)

	tileX := uint64(pixelX) / tileSize
	tileY := uint64(pixelY) / tileSize

	qk := make(Quadkey, 0, zoom)
	for i := zoom; i > 0; i-- {
		mask := uint64(1) << (i - 1)
		var digit Tile
		if tileX&mask != 0 {
			digit |= 1
		}
		if tileY&mask != 0 {
			digit |= 2
		}
		qk = append(qk, digit)
	}
	return qk
}
