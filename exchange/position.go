package exchange

import "github.com/encodeous/quadrant/geo"

// ReferencePosition is a WGS84 position in ETSI units: 0.1 microdegrees and centimetres.
type ReferencePosition struct {
	Latitude  int32 `json:"latitude"`
	Longitude int32 `json:"longitude"`
	Altitude  int32 `json:"altitude"`
}

const (
	unavailableLatitude  = 900000001
	unavailableLongitude = 1800000001
	unavailableAltitude  = 800001
)

func (r ReferencePosition) Available() bool {
	return r.Latitude != unavailableLatitude && r.Longitude != unavailableLongitude
}

func (r ReferencePosition) Position() Position {
	p := Position{
		Latitude:  float64(r.Latitude) / 1e7,
		Longitude: float64(r.Longitude) / 1e7,
	}
	if r.Altitude != unavailableAltitude {
		p.Altitude = float64(r.Altitude) / 100
	}
	return p
}

// Position is a decoded location in degrees and metres. Heading (degrees) and
// Speed (m/s) are only set by messages carrying motion.
type Position struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Heading   *float64
	Speed     *float64
}

func (p Position) Quadkey(zoom int) geo.Quadkey {
	return geo.LatLonToQuadkey(p.Latitude, p.Longitude, zoom)
}

// Positioned is implemented by messages that locate themselves.
type Positioned interface {
	Position() (Position, bool)
}
