package geo

import (
	"fmt"
	"net/netip"

	"github.com/gaissmai/bart"
)

// MaxZoom is the deepest key a Quadtree can index, two bits per tile in a 128 bit prefix.
const MaxZoom = 64

// Quadtree is a region made of the union of its quadkeys. It is immutable once
// built; a new region is a new Quadtree.
type Quadtree struct {
	keys  []Quadkey
	index bart.Table[string]
}

// prefixOf packs the digits of a wildcard-free key into an IPv6 prefix, so
// that "key A is a prefix of key B" becomes "prefix A covers prefix B".
func prefixOf(q Quadkey) netip.Prefix {
	var b [16]byte
	for i, t := range q {
		b[i/4] |= byte(t) << (6 - 2*(i%4))
	}
	return netip.PrefixFrom(netip.AddrFrom16(b), 2*len(q))
}

func NewQuadtree(keys ...Quadkey) (*Quadtree, error) {
	qt := &Quadtree{}
	for _, k := range keys {
		if err := qt.insert(k); err != nil {
			return nil, err
		}
	}
	return qt, nil
}

// ParseQuadtree builds a region from its textual keys. Malformed keys are
// skipped and reported, the rest of the region is still built.
func ParseQuadtree(strs []string) (*Quadtree, []error) {
	qt := &Quadtree{}
	var errs []error
	for _, s := range strs {
		k, err := ParseQuadkey(s)
		if err == nil {
			err = qt.insert(k)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("quadkey %q: %w", s, err))
		}
	}
	return qt, errs
}

func (qt *Quadtree) insert(k Quadkey) error {
	trimmed := k.Trim()
	if len(trimmed) > MaxZoom {
		return fmt.Errorf("zoom %d exceeds %d", len(trimmed), MaxZoom)
	}
	qt.index.Insert(prefixOf(trimmed), k.String())
	qt.keys = append(qt.keys, k)
	return nil
}

// Contains reports whether point lies in one of the region's tiles.
func (qt *Quadtree) Contains(point Quadkey) bool {
	if qt == nil || len(qt.keys) == 0 {
		return false
	}
	point = point.Trim()
	if len(point) > MaxZoom {
		point = point[:MaxZoom]
	}
	_, ok := qt.index.LookupPrefix(prefixOf(point))
	return ok
}

func (qt *Quadtree) Keys() []Quadkey {
	if qt == nil {
		return nil
	}
	return qt.keys
}

func (qt *Quadtree) Len() int {
	if qt == nil {
		return 0
	}
	return len(qt.keys)
}

func (qt *Quadtree) String() string {
	return fmt.Sprintf("%v", qt.Keys())
}
