package topic

import (
	"errors"
	"strings"

	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/geo"
	"github.com/encodeous/quadrant/state"
)

type Queue uint8

const (
	InQueue Queue = iota
	OutQueue
)

func (q Queue) String() string {
	if q == OutQueue {
		return "outQueue"
	}
	return "inQueue"
}

func ParseQueue(s string) (Queue, error) {
	switch s {
	case "inQueue":
		return InQueue, nil
	case "outQueue":
		return OutQueue, nil
	}
	return 0, ErrUnknownQueue
}

var (
	ErrUnknownQueue   = errors.New("queue must be inQueue or outQueue")
	ErrTooFewSegments = errors.New("geo topic needs <prefix>/<queue>/<kind>/<quadkey>/<source>")
	ErrEmptySegment   = errors.New("empty segment")
)

// GeoTopic addresses a message by direction, kind and tile:
// <prefix>/<queue>/<kind>/<quadkey>/<source_id>. The prefix may span several levels.
type GeoTopic struct {
	Prefix      string
	Queue       Queue
	MessageKind exchange.Kind
	Quadkey     geo.Quadkey
	SourceId    string
}

func ParseGeoTopic(s string) (*GeoTopic, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 5 {
		return nil, &ParseError{Topic: s, Segment: s, Err: ErrTooFewSegments}
	}
	n := len(parts)
	prefix := strings.Join(parts[:n-4], "/")
	for _, seg := range parts[:n-4] {
		if seg == "" {
			return nil, &ParseError{Topic: s, Segment: prefix, Err: ErrEmptySegment}
		}
	}
	queue, err := ParseQueue(parts[n-4])
	if err != nil {
		return nil, &ParseError{Topic: s, Segment: parts[n-4], Err: err}
	}
	kind, err := parseKind(parts[n-3])
	if err != nil {
		return nil, &ParseError{Topic: s, Segment: parts[n-3], Err: err}
	}
	qk, err := geo.ParseQuadkey(parts[n-2])
	if err != nil {
		return nil, &ParseError{Topic: s, Segment: parts[n-2], Err: err}
	}
	if parts[n-1] == "" {
		return nil, &ParseError{Topic: s, Segment: parts[n-1], Err: ErrEmptySegment}
	}
	return &GeoTopic{
		Prefix:      prefix,
		Queue:       queue,
		MessageKind: kind,
		Quadkey:     qk,
		SourceId:    parts[n-1],
	}, nil
}

// ParseGeo is a Parser for geo topics.
func ParseGeo(s string) (Topic, error) {
	t, err := ParseGeoTopic(s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *GeoTopic) Kind() exchange.Kind {
	return t.MessageKind
}

func (t *GeoTopic) String() string {
	return t.Route() + "/" + t.Quadkey.String() + "/" + t.SourceId
}

func (t *GeoTopic) Route() string {
	return t.Prefix + "/" + t.Queue.String() + "/" + kindSegment(t.MessageKind)
}

// Subscription is the filter matching every tile and source of the route.
func (t *GeoTopic) Subscription() string {
	return t.Route() + "/#"
}

// WithQueue returns a copy of the topic in the given direction.
func (t *GeoTopic) WithQueue(q Queue) *GeoTopic {
	n := t.clone()
	n.Queue = q
	return n
}

// WithQuadkey returns a copy of the topic addressing another tile.
func (t *GeoTopic) WithQuadkey(qk geo.Quadkey) *GeoTopic {
	n := t.clone()
	n.Quadkey = append(geo.Quadkey(nil), qk...)
	return n
}

// Appropriate replaces the source with our own component name.
func (t *GeoTopic) Appropriate(cfg *state.NodeConfiguration) {
	t.SourceId = cfg.ComponentName()
}

func (t *GeoTopic) clone() *GeoTopic {
	n := *t
	n.Quadkey = append(geo.Quadkey(nil), t.Quadkey...)
	return &n
}
