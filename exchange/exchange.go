package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/encodeous/quadrant/geo"
	"github.com/encodeous/quadrant/state"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

const (
	OriginSelf               = "self"
	OriginGlobalApplication  = "global_application"
	OriginMecApplication     = "mec_application"
	OriginOnBoardApplication = "on_board_application"
)

var (
	ErrNoMessage     = errors.New("exchange has no message")
	ErrUnknownSchema = errors.New("message matches no known schema")
	ErrNoInstanceId  = errors.New("information has no instance_id")
)

// KindMismatchError is returned when the payload schema disagrees with the envelope type tag.
type KindMismatchError struct {
	Tag     string
	Decoded Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("envelope type %q does not match %s payload", e.Tag, e.Decoded.Tag())
}

// Message is one of *CAM, *DENM, *CPM, *MAPEM, *SPATEM or *Information.
type Message interface {
	Kind() Kind

	clone() Message
	appropriate(cfg *state.NodeConfiguration, timestamp uint64)
	traceFields() []any
}

type PathElement struct {
	Position    ReferencePosition `json:"position"`
	MessageType string            `json:"message_type"`
}

// Exchange is the envelope every application message travels in.
type Exchange struct {
	Type       string        `json:"type"`
	Origin     string        `json:"origin"`
	Version    string        `json:"version"`
	SourceUUID string        `json:"source_uuid"`
	Timestamp  uint64        `json:"timestamp"` // unix milliseconds
	Path       []PathElement `json:"path"`
	Message    Message       `json:"message"`
}

type signature struct {
	kind  Kind
	paths []jp.Expr
}

// signatures are tried in order, the first whose paths all resolve decides the kind.
var signatures = []signature{
	{KindCAM, []jp.Expr{jp.MustParseString("$.generation_delta_time"), jp.MustParseString("$.basic_container.reference_position")}},
	{KindDENM, []jp.Expr{jp.MustParseString("$.management_container.action_id")}},
	{KindCPM, []jp.Expr{jp.MustParseString("$.generation_delta_time"), jp.MustParseString("$.management_container.reference_position")}},
	{KindMAPEM, []jp.Expr{jp.MustParseString("$.intersections[*].lane_set")}},
	{KindMAPEM, []jp.Expr{jp.MustParseString("$.road_segments")}},
	{KindSPATEM, []jp.Expr{jp.MustParseString("$.intersections[*].states")}},
}

func probeKind(doc any) Kind {
	for _, sig := range signatures {
		matched := true
		for _, p := range sig.paths {
			if len(p.Get(doc)) == 0 {
				matched = false
				break
			}
		}
		if matched {
			return sig.kind
		}
	}
	return KindUnknown
}

func newMessage(k Kind) Message {
	switch k {
	case KindCAM:
		return &CAM{}
	case KindDENM:
		return &DENM{}
	case KindCPM:
		return &CPM{}
	case KindMAPEM:
		return &MAPEM{}
	case KindSPATEM:
		return &SPATEM{}
	case KindInfo:
		return &Information{}
	default:
		return nil
	}
}

// DecodeExchange decodes an enveloped CAM, DENM, CPM, MAPEM or SPATEM.
func DecodeExchange(data []byte) (*Exchange, error) {
	var wire struct {
		Type       string          `json:"type"`
		Origin     string          `json:"origin"`
		Version    string          `json:"version"`
		SourceUUID string          `json:"source_uuid"`
		Timestamp  uint64          `json:"timestamp"`
		Path       []PathElement   `json:"path"`
		Message    json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if len(wire.Message) == 0 || string(wire.Message) == "null" {
		return nil, ErrNoMessage
	}
	doc, err := oj.Parse(wire.Message)
	if err != nil {
		return nil, err
	}
	kind := probeKind(doc)
	if kind == KindUnknown {
		return nil, ErrUnknownSchema
	}
	if tagged, err := ParseKind(wire.Type); err != nil || tagged != kind {
		return nil, &KindMismatchError{Tag: wire.Type, Decoded: kind}
	}
	msg := newMessage(kind)
	if err := json.Unmarshal(wire.Message, msg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind.Tag(), err)
	}
	return &Exchange{
		Type:       kind.Tag(),
		Origin:     wire.Origin,
		Version:    wire.Version,
		SourceUUID: wire.SourceUUID,
		Timestamp:  wire.Timestamp,
		Path:       wire.Path,
		Message:    msg,
	}, nil
}

// DecodeInformation decodes the bare metadata document a node publishes on
// its info route.
func DecodeInformation(data []byte) (*Exchange, error) {
	info := &Information{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, err
	}
	if info.Type != InfoType {
		return nil, &KindMismatchError{Tag: info.Type, Decoded: KindInfo}
	}
	if info.InstanceId == "" {
		return nil, ErrNoInstanceId
	}
	return &Exchange{
		Type:       InfoType,
		Origin:     OriginSelf,
		Version:    info.Version,
		SourceUUID: info.InstanceId,
		Timestamp:  info.Timestamp,
		Message:    info,
	}, nil
}

// Encode renders the exchange for the wire. Information is published bare.
func (e *Exchange) Encode() ([]byte, error) {
	if info, ok := e.Message.(*Information); ok {
		return json.Marshal(info)
	}
	if e.Message == nil {
		return nil, ErrNoMessage
	}
	return json.Marshal(e)
}

func (e *Exchange) Kind() Kind {
	if e.Message == nil {
		return KindUnknown
	}
	return e.Message.Kind()
}

func (e *Exchange) Clone() *Exchange {
	n := *e
	n.Path = slices.Clone(e.Path)
	if e.Message != nil {
		n.Message = e.Message.clone()
	}
	return &n
}

// Position is the location of the message, when it has one.
func (e *Exchange) Position() (Position, bool) {
	if p, ok := e.Message.(Positioned); ok {
		return p.Position()
	}
	return Position{}, false
}

func (e *Exchange) Quadkey(zoom int) (geo.Quadkey, bool) {
	pos, ok := e.Position()
	if !ok {
		return nil, false
	}
	return pos.Quadkey(zoom), true
}

func (e *Exchange) Mortal() (Mortal, bool) {
	m, ok := e.Message.(Mortal)
	return m, ok
}

// Appropriate rewrites identity and time fields so the exchange can be
// republished as our own. Identity is stable across calls, times are not.
func (e *Exchange) Appropriate(cfg *state.NodeConfiguration, timestamp uint64) {
	e.SourceUUID = cfg.ComponentName()
	e.Origin = OriginMecApplication
	e.Timestamp = timestamp
	if e.Message != nil {
		e.Message.appropriate(cfg, timestamp)
	}
}

// TraceFields are the correlation attributes of the message, as slog key/value pairs.
func (e *Exchange) TraceFields() []any {
	if e.Message == nil {
		return nil
	}
	return e.Message.traceFields()
}
