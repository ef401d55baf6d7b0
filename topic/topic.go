package topic

import (
	"fmt"

	"github.com/encodeous/quadrant/exchange"
)

// Topic is a parsed broker route.
type Topic interface {
	// String renders the wire form, parsing it back yields an equal Topic.
	String() string
	// Route is the routing key: the wire form without publisher specific segments.
	Route() string
	Kind() exchange.Kind
}

type Parser func(string) (Topic, error)

// ParseError reports the first malformed segment of a topic.
type ParseError struct {
	Topic   string
	Segment string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("topic %q: segment %q: %v", e.Topic, e.Segment, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AnyKind is the single level wildcard standing for every kind in a route.
const AnyKind = "+"

func parseKind(s string) (exchange.Kind, error) {
	if s == AnyKind {
		return exchange.KindUnknown, nil
	}
	return exchange.ParseToken(s)
}

func kindSegment(k exchange.Kind) string {
	if k == exchange.KindUnknown {
		return AnyKind
	}
	return k.String()
}
