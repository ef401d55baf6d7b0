package topic

import (
	"strings"

	"github.com/encodeous/quadrant/exchange"
)

// V2XTopic is the flat layout: <root>/<suffix>/<kind> for messages and
// <root>/info for node metadata.
type V2XTopic struct {
	Root        string
	Suffix      string
	MessageKind exchange.Kind
}

func NewV2XTopic(root, suffix string, kind exchange.Kind) *V2XTopic {
	if kind == exchange.KindInfo {
		suffix = ""
	}
	return &V2XTopic{Root: root, Suffix: suffix, MessageKind: kind}
}

func ParseV2XTopic(s string) (*V2XTopic, error) {
	parts := strings.Split(s, "/")
	n := len(parts)
	if n >= 2 && parts[n-1] == exchange.KindInfo.String() {
		if err := checkRoot(s, parts[:n-1]); err != nil {
			return nil, err
		}
		return &V2XTopic{Root: strings.Join(parts[:n-1], "/"), MessageKind: exchange.KindInfo}, nil
	}
	if n < 3 {
		return nil, &ParseError{Topic: s, Segment: s, Err: ErrTooFewSegments}
	}
	if err := checkRoot(s, parts[:n-2]); err != nil {
		return nil, err
	}
	if parts[n-2] == "" {
		return nil, &ParseError{Topic: s, Segment: parts[n-2], Err: ErrEmptySegment}
	}
	kind, err := exchange.ParseToken(parts[n-1])
	if err != nil {
		return nil, &ParseError{Topic: s, Segment: parts[n-1], Err: err}
	}
	return &V2XTopic{
		Root:        strings.Join(parts[:n-2], "/"),
		Suffix:      parts[n-2],
		MessageKind: kind,
	}, nil
}

// ParseV2X is a Parser for flat topics.
func ParseV2X(s string) (Topic, error) {
	t, err := ParseV2XTopic(s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func checkRoot(s string, root []string) error {
	for _, seg := range root {
		if seg == "" {
			return &ParseError{Topic: s, Segment: strings.Join(root, "/"), Err: ErrEmptySegment}
		}
	}
	return nil
}

func (t *V2XTopic) Kind() exchange.Kind {
	return t.MessageKind
}

func (t *V2XTopic) String() string {
	if t.MessageKind == exchange.KindInfo {
		return t.Root + "/" + exchange.KindInfo.String()
	}
	return t.Root + "/" + t.Suffix + "/" + t.MessageKind.String()
}

// Route is the wire form, flat topics carry nothing publisher specific.
func (t *V2XTopic) Route() string {
	return t.String()
}
