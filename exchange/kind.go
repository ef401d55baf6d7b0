package exchange

import (
	"fmt"
	"strings"
)

// Kind is the message type carried by an Exchange.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCAM
	KindDENM
	KindCPM
	KindMAPEM
	KindSPATEM
	KindInfo
)

// Kinds lists the kinds in decode order, node metadata last.
var Kinds = []Kind{KindCAM, KindDENM, KindCPM, KindMAPEM, KindSPATEM, KindInfo}

// String returns the route token of the kind.
func (k Kind) String() string {
	switch k {
	case KindCAM:
		return "cam"
	case KindDENM:
		return "denm"
	case KindCPM:
		return "cpm"
	case KindMAPEM:
		return "map"
	case KindSPATEM:
		return "spat"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Tag returns the value of the envelope "type" field for the kind.
func (k Kind) Tag() string {
	switch k {
	case KindMAPEM:
		return "mapem"
	case KindSPATEM:
		return "spatem"
	default:
		return k.String()
	}
}

// ParseToken accepts exactly the route token of a kind, as rendered by String.
func ParseToken(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown route token %q", s)
}

// ParseKind accepts both route tokens and envelope tags, in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "cam":
		return KindCAM, nil
	case "denm":
		return KindDENM, nil
	case "cpm":
		return KindCPM, nil
	case "map", "mapem":
		return KindMAPEM, nil
	case "spat", "spatem":
		return KindSPATEM, nil
	case "info":
		return KindInfo, nil
	default:
		return KindUnknown, fmt.Errorf("unknown message kind %q", s)
	}
}
