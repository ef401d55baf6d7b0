package transport

import (
	"context"
	"errors"
)

type EventKind uint8

const (
	EventConnAck EventKind = iota
	EventSubAck
	EventPublish
	EventPubAck
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventConnAck:
		return "connack"
	case EventSubAck:
		return "suback"
	case EventPublish:
		return "publish"
	case EventPubAck:
		return "puback"
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is one notification of the broker connection. Topic holds the raw
// topic bytes as received, they are not guaranteed to be valid UTF-8.
type Event struct {
	Kind    EventKind
	Topic   []byte
	Payload []byte
	Err     error
}

var ErrClosed = errors.New("transport closed")

// Transport is a broker session. Poll is called from a single goroutine,
// Publish may be called concurrently.
type Transport interface {
	Subscribe(topics ...string) error
	// Publish sends with exactly once delivery, never retained.
	Publish(topic string, payload []byte) error
	// Poll blocks for the next event. An error means the session is over.
	Poll(ctx context.Context) (Event, error)
	Close() error
}

// Dialer opens a new session, once per generation.
type Dialer func(ctx context.Context) (Transport, error)
