package core

import (
	"log/slog"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/quadrant/router"
	"github.com/encodeous/quadrant/state"
)

type Direction string

const (
	Received Direction = "received"
	Sent     Direction = "sent"
)

// Observation is what the monitor is told about: a packet crossing the node.
type Observation struct {
	Direction Direction
	Packet    router.Packet
	At        time.Time
}

// Trace is one monitor line, also handed to trace subscribers.
type Trace struct {
	Component   string         `json:"component"`
	Direction   Direction      `json:"direction"`
	Kind        string         `json:"kind"`
	Topic       string         `json:"topic"`
	Counterpart string         `json:"counterpart"`
	Fields      map[string]any `json:"fields"`
	At          time.Time      `json:"at"`

	pairs []any
}

func NewTrace(node *state.NodeConfiguration, o Observation) Trace {
	e := o.Packet.Exchange
	counterpart := e.SourceUUID
	if o.Direction == Sent {
		counterpart = node.GatewayComponentName()
	}
	tf := e.TraceFields()
	fields := make(map[string]any, len(tf)/2)
	for i := 0; i+1 < len(tf); i += 2 {
		fields[tf[i].(string)] = tf[i+1]
	}
	return Trace{
		Component:   node.ComponentName(),
		Direction:   o.Direction,
		Kind:        e.Kind().String(),
		Topic:       o.Packet.Topic.String(),
		Counterpart: counterpart,
		Fields:      fields,
		At:          o.At,
		pairs:       tf,
	}
}

func (t Trace) attrs() []any {
	attrs := []any{
		"component", t.Component,
		"kind", t.Kind,
		"counterpart", t.Counterpart,
		"topic", t.Topic,
	}
	attrs = append(attrs, t.pairs...)
	return append(attrs, "at", t.At.UnixMilli())
}

// Monitor writes one trace per observation and forwards it to subscribers.
// It never affects what the pipeline does.
type Monitor struct {
	Node   *state.NodeConfiguration
	Traces broadcast.Broadcaster
	Log    *slog.Logger
}

func (m *Monitor) Run(in *Queue[Observation]) error {
	for o := range in.C() {
		t := NewTrace(m.Node, o)
		m.Log.Info(string(t.Direction), t.attrs()...)
		if m.Traces != nil {
			m.Traces.TrySubmit(t)
		}
	}
	m.Log.Debug("monitor stopped")
	return nil
}
