package router

import (
	"log/slog"
	"unicode/utf8"

	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/perf"
	"github.com/encodeous/quadrant/topic"
	"github.com/encodeous/quadrant/transport"
)

// Packet is a decoded message together with the topic it travels on.
type Packet struct {
	Topic    topic.Topic
	Exchange *exchange.Exchange
}

// Clone copies the exchange. Topics are immutable once parsed and are shared.
func (p Packet) Clone() Packet {
	n := Packet{Topic: p.Topic}
	if p.Exchange != nil {
		n.Exchange = p.Exchange.Clone()
	}
	return n
}

// DecodeFunc turns a payload into an exchange. Returning false drops the message.
type DecodeFunc func(payload []byte, t topic.Topic) (*exchange.Exchange, bool)

// Router maps incoming publishes to decoders by topic route.
type Router struct {
	parse  topic.Parser
	routes map[string]DecodeFunc
	log    *slog.Logger
}

func New(parse topic.Parser, log *slog.Logger) *Router {
	return &Router{
		parse:  parse,
		routes: make(map[string]DecodeFunc),
		log:    log,
	}
}

// AddRoute registers fn for every topic sharing the route of t, replacing any
// previous registration.
func (r *Router) AddRoute(t topic.Topic, fn DecodeFunc) {
	r.routes[t.Route()] = fn
}

func (r *Router) Routes() int {
	return len(r.routes)
}

// HandleEvent decodes publish events. Every other event yields nothing.
func (r *Router) HandleEvent(ev transport.Event) (Packet, bool) {
	if ev.Kind != transport.EventPublish {
		r.log.Debug("broker event", "kind", ev.Kind, "err", ev.Err)
		return Packet{}, false
	}
	perf.ReceivedPerSecond.Add(1)
	perf.RecvBytesPerSecond.Add(float64(len(ev.Payload)))

	if !utf8.Valid(ev.Topic) {
		perf.InvalidTopics.Add(1)
		r.log.Error("topic is not valid utf-8", "topic", ev.Topic)
		return Packet{}, false
	}
	name := string(ev.Topic)
	t, err := r.parse(name)
	if err != nil {
		perf.InvalidTopics.Add(1)
		r.log.Error("failed to parse topic", "topic", name, "err", err)
		return Packet{}, false
	}
	fn, ok := r.routes[t.Route()]
	if !ok {
		perf.RouteMisses.Add(1)
		r.log.Warn("no route for topic", "topic", name, "route", t.Route())
		return Packet{}, false
	}
	e, ok := fn(ev.Payload, t)
	if !ok {
		perf.DecodeFailures.Add(1)
		return Packet{}, false
	}
	perf.DecodedPerSecond.Add(1)
	return Packet{Topic: t, Exchange: e}, true
}
