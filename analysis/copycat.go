package analysis

import (
	"time"

	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/geo"
	"github.com/encodeous/quadrant/router"
	"github.com/encodeous/quadrant/topic"
)

// PositionZoom is the depth messages are located at, in geo topics and
// against the region of responsibility.
const PositionZoom = 22

// Copycat republishes our own copy of every message in our region.
type Copycat struct {
	env Env
}

func NewCopycat(env Env) (Analyzer, error) {
	return &Copycat{env: env}, nil
}

func (c *Copycat) Analyze(item Item) []router.Packet {
	e := item.Packet.Exchange
	kind := e.Kind()
	c.env.Context.CountReceived(kind)

	if kind == exchange.KindInfo || e.SourceUUID == c.env.Config.ComponentName() {
		return nil
	}
	// copies made by any gateway application are never copied again
	if e.Origin == exchange.OriginMecApplication {
		c.env.Log.Debug("skipping appropriated message", "source_uuid", e.SourceUUID)
		return nil
	}
	qk, located := c.locate(item.Packet)
	if located {
		if !c.env.Config.IsInRegion(qk) {
			return nil
		}
	} else if c.env.Config.Responsibility() {
		return nil
	}

	var original *exchange.DENM
	if denm, ok := e.Message.(*exchange.DENM); ok {
		if denm.Expired() {
			c.env.Log.Debug("skipping expired denm", e.TraceFields()...)
			return nil
		}
		original = denm
	}

	now := exchange.NowMillis()
	out := e.Clone()
	out.Appropriate(c.env.Config, now)
	if original != nil {
		key := ActionKey{
			StationId:      original.ManagementContainer.ActionId.OriginatingStationId,
			SequenceNumber: original.ManagementContainer.ActionId.SequenceNumber,
		}
		ttl := time.Duration(original.Timeout()-now) * time.Millisecond
		out.Message.(*exchange.DENM).ManagementContainer.ActionId.SequenceNumber = c.env.Context.MapAction(key, ttl, c.env.Sequence)
	}

	t := c.outTopic(item.Packet.Topic, qk, located)
	if t == nil {
		return nil
	}
	c.env.Context.CountSent(kind)
	return []router.Packet{{Topic: t, Exchange: out}}
}

// locate prefers the position carried by the message over the tile of its topic.
func (c *Copycat) locate(p router.Packet) (geo.Quadkey, bool) {
	if qk, ok := p.Exchange.Quadkey(PositionZoom); ok {
		return qk, true
	}
	if gt, ok := p.Topic.(*topic.GeoTopic); ok && len(gt.Quadkey) > 0 {
		return gt.Quadkey.Trim(), true
	}
	return nil, false
}

func (c *Copycat) outTopic(in topic.Topic, qk geo.Quadkey, located bool) topic.Topic {
	switch t := in.(type) {
	case *topic.GeoTopic:
		out := t.WithQueue(topic.OutQueue)
		if located {
			out = out.WithQuadkey(qk)
		}
		out.Appropriate(c.env.Config)
		return out
	case *topic.V2XTopic:
		return topic.NewV2XTopic(c.env.Geo.Prefix, c.env.Geo.Suffix, t.Kind())
	default:
		c.env.Log.Warn("cannot republish on topic", "topic", in.String())
		return nil
	}
}
