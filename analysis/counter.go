package analysis

import (
	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/router"
)

// CounterReportEvery is how many items a counter sees between two summaries.
const CounterReportEvery = 100

// Counter only counts what it receives.
type Counter struct {
	env  Env
	seen uint64
}

func NewCounter(env Env) (Analyzer, error) {
	return &Counter{env: env}, nil
}

func (c *Counter) Analyze(item Item) []router.Packet {
	c.env.Context.CountReceived(item.Packet.Exchange.Kind())
	c.seen++
	if c.seen%CounterReportEvery == 0 {
		received := c.env.Context.Received()
		attrs := make([]any, 0, 2*len(exchange.Kinds)+2)
		attrs = append(attrs, "seen", c.seen)
		for _, k := range exchange.Kinds {
			attrs = append(attrs, k.String(), received[k])
		}
		c.env.Log.Info("received messages", attrs...)
	}
	return nil
}
