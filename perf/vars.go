package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	AnalyseLatency     = metric.NewHistogram("1m1s")
	PublishLatency     = metric.NewHistogram("1m1s")
	EventsPerSecond    = metric.NewCounter("10s1s")
	ReceivedPerSecond  = metric.NewCounter("10s1s")
	RecvBytesPerSecond = metric.NewCounter("10s1s")
	DecodedPerSecond   = metric.NewCounter("10s1s")
	PublishedPerSecond = metric.NewCounter("10s1s")
	SentBytesPerSecond = metric.NewCounter("10s1s")
	PublishErrors      = metric.NewCounter("1m1s")
	InvalidTopics      = metric.NewCounter("1m1s")
	RouteMisses        = metric.NewCounter("1m1s")
	DecodeFailures     = metric.NewCounter("1m1s")
	QueueOverflows     = metric.NewCounter("1m1s")
	DroppedAcks        = metric.NewCounter("1m1s")
	GenerationsStarted = metric.NewCounter("1h1m")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("quadrant:AnalyseLatency (µs)", AnalyseLatency)
	expvar.Publish("quadrant:PublishLatency (µs)", PublishLatency)

	expvar.Publish("quadrant:Events/s", EventsPerSecond)
	expvar.Publish("quadrant:Received/s", ReceivedPerSecond)
	expvar.Publish("quadrant:RecvBytes/s", RecvBytesPerSecond)
	expvar.Publish("quadrant:Decoded/s", DecodedPerSecond)
	expvar.Publish("quadrant:Published/s", PublishedPerSecond)
	expvar.Publish("quadrant:SentBytes/s", SentBytesPerSecond)

	expvar.Publish("quadrant:PublishErrors", PublishErrors)
	expvar.Publish("quadrant:InvalidTopics", InvalidTopics)
	expvar.Publish("quadrant:RouteMisses", RouteMisses)
	expvar.Publish("quadrant:DecodeFailures", DecodeFailures)
	expvar.Publish("quadrant:QueueOverflows", QueueOverflows)
	expvar.Publish("quadrant:DroppedAcks", DroppedAcks)
	expvar.Publish("quadrant:Generations", GenerationsStarted)
}
