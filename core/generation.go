package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-broadcast"
	"github.com/encodeous/quadrant/analysis"
	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/perf"
	"github.com/encodeous/quadrant/router"
	"github.com/encodeous/quadrant/state"
	"github.com/encodeous/quadrant/topic"
	"github.com/encodeous/quadrant/transport"
	"golang.org/x/sync/errgroup"
)

// Generation is one connect to disconnect run of the pipeline. Everything it
// holds outlives it; only the session and the stages are its own.
type Generation struct {
	Id       uint64
	Cfg      *state.Cfg
	Node     *state.NodeConfiguration
	Context  *analysis.Context
	Sequence *state.SequenceNumber
	Traces   broadcast.Broadcaster
	Log      *slog.Logger
}

// Subscriptions lists the filters a generation subscribes to.
func Subscriptions(cfg *state.Cfg) []string {
	subs := []string{
		topic.NewV2XTopic(cfg.Geo.Prefix, cfg.Geo.Suffix, exchange.KindCAM).String(),
		topic.NewV2XTopic(cfg.Geo.Prefix, cfg.Geo.Suffix, exchange.KindCPM).String(),
		topic.NewV2XTopic(cfg.Geo.Prefix, cfg.Geo.Suffix, exchange.KindDENM).String(),
		topic.NewV2XTopic(cfg.Geo.Prefix, cfg.Geo.Suffix, exchange.KindInfo).String(),
	}
	if cfg.Geo.GeoRouting {
		all := &topic.GeoTopic{Prefix: cfg.Geo.Prefix, Queue: topic.InQueue, MessageKind: exchange.KindUnknown}
		subs = append(subs, all.Subscription())
	}
	return subs
}

// NewRouter registers a decoder for every route a generation subscribes to.
func NewRouter(cfg *state.Cfg, log *slog.Logger) *router.Router {
	r := router.New(topic.Parse, log)
	for _, k := range exchange.Kinds {
		r.AddRoute(topic.NewV2XTopic(cfg.Geo.Prefix, cfg.Geo.Suffix, k), router.DecoderFor(k, log))
		if cfg.Geo.GeoRouting {
			r.AddRoute(&topic.GeoTopic{Prefix: cfg.Geo.Prefix, Queue: topic.InQueue, MessageKind: k}, router.DecoderFor(k, log))
		}
	}
	return r
}

// Run dials a session and runs every stage until the session ends. All
// stages are joined before it returns; items still queued are lost.
func (g *Generation) Run(ctx context.Context, dial transport.Dialer) error {
	log := g.Log.With("generation", g.Id)
	factory, err := analysis.Lookup(g.Cfg.Pipeline.Analyzer)
	if err != nil {
		return err
	}

	tr, err := dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer tr.Close()
	perf.GenerationsStarted.Add(1)

	if err := tr.Subscribe(Subscriptions(g.Cfg)...); err != nil {
		return err
	}
	log.Info("generation started", "subscriptions", Subscriptions(g.Cfg))

	threads := g.Cfg.ThreadCount()
	size := g.Cfg.Pipeline.QueueSize
	events := NewQueue[transport.Event](size, state.OverflowBlock)
	observations := NewQueue[Observation](size, g.Cfg.Pipeline.MonitorOverflow)
	infos := NewQueue[analysis.Item](size, state.OverflowBlock)
	inputs := make([]*Queue[analysis.Item], threads)
	analyzers := make([]analysis.Analyzer, threads)
	for i := range threads {
		inputs[i] = NewQueue[analysis.Item](size, g.Cfg.Pipeline.AnalyzerOverflow)
		analyzers[i], err = factory(analysis.Env{
			Config:   g.Node,
			Geo:      g.Cfg.Geo,
			Context:  g.Context,
			Sequence: g.Sequence,
			Log:      log.With("stage", "analyser", "worker", i),
		})
		if err != nil {
			return fmt.Errorf("building analyzer %s: %w", g.Cfg.Pipeline.Analyzer, err)
		}
	}

	var stages errgroup.Group
	var producers sync.WaitGroup
	producers.Add(1 + threads)

	stages.Go(func() error {
		return listen(ctx, tr, events, log.With("stage", "listener"))
	})
	stages.Go(func() error {
		defer producers.Done()
		d := &dispatcher{
			router:       NewRouter(g.Cfg, log.With("stage", "router")),
			policy:       g.Cfg.Pipeline.Dispatch,
			observations: observations,
			analysers:    inputs,
			infos:        infos,
			log:          log.With("stage", "dispatcher"),
		}
		return d.run(ctx, events)
	})
	for i := range threads {
		w := &worker{
			analyzer:     analyzers[i],
			transport:    tr,
			observations: observations,
			log:          log.With("stage", "analyser", "worker", i),
		}
		stages.Go(func() error {
			defer producers.Done()
			return w.run(ctx, inputs[i])
		})
	}
	stages.Go(func() error {
		producers.Wait()
		observations.Close()
		return nil
	})
	stages.Go(func() error {
		m := &Monitor{Node: g.Node, Traces: g.Traces, Log: log.With("stage", "monitor")}
		return m.Run(observations)
	})
	stages.Go(func() error {
		return readConfiguration(g.Node, infos, log.With("stage", "configuration"))
	})

	err = stages.Wait()
	log.Info("generation ended", "err", err)
	return err
}

// listen forwards every event of the session. A poll error ends the session
// and, by closing out, the whole generation.
func listen(ctx context.Context, tr transport.Transport, out *Queue[transport.Event], log *slog.Logger) error {
	defer out.Close()
	for {
		ev, err := tr.Poll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Debug("listener cancelled")
			} else {
				log.Error("session ended", "err", err)
			}
			return err
		}
		perf.EventsPerSecond.Add(1)
		if !out.Push(ctx, ev) {
			return ctx.Err()
		}
	}
}

type dispatcher struct {
	router       *router.Router
	policy       state.DispatchPolicy
	observations *Queue[Observation]
	analysers    []*Queue[analysis.Item]
	infos        *Queue[analysis.Item]
	log          *slog.Logger
}

func (d *dispatcher) run(ctx context.Context, in *Queue[transport.Event]) error {
	defer func() {
		for _, q := range d.analysers {
			q.Close()
		}
		d.infos.Close()
	}()
	for ev := range in.C() {
		p, ok := d.router.HandleEvent(ev)
		if !ok {
			continue
		}
		now := time.Now()
		d.observations.Push(ctx, Observation{Direction: Received, Packet: p.Clone(), At: now})
		if p.Exchange.Kind() == exchange.KindInfo {
			d.infos.Push(ctx, analysis.Item{Packet: p.Clone(), ReceivedAt: now})
		}
		switch d.policy {
		case state.DispatchShard:
			q := d.analysers[shard(p.Exchange.SourceUUID, len(d.analysers))]
			q.Push(ctx, analysis.Item{Packet: p, ReceivedAt: now})
		default:
			for _, q := range d.analysers {
				q.Push(ctx, analysis.Item{Packet: p.Clone(), ReceivedAt: now})
			}
		}
	}
	d.log.Debug("dispatcher stopped")
	return nil
}

// shard keeps every message of a source on the same worker.
func shard(source string, n int) int {
	return int(xxhash.Sum64String(source) % uint64(n))
}

type worker struct {
	analyzer     analysis.Analyzer
	transport    transport.Transport
	observations *Queue[Observation]
	log          *slog.Logger
}

func (w *worker) run(ctx context.Context, in *Queue[analysis.Item]) error {
	for item := range in.C() {
		start := time.Now()
		packets := w.analyse(item)
		perf.AnalyseLatency.Add(float64(time.Since(start).Microseconds()))
		for _, p := range packets {
			w.publish(ctx, p)
		}
	}
	w.log.Debug("worker stopped")
	return nil
}

func (w *worker) analyse(item analysis.Item) (packets []router.Packet) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("analyzer panicked", "kind", item.Packet.Exchange.Kind(), "panic", r)
			packets = nil
		}
	}()
	return w.analyzer.Analyze(item)
}

func (w *worker) publish(ctx context.Context, p router.Packet) {
	payload, err := p.Exchange.Encode()
	if err != nil {
		w.log.Error("failed to encode packet", "topic", p.Topic.String(), "err", err)
		return
	}
	start := time.Now()
	if err := w.transport.Publish(p.Topic.String(), payload); err != nil {
		perf.PublishErrors.Add(1)
		w.log.Error("failed to publish", "topic", p.Topic.String(), "err", err)
		return
	}
	perf.PublishLatency.Add(float64(time.Since(start).Microseconds()))
	perf.PublishedPerSecond.Add(1)
	perf.SentBytesPerSecond.Add(float64(len(payload)))
	w.observations.Push(ctx, Observation{Direction: Sent, Packet: p, At: time.Now()})
}

// readConfiguration applies every node information: it is the only writer
// of the node configuration.
func readConfiguration(node *state.NodeConfiguration, in *Queue[analysis.Item], log *slog.Logger) error {
	for item := range in.C() {
		info, ok := item.Packet.Exchange.Message.(*exchange.Information)
		if !ok {
			continue
		}
		for _, err := range node.UpdateRegion(info.Quadkeys()) {
			log.Warn("skipping malformed quadkey", "instance_id", info.InstanceId, "err", err)
		}
		if err := node.UpdateGateway(info.InstanceId); err != nil {
			log.Warn("gateway has no instance id, using 0", "instance_id", info.InstanceId, "err", err)
		}
		log.Info("configuration updated",
			"gateway", info.InstanceId,
			"instance_id", node.InstanceId(),
			"region", node.Region().String())
	}
	log.Debug("configuration reader stopped")
	return nil
}
