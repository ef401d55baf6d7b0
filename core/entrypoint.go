package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/quadrant/analysis"
	"github.com/encodeous/quadrant/state"
	"github.com/encodeous/quadrant/transport"
)

// Runtime is what survives generations: identity, region, shared analysis
// state and trace subscribers.
type Runtime struct {
	Cfg      *state.Cfg
	Node     *state.NodeConfiguration
	Context  *analysis.Context
	Sequence *state.SequenceNumber
	Traces   broadcast.Broadcaster
	Log      *slog.Logger
}

func NewRuntime(cfg *state.Cfg, log *slog.Logger) *Runtime {
	return &Runtime{
		Cfg:      cfg,
		Node:     state.NewNodeConfiguration(cfg),
		Context:  analysis.NewContext(),
		Sequence: state.NewSequenceNumber(state.SequenceModulus),
		Traces:   broadcast.NewBroadcaster(state.MonitorBroadcastBuffer),
		Log:      log,
	}
}

func (r *Runtime) Close() error {
	r.Context.Close()
	return r.Traces.Close()
}

// Bootstrap runs generations back to back, waiting the configured backoff
// between two of them. It only returns once ctx is done.
func (r *Runtime) Bootstrap(ctx context.Context, dial transport.Dialer) error {
	if _, err := analysis.Lookup(r.Cfg.Pipeline.Analyzer); err != nil {
		return err
	}
	for id := uint64(1); ; id++ {
		g := &Generation{
			Id:       id,
			Cfg:      r.Cfg,
			Node:     r.Node,
			Context:  r.Context,
			Sequence: r.Sequence,
			Traces:   r.Traces,
			Log:      r.Log,
		}
		err := g.Run(ctx, dial)
		if ctx.Err() != nil {
			r.Log.Info("stopped", "reason", context.Cause(ctx).Error())
			return nil
		}
		r.Log.Warn("restarting after backoff", "generation", id, "err", err, "backoff", r.Cfg.Pipeline.Backoff)
		select {
		case <-time.After(r.Cfg.Pipeline.Backoff):
		case <-ctx.Done():
			r.Log.Info("stopped", "reason", context.Cause(ctx).Error())
			return nil
		}
	}
}

// Start runs the node until SIGINT or SIGTERM.
func Start(cfg *state.Cfg, level slog.Level) error {
	logger, closer, err := NewLogger(cfg.Mobility.SourceUUID, cfg.Log, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	rt := NewRuntime(cfg, logger)
	defer rt.Close()

	if cfg.Debug.Addr != "" {
		srv := rt.debugServer(cfg.Debug.Addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug server failed", "err", err)
			}
		}()
		defer srv.Close()
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			cancel(errors.New("received shutdown signal"))
		case <-ctx.Done():
		}
	}()

	logger.Info("quadrant has been initialized. To gracefully exit, send SIGINT or Ctrl+C.",
		"broker", cfg.Broker.Url, "analyzer", cfg.Pipeline.Analyzer, "threads", cfg.ThreadCount())
	return rt.Bootstrap(ctx, transport.NewDialer(cfg.Broker, logger.With("stage", "transport")))
}
