package analysis

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/quadrant/router"
	"github.com/encodeous/quadrant/state"
)

// Item is one decoded message handed to an analyser worker.
type Item struct {
	Packet     router.Packet
	ReceivedAt time.Time
}

// Analyzer turns received items into packets to publish. A worker calls its
// analyzer sequentially, but several workers share the Env concurrently.
type Analyzer interface {
	Analyze(item Item) []router.Packet
}

// Env is what every analyzer of a generation shares.
type Env struct {
	Config   *state.NodeConfiguration
	Geo      state.GeoCfg
	Context  *Context
	Sequence *state.SequenceNumber
	Log      *slog.Logger
}

type Factory func(env Env) (Analyzer, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer %q, expected one of %v", name, names())
	}
	return f, nil
}

func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return names()
}

func names() []string {
	n := make([]string, 0, len(registry))
	for k := range registry {
		n = append(n, k)
	}
	slices.Sort(n)
	return n
}

func init() {
	Register("copycat", NewCopycat)
	Register("counter", NewCounter)
}
