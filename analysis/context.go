package analysis

import (
	"maps"
	"sync"
	"time"

	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/state"
	"github.com/jellydator/ttlcache/v3"
)

// ActionKey identifies a DENM event by its originating station.
type ActionKey struct {
	StationId      uint32
	SequenceNumber uint16
}

// Context is the mutable state analyzers share across workers and generations.
type Context struct {
	mu       sync.RWMutex
	received map[exchange.Kind]uint64
	sent     map[exchange.Kind]uint64

	actionMu sync.Mutex
	actions  *ttlcache.Cache[ActionKey, uint16]
}

func NewContext() *Context {
	c := &Context{
		received: make(map[exchange.Kind]uint64),
		sent:     make(map[exchange.Kind]uint64),
		actions: ttlcache.New[ActionKey, uint16](
			ttlcache.WithTTL[ActionKey, uint16](exchange.DefaultValidityDuration*time.Second),
			ttlcache.WithDisableTouchOnHit[ActionKey, uint16](),
		),
	}
	go c.actions.Start()
	return c
}

// Close stops expiring actions.
func (c *Context) Close() {
	c.actions.Stop()
}

func (c *Context) CountReceived(k exchange.Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received[k]++
	return c.received[k]
}

func (c *Context) CountSent(k exchange.Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent[k]++
	return c.sent[k]
}

func (c *Context) Received() map[exchange.Kind]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.received)
}

func (c *Context) Sent() map[exchange.Kind]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.sent)
}

// MapAction returns the local sequence number standing for a foreign DENM
// action, allocating one from seq the first time the action is seen. The
// mapping lives for ttl.
func (c *Context) MapAction(key ActionKey, ttl time.Duration, seq *state.SequenceNumber) uint16 {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	if item := c.actions.Get(key); item != nil {
		return item.Value()
	}
	local := uint16(seq.Next())
	c.actions.Set(key, local, max(ttl, time.Second))
	return local
}

func (c *Context) Actions() int {
	return c.actions.Len()
}
