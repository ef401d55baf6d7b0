package mock

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/encodeous/quadrant/transport"
)

type Published struct {
	Topic   string
	Payload []byte
}

// Transport is an in-memory broker session. Injected events are polled in
// order; a failure is only reported once every injected event was polled.
type Transport struct {
	mu            sync.Mutex
	published     []Published
	subscriptions []string
	publishErr    error

	events    chan transport.Event
	failed    chan struct{}
	closed    chan struct{}
	failErr   error
	failOnce  sync.Once
	closeOnce sync.Once
}

func NewTransport() *Transport {
	return NewBoundedTransport(1024)
}

// NewBoundedTransport buffers at most size unpolled events, like a broker
// session whose poll channel has that many slots.
func NewBoundedTransport(size int) *Transport {
	return &Transport{
		events: make(chan transport.Event, size),
		failed: make(chan struct{}),
		closed: make(chan struct{}),
	}
}

func (t *Transport) Inject(topic, payload string) {
	t.InjectEvent(transport.Event{Kind: transport.EventPublish, Topic: []byte(topic), Payload: []byte(payload)})
}

func (t *Transport) InjectEvent(ev transport.Event) {
	t.events <- ev
}

// Fail ends the session as a lost connection would.
func (t *Transport) Fail(err error) {
	t.failOnce.Do(func() {
		t.failErr = err
		close(t.failed)
	})
}

// FailPublish makes every following Publish return err.
func (t *Transport) FailPublish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishErr = err
}

func (t *Transport) Published() []Published {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.published)
}

func (t *Transport) Subscriptions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.subscriptions)
}

func (t *Transport) IsClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

func (t *Transport) Subscribe(topics ...string) error {
	t.mu.Lock()
	t.subscriptions = append(t.subscriptions, topics...)
	t.mu.Unlock()
	t.notify(transport.Event{Kind: transport.EventSubAck})
	return nil
}

// notify queues an acknowledgement, dropping it when no slot is free.
func (t *Transport) notify(ev transport.Event) {
	select {
	case t.events <- ev:
	default:
	}
}

func (t *Transport) Publish(topic string, payload []byte) error {
	t.mu.Lock()
	if t.publishErr != nil {
		t.mu.Unlock()
		return t.publishErr
	}
	t.published = append(t.published, Published{Topic: topic, Payload: slices.Clone(payload)})
	t.mu.Unlock()
	t.notify(transport.Event{Kind: transport.EventPubAck, Topic: []byte(topic)})
	return nil
}

func (t *Transport) Poll(ctx context.Context) (transport.Event, error) {
	select {
	case ev := <-t.events:
		return ev, nil
	default:
	}
	select {
	case ev := <-t.events:
		return ev, nil
	case <-t.failed:
		return transport.Event{Kind: transport.EventDisconnect, Err: t.failErr}, t.failErr
	case <-t.closed:
		return transport.Event{}, transport.ErrClosed
	case <-ctx.Done():
		return transport.Event{}, ctx.Err()
	}
}

func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
	return nil
}

var ErrNoTransport = errors.New("no transport left to dial")

// Dialer hands out the given transports, one per dial.
type Dialer struct {
	mu         sync.Mutex
	transports []*Transport
	dials      int
}

func NewDialer(ts ...*Transport) *Dialer {
	return &Dialer{transports: ts}
}

func (d *Dialer) Dial(ctx context.Context) (transport.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.dials++
	if len(d.transports) == 0 {
		return nil, ErrNoTransport
	}
	t := d.transports[0]
	d.transports = d.transports[1:]
	return t, nil
}

func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}
