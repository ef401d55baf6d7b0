package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/encodeous/quadrant/perf"
	"github.com/encodeous/quadrant/state"
	"github.com/google/uuid"
	"golang.org/x/net/proxy"
)

const (
	qosExactlyOnce = 2
	quiesceMillis  = 250
)

// MQTT is a Transport over an MQTT 3.1.1 session. The session does not
// reconnect: a lost connection surfaces as a Poll error.
type MQTT struct {
	client mqtt.Client
	cfg    state.BrokerCfg
	log    *slog.Logger

	events chan Event
	lost   chan struct{}
	closed chan struct{}

	lostOnce  sync.Once
	closeOnce sync.Once
	lostErr   error
}

// NewDialer returns a Dialer connecting with the given broker configuration.
func NewDialer(cfg state.BrokerCfg, log *slog.Logger) Dialer {
	return func(ctx context.Context) (Transport, error) {
		return Dial(ctx, cfg, log)
	}
}

func Dial(ctx context.Context, cfg state.BrokerCfg, log *slog.Logger) (*MQTT, error) {
	m := &MQTT{
		cfg:    cfg,
		log:    log,
		events: make(chan Event, state.DefaultQueueSize),
		lost:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	opts, err := m.options()
	if err != nil {
		return nil, err
	}
	m.client = mqtt.NewClient(opts)

	tok := m.client.Connect()
	select {
	case <-tok.Done():
	case <-ctx.Done():
		m.client.Disconnect(0)
		return nil, ctx.Err()
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Url, err)
	}
	return m, nil
}

func ClientId(cfg state.BrokerCfg) string {
	if cfg.ClientId != "" {
		return cfg.ClientId
	}
	return "quadrant-" + uuid.NewString()
}

func (m *MQTT) options() (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(m.cfg.Url).
		SetClientID(ClientId(m.cfg)).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(m.cfg.ConnectTimeout).
		SetOrderMatters(true).
		SetConnectionLostHandler(m.onLost).
		SetOnConnectHandler(m.onConnect).
		SetDefaultPublishHandler(m.onMessage)
	if m.cfg.KeepAlive > 0 {
		opts.SetKeepAlive(m.cfg.KeepAlive)
	}
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
		opts.SetPassword(m.cfg.Password)
	}
	tlsCfg, err := TLSConfig(m.cfg.TLS)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts.SetTLSConfig(tlsCfg)
	}
	if m.cfg.Proxy != "" {
		dial, err := proxyDialer(m.cfg.Proxy)
		if err != nil {
			return nil, err
		}
		opts.SetCustomOpenConnectionFn(func(uri *url.URL, options mqtt.ClientOptions) (net.Conn, error) {
			return openThroughProxy(dial, uri, options.TLSConfig)
		})
	}
	return opts, nil
}

// TLSConfig builds the client TLS configuration, nil when TLS is not configured.
func TLSConfig(cfg *state.TLSCfg) (*tls.Config, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	tc := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}
	if cfg.CaFile != "" {
		pem, err := os.ReadFile(cfg.CaFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CaFile)
		}
		tc.RootCAs = pool
	}
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

func proxyDialer(raw string) (proxy.Dialer, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("proxy %s: %w", raw, err)
	}
	return proxy.FromURL(u, proxy.Direct)
}

func openThroughProxy(dial proxy.Dialer, uri *url.URL, tc *tls.Config) (net.Conn, error) {
	switch uri.Scheme {
	case "tcp", "mqtt":
		return dial.Dial("tcp", uri.Host)
	case "ssl", "tls", "mqtts":
		conn, err := dial.Dial("tcp", uri.Host)
		if err != nil {
			return nil, err
		}
		if tc == nil {
			tc = &tls.Config{}
		} else {
			tc = tc.Clone()
		}
		if tc.ServerName == "" {
			tc.ServerName = uri.Hostname()
		}
		tlsConn := tls.Client(conn, tc)
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	default:
		return nil, fmt.Errorf("scheme %s cannot be used through a proxy", uri.Scheme)
	}
}

// push blocks until the event is polled, the session ends or it is closed.
func (m *MQTT) push(ev Event) {
	select {
	case m.events <- ev:
	case <-m.closed:
	case <-m.lost:
	}
}

// notify queues an acknowledgement without waiting. Acks are dropped while the
// poll channel is full, so Subscribe and Publish never wait on the poller.
func (m *MQTT) notify(ev Event) {
	select {
	case m.events <- ev:
	default:
		perf.DroppedAcks.Add(1)
	}
}

func (m *MQTT) onConnect(mqtt.Client) {
	m.notify(Event{Kind: EventConnAck})
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	m.push(Event{Kind: EventPublish, Topic: []byte(msg.Topic()), Payload: msg.Payload()})
}

func (m *MQTT) onLost(_ mqtt.Client, err error) {
	m.lostOnce.Do(func() {
		m.lostErr = fmt.Errorf("connection lost: %w", err)
		close(m.lost)
	})
}

func (m *MQTT) Subscribe(topics ...string) error {
	filters := make(map[string]byte, len(topics))
	for _, t := range topics {
		filters[t] = qosExactlyOnce
	}
	tok := m.client.SubscribeMultiple(filters, nil)
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("subscribing to %v: %w", topics, err)
	}
	m.notify(Event{Kind: EventSubAck})
	return nil
}

func (m *MQTT) Publish(topic string, payload []byte) error {
	tok := m.client.Publish(topic, qosExactlyOnce, false, payload)
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	m.notify(Event{Kind: EventPubAck, Topic: []byte(topic)})
	return nil
}

func (m *MQTT) Poll(ctx context.Context) (Event, error) {
	select {
	case ev := <-m.events:
		return ev, nil
	case <-m.lost:
		return Event{Kind: EventDisconnect, Err: m.lostErr}, m.lostErr
	case <-m.closed:
		return Event{}, ErrClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (m *MQTT) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
		m.client.Disconnect(quiesceMillis)
		m.log.Debug("mqtt session closed", "broker", m.cfg.Url)
	})
	return nil
}
