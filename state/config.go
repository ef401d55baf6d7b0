package state

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// NodeCfg is the node section: responsibility handling and analyser parallelism.
type NodeCfg struct {
	ResponsibilityEnabled bool `yaml:"responsibility_enabled"`
	ThreadCount           int  `yaml:"thread_count,omitempty"`
}

// MobilityCfg identifies this application on the ITS network.
type MobilityCfg struct {
	SourceUUID        string `yaml:"source_uuid"`
	StationId         uint32 `yaml:"station_id"`
	UseResponsibility bool   `yaml:"use_responsibility"`
	ThreadCount       int    `yaml:"thread_count,omitempty"`
}

// GeoCfg describes the broker route layout.
type GeoCfg struct {
	Prefix     string `yaml:"prefix"`
	Suffix     string `yaml:"suffix"`
	GeoRouting bool   `yaml:"geo_routing"`
}

type TLSCfg struct {
	CaFile             string `yaml:"ca_file,omitempty"`
	CertFile           string `yaml:"cert_file,omitempty"`
	KeyFile            string `yaml:"key_file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty"`
}

func (t *TLSCfg) Enabled() bool {
	return t != nil && (t.CaFile != "" || t.CertFile != "" || t.InsecureSkipVerify)
}

type BrokerCfg struct {
	Url            string        `yaml:"url"`                 // tcp://, ssl://, ws:// or wss://
	ClientId       string        `yaml:"client_id,omitempty"` // generated when empty
	Username       string        `yaml:"username,omitempty"`
	Password       string        `yaml:"password,omitempty"`
	TLS            *TLSCfg       `yaml:"tls,omitempty"`   // client certificates and custom CA
	Proxy          string        `yaml:"proxy,omitempty"` // socks5://host:port
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	KeepAlive      time.Duration `yaml:"keep_alive,omitempty"`
}

type OverflowPolicy string

const (
	OverflowBlock      OverflowPolicy = "block"
	OverflowDropOldest OverflowPolicy = "drop_oldest"
)

type DispatchPolicy string

const (
	// DispatchBroadcast hands every item to every analyser worker.
	DispatchBroadcast DispatchPolicy = "broadcast"
	// DispatchShard hands an item to one worker chosen by its source, keeping per-source order.
	DispatchShard DispatchPolicy = "shard"
)

type PipelineCfg struct {
	Analyzer         string         `yaml:"analyzer"`
	QueueSize        int            `yaml:"queue_size"`
	AnalyzerOverflow OverflowPolicy `yaml:"analyzer_overflow"`
	MonitorOverflow  OverflowPolicy `yaml:"monitor_overflow"`
	Dispatch         DispatchPolicy `yaml:"dispatch"`
	Backoff          time.Duration  `yaml:"backoff"`
}

type LogCfg struct {
	Path string `yaml:"path,omitempty"` // if not empty, logs are also written to this file
	Json bool   `yaml:"json,omitempty"`
}

type DebugCfg struct {
	Addr string `yaml:"addr,omitempty"` // serves expvar and /debug/metrics when set
}

// Cfg is the whole static configuration, read once at startup.
type Cfg struct {
	Node     NodeCfg     `yaml:"node"`
	Mobility MobilityCfg `yaml:"mobility"`
	Geo      GeoCfg      `yaml:"geo"`
	Broker   BrokerCfg   `yaml:"broker"`
	Pipeline PipelineCfg `yaml:"pipeline"`
	Log      LogCfg      `yaml:"log,omitempty"`
	Debug    DebugCfg    `yaml:"debug,omitempty"`
}

// ThreadCount is the number of analyser workers, the node section wins over mobility.
func (c *Cfg) ThreadCount() int {
	if c.Node.ThreadCount > 0 {
		return c.Node.ThreadCount
	}
	return max(c.Mobility.ThreadCount, 1)
}

// Responsibility reports whether messages outside the region are filtered.
func (c *Cfg) Responsibility() bool {
	return c.Node.ResponsibilityEnabled && c.Mobility.UseResponsibility
}

func DefaultConfig() *Cfg {
	return &Cfg{
		Node: NodeCfg{
			ResponsibilityEnabled: true,
			ThreadCount:           1,
		},
		Mobility: MobilityCfg{
			SourceUUID:        "com_application_42",
			StationId:         42,
			UseResponsibility: true,
			ThreadCount:       1,
		},
		Geo: GeoCfg{
			Prefix:     "default",
			Suffix:     "v2x",
			GeoRouting: true,
		},
		Broker: BrokerCfg{
			Url:            "tcp://localhost:1883",
			ConnectTimeout: DefaultConnectTimeout,
			KeepAlive:      DefaultKeepAlive,
		},
		Pipeline: PipelineCfg{
			Analyzer:         "copycat",
			QueueSize:        DefaultQueueSize,
			AnalyzerOverflow: OverflowBlock,
			MonitorOverflow:  OverflowDropOldest,
			Dispatch:         DispatchBroadcast,
			Backoff:          GenerationBackoff,
		},
	}
}

// ParseConfig decodes a YAML document over the defaults.
func ParseConfig(data []byte) (*Cfg, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(path string) (*Cfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
