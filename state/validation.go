package state

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

// SegmentValidator checks a broker route segment, which must not contain wildcards.
func SegmentValidator(s string) error {
	if s == "" {
		return fmt.Errorf("route segment must not be empty")
	}
	if strings.ContainsAny(s, "+#") {
		return fmt.Errorf("route segment %s must not contain wildcards", s)
	}
	return nil
}

func BrokerUrlValidator(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "tcp", "mqtt", "ssl", "tls", "mqtts", "ws", "wss":
	default:
		return fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("broker url %s has no host", s)
	}
	return nil
}

func ConfigValidator(cfg *Cfg) error {
	if err := NameValidator(cfg.Mobility.SourceUUID); err != nil {
		return fmt.Errorf("mobility.source_uuid: %w", err)
	}
	if cfg.Node.ThreadCount < 0 || cfg.Mobility.ThreadCount < 0 || cfg.ThreadCount() < 1 {
		return fmt.Errorf("thread count must be at least 1")
	}
	for _, seg := range strings.Split(cfg.Geo.Prefix, "/") {
		if err := SegmentValidator(seg); err != nil {
			return fmt.Errorf("geo.prefix: %w", err)
		}
	}
	if err := SegmentValidator(cfg.Geo.Suffix); err != nil {
		return fmt.Errorf("geo.suffix: %w", err)
	}
	if strings.Contains(cfg.Geo.Suffix, "/") {
		return fmt.Errorf("geo.suffix must be a single segment")
	}
	if err := BrokerUrlValidator(cfg.Broker.Url); err != nil {
		return fmt.Errorf("broker.url: %w", err)
	}
	if cfg.Broker.Proxy != "" {
		if _, err := url.Parse(cfg.Broker.Proxy); err != nil {
			return fmt.Errorf("broker.proxy: %w", err)
		}
	}
	if cfg.Broker.ConnectTimeout <= 0 {
		return fmt.Errorf("broker.connect_timeout must be positive")
	}
	if cfg.Pipeline.Analyzer == "" {
		return fmt.Errorf("pipeline.analyzer must be set")
	}
	if cfg.Pipeline.QueueSize < 1 {
		return fmt.Errorf("pipeline.queue_size must be at least 1")
	}
	for _, p := range []OverflowPolicy{cfg.Pipeline.AnalyzerOverflow, cfg.Pipeline.MonitorOverflow} {
		if p != OverflowBlock && p != OverflowDropOldest {
			return fmt.Errorf("unknown overflow policy %q", p)
		}
	}
	if cfg.Pipeline.Dispatch != DispatchBroadcast && cfg.Pipeline.Dispatch != DispatchShard {
		return fmt.Errorf("unknown dispatch policy %q", cfg.Pipeline.Dispatch)
	}
	if cfg.Pipeline.Backoff < 0 {
		return fmt.Errorf("pipeline.backoff must not be negative")
	}
	if cfg.Log.Path != "" {
		if err := PathValidator(cfg.Log.Path); err != nil {
			return fmt.Errorf("log.path: %w", err)
		}
	}
	return nil
}
