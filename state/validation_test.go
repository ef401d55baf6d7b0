package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameValidator_Valid(t *testing.T) {
	assert.NoError(t, NameValidator("1"))
	assert.NoError(t, NameValidator("com_application_42"))
	assert.NoError(t, NameValidator("broker-a.example"))
}

func TestNameValidator_Invalid(t *testing.T) {
	assert.Error(t, NameValidator("node name"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("\t"))
	assert.Error(t, NameValidator("a/b"))
	assert.Error(t, NameValidator(strings.Repeat("a", 200)))
}

func TestBrokerUrlValidator(t *testing.T) {
	assert.NoError(t, BrokerUrlValidator("tcp://localhost:1883"))
	assert.NoError(t, BrokerUrlValidator("wss://broker.example.com/mqtt"))
	assert.Error(t, BrokerUrlValidator("http://localhost"))
	assert.Error(t, BrokerUrlValidator("tcp://"))
}

func TestConfigValidator(t *testing.T) {
	assert.NoError(t, ConfigValidator(DefaultConfig()))

	broken := []func(c *Cfg){
		func(c *Cfg) { c.Mobility.SourceUUID = "bad name" },
		func(c *Cfg) { c.Node.ThreadCount = -1 },
		func(c *Cfg) { c.Geo.Prefix = "" },
		func(c *Cfg) { c.Geo.Prefix = "a/+/b" },
		func(c *Cfg) { c.Geo.Suffix = "v2x/x" },
		func(c *Cfg) { c.Broker.Url = "ftp://x" },
		func(c *Cfg) { c.Broker.ConnectTimeout = 0 },
		func(c *Cfg) { c.Pipeline.Analyzer = "" },
		func(c *Cfg) { c.Pipeline.QueueSize = 0 },
		func(c *Cfg) { c.Pipeline.AnalyzerOverflow = "spill" },
		func(c *Cfg) { c.Pipeline.Dispatch = "random" },
		func(c *Cfg) { c.Pipeline.Backoff = -1 },
	}
	for i, mutate := range broken {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, ConfigValidator(cfg), "case %d", i)
	}
}
