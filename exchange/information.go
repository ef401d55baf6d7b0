package exchange

import (
	"slices"

	"github.com/encodeous/quadrant/state"
)

const InfoType = "info"

// Information is the metadata a node publishes about itself. Its service area
// is the region of responsibility of the node it describes.
type Information struct {
	Type              string       `json:"type"`
	Version           string       `json:"version"`
	InstanceId        string       `json:"instance_id"`
	InstanceType      string       `json:"instance_type"`
	Central           bool         `json:"central"`
	Running           bool         `json:"running"`
	Timestamp         uint64       `json:"timestamp"`         // unix milliseconds
	ValidityDuration  uint32       `json:"validity_duration"` // seconds
	PublicIpAddress   []string     `json:"public_ip_address,omitempty"`
	MqttIpAddress     []string     `json:"mqtt_ip,omitempty"`
	MqttTlsIpAddress  []string     `json:"mqtt_tls_ip,omitempty"`
	HttpProxy         []string     `json:"http_proxy,omitempty"`
	NtpServers        []string     `json:"ntp_servers,omitempty"`
	DomainNameServers []string     `json:"domain_name_servers,omitempty"`
	ServiceArea       *ServiceArea `json:"service_area,omitempty"`

	terminated bool
}

type ServiceArea struct {
	Type     string   `json:"type"` // "tiles"
	Quadkeys []string `json:"quadkeys"`
}

// Quadkeys returns the service area keys, nil when there is no service area.
func (i *Information) Quadkeys() []string {
	if i.ServiceArea == nil {
		return nil
	}
	return i.ServiceArea.Quadkeys
}

func (i *Information) Kind() Kind { return KindInfo }

func (i *Information) Timeout() uint64 {
	if i.terminated {
		return 0
	}
	return i.Timestamp + uint64(i.ValidityDuration)*1000
}

func (i *Information) Expired() bool { return expired(i.Timeout()) }

func (i *Information) Terminate() { i.terminated = true }

func (i *Information) appropriate(_ *state.NodeConfiguration, timestamp uint64) {
	i.Timestamp = timestamp
}

func (i *Information) clone() Message {
	n := *i
	n.PublicIpAddress = slices.Clone(i.PublicIpAddress)
	n.MqttIpAddress = slices.Clone(i.MqttIpAddress)
	n.MqttTlsIpAddress = slices.Clone(i.MqttTlsIpAddress)
	n.HttpProxy = slices.Clone(i.HttpProxy)
	n.NtpServers = slices.Clone(i.NtpServers)
	n.DomainNameServers = slices.Clone(i.DomainNameServers)
	if i.ServiceArea != nil {
		sa := *i.ServiceArea
		sa.Quadkeys = slices.Clone(sa.Quadkeys)
		n.ServiceArea = &sa
	}
	return &n
}

func (i *Information) traceFields() []any {
	return []any{"instance_id", i.InstanceId}
}
