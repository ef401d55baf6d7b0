package state

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/encodeous/quadrant/geo"
)

// NodeConfiguration is the live, shared view of this node: who it is and which
// region it is responsible for. The configuration reader is its only writer;
// every other stage reads it concurrently.
type NodeConfiguration struct {
	mu sync.RWMutex

	componentName  string
	stationId      uint32
	responsibility bool

	region      *geo.Quadtree
	gatewayName string
	instanceId  uint64
}

func NewNodeConfiguration(cfg *Cfg) *NodeConfiguration {
	region, _ := geo.NewQuadtree()
	return &NodeConfiguration{
		componentName:  cfg.Mobility.SourceUUID,
		stationId:      cfg.Mobility.StationId,
		responsibility: cfg.Responsibility(),
		region:         region,
	}
}

func (c *NodeConfiguration) ComponentName() string {
	return c.componentName
}

func (c *NodeConfiguration) Responsibility() bool {
	return c.responsibility
}

func (c *NodeConfiguration) Region() *geo.Quadtree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.region
}

// IsInRegion reports whether a message at the given tile must be fully
// processed by this node. Without responsibility every tile is ours.
func (c *NodeConfiguration) IsInRegion(qk geo.Quadkey) bool {
	if !c.responsibility {
		return true
	}
	return c.Region().Contains(qk)
}

// UpdateRegion replaces the region of responsibility. Malformed keys are left
// out of the new region and returned.
func (c *NodeConfiguration) UpdateRegion(keys []string) []error {
	region, errs := geo.ParseQuadtree(keys)
	c.mu.Lock()
	c.region = region
	c.mu.Unlock()
	return errs
}

func (c *NodeConfiguration) GatewayComponentName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gatewayName
}

func (c *NodeConfiguration) InstanceId() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instanceId
}

// UpdateGateway records the gateway we are attached to. Its instance id is the
// numeric suffix of the component name (broker_42 -> 42); when the suffix is
// not a number the id falls back to 0 and an error is returned.
func (c *NodeConfiguration) UpdateGateway(componentName string) error {
	id, err := ParseInstanceId(componentName)
	c.mu.Lock()
	c.gatewayName = componentName
	c.instanceId = id
	c.mu.Unlock()
	return err
}

func ParseInstanceId(componentName string) (uint64, error) {
	idx := strings.LastIndexByte(componentName, '_')
	if idx == -1 {
		return 0, fmt.Errorf("component name %q has no _<id> suffix", componentName)
	}
	id, err := strconv.ParseUint(componentName[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("component name %q: %w", componentName, err)
	}
	return id, nil
}

// StationId derives the station id this node uses for messages of a kind,
// identified by its offset.
func (c *NodeConfiguration) StationId(offset uint32) uint32 {
	id := c.InstanceId()
	if id == 0 {
		return c.stationId
	}
	return uint32(id*instanceStationFactor + uint64(offset))
}
