package state

import "time"

var (
	// GenerationBackoff is the pause between the end of a pipeline generation and the next.
	GenerationBackoff = time.Second * 5

	DefaultQueueSize      = 1024
	DefaultConnectTimeout = time.Second * 10
	DefaultKeepAlive      = time.Second * 30

	// SequenceModulus bounds the sequence numbers handed to derived messages.
	SequenceModulus = uint32(65536)

	// MonitorBroadcastBuffer is the backlog of traces kept for slow trace subscribers.
	MonitorBroadcastBuffer = 1024
)

// station id offsets per message kind, used to derive appropriated identities
const (
	CamStationOffset    = 1
	DenmStationOffset   = 2
	CpmStationOffset    = 3
	MapemStationOffset  = 4
	SpatemStationOffset = 5

	instanceStationFactor = 100
)
