package exchange

// Mortal is implemented by messages with a lifetime.
type Mortal interface {
	// Timeout is the absolute deadline in unix milliseconds.
	Timeout() uint64
	// Expired reports whether the deadline has passed.
	Expired() bool
	// Terminate forces the message to expire now, whatever its deadline.
	Terminate()
}

func expired(timeout uint64) bool {
	return NowMillis() > timeout
}
