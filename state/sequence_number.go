package state

import (
	"strconv"
	"sync"
)

// SequenceNumber is a bounded counter shared by the analysers of a generation.
type SequenceNumber struct {
	mu      sync.Mutex
	current uint32
	modulus uint32
}

func NewSequenceNumber(modulus uint32) *SequenceNumber {
	if modulus == 0 {
		panic("sequence number modulus must not be 0")
	}
	return &SequenceNumber{modulus: modulus}
}

// Next hands out the current value and advances, wrapping at the modulus.
func (s *SequenceNumber) Next() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.current
	s.current = (s.current + 1) % s.modulus
	return v
}

func (s *SequenceNumber) Current() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SequenceNumber) String() string {
	return strconv.FormatUint(uint64(s.Current()), 10)
}
