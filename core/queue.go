package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/encodeous/quadrant/perf"
	"github.com/encodeous/quadrant/state"
)

// Queue is a bounded channel between two stages. When full, Push either
// waits for room or evicts the oldest item, as the policy says.
type Queue[T any] struct {
	ch        chan T
	policy    state.OverflowPolicy
	dropped   atomic.Uint64
	closeOnce sync.Once
}

func NewQueue[T any](size int, policy state.OverflowPolicy) *Queue[T] {
	return &Queue[T]{
		ch:     make(chan T, max(size, 1)),
		policy: policy,
	}
}

// Push enqueues v. It only fails when ctx is done while waiting for room.
func (q *Queue[T]) Push(ctx context.Context, v T) bool {
	if q.policy == state.OverflowDropOldest {
		for {
			select {
			case q.ch <- v:
				return true
			default:
			}
			select {
			case <-q.ch:
				q.dropped.Add(1)
				perf.QueueOverflows.Add(1)
			default:
			}
		}
	}
	select {
	case q.ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *Queue[T]) C() <-chan T {
	return q.ch
}

// Close must only be called once every producer is done.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		close(q.ch)
	})
}

func (q *Queue[T]) Len() int {
	return len(q.ch)
}

func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}
