package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
)

// Sender wraps a bounded channel with overflow-queue semantics: a
// TrySendSafe that can never block the caller, and a DrainReady that
// replays the overflow once the channel has room. The overflow is private
// to one Sender — cloning a pipeline Address constructs a fresh Sender per
// clone rather than sharing one, per the "overflow is a property of the
// sending site" rule.
//
// The swap-and-replay discipline (primary/scratch) avoids allocating on
// every drain attempt while preserving FIFO order even when a drain is
// interrupted partway by the channel filling back up.
type Sender[M any] struct {
	ch      chan M
	closed  *atomic.Bool
	closeMu *sync.RWMutex

	mu      sync.Mutex
	primary []M
	scratch []M
}

// NewSender builds a Sender around a channel of the given capacity.
func NewSender[M any](capacity int) *Sender[M] {
	return &Sender[M]{ch: make(chan M, capacity), closed: &atomic.Bool{}, closeMu: &sync.RWMutex{}}
}

// TrySendSafe attempts a non-blocking enqueue. On a full channel the
// message is appended to the overflow queue and success is still reported;
// only a permanently closed peer is an error. closeMu's read lock is held
// for the duration of the channel op so a concurrent Close cannot close the
// channel out from under an in-flight send.
func (s *Sender[M]) TrySendSafe(m M) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed.Load() {
		return ErrDisconnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.primary) > 0 {
		s.primary = append(s.primary, m)
		return nil
	}
	select {
	case s.ch <- m:
		return nil
	default:
		s.primary = append(s.primary, m)
		return nil
	}
}

// Ready reports whether the channel has room and the overflow is empty.
func (s *Sender[M]) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Sender[M]) readyLocked() bool {
	return len(s.primary) == 0 && len(s.ch) < cap(s.ch)
}

// DrainReady replays the overflow queue into the channel as far as room
// allows, preserving submission order, then reports the post-drain Ready
// status. If interrupted by the channel filling up again, the undelivered
// remainder is pushed back onto the primary queue in its original order.
func (s *Sender[M]) DrainReady() bool {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.primary) == 0 {
		return s.readyLocked()
	}
	if s.closed.Load() {
		return s.readyLocked()
	}
	s.primary, s.scratch = s.scratch[:0], s.primary
	for i, m := range s.scratch {
		select {
		case s.ch <- m:
		default:
			s.primary = append(s.primary, s.scratch[i:]...)
			return s.readyLocked()
		}
	}
	return s.readyLocked()
}

// Send backpressures the caller until the message is accepted or ctx is
// cancelled. It bypasses the overflow queue entirely: callers that want
// non-blocking semantics use TrySendSafe instead.
func (s *Sender[M]) Send(ctx context.Context, m M) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed.Load() {
		return ErrDisconnected
	}
	select {
	case s.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MaybeSend is a best-effort non-blocking send: on a full channel the
// message is discarded rather than queued.
func (s *Sender[M]) MaybeSend(m M) bool {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed.Load() {
		return false
	}
	select {
	case s.ch <- m:
		return true
	default:
		return false
	}
}

// Len reports the total number of messages held, channel plus overflow.
func (s *Sender[M]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ch) + len(s.primary)
}

// OverflowLen reports the number of messages currently parked in the
// overflow queue alone, for metrics exposition.
func (s *Sender[M]) OverflowLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.primary)
}

// Recv exposes the underlying channel for the single consumer side.
func (s *Sender[M]) Recv() <-chan M {
	return s.ch
}

// Close marks the sender disconnected and closes the underlying channel.
// Every clone observes the closed state immediately since the flag and the
// channel are shared. Taking closeMu's write lock first drains any
// in-flight TrySendSafe/Send/MaybeSend/DrainReady call holding the read
// lock, so close(s.ch) can never race a concurrent send on the same
// channel. Further calls fail with ErrDisconnected instead of risking a
// send on a closed channel.
func (s *Sender[M]) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed.Swap(true) {
		return
	}
	close(s.ch)
}

// Clone returns a new Sender over the same underlying channel with a fresh,
// independent overflow queue. Overflow is a property of the sending site,
// not the queue: clones MUST NOT share overflow buffers. closeMu is shared
// so Close on any clone excludes sends on every other clone.
func (s *Sender[M]) Clone() *Sender[M] {
	return &Sender[M]{ch: s.ch, closed: s.closed, closeMu: s.closeMu}
}
