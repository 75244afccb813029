// Package flush moves progress snapshots from the tracker to the
// persistence tiers without ever blocking the tick loop.
//
// The pipeline is a capacity-one, latest-wins mailbox feeding a single
// writer goroutine. Coalescing is lossless here because every payload is
// a complete snapshot: whichever snapshot is written last supersedes all
// the ones it replaced.
package flush

import (
	"context"
	"sync"

	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/pkg/metrics"
)

// Mailbox holds at most the latest pending snapshot.
type Mailbox struct {
	mu      sync.Mutex
	pending *progress.Snapshot
	signal  chan struct{}
	closed  bool
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		signal: make(chan struct{}, 1),
	}
}

// Put submits a snapshot for flushing, replacing any snapshot still
// waiting. Never blocks. Returns false if the mailbox is closed and the
// snapshot was dropped.
func (m *Mailbox) Put(snap progress.Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		metrics.RecordFlushDropped()
		return false
	}
	copied := snap.Clone()
	m.pending = &copied

	select {
	case m.signal <- struct{}{}:
	default:
		// A wakeup is already queued; the pending pointer was replaced.
	}
	return true
}

// Next blocks until a snapshot is pending, the context is canceled, or
// the mailbox closes with nothing pending.
func (m *Mailbox) Next(ctx context.Context) (progress.Snapshot, bool) {
	for {
		m.mu.Lock()
		if m.pending != nil {
			snap := *m.pending
			m.pending = nil
			m.mu.Unlock()
			return snap, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return progress.Snapshot{}, false
		}

		select {
		case <-ctx.Done():
			return progress.Snapshot{}, false
		case <-m.signal:
		}
	}
}

// Len reports whether a snapshot is waiting (0 or 1).
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		return 1
	}
	return 0
}

// Close stops accepting snapshots. A snapshot already pending can still
// be drained by Next.
func (m *Mailbox) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	select {
	case m.signal <- struct{}{}:
	default:
	}
	return nil
}

// IsClosed reports whether the mailbox has been closed.
func (m *Mailbox) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
