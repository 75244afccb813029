package flush

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/pkg/logger"
	"github.com/okian/focusforge/pkg/metrics"
)

// Tier names used for logging and metrics labels.
const (
	TierLocal  = "local"
	TierRemote = "remote"
)

// LocalTier is the synchronous best-effort cache. Save never reports
// failure to callers; the tier logs and drops on its own.
type LocalTier interface {
	Save(snap progress.Snapshot)
}

// RemoteTier is the authoritative store behind the session. Persist may
// fail; the worker swallows the failure.
type RemoteTier interface {
	Persist(ctx context.Context, snap progress.Snapshot) error
}

// Worker drains the mailbox and writes each snapshot to both tiers.
// Tier failures are logged and counted but never propagated: a dropped
// write is superseded by the next periodic flush.
type Worker struct {
	mailbox *Mailbox
	local   LocalTier
	remote  RemoteTier
	name    string

	// advisory tracks whether the current remote failure streak was
	// already logged, so a dead server does not spam once per tick.
	advisory bool

	done chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a flush worker. Either tier may be nil when that
// tier is not configured.
func NewWorker(mailbox *Mailbox, local LocalTier, remote RemoteTier, opts ...Option) *Worker {
	w := &Worker{
		mailbox: mailbox,
		local:   local,
		remote:  remote,
		name:    "flush",
		done:    make(chan struct{}),
		logger:  logger.Get().Named("flush"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the mailbox until ctx is canceled or the mailbox closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		snap, ok := w.mailbox.Next(ctx)
		if !ok {
			return
		}
		w.write(ctx, snap)
	}
}

// Shutdown waits for the worker to finish draining.
func (w *Worker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// write pushes one snapshot through both tiers.
func (w *Worker) write(ctx context.Context, snap progress.Snapshot) {
	start := time.Now()
	defer func() {
		metrics.RecordFlushLatency(float64(time.Since(start).Milliseconds()))
	}()

	if w.local != nil {
		metrics.RecordFlushAttempt(TierLocal)
		w.local.Save(snap)
	}

	if w.remote == nil {
		return
	}
	metrics.RecordFlushAttempt(TierRemote)
	if err := w.remote.Persist(ctx, snap); err != nil {
		metrics.RecordFlushFailure(TierRemote)
		if !w.advisory {
			w.advisory = true
			w.logger.Warn(ctx, "remote flush failing; progress will retry on the next flush",
				logger.Error(err),
			)
		}
		return
	}
	if w.advisory {
		w.advisory = false
		w.logger.Info(ctx, "remote flush recovered")
	}
}

// WriteNow flushes a snapshot through both tiers synchronously, bypassing
// the mailbox. Used for the logout/unload path. The remote error is
// returned for logging only; callers must not fail on it.
func (w *Worker) WriteNow(ctx context.Context, snap progress.Snapshot) error {
	if w.local != nil {
		metrics.RecordFlushAttempt(TierLocal)
		w.local.Save(snap)
	}
	if w.remote == nil {
		return nil
	}
	metrics.RecordFlushAttempt(TierRemote)
	if err := w.remote.Persist(ctx, snap); err != nil {
		metrics.RecordFlushFailure(TierRemote)
		return fmt.Errorf("remote flush: %w", err)
	}
	return nil
}
