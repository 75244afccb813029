// Package tracker runs the client core: the per-second tick loop, the
// inactivity monitor, the progress model, and their synchronization with
// the persistence tiers.
package tracker

import (
	"context"
	"time"

	"github.com/okian/focusforge/internal/adapters/flush"
	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/pkg/logger"
)

// flushNowTimeout bounds the synchronous logout/unload flush so clearing
// local state is never blocked by a dead server.
const flushNowTimeout = 3 * time.Second

// Gateway abstracts durable storage of progress snapshots across the
// local cache and the remote authoritative store. The in-memory model
// stays the source of truth during a session; the gateway only ever
// receives complete snapshots, so a dropped write is superseded by the
// next one.
type Gateway interface {
	// LoadFallback reads the local-tier snapshot, used when the remote
	// store cannot supply one.
	LoadFallback() (progress.Snapshot, bool)

	// Submit queues a snapshot for background flushing. Never blocks;
	// returns false if the gateway is closed.
	Submit(snap progress.Snapshot) bool

	// FlushNow writes the snapshot through both tiers synchronously with
	// a bounded timeout. The error is advisory; callers proceed anyway.
	FlushNow(ctx context.Context, snap progress.Snapshot) error

	// Beacon is the send-and-forget unload flush.
	Beacon(snap progress.Snapshot)

	// ClearLocal drops the local-tier cache, used on logout so one
	// user's snapshot never leaks into the next identity.
	ClearLocal()

	// Close stops the background pipeline, draining any pending flush.
	Close()
}

// LocalStore is the synchronous local tier.
type LocalStore interface {
	Save(snap progress.Snapshot)
	Load() (progress.Snapshot, bool)
	Clear()
}

// RemoteStore is the asynchronous authenticated tier.
type RemoteStore interface {
	Persist(ctx context.Context, snap progress.Snapshot) error
	Beacon(snap progress.Snapshot)
}

// TieredGateway composes the local cache and the remote store behind one
// background flush pipeline.
type TieredGateway struct {
	local  LocalStore
	remote RemoteStore

	mailbox *flush.Mailbox
	worker  *flush.Worker
	cancel  context.CancelFunc

	logger logger.Logger
}

// NewTieredGateway builds the gateway and starts its flush worker.
// Either tier may be nil when not configured.
func NewTieredGateway(local LocalStore, remote RemoteStore, opts ...GatewayOption) *TieredGateway {
	g := &TieredGateway{
		local:   local,
		remote:  remote,
		mailbox: flush.NewMailbox(),
		logger:  logger.Get().Named("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}

	var localTier flush.LocalTier
	if local != nil {
		localTier = local
	}
	var remoteTier flush.RemoteTier
	if remote != nil {
		remoteTier = remote
	}
	g.worker = flush.NewWorker(g.mailbox, localTier, remoteTier, flush.WithLogger(g.logger))

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	go g.worker.Run(ctx)

	return g
}

// GatewayOption applies a configuration option to the TieredGateway.
type GatewayOption func(*TieredGateway)

// WithGatewayLogger sets a custom logger for the gateway.
func WithGatewayLogger(l logger.Logger) GatewayOption {
	return func(g *TieredGateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// LoadFallback reads the local-tier snapshot.
func (g *TieredGateway) LoadFallback() (progress.Snapshot, bool) {
	if g.local == nil {
		return progress.DefaultSnapshot(), false
	}
	return g.local.Load()
}

// Submit queues a snapshot for background flushing.
func (g *TieredGateway) Submit(snap progress.Snapshot) bool {
	return g.mailbox.Put(snap)
}

// FlushNow writes the snapshot through both tiers synchronously.
func (g *TieredGateway) FlushNow(ctx context.Context, snap progress.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, flushNowTimeout)
	defer cancel()
	return g.worker.WriteNow(ctx, snap)
}

// Beacon saves locally and fires the unload-time remote delivery.
func (g *TieredGateway) Beacon(snap progress.Snapshot) {
	if g.local != nil {
		g.local.Save(snap)
	}
	if g.remote != nil {
		g.remote.Beacon(snap)
	}
}

// ClearLocal drops the local-tier cache.
func (g *TieredGateway) ClearLocal() {
	if g.local != nil {
		g.local.Clear()
	}
}

// Close stops the flush pipeline, letting any in-flight write finish.
func (g *TieredGateway) Close() {
	_ = g.mailbox.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), flushNowTimeout)
	defer cancel()
	_ = g.worker.Shutdown(shutdownCtx)
	g.cancel()
}
