package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/focusforge/internal/adapters/remote"
	"github.com/okian/focusforge/internal/domain/activity"
	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/pkg/logger"
	"github.com/okian/focusforge/pkg/metrics"
)

// Default tracker configuration constants.
const (
	DefaultTickInterval    = time.Second
	DefaultPointsPerSecond = 0.5
	DefaultFlushEvery      = 10
)

// Tracker owns the session state machine: the progress model, the
// inactivity monitor, the tick cadence, and their synchronization with
// the persistence gateway. All state lives here, constructed explicitly
// and torn down on logout; there are no ambient globals.
//
// Mutation is serialized by one mutex: ticks, purchases, and session
// operations never observe each other half-applied, and tick N is fully
// applied before tick N+1 begins.
type Tracker struct {
	mu sync.Mutex

	model   *progress.Model
	monitor *activity.Monitor
	gateway Gateway
	session Session

	username string
	active   bool

	tickInterval  time.Duration
	idleThreshold time.Duration
	pointsPerSec  float64
	flushEvery    int64
	clock         func() time.Time
	onIdle        func()

	started bool
	stopCh  chan struct{}
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithTickInterval sets the tick cadence.
func WithTickInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.tickInterval = d
		}
	}
}

// WithIdleThreshold sets how long hidden visibility lasts before an idle
// episode opens.
func WithIdleThreshold(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.idleThreshold = d
		}
	}
}

// WithPointsPerSecond sets the accrual rate for focused ticks.
func WithPointsPerSecond(rate float64) Option {
	return func(t *Tracker) {
		if rate >= 0 {
			t.pointsPerSec = rate
		}
	}
}

// WithFlushEvery sets the periodic flush cadence in ticks.
func WithFlushEvery(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.flushEvery = int64(n)
		}
	}
}

// WithClock injects a time source for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithOnIdle subscribes the host UI's idle prompt. Called once per idle
// episode, on the tick that crossed the threshold.
func WithOnIdle(fn func()) Option {
	return func(t *Tracker) {
		t.onIdle = fn
	}
}

// WithLogger sets a custom logger for the tracker.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New constructs a tracker bound to a gateway and a session.
func New(gateway Gateway, session Session, opts ...Option) *Tracker {
	t := &Tracker{
		gateway:       gateway,
		session:       session,
		model:         progress.NewModel(progress.DefaultSnapshot()),
		tickInterval:  DefaultTickInterval,
		idleThreshold: activity.DefaultThreshold,
		pointsPerSec:  DefaultPointsPerSecond,
		flushEvery:    DefaultFlushEvery,
		clock:         time.Now,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.monitor = activity.NewMonitor(activity.WithThreshold(t.idleThreshold))
	if t.logger == nil {
		t.logger = logger.Get().Named("tracker")
	}
	return t
}

// Start begins the tick loop. The loop runs for the process lifetime and
// simply does nothing while no session is active.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.run(ctx)
}

// run drives one Tick per interval. A single cadence source means ticks
// can never overlap.
func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.Tick(t.clock())
		}
	}
}

// Stop ends the tick loop and fires the unload-time beacon flush.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.started = false
	snap := t.model.Snapshot()
	active := t.active
	t.mu.Unlock()

	select {
	case <-t.stopCh:
	default:
		close(t.stopCh)
	}
	<-t.done

	if active {
		t.gateway.Beacon(snap)
	}
	t.gateway.Close()
}

// Tick advances the session by one second. Exported so tests can drive
// the loop deterministically; the run loop is its only other caller.
func (t *Tracker) Tick(now time.Time) {
	t.mu.Lock()

	if !t.active {
		t.mu.Unlock()
		return
	}

	status := t.monitor.Check(now)
	var flushSnap *progress.Snapshot
	var fireIdle bool

	switch {
	case status.Confirmed:
		// The idle threshold was freshly crossed this tick: record the
		// episode once, flush immediately, and count the tick as
		// distracted.
		t.model.RecordDistractionEpisode()
		t.model.AccrueDistractedSecond()
		metrics.RecordIdleEpisode()
		metrics.RecordDistractedTick()
		snap := t.model.Snapshot()
		flushSnap = &snap
		fireIdle = true
	case status.Distracted():
		t.model.AccrueDistractedSecond()
		metrics.RecordDistractedTick()
	default:
		// Active, or idle-pending but not yet confirmed.
		t.model.AccrueFocusSecond(t.pointsPerSec)
		metrics.RecordFocusedTick()
	}

	if flushSnap == nil {
		snap := t.model.Snapshot()
		if snap.TotalSeconds%t.flushEvery == 0 {
			flushSnap = &snap
		}
	}
	t.mu.Unlock()

	if fireIdle && t.onIdle != nil {
		t.onIdle()
	}
	if flushSnap != nil {
		t.gateway.Submit(*flushSnap)
	}
}

// Signal records a qualifying activity signal, dismissing any idle
// prompt and closing an open episode.
func (t *Tracker) Signal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monitor.Signal(t.clock())
}

// Hidden records loss of visibility.
func (t *Tracker) Hidden() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monitor.Hidden(t.clock())
}

// Shown records visibility returning.
func (t *Tracker) Shown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monitor.Shown(t.clock())
}

// Register creates an account. Authentication errors surface to the
// caller; progress state is untouched either way.
func (t *Tracker) Register(ctx context.Context, username, password string) error {
	return t.session.Register(ctx, username, password)
}

// Login authenticates and hydrates the model wholesale from the
// server-held snapshot.
func (t *Tracker) Login(ctx context.Context, username, password string) error {
	snap, err := t.session.Login(ctx, username, password)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.model.Replace(snap)
	t.monitor.Signal(t.clock())
	t.username = username
	t.active = true
	t.logger.Info(ctx, "session started", logger.String("username", username))
	return nil
}

// Bootstrap attempts to resume an existing session on startup. No valid
// session means staying logged out; an unreachable server with a held
// token falls back to the local-tier snapshot so the tracker keeps
// working offline until the next successful flush.
func (t *Tracker) Bootstrap(ctx context.Context) bool {
	username, snap, err := t.session.Resume(ctx)
	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			if cached, ok := t.gateway.LoadFallback(); ok {
				t.mu.Lock()
				defer t.mu.Unlock()
				t.model.Replace(cached)
				t.monitor.Signal(t.clock())
				t.active = true
				t.logger.Warn(ctx, "server unreachable; resuming from local cache")
				return true
			}
		}
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.model.Replace(snap)
	t.monitor.Signal(t.clock())
	t.username = username
	t.active = true
	t.logger.Info(ctx, "session resumed", logger.String("username", username))
	return true
}

// Logout attempts a best-effort flush, ends the remote session, and
// clears all local state. Neither the flush nor the remote call failing
// blocks the teardown.
func (t *Tracker) Logout(ctx context.Context) {
	t.mu.Lock()
	snap := t.model.Snapshot()
	active := t.active
	t.mu.Unlock()

	if active {
		if err := t.gateway.FlushNow(ctx, snap); err != nil {
			t.logger.Warn(ctx, "logout flush failed", logger.Error(err))
		}
	}
	if err := t.session.Logout(ctx); err != nil {
		t.logger.Warn(ctx, "remote logout failed", logger.Error(err))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.model.Reset()
	t.monitor.Signal(t.clock())
	t.username = ""
	t.active = false
	t.gateway.ClearLocal()
	t.logger.Info(ctx, "session cleared")
}

// Purchase buys a catalog item. Precondition failures are silent no-ops
// per the economy rules; a successful purchase triggers a flush.
func (t *Tracker) Purchase(item progress.Item) bool {
	t.mu.Lock()
	ok := t.model.Purchase(item)
	var snap progress.Snapshot
	if ok {
		snap = t.model.Snapshot()
	}
	t.mu.Unlock()

	if ok {
		metrics.RecordPurchase()
		t.gateway.Submit(snap)
	}
	return ok
}

// Equip places an owned item into its slot; unowned items are a silent
// no-op. A successful equip triggers a flush.
func (t *Tracker) Equip(item progress.Item) bool {
	t.mu.Lock()
	ok := t.model.Equip(item)
	var snap progress.Snapshot
	if ok {
		snap = t.model.Snapshot()
	}
	t.mu.Unlock()

	if ok {
		metrics.RecordEquip()
		t.gateway.Submit(snap)
	}
	return ok
}

// Snapshot returns a copy of the current progress state.
func (t *Tracker) Snapshot() progress.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model.Snapshot()
}

// Username returns the current identity and whether a session is active.
func (t *Tracker) Username() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.username, t.active
}
