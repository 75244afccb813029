package tracker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/focusforge/internal/adapters/remote"
	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/internal/tracker"
	"github.com/okian/focusforge/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeGateway records every snapshot the tracker hands it.
type fakeGateway struct {
	mu        sync.Mutex
	submitted []progress.Snapshot
	flushed   []progress.Snapshot
	beacons   []progress.Snapshot
	fallback  *progress.Snapshot
	flushErr  error
	cleared   bool
	closed    bool
}

func (g *fakeGateway) LoadFallback() (progress.Snapshot, bool) {
	if g.fallback == nil {
		return progress.DefaultSnapshot(), false
	}
	return g.fallback.Clone(), true
}

func (g *fakeGateway) Submit(snap progress.Snapshot) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitted = append(g.submitted, snap)
	return true
}

func (g *fakeGateway) FlushNow(ctx context.Context, snap progress.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flushed = append(g.flushed, snap)
	return g.flushErr
}

func (g *fakeGateway) Beacon(snap progress.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.beacons = append(g.beacons, snap)
}

func (g *fakeGateway) ClearLocal() { g.cleared = true }
func (g *fakeGateway) Close()      { g.closed = true }

func (g *fakeGateway) submitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.submitted)
}

// fakeSession serves canned snapshots and errors.
type fakeSession struct {
	loginSnap  progress.Snapshot
	loginErr   error
	resumeUser string
	resumeSnap progress.Snapshot
	resumeErr  error
	logoutErr  error
	logouts    int
}

func (s *fakeSession) Register(ctx context.Context, username, password string) error {
	return nil
}

func (s *fakeSession) Login(ctx context.Context, username, password string) (progress.Snapshot, error) {
	return s.loginSnap.Clone(), s.loginErr
}

func (s *fakeSession) Resume(ctx context.Context) (string, progress.Snapshot, error) {
	return s.resumeUser, s.resumeSnap.Clone(), s.resumeErr
}

func (s *fakeSession) Logout(ctx context.Context) error {
	s.logouts++
	return s.logoutErr
}

// testClock hands out one second per tick.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func newTracker(g *fakeGateway, s *fakeSession, clock *testClock) *tracker.Tracker {
	return tracker.New(g, s, tracker.WithClock(clock.Now))
}

func TestTickAccounting(t *testing.T) {
	Convey("Given a logged-in tracker", t, func() {
		g := &fakeGateway{}
		s := &fakeSession{loginSnap: progress.DefaultSnapshot()}
		clock := newTestClock()
		tr := newTracker(g, s, clock)
		So(tr.Login(context.Background(), "ada", "hunter2-long"), ShouldBeNil)

		Convey("When ticking 10 times while active", func() {
			for i := 0; i < 10; i++ {
				tr.Tick(clock.Advance(time.Second))
			}

			Convey("Then the counters match the focused scenario", func() {
				snap := tr.Snapshot()
				So(snap.TotalSeconds, ShouldEqual, 10)
				So(snap.FocusSeconds, ShouldEqual, 10)
				So(snap.Points, ShouldEqual, 5.0)
			})

			Convey("And the 10th tick triggered a periodic flush", func() {
				So(g.submitCount(), ShouldEqual, 1)
				So(g.submitted[0].TotalSeconds, ShouldEqual, 10)
			})
		})

		Convey("When no session is active", func() {
			tr.Logout(context.Background())
			before := tr.Snapshot()
			for i := 0; i < 5; i++ {
				tr.Tick(clock.Advance(time.Second))
			}

			Convey("Then no counters advance", func() {
				So(tr.Snapshot().Equal(before), ShouldBeTrue)
			})
		})

		Convey("Then the focus invariant holds after every tick", func() {
			tr.Hidden()
			for i := 0; i < 130; i++ {
				tr.Tick(clock.Advance(time.Second))
				snap := tr.Snapshot()
				So(snap.FocusSeconds, ShouldBeLessThanOrEqualTo, snap.TotalSeconds)
			}
		})
	})
}

func TestIdleEpisodeAccounting(t *testing.T) {
	Convey("Given a logged-in tracker whose tab goes hidden", t, func() {
		g := &fakeGateway{}
		s := &fakeSession{loginSnap: progress.DefaultSnapshot()}
		clock := newTestClock()

		idlePrompts := 0
		tr := tracker.New(g, s,
			tracker.WithClock(clock.Now),
			tracker.WithOnIdle(func() { idlePrompts++ }),
		)
		So(tr.Login(context.Background(), "ada", "hunter2-long"), ShouldBeNil)
		tr.Hidden()

		Convey("When the tick loop runs 65 times", func() {
			var confirmedAt int64
			for i := 1; i <= 65; i++ {
				tr.Tick(clock.Advance(time.Second))
				if confirmedAt == 0 && tr.Snapshot().DistractionCount == 1 {
					confirmedAt = int64(i)
				}
			}
			snap := tr.Snapshot()

			Convey("Then the episode confirms once at the threshold", func() {
				So(confirmedAt, ShouldEqual, 60)
				So(snap.DistractionCount, ShouldEqual, 1)
				So(idlePrompts, ShouldEqual, 1)
			})

			Convey("And pending ticks counted as focus, confirmed ticks did not", func() {
				So(snap.TotalSeconds, ShouldEqual, 65)
				So(snap.FocusSeconds, ShouldEqual, 59)
				So(snap.Points, ShouldEqual, 59*0.5)
			})

			Convey("And the confirming tick flushed immediately", func() {
				So(g.submitCount(), ShouldBeGreaterThanOrEqualTo, 1)
			})

			Convey("And a fresh idle period confirms again after activity", func() {
				tr.Signal()
				tr.Hidden()
				for i := 0; i < 61; i++ {
					tr.Tick(clock.Advance(time.Second))
				}
				So(tr.Snapshot().DistractionCount, ShouldEqual, 2)
				So(idlePrompts, ShouldEqual, 2)
			})
		})
	})
}

func TestPurchaseAndEquipFlush(t *testing.T) {
	crown, _ := progress.Lookup("hat-crown")
	beanie, _ := progress.Lookup("hat-beanie")

	Convey("Given a logged-in tracker with 45 points", t, func() {
		snap := progress.DefaultSnapshot()
		snap.Points = 45
		g := &fakeGateway{}
		s := &fakeSession{loginSnap: snap}
		clock := newTestClock()
		tr := newTracker(g, s, clock)
		So(tr.Login(context.Background(), "ada", "hunter2-long"), ShouldBeNil)

		Convey("When buying the crown", func() {
			So(tr.Purchase(crown), ShouldBeTrue)

			Convey("Then the snapshot and flush reflect the purchase", func() {
				out := tr.Snapshot()
				So(out.Points, ShouldEqual, 5.0)
				So(out.Equipped.Hat, ShouldEqual, "hat-crown")
				So(g.submitCount(), ShouldEqual, 1)
			})
		})

		Convey("When the purchase precondition fails", func() {
			So(tr.Purchase(beanie), ShouldBeTrue) // 45 - 25 = 20 left
			So(tr.Purchase(crown), ShouldBeFalse) // cannot afford 40

			Convey("Then the failed purchase flushed nothing", func() {
				So(g.submitCount(), ShouldEqual, 1)
			})
		})

		Convey("When equipping an unowned item", func() {
			So(tr.Equip(crown), ShouldBeFalse)
			So(g.submitCount(), ShouldEqual, 0)
		})
	})
}

func TestSessionLifecycle(t *testing.T) {
	Convey("Given a tracker and a server-held snapshot", t, func() {
		saved := progress.Snapshot{
			TotalSeconds: 300,
			FocusSeconds: 250,
			Points:       42.5,
			Owned:        []string{"acc-star"},
			Equipped:     progress.Equipped{Accessory: "acc-star"},
		}
		g := &fakeGateway{}
		s := &fakeSession{loginSnap: saved, resumeUser: "ada", resumeSnap: saved}
		clock := newTestClock()
		tr := newTracker(g, s, clock)

		Convey("When logging in", func() {
			So(tr.Login(context.Background(), "ada", "hunter2-long"), ShouldBeNil)

			Convey("Then the model is replaced wholesale", func() {
				So(tr.Snapshot().Equal(progress.Sanitize(saved)), ShouldBeTrue)
				user, active := tr.Username()
				So(user, ShouldEqual, "ada")
				So(active, ShouldBeTrue)
			})

			Convey("And logout flushes then clears everything", func() {
				tr.Logout(context.Background())
				So(len(g.flushed), ShouldEqual, 1)
				So(g.flushed[0].TotalSeconds, ShouldEqual, 300)
				So(s.logouts, ShouldEqual, 1)
				So(g.cleared, ShouldBeTrue)
				So(tr.Snapshot().Equal(progress.DefaultSnapshot()), ShouldBeTrue)
				_, active := tr.Username()
				So(active, ShouldBeFalse)
			})

			Convey("And a failing logout flush still clears state", func() {
				g.flushErr = errors.New("server on fire")
				tr.Logout(context.Background())
				So(tr.Snapshot().Equal(progress.DefaultSnapshot()), ShouldBeTrue)
				So(s.logouts, ShouldEqual, 1)
			})
		})

		Convey("When login fails", func() {
			s.loginErr = remote.ErrInvalidCredentials
			err := tr.Login(context.Background(), "ada", "wrong")

			Convey("Then the error surfaces and state is untouched", func() {
				So(errors.Is(err, remote.ErrInvalidCredentials), ShouldBeTrue)
				So(tr.Snapshot().Equal(progress.DefaultSnapshot()), ShouldBeTrue)
				_, active := tr.Username()
				So(active, ShouldBeFalse)
			})
		})

		Convey("When bootstrapping with a valid session", func() {
			So(tr.Bootstrap(context.Background()), ShouldBeTrue)
			user, _ := tr.Username()
			So(user, ShouldEqual, "ada")
		})

		Convey("When bootstrapping with no session", func() {
			s.resumeErr = remote.ErrNoSession

			Convey("Then the tracker stays logged out", func() {
				So(tr.Bootstrap(context.Background()), ShouldBeFalse)
				_, active := tr.Username()
				So(active, ShouldBeFalse)
			})
		})

		Convey("When the server is unreachable but a cache exists", func() {
			s.resumeErr = remote.ErrUnavailable
			cached := progress.Snapshot{TotalSeconds: 50, FocusSeconds: 40, Owned: []string{}}
			g.fallback = &cached

			Convey("Then the tracker resumes offline from the cache", func() {
				So(tr.Bootstrap(context.Background()), ShouldBeTrue)
				So(tr.Snapshot().TotalSeconds, ShouldEqual, 50)
			})
		})
	})
}
