// Package activity tracks presence of user input and page visibility and
// decides when an idle episode has opened. It is a pure state machine:
// the host input layer feeds Signal/Hidden/Shown transitions in, the tick
// scheduler polls Check once per tick, and no goroutine or timer of its
// own ever runs.
package activity

import "time"

// State is the monitor's position in the idle lifecycle.
type State int

const (
	// Active means qualifying input was seen since the last idle episode.
	Active State = iota
	// IdlePending means visibility was lost but the threshold has not
	// elapsed yet. The pending tick still counts as focused.
	IdlePending
	// IdleConfirmed means the idle threshold elapsed with no activity.
	IdleConfirmed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case IdlePending:
		return "idle-pending"
	case IdleConfirmed:
		return "idle-confirmed"
	}
	return "unknown"
}

// Status is the result of one poll.
type Status struct {
	State State
	// Confirmed is the one-time edge: true only on the poll that crossed
	// the idle threshold, never again within the same episode.
	Confirmed bool
}

// Distracted reports whether the polled tick should count as distracted.
func (s Status) Distracted() bool {
	return s.State == IdleConfirmed
}

// Monitor is the inactivity detector.
type Monitor struct {
	threshold time.Duration
	idleSince time.Time
	confirmed bool
}

// Option applies a configuration option to the Monitor.
type Option func(*Monitor)

// WithThreshold sets the idle duration after which an episode opens.
func WithThreshold(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.threshold = d
		}
	}
}

// DefaultThreshold is how long visibility must stay lost before an idle
// episode opens.
const DefaultThreshold = 60 * time.Second

// NewMonitor creates a monitor in the Active state.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Signal records a qualifying activity signal (pointer, key, touch,
// scroll, focus gain). Any pending or confirmed episode closes and the
// monitor returns to Active.
func (m *Monitor) Signal(now time.Time) {
	m.idleSince = time.Time{}
	m.confirmed = false
}

// Hidden records loss of visibility. The first detection starts the idle
// clock; repeated notifications while already idle keep the original
// timestamp so the threshold is measured from first detection.
func (m *Monitor) Hidden(now time.Time) {
	if m.idleSince.IsZero() {
		m.idleSince = now
	}
}

// Shown records visibility returning, which qualifies as activity.
func (m *Monitor) Shown(now time.Time) {
	m.Signal(now)
}

// Check polls the monitor against now. The poll that first observes the
// threshold elapsed performs the IdlePending to IdleConfirmed transition
// and reports it via Status.Confirmed exactly once per episode.
func (m *Monitor) Check(now time.Time) Status {
	if m.idleSince.IsZero() {
		return Status{State: Active}
	}
	if m.confirmed {
		return Status{State: IdleConfirmed}
	}
	if now.Sub(m.idleSince) >= m.threshold {
		m.confirmed = true
		return Status{State: IdleConfirmed, Confirmed: true}
	}
	return Status{State: IdlePending}
}

// State returns the current state without advancing the machine.
func (m *Monitor) State(now time.Time) State {
	switch {
	case m.idleSince.IsZero():
		return Active
	case m.confirmed || now.Sub(m.idleSince) >= m.threshold:
		return IdleConfirmed
	default:
		return IdlePending
	}
}
