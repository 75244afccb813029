package progress

import (
	"fmt"
	"math"
)

// Model owns a live snapshot and enforces the economy rules on it.
// All mutation goes through its methods; the scheduler and the HTTP
// handlers both run on a single logical thread of control, so the model
// itself carries no lock.
type Model struct {
	snap Snapshot
}

// NewModel returns a model hydrated with the given snapshot. The snapshot
// is sanitized on the way in so a bad payload can never seed an invalid
// in-memory state.
func NewModel(snap Snapshot) *Model {
	return &Model{snap: Sanitize(snap.Clone())}
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() Snapshot {
	return m.snap.Clone()
}

// Replace hydrates the model wholesale from a freshly loaded snapshot.
func (m *Model) Replace(snap Snapshot) {
	m.snap = Sanitize(snap.Clone())
}

// Reset clears the model back to the all-zero snapshot. Used on logout so
// no progress carries across identities.
func (m *Model) Reset() {
	m.snap = DefaultSnapshot()
}

// Owns reports whether the item id has ever been purchased.
func (m *Model) Owns(id string) bool {
	return m.snap.Owns(id)
}

// EquippedIn returns the item id currently equipped in slot, or "".
func (m *Model) EquippedIn(slot Slot) string {
	return m.snap.Equipped.Get(slot)
}

// Points returns the spendable balance at full precision.
func (m *Model) Points() float64 {
	return m.snap.Points
}

// Purchase buys item if it is not already owned and the balance covers its
// cost, then equips it into its slot. Precondition failures are silent
// no-ops; callers wanting user feedback must pre-check Owns and Points.
// Returns true when state changed.
func (m *Model) Purchase(item Item) bool {
	if m.snap.Owns(item.ID) || m.snap.Points < float64(item.Cost) {
		return false
	}
	m.snap.Points -= float64(item.Cost)
	m.snap.Owned = append(m.snap.Owned, item.ID)
	m.snap.Equipped.Set(item.Slot, item.ID)
	return true
}

// Equip places an already-owned item into its slot. Unowned items are a
// silent no-op. Returns true when state changed.
func (m *Model) Equip(item Item) bool {
	if !m.snap.Owns(item.ID) {
		return false
	}
	m.snap.Equipped.Set(item.Slot, item.ID)
	return true
}

// AccrueFocusSecond counts one focused second: total and focus time both
// advance and points accrue at rate. Fractional accrual is kept at full
// precision; truncation happens only at display time.
func (m *Model) AccrueFocusSecond(rate float64) {
	m.snap.TotalSeconds++
	m.snap.FocusSeconds++
	m.snap.Points += rate
}

// AccrueDistractedSecond counts one second of wall time with no focus
// credit and no points.
func (m *Model) AccrueDistractedSecond() {
	m.snap.TotalSeconds++
}

// RecordDistractionEpisode counts one completed idle episode that crossed
// the inactivity threshold.
func (m *Model) RecordDistractionEpisode() {
	m.snap.DistractionCount++
}

// DisplayPoints is the balance as shown to the user: truncated, never
// rounded, so the stored fraction is preserved.
func DisplayPoints(points float64) int64 {
	return int64(math.Floor(points))
}

// FormatSeconds renders a second count as HH:MM:SS.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
