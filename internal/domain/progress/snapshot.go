// Package progress holds the pure progress model: counters, points,
// inventory and equip slots. No I/O happens here.
package progress

import "encoding/json"

// Slot identifies an equip position on the avatar.
type Slot string

// Equip slots. Each holds at most one owned item.
const (
	SlotHat       Slot = "hat"
	SlotOutfit    Slot = "outfit"
	SlotAccessory Slot = "accessory"
)

// Slots lists all equip slots in display order.
func Slots() []Slot {
	return []Slot{SlotHat, SlotOutfit, SlotAccessory}
}

// Equipped maps each slot to an owned item id, or "" for nothing.
type Equipped struct {
	Hat       string `json:"hat"`
	Outfit    string `json:"outfit"`
	Accessory string `json:"accessory"`
}

// Get returns the item id equipped in slot.
func (e Equipped) Get(slot Slot) string {
	switch slot {
	case SlotHat:
		return e.Hat
	case SlotOutfit:
		return e.Outfit
	case SlotAccessory:
		return e.Accessory
	}
	return ""
}

// Set places an item id into slot.
func (e *Equipped) Set(slot Slot, id string) {
	switch slot {
	case SlotHat:
		e.Hat = id
	case SlotOutfit:
		e.Outfit = id
	case SlotAccessory:
		e.Accessory = id
	}
}

// Snapshot is the complete persisted state of one user's progress.
// It is the unit of persistence: every flush writes a full snapshot,
// never a delta.
type Snapshot struct {
	TotalSeconds     int64    `json:"totalSeconds"`
	FocusSeconds     int64    `json:"focusSeconds"`
	DistractionCount int64    `json:"distractionCount"`
	Points           float64  `json:"points"`
	Owned            []string `json:"owned"`
	Equipped         Equipped `json:"equipped"`
}

// DefaultSnapshot returns the all-zero snapshot a fresh account starts with.
func DefaultSnapshot() Snapshot {
	return Snapshot{Owned: []string{}}
}

// Clone returns a deep copy. Owned is the only reference field.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Owned = make([]string, len(s.Owned))
	copy(out.Owned, s.Owned)
	return out
}

// Owns reports whether the snapshot contains id in its inventory.
func (s Snapshot) Owns(id string) bool {
	for _, owned := range s.Owned {
		if owned == id {
			return true
		}
	}
	return false
}

// Equal compares two snapshots field by field.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.TotalSeconds != other.TotalSeconds ||
		s.FocusSeconds != other.FocusSeconds ||
		s.DistractionCount != other.DistractionCount ||
		s.Points != other.Points ||
		s.Equipped != other.Equipped ||
		len(s.Owned) != len(other.Owned) {
		return false
	}
	for i, id := range s.Owned {
		if other.Owned[i] != id {
			return false
		}
	}
	return true
}

// Encode serializes the snapshot to its JSON wire shape.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses raw JSON into a snapshot, filling defaults for
// missing fields and repairing any invariant violations in the payload.
// Only syntactically malformed JSON is an error; callers treat that as
// "no snapshot" and fall back to DefaultSnapshot.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	s := DefaultSnapshot()
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSnapshot(), err
	}
	return Sanitize(s), nil
}

// Sanitize repairs a snapshot loaded from an untrusted tier: negative
// counters reset, focus time capped at total time, duplicate inventory
// entries dropped, and equipped ids not backed by the inventory cleared.
func Sanitize(s Snapshot) Snapshot {
	if s.TotalSeconds < 0 {
		s.TotalSeconds = 0
	}
	if s.FocusSeconds < 0 {
		s.FocusSeconds = 0
	}
	if s.FocusSeconds > s.TotalSeconds {
		s.FocusSeconds = s.TotalSeconds
	}
	if s.DistractionCount < 0 {
		s.DistractionCount = 0
	}
	if s.Points < 0 {
		s.Points = 0
	}

	seen := make(map[string]struct{}, len(s.Owned))
	owned := make([]string, 0, len(s.Owned))
	for _, id := range s.Owned {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		owned = append(owned, id)
	}
	s.Owned = owned

	for _, slot := range Slots() {
		if id := s.Equipped.Get(slot); id != "" {
			if _, ok := seen[id]; !ok {
				s.Equipped.Set(slot, "")
			}
		}
	}
	return s
}
