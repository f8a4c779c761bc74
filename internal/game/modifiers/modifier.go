package modifiers

// Kind identifies what a modifier changes. Kinds come from ability data,
// so unknown kinds are carried and ticked like any other.
type Kind string

const (
	// KindSuppressReady keeps the instance exhausted through the ready sub-phase.
	KindSuppressReady Kind = "suppress_ready"
	// KindTrophicShift adds Magnitude to the instance's trophic level.
	KindTrophicShift Kind = "trophic_shift"
	// KindVictoryPoints adds Magnitude to the instance's scoring value.
	KindVictoryPoints Kind = "victory_points"
	// KindShield prevents the instance from being destroyed.
	KindShield Kind = "shield"
)

// Permanent marks a modifier that never expires on its own.
const Permanent = -1

// Modifier is a temporary change attached to a card instance.
type Modifier struct {
	Kind      Kind   `json:"kind"`
	Magnitude int    `json:"magnitude"`
	Duration  int    `json:"duration"`
	SourceID  string `json:"source_id,omitempty"`
}

// New builds a modifier. A duration of zero or less is permanent.
func New(kind Kind, magnitude, duration int, sourceID string) Modifier {
	if duration <= 0 {
		duration = Permanent
	}
	return Modifier{
		Kind:      kind,
		Magnitude: magnitude,
		Duration:  duration,
		SourceID:  sourceID,
	}
}

// IsPermanent reports whether the modifier ignores end-of-turn ticking.
func (m Modifier) IsPermanent() bool {
	return m.Duration == Permanent
}

// Set is the ordered modifier list of one instance.
type Set []Modifier

// Add applies m. A modifier of the same kind from the same source is
// merged: magnitudes add and the longer duration wins.
func (s Set) Add(m Modifier) Set {
	for i := range s {
		if s[i].Kind == m.Kind && s[i].SourceID == m.SourceID {
			s[i].Magnitude += m.Magnitude
			if s[i].IsPermanent() || m.IsPermanent() {
				s[i].Duration = Permanent
			} else if m.Duration > s[i].Duration {
				s[i].Duration = m.Duration
			}
			return s
		}
	}
	return append(s, m)
}

// Remove drops every modifier of kind and reports whether any was present.
func (s Set) Remove(kind Kind) (Set, bool) {
	out := s[:0]
	removed := false
	for _, m := range s {
		if m.Kind == kind {
			removed = true
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, removed
	}
	return out, removed
}

// RemoveFromSource drops modifiers created by sourceID.
func (s Set) RemoveFromSource(sourceID string) Set {
	out := s[:0]
	for _, m := range s {
		if m.SourceID != sourceID {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether a modifier of kind is active.
func (s Set) Has(kind Kind) bool {
	for _, m := range s {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// Total sums the magnitude of every modifier of kind.
func (s Set) Total(kind Kind) int {
	total := 0
	for _, m := range s {
		if m.Kind == kind {
			total += m.Magnitude
		}
	}
	return total
}

// Tick decrements every timed modifier and drops the ones reaching zero.
func (s Set) Tick() (kept Set, expired []Modifier) {
	for _, m := range s {
		if m.IsPermanent() {
			kept = append(kept, m)
			continue
		}
		m.Duration--
		if m.Duration <= 0 {
			expired = append(expired, m)
			continue
		}
		kept = append(kept, m)
	}
	return kept, expired
}

// Copy returns an independent copy.
func (s Set) Copy() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}
