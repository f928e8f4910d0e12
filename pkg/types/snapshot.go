package types

// InitialPointer is the sentinel pointer value for an identifier that has no
// recorded event yet.
const InitialPointer = -1

// rebaseDepth bounds the length of the overlay chain before a snapshot
// materializes a full pointer map. Keeps Pointer lookups O(1) amortized.
const rebaseDepth = 32

// Snapshot is one consistent point-in-time state of every tracked
// identifier: a mapping from identifier to the index of its latest event at
// that moment, or InitialPointer if it had none.
//
// Snapshots are immutable once issued. Advance produces a new snapshot that
// shares structure with its predecessor: each snapshot holds only the single
// (target, index) pair that changed, on top of its parent, and the chain is
// rebased into a full map every rebaseDepth links.
type Snapshot struct {
	// Location optionally tags the source position whose event produced
	// this snapshot, for display. Nil is legal.
	Location *Location

	parent *Snapshot
	target string
	index  int
	full   map[string]int // non-nil on the seed and on rebased snapshots
	depth  int
}

// NewSnapshot returns the seed snapshot, where every identifier's pointer is
// InitialPointer.
func NewSnapshot() *Snapshot {
	return &Snapshot{full: map[string]int{}}
}

// Pointer returns the event-log index recorded for name, or InitialPointer
// if name had not been observed at this snapshot.
func (s *Snapshot) Pointer(name string) int {
	for n := s; n != nil; n = n.parent {
		if n.full != nil {
			if idx, ok := n.full[name]; ok {
				return idx
			}
			return InitialPointer
		}
		if n.target == name {
			return n.index
		}
	}
	return InitialPointer
}

// Advance returns a new snapshot identical to s except that target's pointer
// is incremented by exactly one. s and all earlier snapshots remain valid
// and unchanged. loc optionally tags the new snapshot's source location.
func (s *Snapshot) Advance(target string, loc *Location) *Snapshot {
	next := &Snapshot{
		Location: loc,
		parent:   s,
		target:   target,
		index:    s.Pointer(target) + 1,
		depth:    s.depth + 1,
	}
	if next.depth >= rebaseDepth {
		next.full = next.Pointers()
		next.parent = nil
		next.depth = 0
	}
	return next
}

// Pointers materializes the full identifier-to-index mapping. The returned
// map is a copy owned by the caller.
func (s *Snapshot) Pointers() map[string]int {
	// Walk up to the nearest full map, then replay overlays newest-first,
	// keeping only the first (most recent) entry seen per identifier.
	out := map[string]int{}
	for n := s; n != nil; n = n.parent {
		if n.full != nil {
			for name, idx := range n.full {
				if _, ok := out[name]; !ok {
					out[name] = idx
				}
			}
			break
		}
		if _, ok := out[n.target]; !ok {
			out[n.target] = n.index
		}
	}
	return out
}
