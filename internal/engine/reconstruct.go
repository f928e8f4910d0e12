package engine

import (
	"fmt"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// ValueAt reconstructs name's value as of the given snapshot: the
// point-in-time counterpart of LatestValue, parameterized by any historical
// snapshot rather than only the latest one.
//
// The second return reports existence: false (with no error) when name had
// not been observed at that snapshot or when its pointed-at event is a
// Deletion tombstone. Errors are reserved for invariant violations, such as
// a snapshot that does not belong to this log.
func (l *Log) ValueAt(snap *types.Snapshot, name string) (any, bool, error) {
	idx := snap.Pointer(name)
	if idx == types.InitialPointer {
		return nil, false, nil
	}

	timeline := l.events[name]
	if idx >= len(timeline) {
		return nil, false, fmt.Errorf("value of %q at pointer %d: %w", name, idx, types.ErrTimelineCorrupt)
	}
	if timeline[idx].Kind == types.KindDeletion {
		return nil, false, nil
	}

	value, err := l.foldTo(name, idx)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
