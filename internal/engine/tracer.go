package engine

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// TraceBack resolves the set of event ids the given event causally depends
// on: for each recorded source reference it returns the event at that exact
// index in the source's timeline.
//
// Source references are bound to a timeline index by the instrumentation
// layer at the moment the value was read. They are never re-resolved to the
// source's current latest event here; doing so points dependency edges at
// the wrong version whenever identifiers mutated in the same logical step
// depend on each other's pre-step values (the swap case).
//
// The result is sorted and de-duplicated. An event with no sources yields an
// empty, non-nil slice.
func (l *Log) TraceBack(eventID string) ([]string, error) {
	pos, ok := l.byID[eventID]
	if !ok {
		return nil, fmt.Errorf("trace back %q: %w", eventID, types.ErrEventNotFound)
	}
	e := l.events[pos.target][pos.index]

	seen := make(map[string]bool, len(e.Sources))
	ids := make([]string, 0, len(e.Sources))
	for _, src := range e.Sources {
		timeline := l.events[src.Name]
		if src.Index < 0 || src.Index >= len(timeline) {
			return nil, fmt.Errorf("trace back %q: source %s[%d]: %w",
				eventID, src.Name, src.Index, types.ErrSourceOutOfRange)
		}
		id := timeline[src.Index].EventID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Event returns the event with the given id.
func (l *Log) Event(eventID string) (types.Event, error) {
	pos, ok := l.byID[eventID]
	if !ok {
		return types.Event{}, fmt.Errorf("event %q: %w", eventID, types.ErrEventNotFound)
	}
	return l.events[pos.target][pos.index], nil
}
