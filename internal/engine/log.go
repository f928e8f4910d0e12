// Package engine implements the event-sourced state engine behind the
// time-travel variable debugger: per-identifier event logs, incremental
// snapshots, point-in-time value reconstruction, causal tracing, and the
// frame orchestration that ties them to an instrumented program.
package engine

import (
	"fmt"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// eventPos locates an event by timeline rather than slice identity, so
// events stay addressable by their stable id.
type eventPos struct {
	target string
	index  int
}

// Log is an append-only per-identifier event history. Appends are atomic:
// validation happens before any mutation, so a failed append leaves the log
// unchanged. Mutation deltas are folded through the codec on demand; full
// values are never stored past the seed event of a timeline.
type Log struct {
	codec  types.Codec
	events map[string][]types.Event
	byID   map[string]eventPos
}

// NewLog returns an empty log folding deltas through codec.
func NewLog(codec types.Codec) *Log {
	return &Log{
		codec:  codec,
		events: make(map[string][]types.Event),
		byID:   make(map[string]eventPos),
	}
}

// Append adds an event to its target's timeline.
//
// Invariants enforced, in order:
//   - the event must validate structurally;
//   - the event id must be non-empty and unused;
//   - InitialValue requires a target with no events at all, ever;
//   - Creation requires a non-existent target (no events, or tombstoned);
//   - Mutation and Deletion require an existing (non-tombstoned) target.
func (l *Log) Append(e types.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.EventID == "" {
		return fmt.Errorf("append %s(%s): event id must not be empty", e.Kind, e.Target)
	}
	if _, dup := l.byID[e.EventID]; dup {
		return fmt.Errorf("append %s(%s): duplicate event id %s", e.Kind, e.Target, e.EventID)
	}

	timeline := l.events[e.Target]
	switch e.Kind {
	case types.KindInitialValue:
		if len(timeline) > 0 {
			return fmt.Errorf("append initial value for %q: %w", e.Target, types.ErrInitialValueExists)
		}
	case types.KindCreation:
		if l.Contains(e.Target) {
			return fmt.Errorf("append creation for %q: %w", e.Target, types.ErrTargetExists)
		}
	case types.KindMutation, types.KindDeletion:
		if !l.Contains(e.Target) {
			return fmt.Errorf("append %s for %q: %w", e.Kind, e.Target, types.ErrTargetMissing)
		}
	}

	l.events[e.Target] = append(timeline, e)
	l.byID[e.EventID] = eventPos{target: e.Target, index: len(timeline)}
	return nil
}

// Contains reports whether name currently exists: it has at least one event
// and its most recent event is not a Deletion tombstone. This is the test
// that classifies a subsequent assignment as Creation versus Mutation.
func (l *Log) Contains(name string) bool {
	timeline := l.events[name]
	if len(timeline) == 0 {
		return false
	}
	return timeline[len(timeline)-1].Kind != types.KindDeletion
}

// HasEvents reports whether name has any recorded event, tombstoned or not.
func (l *Log) HasEvents(name string) bool {
	return len(l.events[name]) > 0
}

// Events returns a copy of name's timeline in chronological order.
func (l *Log) Events(name string) []types.Event {
	timeline := l.events[name]
	out := make([]types.Event, len(timeline))
	copy(out, timeline)
	return out
}

// Targets returns every identifier with at least one recorded event.
func (l *Log) Targets() []string {
	out := make([]string, 0, len(l.events))
	for name := range l.events {
		out = append(out, name)
	}
	return out
}

// LatestValue folds name's timeline to its current value.
//
// Returns ErrUnknownIdentifier if name has no events, and ErrTombstoneFold
// if its latest event is a Deletion: no code path should read a value
// through a tombstone.
func (l *Log) LatestValue(name string) (any, error) {
	timeline := l.events[name]
	if len(timeline) == 0 {
		return nil, fmt.Errorf("latest value of %q: %w", name, types.ErrUnknownIdentifier)
	}
	last := len(timeline) - 1
	if timeline[last].Kind == types.KindDeletion {
		return nil, fmt.Errorf("latest value of %q: %w", name, types.ErrTombstoneFold)
	}
	return l.foldTo(name, last)
}

// foldTo reconstructs name's value as of timeline index limit (inclusive).
//
// The fold seed is the most recent InitialValue or Creation at or before
// limit; every event after the seed up to limit must be a Mutation. A
// Deletion inside that range means the caller is folding across a tombstone,
// which is an invariant violation, as is a timeline with no seed at all.
func (l *Log) foldTo(name string, limit int) (any, error) {
	timeline := l.events[name]
	if limit < 0 || limit >= len(timeline) {
		return nil, fmt.Errorf("fold %q to %d: %w", name, limit, types.ErrTimelineCorrupt)
	}

	seed := -1
	for i := limit; i >= 0; i-- {
		if timeline[i].Seeds() {
			seed = i
			break
		}
	}
	if seed < 0 {
		return nil, fmt.Errorf("fold %q to %d: no seed event: %w", name, limit, types.ErrTimelineCorrupt)
	}

	value := timeline[seed].Value
	for i := seed + 1; i <= limit; i++ {
		e := timeline[i]
		if e.Kind == types.KindDeletion {
			return nil, fmt.Errorf("fold %q to %d: %w", name, limit, types.ErrTombstoneFold)
		}
		if e.Kind != types.KindMutation {
			return nil, fmt.Errorf("fold %q to %d: %s out of order: %w", name, limit, e.Kind, types.ErrTimelineCorrupt)
		}
		var err error
		value, err = l.codec.Apply(value, e.Delta)
		if err != nil {
			return nil, fmt.Errorf("fold %q to %d: %w", name, limit, err)
		}
	}
	return value, nil
}

// AccumulatedEvents returns a derived view of every timeline in which each
// Mutation additionally carries its fully reconstructed value, computed by
// folding the previous entry's value forward. The persisted delta-only
// events are never touched; calling this twice yields identical results.
func (l *Log) AccumulatedEvents() (map[string][]types.Event, error) {
	result := make(map[string][]types.Event, len(l.events))
	for name, timeline := range l.events {
		out := make([]types.Event, 0, len(timeline))
		for i, raw := range timeline {
			if raw.Kind != types.KindMutation {
				out = append(out, raw)
				continue
			}
			accumulated := raw
			value, err := l.codec.Apply(out[i-1].Value, raw.Delta)
			if err != nil {
				return nil, fmt.Errorf("accumulate %q: %w", name, err)
			}
			accumulated.Value = value
			out = append(out, accumulated)
		}
		result[name] = out
	}
	return result, nil
}
