package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// Change kinds reported by the instrumentation collaborator.
const (
	ChangeAssignment = "assignment"
	ChangeDeletion   = "deletion"
)

// RawChange is one observed change notification, as delivered by the
// instrumentation layer per program step. NewValue must already be an
// isolated deep copy of the live value; the engine stores it as given.
// Sources must already be bound to timeline indexes captured when the
// source values were read.
type RawChange struct {
	Target   string            `json:"target"`
	Kind     string            `json:"kind"` // ChangeAssignment or ChangeDeletion
	NewValue any               `json:"value,omitempty"`
	Sources  []types.SourceRef `json:"sources,omitempty"`
	Location types.Location    `json:"location"`
}

// FrameConfig configures a traced execution context.
type FrameConfig struct {
	// File is the source file of the traced context, used as the default
	// location tag.
	File string

	// Codec computes and folds mutation deltas. Required.
	Codec types.Codec

	// Exclude lists identifier names the frame silently ignores (builtins,
	// tracer artifacts). Supplied by the caller; the engine reads no
	// ambient environment state.
	Exclude []string
}

// Frame stores one traced execution context's state events and snapshots.
//
// It answers two questions: what was an identifier's value at a given point
// of execution, and which prior event versions a change depended on. The
// frame is single-threaded and step-synchronous; every successful append
// produces exactly one new snapshot.
type Frame struct {
	id       int
	parent   int
	children []int

	file    string
	codec   types.Codec
	exclude map[string]bool

	log       *Log
	history   []types.Event
	snapshots []*types.Snapshot
	latest    *types.Snapshot
}

// NoFrame is the id a frame reports when it has no parent or is not owned
// by an arena.
const NoFrame = -1

// NewFrame creates a standalone frame. Frames participating in a
// parent/child tree are created through an Arena instead.
func NewFrame(cfg FrameConfig) (*Frame, error) {
	if cfg.Codec == nil {
		return nil, fmt.Errorf("new frame: codec must not be nil")
	}
	exclude := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		exclude[name] = true
	}
	seed := types.NewSnapshot()
	return &Frame{
		id:        NoFrame,
		parent:    NoFrame,
		file:      cfg.File,
		codec:     cfg.Codec,
		exclude:   exclude,
		log:       NewLog(cfg.Codec),
		snapshots: []*types.Snapshot{seed},
		latest:    seed,
	}, nil
}

// RestoreFrame rebuilds an archived frame: it reassigns the stored ids and
// replays the archived events through the normal append path, so all
// invariants are re-checked and the snapshot index is rebuilt.
func RestoreFrame(id, parent int, cfg FrameConfig, events []types.Event) (*Frame, error) {
	f, err := NewFrame(cfg)
	if err != nil {
		return nil, err
	}
	f.id = id
	f.parent = parent
	if err := f.Replay(events); err != nil {
		return nil, err
	}
	return f, nil
}

// ID returns the frame's arena id, or NoFrame for standalone frames.
func (f *Frame) ID() int { return f.id }

// Parent returns the id of the frame that generated this one, or NoFrame.
func (f *Frame) Parent() int { return f.parent }

// File returns the source file of the traced context.
func (f *Frame) File() string { return f.file }

// LatestSnapshot returns the most recent snapshot.
func (f *Frame) LatestSnapshot() *types.Snapshot { return f.latest }

// Snapshots returns the full snapshot index, one entry per appended event
// plus the all-sentinel seed at position zero.
func (f *Frame) Snapshots() []*types.Snapshot {
	out := make([]*types.Snapshot, len(f.snapshots))
	copy(out, f.snapshots)
	return out
}

// SnapshotAt returns the snapshot after the first n appended events;
// SnapshotAt(0) is the seed.
func (f *Frame) SnapshotAt(n int) (*types.Snapshot, error) {
	if n < 0 || n >= len(f.snapshots) {
		return nil, fmt.Errorf("snapshot %d of %d: %w", n, len(f.snapshots), types.ErrEventNotFound)
	}
	return f.snapshots[n], nil
}

// History returns every appended event in global order.
func (f *Frame) History() []types.Event {
	out := make([]types.Event, len(f.history))
	copy(out, f.history)
	return out
}

// RecordInitial logs an InitialValue event for target: a value that existed
// before tracing began, observed on first read. It is a no-op when the
// target is excluded or already has any recorded event. value must be an
// isolated deep copy.
func (f *Frame) RecordInitial(target string, value any, loc types.Location) error {
	if f.exclude[target] {
		return nil
	}
	if f.log.HasEvents(target) {
		return nil
	}
	_, err := f.append(types.Event{
		Kind:     types.KindInitialValue,
		Target:   target,
		Location: loc,
		Value:    value,
	})
	return err
}

// RecordChange classifies and logs one raw change notification.
//
// A deletion kind appends a Deletion tombstone. An assignment appends a
// Mutation carrying the delta from the target's current value when the
// target exists, or a Creation carrying the full value when it does not
// (including after a deletion, which restarts the identifier's timeline).
//
// Returns the recorded event, or nil without error when the target is
// excluded.
func (f *Frame) RecordChange(ch RawChange) (*types.Event, error) {
	if f.exclude[ch.Target] {
		return nil, nil
	}

	e := types.Event{
		Target:   ch.Target,
		Location: ch.Location,
		Sources:  ch.Sources,
	}

	switch ch.Kind {
	case ChangeDeletion:
		e.Kind = types.KindDeletion
	case ChangeAssignment:
		if f.log.Contains(ch.Target) {
			before, err := f.log.LatestValue(ch.Target)
			if err != nil {
				return nil, err
			}
			delta, err := f.codec.Diff(before, ch.NewValue)
			if err != nil {
				return nil, fmt.Errorf("record change for %q: %w", ch.Target, err)
			}
			e.Kind = types.KindMutation
			e.Delta = delta
		} else {
			e.Kind = types.KindCreation
			e.Value = ch.NewValue
		}
	default:
		return nil, fmt.Errorf("record change for %q: unknown change kind %q", ch.Target, ch.Kind)
	}

	return f.append(e)
}

// Replay appends already-recorded events verbatim, preserving their ids,
// kinds, and payloads. Used when rebuilding a frame from an archive. All
// append invariants still apply; replay stops at the first violation.
func (f *Frame) Replay(events []types.Event) error {
	for i, e := range events {
		if _, err := f.append(e); err != nil {
			return fmt.Errorf("replay event %d: %w", i, err)
		}
	}
	return nil
}

// append stores the event and advances the snapshot index. The log append
// is validated before any state changes, so a failure leaves the frame
// exactly as it was.
func (f *Frame) append(e types.Event) (*types.Event, error) {
	if e.EventID == "" {
		e.EventID = newEventID()
	}
	if err := f.log.Append(e); err != nil {
		return nil, err
	}

	loc := e.Location
	next := f.latest.Advance(e.Target, &loc)
	f.latest = next
	f.snapshots = append(f.snapshots, next)
	f.history = append(f.history, e)
	return &e, nil
}

// Contains reports whether name currently exists in the frame (has events
// and is not tombstoned).
func (f *Frame) Contains(name string) bool { return f.log.Contains(name) }

// LatestValue folds name's timeline to its current value.
func (f *Frame) LatestValue(name string) (any, error) { return f.log.LatestValue(name) }

// ValueAt reconstructs name's value as of snap.
func (f *Frame) ValueAt(snap *types.Snapshot, name string) (any, bool, error) {
	return f.log.ValueAt(snap, name)
}

// Events returns name's timeline in chronological order.
func (f *Frame) Events(name string) []types.Event { return f.log.Events(name) }

// Targets returns every identifier with at least one recorded event.
func (f *Frame) Targets() []string { return f.log.Targets() }

// AccumulatedEvents returns the derived view where mutations carry their
// reconstructed values.
func (f *Frame) AccumulatedEvents() (map[string][]types.Event, error) {
	return f.log.AccumulatedEvents()
}

// TraceBack resolves the event ids the given event causally depends on.
func (f *Frame) TraceBack(eventID string) ([]string, error) { return f.log.TraceBack(eventID) }

// Event returns the event with the given id.
func (f *Frame) Event(eventID string) (types.Event, error) { return f.log.Event(eventID) }

// newEventID generates a UUID v7 event id.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
