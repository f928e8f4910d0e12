package types

import "errors"

// Event kinds. Every entry in an identifier's timeline is one of these.
const (
	KindInitialValue = "initial_value"
	KindCreation     = "creation"
	KindMutation     = "mutation"
	KindDeletion     = "deletion"
)

// validKinds is the set of recognized event kind values.
var validKinds = map[string]bool{
	KindInitialValue: true,
	KindCreation:     true,
	KindMutation:     true,
	KindDeletion:     true,
}

// Location identifies the source position that produced an event.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// SourceRef points at the exact event-log version of an identifier that a
// change read from. Index is the position in Name's timeline captured by the
// instrumentation layer at the moment the value was read; it is never
// re-resolved to "current latest" afterwards, because two identifiers mutated
// in the same logical step must trace to each other's pre-step versions.
type SourceRef struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Event is one entry in an identifier's timeline.
//
// The Kind tag selects the payload: InitialValue and Creation carry a full
// Value (InitialValue is a value observed before tracing began, Creation a
// value produced by a traced assignment), Mutation carries a Delta against
// the previous value plus the SourceRefs it read, and Deletion is a
// tombstone. A single tagged struct rather than an interface hierarchy keeps
// events directly serializable for the archive and trace-file formats.
type Event struct {
	EventID  string      `json:"event_id"` // UUID v7, assigned on append.
	Kind     string      `json:"kind"`
	Target   string      `json:"target"`
	Location Location    `json:"location"`
	Value    any         `json:"value,omitempty"`
	Delta    Delta       `json:"delta,omitempty"`
	Sources  []SourceRef `json:"sources,omitempty"`
}

// Event validation errors.
var (
	ErrEmptyTarget = errors.New("event target must not be empty")
	ErrUnknownKind = errors.New("unknown event kind")
	ErrKindPayload = errors.New("event payload does not match its kind")
)

// Timeline invariant errors. These signal instrumentation or programmer
// mistakes; an append that returns one leaves the log unchanged.
var (
	ErrUnknownIdentifier  = errors.New("identifier has no recorded events")
	ErrInitialValueExists = errors.New("initial value already recorded for identifier")
	ErrTargetExists       = errors.New("identifier already exists")
	ErrTargetMissing      = errors.New("identifier does not exist")
	ErrTombstoneFold      = errors.New("cannot fold a value across a deletion")
	ErrTimelineCorrupt    = errors.New("timeline violates event-ordering invariants")
	ErrEventNotFound      = errors.New("event not found")
	ErrSourceOutOfRange   = errors.New("source reference points outside its timeline")
)

// Validate checks structural well-formedness: a non-empty target, a known
// kind, and a payload shaped for that kind. Timeline-level invariants (such
// as "InitialValue must be first") are enforced by the event log on append.
func (e Event) Validate() error {
	if e.Target == "" {
		return ErrEmptyTarget
	}
	if !validKinds[e.Kind] {
		return ErrUnknownKind
	}
	switch e.Kind {
	case KindInitialValue, KindCreation:
		if e.Delta != nil {
			return ErrKindPayload
		}
	case KindMutation:
		if e.Delta == nil {
			return ErrKindPayload
		}
	case KindDeletion:
		if e.Value != nil || e.Delta != nil {
			return ErrKindPayload
		}
	}
	return nil
}

// Seeds reports whether the event carries a full value that can seed a fold
// (InitialValue or Creation).
func (e Event) Seeds() bool {
	return e.Kind == KindInitialValue || e.Kind == KindCreation
}
