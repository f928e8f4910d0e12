package types

import "encoding/json"

// Delta is an opaque, serializable description of the difference between two
// values. The engine stores and forwards deltas; only a Codec interprets
// them. The raw bytes are valid JSON so deltas embed directly in archived
// events and trace files.
type Delta []byte

// MarshalJSON emits the delta's raw JSON payload.
func (d Delta) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores the raw JSON payload.
func (d *Delta) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	if !json.Valid(data) {
		return &json.SyntaxError{}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	*d = cp
	return nil
}

// Codec computes and applies deltas between values. Implementations must be
// pure and deterministic: Diff and Apply may not retain or mutate their
// arguments, and applying the diff of (old, new) to old must reproduce new.
type Codec interface {
	// Diff returns a delta transforming old into new.
	Diff(old, new any) (Delta, error)

	// Apply returns a new value equal to value with delta applied. The
	// input value is left untouched.
	Apply(value any, delta Delta) (any, error)
}
