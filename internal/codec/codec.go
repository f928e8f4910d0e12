// Package codec implements the default structural delta codec for the
// retrace engine. Deltas are JSON arrays of path-addressed operations:
// maps diff key by key, everything else (scalars, slices) replaces as a
// whole value. Diff and Apply are pure; applying Diff(old, new) to old
// reproduces new for any JSON-shaped value.
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// Operation names used in the delta wire format.
const (
	opSet = "set" // set the value at path (root when path is empty)
	opDel = "del" // delete the map key at path
)

// op is a single delta operation.
type op struct {
	Path  []string `json:"path"`
	Op    string   `json:"op"`
	Value any      `json:"value,omitempty"`
}

// Codec implements types.Codec over JSON-shaped values (map[string]any,
// []any, string, float64, bool, nil). Values of other Go types are
// normalized through their JSON encoding first; values that cannot be
// JSON-encoded are rejected.
type Codec struct{}

var _ types.Codec = Codec{}

// New returns the default codec.
func New() Codec {
	return Codec{}
}

// Diff returns a delta transforming old into new.
func (Codec) Diff(old, new any) (types.Delta, error) {
	oldN, err := normalize(old)
	if err != nil {
		return nil, fmt.Errorf("diff old value: %w", err)
	}
	newN, err := normalize(new)
	if err != nil {
		return nil, fmt.Errorf("diff new value: %w", err)
	}

	ops := diffValue(nil, oldN, newN)
	data, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encode delta: %w", err)
	}
	return types.Delta(data), nil
}

// Apply returns a new value equal to value with delta applied. The input
// value is left untouched.
func (Codec) Apply(value any, delta types.Delta) (any, error) {
	var ops []op
	if err := json.Unmarshal(delta, &ops); err != nil {
		return nil, fmt.Errorf("decode delta: %w", err)
	}

	out, err := normalize(value)
	if err != nil {
		return nil, fmt.Errorf("apply to value: %w", err)
	}

	for _, o := range ops {
		out, err = applyOp(out, o)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Compose concatenates deltas into a single delta whose application equals
// applying each delta in order.
func Compose(deltas ...types.Delta) (types.Delta, error) {
	var all []op
	for _, d := range deltas {
		var ops []op
		if err := json.Unmarshal(d, &ops); err != nil {
			return nil, fmt.Errorf("decode delta: %w", err)
		}
		all = append(all, ops...)
	}
	data, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("encode delta: %w", err)
	}
	return types.Delta(data), nil
}

// normalize round-trips a value through JSON so that equality checks and
// clones operate on a canonical shape, and so the result is isolated from
// the caller's value.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// diffValue emits the operations transforming old into new at path. Both
// inputs are normalized.
func diffValue(path []string, old, new any) []op {
	if reflect.DeepEqual(old, new) {
		return []op{}
	}

	oldMap, oldOK := old.(map[string]any)
	newMap, newOK := new.(map[string]any)
	if !oldOK || !newOK {
		return []op{{Path: append([]string(nil), path...), Op: opSet, Value: new}}
	}

	ops := []op{}
	for key, oldVal := range oldMap {
		newVal, ok := newMap[key]
		if !ok {
			ops = append(ops, op{Path: childPath(path, key), Op: opDel})
			continue
		}
		ops = append(ops, diffValue(childPath(path, key), oldVal, newVal)...)
	}
	for key, newVal := range newMap {
		if _, ok := oldMap[key]; !ok {
			ops = append(ops, op{Path: childPath(path, key), Op: opSet, Value: newVal})
		}
	}
	return ops
}

// childPath returns path extended by key, copied so siblings do not share
// backing arrays.
func childPath(path []string, key string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = key
	return out
}

// applyOp applies one operation to value and returns the result.
func applyOp(value any, o op) (any, error) {
	if len(o.Path) == 0 {
		switch o.Op {
		case opSet:
			return o.Value, nil
		default:
			return nil, fmt.Errorf("delta op %q needs a path", o.Op)
		}
	}

	root, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("delta path %v does not match value shape", o.Path)
	}

	// Walk to the parent of the addressed key.
	parent := root
	for _, key := range o.Path[:len(o.Path)-1] {
		child, ok := parent[key].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("delta path %v does not match value shape", o.Path)
		}
		parent = child
	}

	leaf := o.Path[len(o.Path)-1]
	switch o.Op {
	case opSet:
		parent[leaf] = o.Value
	case opDel:
		delete(parent, leaf)
	default:
		return nil, fmt.Errorf("unknown delta op %q", o.Op)
	}
	return root, nil
}
