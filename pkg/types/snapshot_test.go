package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSeed(t *testing.T) {
	seed := NewSnapshot()
	assert.Equal(t, InitialPointer, seed.Pointer("x"))
	assert.Empty(t, seed.Pointers())
	assert.Nil(t, seed.Location)
}

func TestSnapshotAdvance(t *testing.T) {
	seed := NewSnapshot()

	s1 := seed.Advance("x", nil)
	assert.Equal(t, 0, s1.Pointer("x"))
	assert.Equal(t, InitialPointer, s1.Pointer("y"))

	s2 := s1.Advance("x", nil)
	assert.Equal(t, 1, s2.Pointer("x"))

	s3 := s2.Advance("y", nil)
	assert.Equal(t, 1, s3.Pointer("x"))
	assert.Equal(t, 0, s3.Pointer("y"))
}

func TestSnapshotImmutability(t *testing.T) {
	seed := NewSnapshot()
	s1 := seed.Advance("x", nil)
	s2 := s1.Advance("x", nil)
	_ = s2.Advance("y", nil)

	// Earlier snapshots must be unaffected by later advances.
	assert.Equal(t, InitialPointer, seed.Pointer("x"))
	assert.Equal(t, 0, s1.Pointer("x"))
	assert.Equal(t, InitialPointer, s1.Pointer("y"))
	assert.Equal(t, 1, s2.Pointer("x"))
	assert.Equal(t, InitialPointer, s2.Pointer("y"))
}

func TestSnapshotLocationTag(t *testing.T) {
	loc := &Location{File: "main.py", Line: 3}
	s := NewSnapshot().Advance("x", loc)
	require.NotNil(t, s.Location)
	assert.Equal(t, "main.py", s.Location.File)
	assert.Equal(t, 3, s.Location.Line)

	// Absence of a tag is legal.
	assert.Nil(t, s.Advance("x", nil).Location)
}

// Consecutive snapshots must differ in exactly one identifier's pointer, and
// only by +1, across rebase boundaries too.
func TestSnapshotMonotonicity(t *testing.T) {
	snap := NewSnapshot()
	history := []*Snapshot{snap}
	for i := 0; i < 4*rebaseDepth; i++ {
		name := fmt.Sprintf("v%d", i%5)
		snap = snap.Advance(name, nil)
		history = append(history, snap)
	}

	for i := 1; i < len(history); i++ {
		prev := history[i-1].Pointers()
		cur := history[i].Pointers()

		changed := 0
		for name, idx := range cur {
			if prev[name] != idx {
				if _, ok := prev[name]; !ok {
					assert.Equal(t, 0, idx, "first pointer for %s must be 0", name)
				} else {
					assert.Equal(t, prev[name]+1, idx, "pointer for %s must advance by 1", name)
				}
				changed++
			}
		}
		assert.Equal(t, 1, changed, "snapshot %d must change exactly one pointer", i)
		assert.LessOrEqual(t, len(prev), len(cur))
	}
}

func TestSnapshotPointersCopy(t *testing.T) {
	s := NewSnapshot().Advance("x", nil)
	m := s.Pointers()
	m["x"] = 99
	m["y"] = 0
	assert.Equal(t, 0, s.Pointer("x"), "mutating the returned map must not affect the snapshot")
	assert.Equal(t, InitialPointer, s.Pointer("y"))
}
