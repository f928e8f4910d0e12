package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/retrace/internal/codec"
)

func arenaConfig(file string) FrameConfig {
	return FrameConfig{File: file, Codec: codec.New()}
}

func TestArenaNewFrame(t *testing.T) {
	a := NewArena()
	root, err := a.NewFrame(arenaConfig("main.py"))
	require.NoError(t, err)

	assert.Equal(t, 0, root.ID())
	assert.Equal(t, 1, a.Len())

	got, err := a.Frame(root.ID())
	require.NoError(t, err)
	assert.Same(t, root, got)

	parent, err := a.Parent(root.ID())
	require.NoError(t, err)
	assert.Nil(t, parent, "root frame has no parent")
}

func TestArenaNewChild(t *testing.T) {
	a := NewArena()
	root, err := a.NewFrame(arenaConfig("main.py"))
	require.NoError(t, err)

	child1, err := a.NewChild(root.ID(), arenaConfig("helper.py"))
	require.NoError(t, err)
	child2, err := a.NewChild(root.ID(), arenaConfig("util.py"))
	require.NoError(t, err)
	grandchild, err := a.NewChild(child1.ID(), arenaConfig("inner.py"))
	require.NoError(t, err)

	parent, err := a.Parent(child1.ID())
	require.NoError(t, err)
	assert.Same(t, root, parent)

	children, err := a.Children(root.ID())
	require.NoError(t, err)
	assert.Equal(t, []*Frame{child1, child2}, children)

	parent, err = a.Parent(grandchild.ID())
	require.NoError(t, err)
	assert.Same(t, child1, parent)
}

func TestArenaNewChildUnknownParent(t *testing.T) {
	a := NewArena()
	_, err := a.NewChild(42, arenaConfig("main.py"))
	assert.ErrorIs(t, err, ErrFrameNotFound)
}

func TestArenaRelease(t *testing.T) {
	a := NewArena()
	root, err := a.NewFrame(arenaConfig("main.py"))
	require.NoError(t, err)
	child, err := a.NewChild(root.ID(), arenaConfig("helper.py"))
	require.NoError(t, err)
	grandchild, err := a.NewChild(child.ID(), arenaConfig("inner.py"))
	require.NoError(t, err)

	// Releasing the middle frame detaches both directions but leaves the
	// relatives alive.
	require.NoError(t, a.Release(child.ID()))
	assert.Equal(t, 2, a.Len())

	_, err = a.Frame(child.ID())
	assert.ErrorIs(t, err, ErrFrameNotFound)

	children, err := a.Children(root.ID())
	require.NoError(t, err)
	assert.Empty(t, children)

	parent, err := a.Parent(grandchild.ID())
	require.NoError(t, err)
	assert.Nil(t, parent, "orphaned frame reports no parent")
}

func TestArenaReleaseUnknown(t *testing.T) {
	a := NewArena()
	assert.ErrorIs(t, a.Release(7), ErrFrameNotFound)
}

func TestArenaIDs(t *testing.T) {
	a := NewArena()
	for i := 0; i < 3; i++ {
		_, err := a.NewFrame(arenaConfig("main.py"))
		require.NoError(t, err)
	}
	require.NoError(t, a.Release(1))

	assert.Equal(t, []int{0, 2}, a.IDs())

	// Ids are never reused.
	f, err := a.NewFrame(arenaConfig("main.py"))
	require.NoError(t, err)
	assert.Equal(t, 3, f.ID())
}

func TestArenaFramesAreIndependent(t *testing.T) {
	a := NewArena()
	root, err := a.NewFrame(arenaConfig("main.py"))
	require.NoError(t, err)
	child, err := a.NewChild(root.ID(), arenaConfig("helper.py"))
	require.NoError(t, err)

	_, err = root.RecordChange(RawChange{Target: "x", Kind: ChangeAssignment, NewValue: "root"})
	require.NoError(t, err)

	assert.False(t, child.Contains("x"), "frames own separate event logs")
}
