package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// The canonical swap regression. Given:
//
//	x = "foo"
//	y = "bar"
//	x, y = y, x
//
// each post-swap mutation must trace to the other identifier's pre-swap
// creation, never to its post-swap mutation. A resolver that looks up a
// source's "current latest" event gets Mutation(y) -> Mutation(x) wrong.
func TestTraceBackSwap(t *testing.T) {
	l := testLog(t)

	createX := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "x", Value: "foo"})
	createY := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "y", Value: "bar"})

	mutateX := mustAppend(t, l, types.Event{
		Kind:    types.KindMutation,
		Target:  "x",
		Delta:   mustDelta(t, "foo", "bar"),
		Sources: []types.SourceRef{{Name: "y", Index: 0}},
	})
	mutateY := mustAppend(t, l, types.Event{
		Kind:    types.KindMutation,
		Target:  "y",
		Delta:   mustDelta(t, "bar", "foo"),
		Sources: []types.SourceRef{{Name: "x", Index: 0}},
	})

	got, err := l.TraceBack(mutateX.EventID)
	require.NoError(t, err)
	assert.Equal(t, []string{createY.EventID}, got)

	got, err = l.TraceBack(mutateY.EventID)
	require.NoError(t, err)
	assert.Equal(t, []string{createX.EventID}, got,
		"must resolve to the pre-swap creation, not the post-swap mutation")
	assert.NotContains(t, got, mutateX.EventID)
}

func TestTraceBackNoSources(t *testing.T) {
	l := testLog(t)
	e := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "x", Value: "foo"})

	got, err := l.TraceBack(e.EventID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTraceBackMultipleSources(t *testing.T) {
	l := testLog(t)
	createA := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "a", Value: 1.0})
	createB := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "b", Value: 2.0})
	mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "sum", Value: 3.0})

	mutate := mustAppend(t, l, types.Event{
		Kind:   types.KindMutation,
		Target: "sum",
		Delta:  mustDelta(t, 3.0, 3.0),
		Sources: []types.SourceRef{
			{Name: "a", Index: 0},
			{Name: "b", Index: 0},
			{Name: "a", Index: 0}, // duplicate reads collapse
		},
	})

	got, err := l.TraceBack(mutate.EventID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.ElementsMatch(t, []string{createA.EventID, createB.EventID}, got)
}

func TestTraceBackDeletionWithSources(t *testing.T) {
	l := testLog(t)
	createK := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "k", Value: "key"})
	mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "d", Value: map[string]any{}})

	del := mustAppend(t, l, types.Event{
		Kind:    types.KindDeletion,
		Target:  "d",
		Sources: []types.SourceRef{{Name: "k", Index: 0}},
	})

	got, err := l.TraceBack(del.EventID)
	require.NoError(t, err)
	assert.Equal(t, []string{createK.EventID}, got)
}

func TestTraceBackUnknownEvent(t *testing.T) {
	l := testLog(t)
	_, err := l.TraceBack("no-such-event")
	assert.ErrorIs(t, err, types.ErrEventNotFound)
}

func TestTraceBackSourceOutOfRange(t *testing.T) {
	l := testLog(t)
	mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "x", Value: "foo"})
	bad := mustAppend(t, l, types.Event{
		Kind:    types.KindMutation,
		Target:  "x",
		Delta:   mustDelta(t, "foo", "bar"),
		Sources: []types.SourceRef{{Name: "y", Index: 0}},
	})

	_, err := l.TraceBack(bad.EventID)
	assert.ErrorIs(t, err, types.ErrSourceOutOfRange)
}

func TestLogEventLookup(t *testing.T) {
	l := testLog(t)
	e := mustAppend(t, l, types.Event{Kind: types.KindCreation, Target: "x", Value: "foo"})

	got, err := l.Event(e.EventID)
	require.NoError(t, err)
	assert.Equal(t, e.EventID, got.EventID)
	assert.Equal(t, "x", got.Target)

	_, err = l.Event("missing")
	assert.ErrorIs(t, err, types.ErrEventNotFound)
}
