package engine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrFrameNotFound is returned for operations on unknown or released
// frame ids.
var ErrFrameNotFound = errors.New("frame not found")

// Arena owns the frames of one traced execution and their parent/child
// relations. Relations are stored as integer ids rather than pointers, so
// the tree stays acyclic and a frame can be released independently of its
// relatives.
type Arena struct {
	frames map[int]*Frame
	next   int
}

// NewArena returns an empty frame arena.
func NewArena() *Arena {
	return &Arena{frames: make(map[int]*Frame)}
}

// NewFrame creates a root frame (no parent) owned by the arena.
func (a *Arena) NewFrame(cfg FrameConfig) (*Frame, error) {
	f, err := NewFrame(cfg)
	if err != nil {
		return nil, err
	}
	f.id = a.next
	a.next++
	a.frames[f.id] = f
	return f, nil
}

// NewChild creates a frame derived from the frame with id parentID and
// links it into the tree.
func (a *Arena) NewChild(parentID int, cfg FrameConfig) (*Frame, error) {
	parent, ok := a.frames[parentID]
	if !ok {
		return nil, fmt.Errorf("new child of frame %d: %w", parentID, ErrFrameNotFound)
	}
	f, err := a.NewFrame(cfg)
	if err != nil {
		return nil, err
	}
	f.parent = parentID
	parent.children = append(parent.children, f.id)
	return f, nil
}

// Frame returns the frame with the given id.
func (a *Arena) Frame(id int) (*Frame, error) {
	f, ok := a.frames[id]
	if !ok {
		return nil, fmt.Errorf("frame %d: %w", id, ErrFrameNotFound)
	}
	return f, nil
}

// Parent returns the parent of the frame with the given id, or nil if the
// frame is a root or its parent has been released.
func (a *Arena) Parent(id int) (*Frame, error) {
	f, err := a.Frame(id)
	if err != nil {
		return nil, err
	}
	if f.parent == NoFrame {
		return nil, nil
	}
	parent, ok := a.frames[f.parent]
	if !ok {
		return nil, nil
	}
	return parent, nil
}

// Children returns the still-live children of the frame with the given id,
// ordered by id.
func (a *Arena) Children(id int) ([]*Frame, error) {
	f, err := a.Frame(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Frame, 0, len(f.children))
	for _, childID := range f.children {
		if child, ok := a.frames[childID]; ok {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

// Release removes the frame with the given id from the arena. Children
// survive with their parent reference cleared; the parent's child list
// drops the released id. Releasing an unknown id is an error.
func (a *Arena) Release(id int) error {
	f, ok := a.frames[id]
	if !ok {
		return fmt.Errorf("release frame %d: %w", id, ErrFrameNotFound)
	}
	if parent, ok := a.frames[f.parent]; ok {
		kept := parent.children[:0]
		for _, childID := range parent.children {
			if childID != id {
				kept = append(kept, childID)
			}
		}
		parent.children = kept
	}
	for _, childID := range f.children {
		if child, ok := a.frames[childID]; ok {
			child.parent = NoFrame
		}
	}
	delete(a.frames, id)
	return nil
}

// Len returns the number of live frames.
func (a *Arena) Len() int { return len(a.frames) }

// IDs returns the ids of all live frames in ascending order.
func (a *Arena) IDs() []int {
	out := make([]int, 0, len(a.frames))
	for id := range a.frames {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
