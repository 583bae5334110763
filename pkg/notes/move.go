package notes

import (
	"slices"

	"github.com/aretw0/recall/pkg/core"
)

// Placement says where a dragged note lands relative to the drop target.
type Placement int

const (
	// Inside makes the dragged note the first child of the target.
	Inside Placement = iota
	// Before inserts the dragged note as the previous sibling of the target.
	Before
	// After inserts the dragged note as the next sibling of the target.
	After
)

func (p Placement) String() string {
	switch p {
	case Inside:
		return "inside"
	case Before:
		return "before"
	case After:
		return "after"
	}
	return "unknown"
}

// PlacementFromDrop converts a tree widget drop into a Placement. A drop
// that is not in a gap between siblings lands inside the target; otherwise
// a negative relative position means before and anything else after.
func PlacementFromDrop(toGap bool, relative int) Placement {
	if !toGap {
		return Inside
	}
	if relative < 0 {
		return Before
	}
	return After
}

// IsDescendant reports whether the note with key lies in the subtree rooted
// at the note with ancestor (a note is considered part of its own subtree).
func IsDescendant(tree []core.Note, ancestor, key string) bool {
	root, ok := Find(tree, ancestor)
	if !ok {
		return false
	}
	_, found := Locate([]core.Note{root}, key)
	return found
}

// MoveSubtree detaches the subtree rooted at dragKey and re-attaches it
// relative to dropKey. It is a no-op when either key is missing, when both
// are the same note, or when dropKey lies inside the dragged subtree (the
// move would create a cycle). The multiset of keys is preserved.
func MoveSubtree(tree []core.Note, dragKey, dropKey string, at Placement) ([]core.Note, bool) {
	if dragKey == dropKey {
		return tree, false
	}
	dragPath, ok := Locate(tree, dragKey)
	if !ok {
		return tree, false
	}
	if _, ok := Locate(tree, dropKey); !ok {
		return tree, false
	}
	dragged, _ := At(tree, dragPath)
	if _, inside := Locate(dragged.Children, dropKey); inside {
		return tree, false
	}

	detached := removeAt(tree, dragPath)

	// Paths shift after the detach, so look the target up again.
	dropPath, _ := Locate(detached, dropKey)

	if at == Inside {
		return editSiblings(detached, dropPath, func(children []core.Note) []core.Note {
			return slices.Insert(children, 0, dragged)
		}), true
	}

	last := len(dropPath) - 1
	index := dropPath[last]
	if at == After {
		index++
	}
	return editSiblings(detached, dropPath[:last], func(siblings []core.Note) []core.Note {
		return slices.Insert(siblings, index, dragged)
	}), true
}
