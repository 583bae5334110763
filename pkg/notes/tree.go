// Package notes implements the structural operations of the note forest.
//
// Every function is pure: the input forest is never modified and edits are
// built by copying only the path from the root to the edited sibling list.
// Untouched subtrees are shared between the old and the new forest, so
// callers must treat forests as immutable values.
//
// Operations are total. A key that cannot be found is a no-op reported
// through the returned changed flag, never an error.
package notes

import (
	"fmt"
	"slices"

	"github.com/aretw0/recall/pkg/core"
)

// Path addresses a note by the sibling index at each depth, starting at the
// root list.
type Path []int

// Locate finds the first note with key in pre-order and returns its path.
// It walks the forest with an explicit stack, so depth is not bounded by
// the goroutine stack.
func Locate(tree []core.Note, key string) (Path, bool) {
	type frame struct {
		nodes []core.Note
		next  int
		path  Path
	}
	stack := []frame{{nodes: tree}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		i := top.next
		top.next++
		n := top.nodes[i]
		path := append(slices.Clone(top.path), i)
		if n.Key == key {
			return path, true
		}
		if len(n.Children) > 0 {
			stack = append(stack, frame{nodes: n.Children, path: path})
		}
	}
	return nil, false
}

// At returns the note at path.
func At(tree []core.Note, path Path) (core.Note, bool) {
	nodes := tree
	var n core.Note
	for depth, i := range path {
		if i < 0 || i >= len(nodes) {
			return core.Note{}, false
		}
		n = nodes[i]
		if depth < len(path)-1 {
			nodes = n.Children
		}
	}
	return n, len(path) > 0
}

// Find returns the first note with key.
func Find(tree []core.Note, key string) (core.Note, bool) {
	path, ok := Locate(tree, key)
	if !ok {
		return core.Note{}, false
	}
	return At(tree, path)
}

// editSiblings rebuilds the forest with fn applied to the sibling list
// identified by parent (the children of the note at parent, or the root list
// when parent is empty). fn receives a private copy it may modify freely.
func editSiblings(tree []core.Note, parent Path, fn func([]core.Note) []core.Note) []core.Note {
	if len(parent) == 0 {
		return fn(slices.Clone(tree))
	}
	out := slices.Clone(tree)
	i := parent[0]
	n := out[i]
	n.Children = editSiblings(n.Children, parent[1:], fn)
	out[i] = n
	return out
}

// UpdateByKey merges patch into the first note with key.
func UpdateByKey(tree []core.Note, key string, patch core.NotePatch) ([]core.Note, bool) {
	path, ok := Locate(tree, key)
	if !ok || patch.Empty() {
		return tree, false
	}
	last := len(path) - 1
	return editSiblings(tree, path[:last], func(siblings []core.Note) []core.Note {
		siblings[path[last]] = patch.Apply(siblings[path[last]])
		return siblings
	}), true
}

// DeleteByKey removes every note with key together with its subtree.
func DeleteByKey(tree []core.Note, key string) ([]core.Note, bool) {
	changed := false
	for {
		path, ok := Locate(tree, key)
		if !ok {
			return tree, changed
		}
		tree = removeAt(tree, path)
		changed = true
	}
}

func removeAt(tree []core.Note, path Path) []core.Note {
	last := len(path) - 1
	return editSiblings(tree, path[:last], func(siblings []core.Note) []core.Note {
		return slices.Delete(siblings, path[last], path[last]+1)
	})
}

// AddRoot appends note (and its subtree) to the root list. Every key in the
// new subtree must be unused in the forest and unique within the subtree.
func AddRoot(tree []core.Note, note core.Note) ([]core.Note, error) {
	seen := keySet(tree)
	var dup string
	Walk([]core.Note{note}, func(n core.Note, _ int) bool {
		if _, ok := seen[n.Key]; ok {
			dup = n.Key
			return false
		}
		seen[n.Key] = struct{}{}
		return true
	})
	if dup != "" {
		return tree, fmt.Errorf("%w: %s", core.ErrDuplicateKey, dup)
	}
	return append(slices.Clone(tree), note), nil
}

// Walk visits the forest in pre-order. Returning false from fn stops the walk.
func Walk(tree []core.Note, fn func(n core.Note, depth int) bool) {
	type item struct {
		note  core.Note
		depth int
	}
	stack := make([]item, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, item{tree[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.note, it.depth) {
			return
		}
		for i := len(it.note.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.note.Children[i], it.depth + 1})
		}
	}
}

// Keys returns all keys in pre-order.
func Keys(tree []core.Note) []string {
	var keys []string
	Walk(tree, func(n core.Note, _ int) bool {
		keys = append(keys, n.Key)
		return true
	})
	return keys
}

// Count returns the number of notes in the forest.
func Count(tree []core.Note) int {
	count := 0
	Walk(tree, func(core.Note, int) bool {
		count++
		return true
	})
	return count
}

// Validate checks the global key uniqueness invariant.
func Validate(tree []core.Note) error {
	seen := make(map[string]struct{})
	var err error
	Walk(tree, func(n core.Note, _ int) bool {
		if n.Key == "" {
			err = fmt.Errorf("note %q has an empty key", n.Title)
			return false
		}
		if _, ok := seen[n.Key]; ok {
			err = fmt.Errorf("%w: %s", core.ErrDuplicateKey, n.Key)
			return false
		}
		seen[n.Key] = struct{}{}
		return true
	})
	return err
}

func keySet(tree []core.Note) map[string]struct{} {
	seen := make(map[string]struct{})
	Walk(tree, func(n core.Note, _ int) bool {
		seen[n.Key] = struct{}{}
		return true
	})
	return seen
}
