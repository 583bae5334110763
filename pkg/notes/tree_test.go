package notes_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/notes"
)

func n(key string, children ...core.Note) core.Note {
	return core.Note{Key: key, Title: "title " + key, Children: children}
}

// fixture:
//
//	a
//	├── b
//	│   └── c
//	└── d
//	e
func fixture() []core.Note {
	return []core.Note{
		n("a", n("b", n("c")), n("d")),
		n("e"),
	}
}

func sortedKeys(tree []core.Note) []string {
	keys := notes.Keys(tree)
	slices.Sort(keys)
	return keys
}

func TestLocateAndFind(t *testing.T) {
	tree := fixture()

	path, ok := notes.Locate(tree, "c")
	require.True(t, ok)
	assert.Equal(t, notes.Path{0, 0, 0}, path)

	path, ok = notes.Locate(tree, "e")
	require.True(t, ok)
	assert.Equal(t, notes.Path{1}, path)

	_, ok = notes.Locate(tree, "zz")
	assert.False(t, ok)

	got, ok := notes.Find(tree, "d")
	require.True(t, ok)
	assert.Equal(t, "title d", got.Title)
}

func TestLocateDeepTree(t *testing.T) {
	// A chain far deeper than any realistic outline.
	leaf := n("k-0")
	for i := 1; i < 5000; i++ {
		leaf = n(fmt.Sprintf("k-%d", i), leaf)
	}
	tree := []core.Note{leaf}

	path, ok := notes.Locate(tree, "k-0")
	require.True(t, ok)
	assert.Len(t, path, 5000)
	assert.Equal(t, 5000, notes.Count(tree))
}

func TestUpdateByKey(t *testing.T) {
	tree := fixture()
	title := "renamed"

	out, changed := notes.UpdateByKey(tree, "c", core.NotePatch{Title: &title})
	require.True(t, changed)

	got, _ := notes.Find(out, "c")
	assert.Equal(t, "renamed", got.Title)

	// The input forest is untouched.
	orig, _ := notes.Find(tree, "c")
	assert.Equal(t, "title c", orig.Title)

	assert.Equal(t, tree[1], out[1])

	t.Run("Missing key is a no-op", func(t *testing.T) {
		out, changed := notes.UpdateByKey(tree, "zz", core.NotePatch{Title: &title})
		assert.False(t, changed)
		assert.Equal(t, tree, out)
	})

	t.Run("Empty patch is a no-op", func(t *testing.T) {
		_, changed := notes.UpdateByKey(tree, "c", core.NotePatch{})
		assert.False(t, changed)
	})
}

func TestDeleteByKey(t *testing.T) {
	tree := fixture()

	out, changed := notes.DeleteByKey(tree, "b")
	require.True(t, changed)
	assert.Equal(t, []string{"a", "d", "e"}, notes.Keys(out))

	// Deleting a subtree takes the descendants with it.
	_, found := notes.Find(out, "c")
	assert.False(t, found)

	out, changed = notes.DeleteByKey(tree, "zz")
	assert.False(t, changed)
	assert.Equal(t, notes.Keys(tree), notes.Keys(out))
}

func TestDeleteByKeyRemovesAllMatches(t *testing.T) {
	// Uniqueness is normally guaranteed; loaded data may still violate it.
	tree := []core.Note{n("x"), n("a", n("x")), n("y")}

	out, changed := notes.DeleteByKey(tree, "x")
	require.True(t, changed)
	assert.Equal(t, []string{"a", "y"}, notes.Keys(out))
}

func TestAddRoot(t *testing.T) {
	tree := fixture()

	out, err := notes.AddRoot(tree, n("f"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, notes.Keys(out))
	assert.Len(t, tree, 2)

	_, err = notes.AddRoot(tree, n("c"))
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = notes.AddRoot(tree, n("g", n("g")))
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, notes.Validate(fixture()))
	assert.ErrorIs(t, notes.Validate([]core.Note{n("a"), n("b", n("a"))}), core.ErrDuplicateKey)
	assert.Error(t, notes.Validate([]core.Note{{Title: "no key"}}))
}

func TestWalkDepth(t *testing.T) {
	var got []string
	notes.Walk(fixture(), func(note core.Note, depth int) bool {
		got = append(got, fmt.Sprintf("%s:%d", note.Key, depth))
		return true
	})
	assert.Equal(t, []string{"a:0", "b:1", "c:2", "d:1", "e:0"}, got)

	var visited int
	notes.Walk(fixture(), func(core.Note, int) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}
