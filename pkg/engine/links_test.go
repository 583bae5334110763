package engine_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/engine"
)

type fakeLinker struct {
	docs   []string
	opened chan string
}

func (l *fakeLinker) Search(_ context.Context, term string) ([]string, error) {
	var out []string
	for _, d := range l.docs {
		if strings.Contains(d, term) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (l *fakeLinker) OpenLink(_ context.Context, id string) error {
	l.opened <- id
	return nil
}

func TestLinks(t *testing.T) {
	ctx := context.Background()
	linker := &fakeLinker{docs: []string{"go/channels.md", "rust/traits.md"}, opened: make(chan string, 1)}
	e, _, _ := newEngine(t, engine.WithLinker(linker))

	found, err := e.SearchLinks(ctx, "go/")
	require.NoError(t, err)
	assert.Equal(t, []string{"go/channels.md"}, found)

	_, err = e.LinkOf("a")
	assert.ErrorIs(t, err, core.ErrNoLink)
	_, err = e.LinkOf("missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = e.SetLink(ctx, "a", "go/channels.md")
	require.NoError(t, err)
	require.NoError(t, e.OpenLink(ctx, "a"))

	select {
	case got := <-linker.opened:
		assert.Equal(t, "go/channels.md", got)
	case <-time.After(time.Second):
		t.Fatal("link was not opened")
	}
}

func TestLinksWithoutLinker(t *testing.T) {
	e, _, _ := newEngine(t)
	_, err := e.SearchLinks(context.Background(), "")
	assert.ErrorIs(t, err, engine.ErrNoLinker)
	assert.ErrorIs(t, e.OpenLink(context.Background(), "a"), engine.ErrNoLinker)
}
