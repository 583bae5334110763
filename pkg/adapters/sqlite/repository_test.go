package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
)

func newTestRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "nested", "recall.db")
	}
	repo := NewRepository(cfg)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func doc(titles ...string) core.Document {
	d := core.Document{
		ForgettingCurves: []core.Curve{{
			ID:        "c",
			Title:     "default",
			Intervals: []core.Interval{{Key: "i", Value: 3600, Format: core.FormatHours}},
		}},
	}
	for i, title := range titles {
		d.Notes = append(d.Notes, core.Note{
			Key:                fmt.Sprintf("n%d", i),
			Title:              title,
			NextReviewDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ForgettingCurveID:  "c",
			LastActiveInterval: 1,
			Status:             core.StatusWarning,
		})
	}
	return d
}

func TestInitialize(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Initialize(ctx), "initialize is idempotent")

	db, err := repo.open(ctx)
	require.NoError(t, err)

	version, err := userVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='revisions'").Scan(&name))
	assert.Equal(t, "revisions", name)
}

func TestLoadSave(t *testing.T) {
	repo := newTestRepo(t, Config{})
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Notes)

	require.NoError(t, repo.Save(ctx, doc("first")))
	require.NoError(t, repo.Save(ctx, doc("first", "second")))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc("first", "second"), got)
}

func TestHistory(t *testing.T) {
	repo := newTestRepo(t, Config{Keep: 3})
	ctx := context.WithValue(context.Background(), core.ChangeReasonKey, "add-note n0")

	for i := 1; i <= 5; i++ {
		titles := make([]string, i)
		for j := range titles {
			titles[j] = fmt.Sprintf("t%d", j)
		}
		require.NoError(t, repo.Save(ctx, doc(titles...)))
	}
	// Identical documents do not create a revision.
	require.NoError(t, repo.Save(ctx, doc("t0", "t1", "t2", "t3", "t4")))

	history, err := repo.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 3, "pruned to Keep")
	assert.Greater(t, history[0].ID, history[1].ID, "newest first")
	assert.Equal(t, "add-note n0", history[0].Reason)
	assert.Positive(t, history[0].Size)

	limited, err := repo.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	old, err := repo.At(ctx, history[2].ID)
	require.NoError(t, err)
	assert.Len(t, old.Notes, 3)

	_, err = repo.At(ctx, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.db")

	missing := newTestRepo(t, Config{Path: path, ReadOnly: true})
	require.NoError(t, missing.Initialize(context.Background()))
	d, err := missing.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, d.Notes)

	writer := newTestRepo(t, Config{Path: path})
	require.NoError(t, writer.Save(context.Background(), doc("kept")))
	require.NoError(t, writer.Close())

	reader := newTestRepo(t, Config{Path: path, ReadOnly: true})
	got, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc("kept"), got)
	assert.ErrorIs(t, reader.Save(context.Background(), doc()), core.ErrReadOnly)
}
