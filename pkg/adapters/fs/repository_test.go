package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/adapters/fs"
	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/git"
)

// setupRepo creates a repository for a data file inside a fresh directory.
func setupRepo(t *testing.T, name string, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vault", ".recall", name)
	cfg := fs.Config{Path: path}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), path
}

func testDocument() core.Document {
	next := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return core.Document{
		Notes: []core.Note{{
			Key:                "a",
			Title:              "Alpha",
			NextReviewDate:     next,
			ForgettingCurveID:  "c",
			LastActiveInterval: 1,
			Status:             core.StatusOK,
			Children:           []core.Note{{Key: "b", Title: "Beta"}},
		}},
		ForgettingCurves: []core.Curve{{
			ID:        "c",
			Title:     "default",
			Intervals: []core.Interval{{Key: "i", Value: 60, Format: core.FormatMinutes}},
		}},
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates directory and empty document", func(t *testing.T) {
		repo, path := setupRepo(t, "recall.json")
		require.NoError(t, repo.Initialize(context.Background()))

		_, err := os.Stat(path)
		require.NoError(t, err)

		doc, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, doc.Notes)
		assert.Empty(t, doc.ForgettingCurves)
	})

	t.Run("Keeps an existing document", func(t *testing.T) {
		repo, _ := setupRepo(t, "recall.json")
		ctx := context.Background()
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.Save(ctx, testDocument()))

		require.NoError(t, repo.Initialize(ctx))
		doc, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, doc.Notes, 1)
	})

	t.Run("Fails if MustExist and missing", func(t *testing.T) {
		repo, _ := setupRepo(t, "recall.json", func(c *fs.Config) { c.MustExist = true })
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Rejects unknown extensions", func(t *testing.T) {
		repo, _ := setupRepo(t, "recall.toml")
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Read-only does not create anything", func(t *testing.T) {
		repo, path := setupRepo(t, "recall.json", func(c *fs.Config) { c.ReadOnly = true })
		require.NoError(t, repo.Initialize(context.Background()))

		_, err := os.Stat(filepath.Dir(path))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestLoadSave(t *testing.T) {
	for _, name := range []string{"recall.json", "recall.yaml", "recall.yml"} {
		t.Run(name, func(t *testing.T) {
			repo, _ := setupRepo(t, name)
			ctx := context.Background()
			require.NoError(t, repo.Initialize(ctx))

			require.NoError(t, repo.Save(ctx, testDocument()))
			got, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, testDocument(), got)
		})
	}

	t.Run("Missing file is an empty document", func(t *testing.T) {
		repo, _ := setupRepo(t, "recall.json")
		doc, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, doc.Notes)
	})

	t.Run("Corrupt file is an error", func(t *testing.T) {
		repo, path := setupRepo(t, "recall.json")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		_, err := repo.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("Read-only refuses to save", func(t *testing.T) {
		repo, _ := setupRepo(t, "recall.json", func(c *fs.Config) { c.ReadOnly = true })
		err := repo.Save(context.Background(), testDocument())
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})
}

func TestState(t *testing.T) {
	repo, path := setupRepo(t, "recall.yaml")
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Save(ctx, testDocument()))
	_, err := repo.Load(ctx)
	require.NoError(t, err)

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, ".yaml", state.Format)
	assert.Equal(t, []string{".json", ".yaml", ".yml"}, state.Serializers)
	assert.Equal(t, 2, state.Saves, "initialize writes the empty document")
	assert.NotNil(t, state.LastLoad)
	assert.NotNil(t, state.LastSave)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "repository", repo.ComponentType())
}

func TestVersioning(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	repo, path := setupRepo(t, "recall.json", func(c *fs.Config) {
		c.Versioning = true
		c.AutoInit = true
	})
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	ignore, err := os.ReadFile(filepath.Join(filepath.Dir(path), ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), git.DefaultLockName)
	assert.Contains(t, string(ignore), fs.TempFilePrefix+"*")

	reasonCtx := context.WithValue(ctx, core.ChangeReasonKey, "mark-done a")
	require.NoError(t, repo.Save(reasonCtx, testDocument()))

	// Saving the same document again does not create an empty commit.
	require.NoError(t, repo.Save(reasonCtx, testDocument()))

	client := git.NewClient(filepath.Dir(path), nil)
	log, err := client.Run("log", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "chore(recall): mark-done a\nchore(recall): initialize\nchore(recall): ignore lock file", log)

	status, err := client.Status()
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestVersioningRequiresRepo(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	repo, _ := setupRepo(t, "recall.json", func(c *fs.Config) { c.Versioning = true })
	assert.Error(t, repo.Initialize(context.Background()))
}
