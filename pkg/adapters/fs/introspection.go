package fs

import (
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState is the snapshot returned by State.
type RepositoryState struct {
	Path          string     `json:"path"`
	Format        string     `json:"format"`
	ReadOnly      bool       `json:"read_only"`
	Versioning    bool       `json:"versioning"`
	Serializers   []string   `json:"serializers"`
	WatcherActive bool       `json:"watcher_active"`
	Saves         int        `json:"saves"`
	LastLoad      *time.Time `json:"last_load,omitempty"`
	LastSave      *time.Time `json:"last_save,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		Format:        filepath.Ext(r.Path),
		ReadOnly:      r.config.ReadOnly,
		Versioning:    r.config.Versioning,
		Serializers:   slices.Sorted(maps.Keys(r.serializers)),
		WatcherActive: r.watcherActive,
		Saves:         r.saves,
		LastLoad:      r.lastLoad,
		LastSave:      r.lastSave,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var (
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}
