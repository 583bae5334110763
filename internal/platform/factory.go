package platform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/recall/pkg/adapters/fs"
	"github.com/aretw0/recall/pkg/adapters/memory"
	"github.com/aretw0/recall/pkg/adapters/sqlite"
	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/engine"
	"github.com/aretw0/recall/pkg/status"
)

// New opens the document at uri and returns a loaded engine.
// The URI argument is adapter-specific: a root directory or data file for
// "fs", a root directory or database file for "sqlite", ignored for "memory".
//
//	eng, err := recall.New("./notes", recall.WithVault("./notes", "", ""))
func New(ctx context.Context, uri string, opts ...Option) (*engine.Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := open(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	linker := o.linker
	if linker == nil && o.vaultRoot != "" {
		vault, err := fs.NewVault(fs.VaultConfig{
			Root:    o.vaultRoot,
			Name:    o.vaultName,
			Pattern: o.linkPattern,
		})
		if err != nil {
			return nil, err
		}
		linker = vault
	}

	policy := status.DefaultPolicy()
	if o.severeAfter > 0 {
		policy.SevereAfter = o.severeAfter
	}

	engOpts := []engine.Option{
		engine.WithLogger(o.logger),
		engine.WithPolicy(policy),
		engine.WithReadOnly(o.readOnly),
		engine.WithWatch(o.watch),
		engine.WithEventBuffer(o.eventBuffer),
		engine.WithClock(o.clock),
	}
	if o.notifier != nil {
		engOpts = append(engOpts, engine.WithNotifier(o.notifier))
	}
	if linker != nil {
		engOpts = append(engOpts, engine.WithLinker(linker))
	}
	if o.tickInterval > 0 {
		engOpts = append(engOpts, engine.WithTickInterval(o.tickInterval))
	}
	return engine.New(ctx, repo, engOpts...)
}

// Open builds and initializes the repository for uri without starting an
// engine. It is what `recall init` runs.
func Open(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return open(ctx, uri, o)
}

func open(ctx context.Context, uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case AdapterFS, "":
		repo = fs.NewRepository(fs.Config{
			Path:       DataPath(uri, AdapterFS),
			MustExist:  o.mustExist || (!o.autoInit && !o.readOnly),
			ReadOnly:   o.readOnly,
			Versioning: o.versioning,
			AutoInit:   o.autoInit,
			Logger:     o.logger,
		})
	case AdapterSQLite:
		path := DataPath(uri, AdapterSQLite)
		if o.mustExist && !isFile(path) {
			return nil, fmt.Errorf("database does not exist: %s", filepath.Clean(path))
		}
		repo = sqlite.NewRepository(sqlite.Config{
			Path:     path,
			Keep:     o.history,
			ReadOnly: o.readOnly,
			Logger:   o.logger,
		})
	case AdapterMemory:
		repo = memory.NewRepository(core.Document{})
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}
