// Package memory provides an in-process repository, used for ephemeral
// sessions and as a test double.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/recall/pkg/core"
)

// Repository keeps the document in memory. Every Save stores a deep copy.
type Repository struct {
	mu    sync.Mutex
	doc   core.Document
	saves int
	err   error
}

// NewRepository returns a repository holding a copy of seed.
func NewRepository(seed core.Document) *Repository {
	return &Repository{doc: seed.Clone()}
}

// Initialize implements core.Repository.
func (r *Repository) Initialize(ctx context.Context) error { return nil }

// Load implements core.Repository.
func (r *Repository) Load(ctx context.Context) (core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Clone(), nil
}

// Save implements core.Repository.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.doc = doc.Clone()
	r.saves++
	return nil
}

// FailSaves makes every following Save return err. A nil err restores
// normal operation.
func (r *Repository) FailSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Saves returns the number of successful saves.
func (r *Repository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// Replace swaps the stored document, as an external writer would.
func (r *Repository) Replace(doc core.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = doc.Clone()
}
