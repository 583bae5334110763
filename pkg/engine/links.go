package engine

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/recall/pkg/core"
)

// LinkOf returns the linked document of a note.
func (e *Engine) LinkOf(key string) (string, error) {
	n, ok := e.Find(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	if n.LinkNote == "" {
		return "", fmt.Errorf("%s: %w", key, core.ErrNoLink)
	}
	return n.LinkNote, nil
}

// OpenLink hands the note's linked document to the link resolver without
// waiting for the outcome. Failures of the resolver are only logged.
func (e *Engine) OpenLink(ctx context.Context, key string) error {
	if e.linker == nil {
		return ErrNoLinker
	}
	link, err := e.LinkOf(key)
	if err != nil {
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		if err := e.linker.OpenLink(ctx, link); err != nil {
			e.logger.Warn("open link failed", "key", key, "link", link, "error", err)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		e.logger.Error("open link panic", "key", key, "error", err)
	}))
	return nil
}

// SearchLinks lists linkable documents matching term.
func (e *Engine) SearchLinks(ctx context.Context, term string) ([]string, error) {
	if e.linker == nil {
		return nil, ErrNoLinker
	}
	return e.linker.Search(ctx, term)
}
