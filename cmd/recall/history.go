package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/adapters/sqlite"
	"github.com/aretw0/recall/pkg/core"
)

var historyLimit int

// revisionStore is implemented by adapters that keep past documents.
type revisionStore interface {
	History(ctx context.Context, limit int) ([]sqlite.Revision, error)
	At(ctx context.Context, id int64) (core.Document, error)
}

var historyCmd = &cobra.Command{
	Use:   "history [revision]",
	Short: "List saved revisions or print one (sqlite adapter)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := resolveEnv(true)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		opts := append(e.config.Options(e.root), recall.WithLogger(slog.Default()), recall.WithReadOnly(true))
		repo, err := recall.Init(ctx, e.config.URI(e.root), opts...)
		if err != nil {
			return err
		}
		if c, ok := repo.(io.Closer); ok {
			defer c.Close()
		}
		store, ok := repo.(revisionStore)
		if !ok {
			return fmt.Errorf("adapter %q keeps no history", e.config.Adapter)
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid revision %q", args[0])
			}
			doc, err := store.At(ctx, id)
			if err != nil {
				return fmt.Errorf("revision %d: %w", id, err)
			}
			return printJSON(out, doc)
		}

		revs, err := store.History(ctx, historyLimit)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(out, revs)
		}
		for _, rev := range revs {
			reason := rev.Reason
			if reason == "" {
				reason = "-"
			}
			fmt.Fprintf(out, "%6d  %s  %7dB  %s\n", rev.ID, formatWhen(rev.CreatedAt), rev.Size, reason)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of revisions to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
