package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/notes"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the note tree with review status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			// Classify against the current time before printing.
			if _, err := eng.Tick(ctx, timeNow()); err != nil {
				return err
			}
			doc := eng.Snapshot()
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), doc)
			}
			notes.Walk(doc.Notes, func(n recall.Note, depth int) bool {
				printNote(cmd.OutOrStdout(), n, depth)
				return true
			})
			return nil
		})
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List notes whose review is due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			if _, err := eng.Tick(ctx, timeNow()); err != nil {
				return err
			}
			due := eng.Due()
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), due)
			}
			for _, n := range due {
				printNote(cmd.OutOrStdout(), n, 0)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(treeCmd, dueCmd)
}
