package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine and storage state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := resolveEnv(true)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			if _, err := eng.Tick(ctx, timeNow()); err != nil {
				return err
			}
			state := eng.State().(engine.EngineState)
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), state)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "root:     %s\n", e.root)
			fmt.Fprintf(out, "adapter:  %s\n", e.config.Adapter)
			fmt.Fprintf(out, "notes:    %d\n", state.Notes)
			fmt.Fprintf(out, "curves:   %d\n", state.Curves)
			fmt.Fprintf(out, "due:      %d\n", state.Due)
			fmt.Fprintf(out, "revision: %d (saved %d)\n", state.Revision, state.Saved)
			if state.LastError != "" {
				fmt.Fprintf(out, "error:    %s\n", state.LastError)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
