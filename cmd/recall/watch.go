package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/adapters/lifecycle"
	"github.com/aretw0/recall/pkg/core"
)

var watchEvents bool

// logNotifier renders status transitions as log records.
func logNotifier(logger *slog.Logger) core.Notifier {
	return core.NotifierFunc(func(ctx context.Context, t core.Transition) {
		level := slog.LevelInfo
		switch t.To {
		case core.StatusWarningSevere:
			level = slog.LevelWarn
		case core.StatusOK:
			level = slog.LevelDebug
		}
		logger.Log(ctx, level, "review "+t.Level(), "note", t.Title, "key", t.Key, "from", t.From, "to", t.To)
	})
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the status classifier and follow external edits until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			types := []core.EventType{core.EventReload}
			if watchEvents {
				types = append(types, core.EventCommit, core.EventStatus)
			}
			source := lifecycle.NewSource(eng, types...)
			if err := source.Start(ctx); err != nil {
				return err
			}
			if err := eng.Start(ctx); err != nil {
				return err
			}

			slog.Info("watching", "notes", len(eng.Snapshot().Notes), "due", len(eng.Due()))
			for e := range source.Events() {
				slog.Info("event", "event", e.String())
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "stopped")
			return eng.Stop(context.WithoutCancel(ctx))
		}, recall.WithWatch(true), recall.WithNotifier(logNotifier(slog.Default())))
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchEvents, "events", false, "Also log commits and status events")
	rootCmd.AddCommand(watchCmd)
}
