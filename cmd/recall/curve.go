package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/core"
)

var intervalFormat string

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Manage forgetting curves",
}

var curveAddCmd = &cobra.Command{
	Use:   "add <title> [interval...]",
	Short: "Create a curve, optionally with intervals such as 10m 1h 1d",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intervals := make([]time.Duration, 0, len(args)-1)
		for _, a := range args[1:] {
			d, err := parseSpan(a)
			if err != nil {
				return err
			}
			intervals = append(intervals, d)
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := eng.AddCurve(ctx, args[0])
			if err != nil {
				return err
			}
			for _, d := range intervals {
				if _, err := eng.AddInterval(ctx, c.ID, int64(d/time.Second), formatFor(d)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added curve %s [%s]\n", c.Title, c.ID)
			return nil
		})
	},
}

var curveRmCmd = &cobra.Command{
	Use:   "rm <curve>",
	Short: "Delete a curve; notes following it keep the dangling id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			changed, err := eng.RemoveCurve(ctx, c.ID)
			return report(cmd, changed, err, "deleted curve "+c.Title)
		})
	},
}

var curveRenameCmd = &cobra.Command{
	Use:   "rename <curve> <title>",
	Short: "Change the title of a curve",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			changed, err := eng.RenameCurve(ctx, c.ID, args[1])
			return report(cmd, changed, err, "renamed curve to "+args[1])
		})
	},
}

var curveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List curves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			catalog := eng.Snapshot().ForgettingCurves
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), catalog)
			}
			for _, c := range catalog {
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %d interval(s)\n", c.Title, c.ID, len(c.Intervals))
			}
			return nil
		})
	},
}

var curveShowCmd = &cobra.Command{
	Use:   "show <curve>",
	Short: "Show the intervals of a curve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", c.Title, c.ID)
			for i, iv := range c.Intervals {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %-14s [%s]\n", i+1, formatInterval(iv), shortKey(iv.Key))
			}
			return nil
		})
	},
}

var intervalCmd = &cobra.Command{
	Use:   "interval",
	Short: "Edit the intervals of a curve",
}

var intervalAddCmd = &cobra.Command{
	Use:   "add <curve> <span>",
	Short: "Append an interval such as 90s, 10m, 2h or 3d",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseSpan(args[1])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			iv, err := eng.AddInterval(ctx, c.ID, int64(d/time.Second), formatFor(d))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s [%s]\n", formatInterval(iv), iv.Key)
			return nil
		})
	},
}

var intervalRmCmd = &cobra.Command{
	Use:   "rm <curve> <interval>",
	Short: "Remove an interval by key or position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			iv, _, err := resolveInterval(c, args[1])
			if err != nil {
				return err
			}
			changed, err := eng.RemoveInterval(ctx, c.ID, iv.Key)
			return report(cmd, changed, err, "removed "+formatInterval(iv))
		})
	},
}

var intervalSetCmd = &cobra.Command{
	Use:   "set <curve> <interval> <value>",
	Short: "Set an interval value in its display unit",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			iv, _, err := resolveInterval(c, args[1])
			if err != nil {
				return err
			}
			changed, err := eng.SetIntervalDisplayValue(ctx, c.ID, iv.Key, value)
			return report(cmd, changed, err, fmt.Sprintf("set to %s %s", args[2], iv.Format))
		})
	},
}

var intervalFormatCmd = &cobra.Command{
	Use:   "format <curve> <interval> <seconds|minutes|hours|days>",
	Short: "Change the display unit of an interval",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := core.ParseIntervalFormat(args[2])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			iv, _, err := resolveInterval(c, args[1])
			if err != nil {
				return err
			}
			changed, err := eng.SetIntervalFormat(ctx, c.ID, iv.Key, format)
			return report(cmd, changed, err, "displayed in "+string(format))
		})
	},
}

var intervalMoveCmd = &cobra.Command{
	Use:   "move <curve> <interval> <position>",
	Short: "Move an interval to a 1-based position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			c, err := resolveCurve(eng, args[0])
			if err != nil {
				return err
			}
			_, from, err := resolveInterval(c, args[1])
			if err != nil {
				return err
			}
			changed, err := eng.ReorderIntervals(ctx, c.ID, from-1, to-1)
			return report(cmd, changed, err, fmt.Sprintf("moved interval %d to %d", from, to))
		})
	},
}

// parseSpan accepts Go durations plus a "d" suffix for days.
func parseSpan(s string) (time.Duration, error) {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		days, err := strconv.ParseFloat(s[:n-1], 64)
		if err == nil && days >= 0 {
			return time.Duration(days * float64(24*time.Hour)), nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	return d, nil
}

// formatFor picks the largest unit that divides d evenly, unless a format
// was forced with --format.
func formatFor(d time.Duration) core.IntervalFormat {
	if intervalFormat != "" {
		if f, err := core.ParseIntervalFormat(intervalFormat); err == nil {
			return f
		}
	}
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return core.FormatDays
	case d >= time.Hour && d%time.Hour == 0:
		return core.FormatHours
	case d >= time.Minute && d%time.Minute == 0:
		return core.FormatMinutes
	}
	return core.FormatSeconds
}

func init() {
	intervalAddCmd.Flags().StringVar(&intervalFormat, "format", "", "Display unit (default: derived from the span)")
	curveAddCmd.Flags().StringVar(&intervalFormat, "format", "", "Display unit of the intervals")

	intervalCmd.AddCommand(intervalAddCmd, intervalRmCmd, intervalSetCmd, intervalFormatCmd, intervalMoveCmd)
	curveCmd.AddCommand(curveAddCmd, curveRmCmd, curveRenameCmd, curveListCmd, curveShowCmd, intervalCmd)
	rootCmd.AddCommand(curveCmd)
}
