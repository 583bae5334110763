package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/core"
)

var (
	addCurve  string
	addParent string

	mvBefore bool
	mvAfter  bool

	linkClear     bool
	scheduleClear bool
)

// report prints the outcome of an edit.
func report(cmd *cobra.Command, changed bool, err error, done string) error {
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing changed")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a note, optionally following a curve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			curveID := ""
			if addCurve != "" {
				c, err := resolveCurve(eng, addCurve)
				if err != nil {
					return err
				}
				curveID = c.ID
			}
			var parent core.Note
			if addParent != "" {
				p, err := resolveNote(eng, addParent)
				if err != nil {
					return err
				}
				parent = p
			}

			n, err := eng.AddNote(ctx, args[0], curveID)
			if err != nil {
				return err
			}
			if parent.Key != "" {
				if _, err := eng.MoveNote(ctx, n.Key, parent.Key, recall.Inside); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s [%s]\n", n.Title, n.Key)
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <note> <title>",
	Short: "Change the title of a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			changed, err := eng.Rename(ctx, n.Key, args[1])
			return report(cmd, changed, err, "renamed to "+args[1])
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <note>",
	Short: "Delete a note and its subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			changed, err := eng.DeleteNote(ctx, n.Key)
			return report(cmd, changed, err, "deleted "+n.Title)
		})
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <note> <target>",
	Short: "Move a note inside, before or after another note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if mvBefore && mvAfter {
			return errors.New("--before and --after are exclusive")
		}
		at := recall.Inside
		switch {
		case mvBefore:
			at = recall.Before
		case mvAfter:
			at = recall.After
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			drag, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			drop, err := resolveNote(eng, args[1])
			if err != nil {
				return err
			}
			changed, err := eng.MoveNote(ctx, drag.Key, drop.Key, at)
			return report(cmd, changed, err, fmt.Sprintf("moved %s %s %s", drag.Title, at, drop.Title))
		})
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <note> [document]",
	Short: "Link a note to a vault document, or clear the link",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !linkClear && len(args) != 2 {
			return errors.New("a document is required unless --clear is set")
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			target := ""
			if !linkClear {
				target = args[1]
			}
			changed, err := eng.SetLink(ctx, n.Key, target)
			return report(cmd, changed, err, "linked "+n.Title+" -> "+target)
		})
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <note> [when]",
	Short: "Set the next review date (date, RFC 3339 or duration from now)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !scheduleClear && len(args) != 2 {
			return errors.New("a date is required unless --clear is set")
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			if scheduleClear {
				changed, err := eng.ClearNextReview(ctx, n.Key)
				return report(cmd, changed, err, "cleared schedule of "+n.Title)
			}
			at, err := parseWhen(args[1], timeNow())
			if err != nil {
				return err
			}
			changed, err := eng.SetNextReview(ctx, n.Key, at)
			return report(cmd, changed, err, "next review of "+n.Title+" at "+formatWhen(at))
		})
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <note>",
	Short: "Record a review and schedule the next one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			if _, err := eng.MarkDone(ctx, n.Key); err != nil {
				return err
			}
			updated, _ := eng.Find(n.Key)
			fmt.Fprintf(cmd.OutOrStdout(), "reviewed %s, next review %s\n", updated.Title, formatWhen(updated.NextReviewDate))
			return nil
		})
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <note>",
	Short: "Record a skipped review without rescheduling",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			changed, err := eng.MarkSkipped(ctx, n.Key)
			return report(cmd, changed, err, "skipped "+n.Title)
		})
	},
}

var bindCmd = &cobra.Command{
	Use:   "bind <note> <curve>",
	Short: "Make a note follow a curve from its first interval",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCurve(eng, args[1])
			if err != nil {
				return err
			}
			changed, err := eng.BindCurve(ctx, n.Key, c.ID)
			return report(cmd, changed, err, n.Title+" follows "+c.Title)
		})
	},
}

var cursorCmd = &cobra.Command{
	Use:   "cursor <note> <position>",
	Short: "Set the interval the next review applies (1-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			changed, err := eng.SetActiveInterval(ctx, n.Key, pos)
			return report(cmd, changed, err, fmt.Sprintf("%s at interval %d", n.Title, pos))
		})
	},
}

func init() {
	addCmd.Flags().StringVarP(&addCurve, "curve", "c", "", "Curve the note follows")
	addCmd.Flags().StringVarP(&addParent, "parent", "p", "", "Add the note under this note")
	mvCmd.Flags().BoolVar(&mvBefore, "before", false, "Place before the target instead of inside")
	mvCmd.Flags().BoolVar(&mvAfter, "after", false, "Place after the target instead of inside")
	linkCmd.Flags().BoolVar(&linkClear, "clear", false, "Remove the link")
	scheduleCmd.Flags().BoolVar(&scheduleClear, "clear", false, "Mark the note as never scheduled")

	rootCmd.AddCommand(addCmd, renameCmd, rmCmd, mvCmd, linkCmd, scheduleCmd,
		doneCmd, skipCmd, bindCmd, cursorCmd)
}
