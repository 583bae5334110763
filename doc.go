// Package recall is the composition root of the recall spaced-repetition
// engine.
//
// A recall document is a forest of notes plus a catalog of forgetting
// curves. Each note may follow a curve: marking it done advances a cursor
// along the curve's intervals and schedules the next review. A background
// classifier marks notes whose review is due (warning) or long overdue
// (warningSevere) and reports every change of classification to a notifier.
//
// The engine is storage agnostic. The default adapter keeps the document in a
// JSON or YAML file, optionally versioned with git and watched for external
// edits; a SQLite adapter keeps a revision history instead.
//
// Usage:
//
//	eng, err := recall.New(ctx, "./notes",
//		recall.WithVault("./notes", "", ""),
//		recall.WithNotifier(notifier),
//	)
//	if err != nil {
//		return err
//	}
//	defer eng.Close(ctx)
//
//	curve, _ := eng.AddCurve(ctx, "default")
//	note, _ := eng.AddNote(ctx, "Channels", curve.ID)
//	_, err = eng.MarkDone(ctx, note.Key)
package recall
