package recall_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/recall"
)

// Example_basic creates a curve, adds a note following it and reviews it.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "recall-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	eng, err := recall.New(ctx, tmpDir, recall.WithClock(func() time.Time { return now }))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close(ctx)

	curve, err := eng.AddCurve(ctx, "default")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.AddInterval(ctx, curve.ID, 3600, "hours"); err != nil {
		log.Fatal(err)
	}

	note, err := eng.AddNote(ctx, "Go channels", curve.ID)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.MarkDone(ctx, note.Key); err != nil {
		log.Fatal(err)
	}

	done, _ := eng.Find(note.Key)
	fmt.Printf("%s: %d review(s), next at %s\n", done.Title, len(done.ReviewDates), done.NextReviewDate.Format(time.Kitchen))
	// Output:
	// Go channels: 1 review(s), next at 10:00AM
}
