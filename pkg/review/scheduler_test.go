package review_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/review"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func twoStep() core.Curve {
	return core.Curve{
		ID: "c1",
		Intervals: []core.Interval{
			{Key: "a", Value: 60},
			{Key: "b", Value: 3600},
		},
	}
}

func TestMarkDoneProgression(t *testing.T) {
	curve := twoStep()
	note := core.Note{Key: "n", ForgettingCurveID: "c1", LastActiveInterval: 1, NextReviewDate: t0}

	first, err := review.MarkDone(note, curve, true, t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(70*time.Second), first.NextReviewDate)
	assert.Equal(t, []time.Time{t0}, first.ReviewDates)
	assert.Equal(t, 2, first.LastActiveInterval)

	second, err := review.MarkDone(first, curve, true, t0.Add(80*time.Second))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(80*time.Second+3600*time.Second), second.NextReviewDate)
	assert.Equal(t, 2, second.LastActiveInterval, "cursor is clamped to the last interval")
	assert.Equal(t, []time.Time{t0, t0.Add(70 * time.Second)}, second.ReviewDates)

	// The earlier value is not aliased by the later append.
	assert.Len(t, first.ReviewDates, 1)
}

func TestMarkDoneMonotonic(t *testing.T) {
	curve := twoStep()
	note := core.Note{Key: "n", ForgettingCurveID: "c1", LastActiveInterval: 1, NextReviewDate: t0}
	now := t0
	for range 5 {
		next, err := review.MarkDone(note, curve, true, now)
		require.NoError(t, err)
		assert.True(t, next.NextReviewDate.After(now))
		assert.LessOrEqual(t, next.LastActiveInterval, len(curve.Intervals))
		note = next
		now = next.NextReviewDate
	}
}

func TestMarkDoneUnscheduledDefaultsToNow(t *testing.T) {
	note := core.Note{Key: "n", ForgettingCurveID: "c1", LastActiveInterval: 1}
	out, err := review.MarkDone(note, twoStep(), true, t0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t0}, out.ReviewDates)
	assert.Equal(t, t0.Add(time.Minute), out.NextReviewDate)
}

func TestMarkDoneFailureIsNonMutating(t *testing.T) {
	original := core.Note{
		Key:                "n",
		ForgettingCurveID:  "c1",
		LastActiveInterval: 3,
		NextReviewDate:     t0,
		ReviewDates:        []time.Time{t0.Add(-time.Hour)},
	}

	t.Run("Interval out of range", func(t *testing.T) {
		out, err := review.MarkDone(original, twoStep(), true, t0)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrIntervalOutOfRange)

		var se *core.ScheduleError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 3, se.Cursor)
		assert.Equal(t, original, out)
	})

	t.Run("Curve not found", func(t *testing.T) {
		out, err := review.MarkDone(original, core.Curve{}, false, t0)
		assert.ErrorIs(t, err, core.ErrCurveNotFound)
		assert.Equal(t, original, out)
	})

	t.Run("Unbound note", func(t *testing.T) {
		n := original
		n.ForgettingCurveID = ""
		out, err := review.MarkDone(n, core.Curve{Intervals: twoStep().Intervals}, true, t0)
		assert.ErrorIs(t, err, core.ErrCurveNotFound)
		assert.Equal(t, n, out)
	})

	t.Run("Cursor never set", func(t *testing.T) {
		n := original
		n.LastActiveInterval = 0
		out, err := review.MarkDone(n, twoStep(), true, t0)
		assert.ErrorIs(t, err, core.ErrIntervalOutOfRange)
		assert.Equal(t, n, out)
	})

	t.Run("Empty curve", func(t *testing.T) {
		n := original
		n.LastActiveInterval = 1
		_, err := review.MarkDone(n, core.Curve{ID: "c1"}, true, t0)
		assert.ErrorIs(t, err, core.ErrIntervalOutOfRange)
	})
}

func TestMarkSkipped(t *testing.T) {
	note := core.Note{Key: "n", NextReviewDate: t0, LastActiveInterval: 2}
	out := review.MarkSkipped(note, t0.Add(time.Hour))
	assert.Equal(t, []time.Time{t0.Add(time.Hour)}, out.SkippedReviewDates)
	assert.Equal(t, t0, out.NextReviewDate)
	assert.Equal(t, 2, out.LastActiveInterval)
	assert.Empty(t, note.SkippedReviewDates)
}

func TestBindCurve(t *testing.T) {
	note := core.Note{Key: "n", ForgettingCurveID: "c1", LastActiveInterval: 4, ReviewDates: []time.Time{t0}}

	same, changed := review.BindCurve(note, "c1")
	assert.False(t, changed)
	assert.Equal(t, 4, same.LastActiveInterval)

	other, changed := review.BindCurve(note, "c2")
	require.True(t, changed)
	assert.Equal(t, "c2", other.ForgettingCurveID)
	assert.Equal(t, review.FirstInterval, other.LastActiveInterval)
	assert.Equal(t, []time.Time{t0}, other.ReviewDates, "history survives a curve switch")
}

func TestSetActiveInterval(t *testing.T) {
	note := core.Note{Key: "n", LastActiveInterval: 1}

	out, err := review.SetActiveInterval(note, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, out.LastActiveInterval)

	_, err = review.SetActiveInterval(note, 0)
	assert.ErrorIs(t, err, core.ErrInvalidInterval)

	iv, ok := review.NextInterval(core.Note{LastActiveInterval: 2}, twoStep())
	require.True(t, ok)
	assert.Equal(t, "b", iv.Key)
}

func TestMarkDoneHugeIntervalStaysInFuture(t *testing.T) {
	for _, value := range []int64{200000 * 86400, core.MaxIntervalSeconds, math.MaxInt64} {
		curve := core.Curve{ID: "c1", Intervals: []core.Interval{{Key: "a", Value: value}}}
		note := core.Note{Key: "n", ForgettingCurveID: "c1", LastActiveInterval: 1, NextReviewDate: t0}

		out, err := review.MarkDone(note, curve, true, t0)
		require.NoError(t, err)
		assert.True(t, out.NextReviewDate.After(t0), "value %d scheduled at %s", value, out.NextReviewDate)
	}
}
