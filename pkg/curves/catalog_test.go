package curves_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/curves"
)

func catalog() []core.Curve {
	return []core.Curve{
		{
			ID:    "c1",
			Title: "default",
			Intervals: []core.Interval{
				{Key: "i1", Value: 60, Format: core.FormatMinutes},
				{Key: "i2", Value: 3600, Format: core.FormatHours},
				{Key: "i3", Value: 86400, Format: core.FormatDays},
			},
		},
		{ID: "c2", Title: "empty"},
	}
}

func intervalKeys(c core.Curve) []string {
	keys := make([]string, 0, len(c.Intervals))
	for _, iv := range c.Intervals {
		keys = append(keys, iv.Key)
	}
	return keys
}

func TestAddAndFind(t *testing.T) {
	cat, err := curves.Add(catalog(), core.Curve{ID: "c3", Title: "new", Intervals: []core.Interval{{Key: "x", Value: -5}}})
	require.NoError(t, err)
	require.Len(t, cat, 3)

	got, ok := curves.Find(cat, "c3")
	require.True(t, ok)
	assert.Equal(t, int64(0), got.Intervals[0].Value, "negative values are clamped on write")

	_, err = curves.Add(cat, core.Curve{ID: "c1"})
	assert.ErrorIs(t, err, core.ErrDuplicateCurve)

	_, err = curves.Add(cat, core.Curve{Title: "no id"})
	assert.Error(t, err)

	_, ok = curves.Find(cat, "missing")
	assert.False(t, ok)
}

func TestFindEmptyID(t *testing.T) {
	catalog := []core.Curve{{Title: "no id"}}
	_, ok := curves.Find(catalog, "")
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	in := catalog()
	out, changed := curves.Remove(in, "c1")
	require.True(t, changed)
	assert.Len(t, out, 1)
	assert.Len(t, in, 2)

	_, changed = curves.Remove(in, "missing")
	assert.False(t, changed)
}

func TestUpdate(t *testing.T) {
	title := "renamed"
	out, changed := curves.Update(catalog(), "c2", curves.CurvePatch{Title: &title})
	require.True(t, changed)
	got, _ := curves.Find(out, "c2")
	assert.Equal(t, "renamed", got.Title)

	_, changed = curves.Update(out, "c2", curves.CurvePatch{Title: &title})
	assert.False(t, changed, "same title is not a change")
}

func TestReorderIntervals(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
		changed  bool
	}{
		{"First to last", 0, 2, []string{"i2", "i3", "i1"}, true},
		{"Last to first", 2, 0, []string{"i3", "i1", "i2"}, true},
		{"Adjacent", 1, 2, []string{"i1", "i3", "i2"}, true},
		{"Same index", 1, 1, []string{"i1", "i2", "i3"}, false},
		{"Out of range", 0, 3, []string{"i1", "i2", "i3"}, false},
		{"Negative", -1, 0, []string{"i1", "i2", "i3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := catalog()
			out, changed := curves.ReorderIntervals(in, "c1", tt.from, tt.to)
			assert.Equal(t, tt.changed, changed)
			got, _ := curves.Find(out, "c1")
			assert.Equal(t, tt.want, intervalKeys(got))

			orig, _ := curves.Find(in, "c1")
			assert.Equal(t, []string{"i1", "i2", "i3"}, intervalKeys(orig))
		})
	}
}

func TestSetIntervalValue(t *testing.T) {
	out, changed := curves.SetIntervalValue(catalog(), "c1", "i2", 7200)
	require.True(t, changed)
	got, _ := curves.Find(out, "c1")
	assert.Equal(t, int64(7200), got.Intervals[1].Value)

	out, changed = curves.SetIntervalValue(catalog(), "c1", "i2", -10)
	require.True(t, changed)
	got, _ = curves.Find(out, "c1")
	assert.Equal(t, int64(0), got.Intervals[1].Value)

	_, changed = curves.SetIntervalValue(catalog(), "c1", "missing", 1)
	assert.False(t, changed)
	_, changed = curves.SetIntervalValue(catalog(), "missing", "i1", 1)
	assert.False(t, changed)
}

func TestIntervalCRUD(t *testing.T) {
	iv := curves.NewInterval()
	assert.NotEmpty(t, iv.Key)
	assert.Equal(t, int64(0), iv.Value)
	assert.Equal(t, core.FormatSeconds, iv.Format)

	out, changed := curves.AddInterval(catalog(), "c2", iv)
	require.True(t, changed)
	got, _ := curves.Find(out, "c2")
	require.Len(t, got.Intervals, 1)

	out, changed = curves.SetIntervalFormat(out, "c2", iv.Key, core.FormatDays)
	require.True(t, changed)
	got, _ = curves.Find(out, "c2")
	assert.Equal(t, core.FormatDays, got.Intervals[0].Format)

	out, changed = curves.RemoveInterval(out, "c2", iv.Key)
	require.True(t, changed)
	got, _ = curves.Find(out, "c2")
	assert.Empty(t, got.Intervals)

	_, changed = curves.RemoveInterval(out, "c2", iv.Key)
	assert.False(t, changed)
}

func TestToSeconds(t *testing.T) {
	assert.Equal(t, int64(90), curves.ToSeconds(1.5, core.FormatMinutes))
	assert.Equal(t, int64(7200), curves.ToSeconds(2, core.FormatHours))
	assert.Equal(t, int64(86400), curves.ToSeconds(1, core.FormatDays))
	assert.Equal(t, int64(3), curves.ToSeconds(3, core.FormatSeconds))
	assert.Equal(t, int64(0), curves.ToSeconds(-4, core.FormatDays))
	assert.Equal(t, core.MaxIntervalSeconds, curves.ToSeconds(200000, core.FormatDays))
	assert.Equal(t, core.MaxIntervalSeconds, curves.ToSeconds(math.Inf(1), core.FormatSeconds))
	assert.Equal(t, int64(0), curves.ToSeconds(math.NaN(), core.FormatHours))
}

func TestIntervalValuesFitDuration(t *testing.T) {
	out, changed := curves.SetIntervalValue(catalog(), "c1", "i1", math.MaxInt64)
	require.True(t, changed)
	got, _ := curves.Find(out, "c1")
	assert.Equal(t, core.MaxIntervalSeconds, got.Intervals[0].Value)

	out, changed = curves.AddInterval(catalog(), "c2", core.Interval{Key: "big", Value: math.MaxInt64})
	require.True(t, changed)
	got, _ = curves.Find(out, "c2")
	assert.Equal(t, core.MaxIntervalSeconds, got.Intervals[0].Value)

	out, err := curves.Add(nil, core.Curve{ID: "c3", Intervals: []core.Interval{{Key: "x", Value: math.MaxInt64}}})
	require.NoError(t, err)
	assert.Equal(t, core.MaxIntervalSeconds, out[0].Intervals[0].Value)
	assert.Positive(t, out[0].Intervals[0].Duration())
}
