// Package curves manages the forgetting curve catalog.
//
// Like package notes, every function takes the catalog by value and returns
// a new slice; the input is never modified.
package curves

import (
	"fmt"
	"slices"

	"github.com/aretw0/recall/pkg/core"
)

// CurvePatch is a partial update of a curve. Nil fields are left as is.
type CurvePatch struct {
	Title     *string
	Intervals *[]core.Interval
}

// Find returns the curve with id. The empty id never matches, so an unbound
// note does not resolve to a curve.
func Find(catalog []core.Curve, id string) (core.Curve, bool) {
	if id == "" {
		return core.Curve{}, false
	}
	i := index(catalog, id)
	if i < 0 {
		return core.Curve{}, false
	}
	return catalog[i], true
}

// Add appends curve to the catalog. Curve ids are unique.
func Add(catalog []core.Curve, curve core.Curve) ([]core.Curve, error) {
	if curve.ID == "" {
		return catalog, fmt.Errorf("curve %q has an empty id", curve.Title)
	}
	if index(catalog, curve.ID) >= 0 {
		return catalog, fmt.Errorf("%w: %s", core.ErrDuplicateCurve, curve.ID)
	}
	curve.Intervals = clampAll(curve.Intervals)
	return append(slices.Clone(catalog), curve), nil
}

// Remove deletes the curve with id. Notes bound to it are not touched and
// keep a dangling reference.
func Remove(catalog []core.Curve, id string) ([]core.Curve, bool) {
	i := index(catalog, id)
	if i < 0 {
		return catalog, false
	}
	return slices.Delete(slices.Clone(catalog), i, i+1), true
}

// Update merges patch into the curve with id.
func Update(catalog []core.Curve, id string, patch CurvePatch) ([]core.Curve, bool) {
	return edit(catalog, id, func(c *core.Curve) bool {
		changed := false
		if patch.Title != nil && *patch.Title != c.Title {
			c.Title = *patch.Title
			changed = true
		}
		if patch.Intervals != nil {
			c.Intervals = clampAll(*patch.Intervals)
			changed = true
		}
		return changed
	})
}

// ReorderIntervals moves the interval at from to position to (a stable
// splice). Out of range indexes and from == to are no-ops.
func ReorderIntervals(catalog []core.Curve, id string, from, to int) ([]core.Curve, bool) {
	return edit(catalog, id, func(c *core.Curve) bool {
		n := len(c.Intervals)
		if from == to || from < 0 || to < 0 || from >= n || to >= n {
			return false
		}
		moved := c.Intervals[from]
		c.Intervals = slices.Delete(c.Intervals, from, from+1)
		c.Intervals = slices.Insert(c.Intervals, to, moved)
		return true
	})
}

// SetIntervalValue stores seconds as the value of the interval with key.
// Negative input is clamped to zero.
func SetIntervalValue(catalog []core.Curve, id, key string, seconds int64) ([]core.Curve, bool) {
	return editInterval(catalog, id, key, func(iv *core.Interval) bool {
		v := core.ClampSeconds(seconds)
		if iv.Value == v {
			return false
		}
		iv.Value = v
		return true
	})
}

// SetIntervalFormat changes the display unit of an interval. The stored
// seconds are unchanged.
func SetIntervalFormat(catalog []core.Curve, id, key string, format core.IntervalFormat) ([]core.Curve, bool) {
	return editInterval(catalog, id, key, func(iv *core.Interval) bool {
		if iv.Format == format {
			return false
		}
		iv.Format = format
		return true
	})
}

// AddInterval appends iv to the curve with id.
func AddInterval(catalog []core.Curve, id string, iv core.Interval) ([]core.Curve, bool) {
	return edit(catalog, id, func(c *core.Curve) bool {
		iv.Value = core.ClampSeconds(iv.Value)
		if iv.Format == "" {
			iv.Format = core.FormatSeconds
		}
		c.Intervals = append(c.Intervals, iv)
		return true
	})
}

// RemoveInterval deletes the interval with key from the curve with id.
func RemoveInterval(catalog []core.Curve, id, key string) ([]core.Curve, bool) {
	return edit(catalog, id, func(c *core.Curve) bool {
		i := slices.IndexFunc(c.Intervals, func(iv core.Interval) bool { return iv.Key == key })
		if i < 0 {
			return false
		}
		c.Intervals = slices.Delete(c.Intervals, i, i+1)
		return true
	})
}

// NewInterval returns a fresh interval with a new key, value 0 and the
// seconds format.
func NewInterval() core.Interval {
	return core.Interval{Key: core.NewKey(), Format: core.FormatSeconds}
}

// ToSeconds converts a value expressed in format into whole seconds,
// rounding to the nearest second. The result is clamped to
// [0, core.MaxIntervalSeconds].
func ToSeconds(value float64, format core.IntervalFormat) int64 {
	return core.ClampFloatSeconds(value * float64(format.Unit()))
}

func index(catalog []core.Curve, id string) int {
	return slices.IndexFunc(catalog, func(c core.Curve) bool { return c.ID == id })
}

// edit applies fn to a private copy of the curve with id.
func edit(catalog []core.Curve, id string, fn func(*core.Curve) bool) ([]core.Curve, bool) {
	i := index(catalog, id)
	if i < 0 {
		return catalog, false
	}
	c := catalog[i]
	c.Intervals = slices.Clone(c.Intervals)
	if !fn(&c) {
		return catalog, false
	}
	out := slices.Clone(catalog)
	out[i] = c
	return out, true
}

func editInterval(catalog []core.Curve, id, key string, fn func(*core.Interval) bool) ([]core.Curve, bool) {
	return edit(catalog, id, func(c *core.Curve) bool {
		i := slices.IndexFunc(c.Intervals, func(iv core.Interval) bool { return iv.Key == key })
		if i < 0 {
			return false
		}
		return fn(&c.Intervals[i])
	})
}

func clampAll(intervals []core.Interval) []core.Interval {
	out := slices.Clone(intervals)
	for i := range out {
		out[i].Value = core.ClampSeconds(out[i].Value)
	}
	return out
}
