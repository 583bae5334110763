package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/curves"
)

// Curve returns the curve with id.
func (e *Engine) Curve(id string) (core.Curve, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := curves.Find(e.doc.ForgettingCurves, id)
	if !ok {
		return core.Curve{}, false
	}
	c.Intervals = append([]core.Interval(nil), c.Intervals...)
	return c, true
}

// AddCurve creates an empty curve with a fresh id.
func (e *Engine) AddCurve(ctx context.Context, title string) (core.Curve, error) {
	curve := core.Curve{ID: core.NewKey(), Title: title}
	_, err := e.apply(ctx, OpAddCurve, curve.ID, func(doc core.Document) (core.Document, bool, error) {
		catalog, err := curves.Add(doc.ForgettingCurves, curve)
		if err != nil {
			return doc, false, err
		}
		doc.ForgettingCurves = catalog
		return doc, true, nil
	})
	var perr *core.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		return core.Curve{}, err
	}
	return curve, err
}

// editCatalog commits fn applied to the curve catalog.
func (e *Engine) editCatalog(ctx context.Context, op, id string, fn func([]core.Curve) ([]core.Curve, bool)) (bool, error) {
	return e.apply(ctx, op, id, func(doc core.Document) (core.Document, bool, error) {
		catalog, changed := fn(doc.ForgettingCurves)
		doc.ForgettingCurves = catalog
		return doc, changed, nil
	})
}

// RemoveCurve deletes a curve. Notes bound to it keep the dangling id.
func (e *Engine) RemoveCurve(ctx context.Context, id string) (bool, error) {
	return e.editCatalog(ctx, OpRemoveCurve, id, func(c []core.Curve) ([]core.Curve, bool) {
		return curves.Remove(c, id)
	})
}

// RenameCurve sets the title of a curve.
func (e *Engine) RenameCurve(ctx context.Context, id, title string) (bool, error) {
	return e.editCatalog(ctx, OpRenameCurve, id, func(c []core.Curve) ([]core.Curve, bool) {
		return curves.Update(c, id, curves.CurvePatch{Title: &title})
	})
}

// AddInterval appends an interval of seconds to a curve, displayed in
// format. The curve must exist.
func (e *Engine) AddInterval(ctx context.Context, curveID string, seconds int64, format core.IntervalFormat) (core.Interval, error) {
	iv := curves.NewInterval()
	iv.Value = core.ClampSeconds(seconds)
	if format != "" {
		iv.Format = format
	}
	_, err := e.apply(ctx, OpAddInterval, curveID, func(doc core.Document) (core.Document, bool, error) {
		catalog, changed := curves.AddInterval(doc.ForgettingCurves, curveID, iv)
		if !changed {
			return doc, false, fmt.Errorf("%w: %s", core.ErrCurveNotFound, curveID)
		}
		doc.ForgettingCurves = catalog
		return doc, true, nil
	})
	var perr *core.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		return core.Interval{}, err
	}
	return iv, err
}

// RemoveInterval deletes an interval from a curve.
func (e *Engine) RemoveInterval(ctx context.Context, curveID, key string) (bool, error) {
	return e.editCatalog(ctx, OpRemoveInterval, curveID, func(c []core.Curve) ([]core.Curve, bool) {
		return curves.RemoveInterval(c, curveID, key)
	})
}

// SetIntervalValue stores seconds as the interval value, clamped to zero.
func (e *Engine) SetIntervalValue(ctx context.Context, curveID, key string, seconds int64) (bool, error) {
	return e.editCatalog(ctx, OpSetIntervalValue, curveID, func(c []core.Curve) ([]core.Curve, bool) {
		return curves.SetIntervalValue(c, curveID, key, seconds)
	})
}

// SetIntervalDisplayValue sets the interval value expressed in the
// interval's own display format.
func (e *Engine) SetIntervalDisplayValue(ctx context.Context, curveID, key string, value float64) (bool, error) {
	return e.editCatalog(ctx, OpSetIntervalValue, curveID, func(c []core.Curve) ([]core.Curve, bool) {
		curve, ok := curves.Find(c, curveID)
		if !ok {
			return c, false
		}
		for _, iv := range curve.Intervals {
			if iv.Key == key {
				return curves.SetIntervalValue(c, curveID, key, curves.ToSeconds(value, iv.Format))
			}
		}
		return c, false
	})
}

// SetIntervalFormat changes the display unit of an interval.
func (e *Engine) SetIntervalFormat(ctx context.Context, curveID, key string, format core.IntervalFormat) (bool, error) {
	return e.editCatalog(ctx, OpSetIntervalFormat, curveID, func(c []core.Curve) ([]core.Curve, bool) {
		return curves.SetIntervalFormat(c, curveID, key, format)
	})
}

// ReorderIntervals moves an interval from one position to another.
func (e *Engine) ReorderIntervals(ctx context.Context, curveID string, from, to int) (bool, error) {
	return e.editCatalog(ctx, OpReorderIntervals, curveID, func(c []core.Curve) ([]core.Curve, bool) {
		return curves.ReorderIntervals(c, curveID, from, to)
	})
}
