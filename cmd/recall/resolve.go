package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/notes"
)

// resolveNote finds a note by exact key, unique key prefix or suffix or unique
// case-insensitive title, in that order.
func resolveNote(eng *recall.Engine, ref string) (core.Note, error) {
	if n, ok := eng.Find(ref); ok {
		return n, nil
	}

	var byPart, byTitle []core.Note
	notes.Walk(eng.Snapshot().Notes, func(n core.Note, _ int) bool {
		if matchKey(n.Key, ref) {
			byPart = append(byPart, n)
		}
		if strings.EqualFold(n.Title, ref) {
			byTitle = append(byTitle, n)
		}
		return true
	})
	for _, matches := range [][]core.Note{byPart, byTitle} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return core.Note{}, fmt.Errorf("%q is ambiguous (%d notes match)", ref, len(matches))
		}
	}
	return core.Note{}, fmt.Errorf("note %q: %w", ref, core.ErrNotFound)
}

// resolveCurve finds a curve by exact id, unique id prefix or suffix or unique
// case-insensitive title.
func resolveCurve(eng *recall.Engine, ref string) (core.Curve, error) {
	if c, ok := eng.Curve(ref); ok {
		return c, nil
	}

	var byPart, byTitle []core.Curve
	for _, c := range eng.Snapshot().ForgettingCurves {
		if matchKey(c.ID, ref) {
			byPart = append(byPart, c)
		}
		if strings.EqualFold(c.Title, ref) {
			byTitle = append(byTitle, c)
		}
	}
	for _, matches := range [][]core.Curve{byPart, byTitle} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return core.Curve{}, fmt.Errorf("%q is ambiguous (%d curves match)", ref, len(matches))
		}
	}
	return core.Curve{}, fmt.Errorf("curve %q: %w", ref, core.ErrCurveNotFound)
}

// resolveInterval finds an interval of c by key, key prefix or suffix or 1-based
// position.
func resolveInterval(c core.Curve, ref string) (core.Interval, int, error) {
	var pos int
	if _, err := fmt.Sscanf(ref, "%d", &pos); err == nil && fmt.Sprint(pos) == ref {
		if iv, ok := c.IntervalAt(pos); ok {
			return iv, pos, nil
		}
	}
	found := -1
	for i, iv := range c.Intervals {
		if iv.Key == ref {
			return iv, i + 1, nil
		}
		if matchKey(iv.Key, ref) {
			if found >= 0 {
				return core.Interval{}, 0, fmt.Errorf("%q is ambiguous", ref)
			}
			found = i
		}
	}
	if found < 0 {
		return core.Interval{}, 0, fmt.Errorf("interval %q: %w", ref, core.ErrIntervalOutOfRange)
	}
	return c.Intervals[found], found + 1, nil
}

// matchKey accepts a prefix or a suffix of key. Keys are ULIDs: the prefix
// encodes the creation time and shortKey prints the suffix.
func matchKey(key, ref string) bool {
	return ref != "" && (strings.HasPrefix(key, ref) || strings.HasSuffix(key, ref))
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[len(key)-8:]
	}
	return key
}
