package core

import (
	"fmt"
	"math"
	"time"
)

// IntervalFormat is the display unit of an interval. Values are always
// stored in seconds; the format only affects how they are shown and edited.
type IntervalFormat string

const (
	FormatSeconds IntervalFormat = "seconds"
	FormatMinutes IntervalFormat = "minutes"
	FormatHours   IntervalFormat = "hours"
	FormatDays    IntervalFormat = "days"
)

// Unit returns the number of seconds in one unit of the format.
// Unknown formats count as seconds.
func (f IntervalFormat) Unit() int64 {
	switch f {
	case FormatMinutes:
		return 60
	case FormatHours:
		return 3600
	case FormatDays:
		return 86400
	default:
		return 1
	}
}

// ParseIntervalFormat validates a user supplied format name.
func ParseIntervalFormat(s string) (IntervalFormat, error) {
	switch f := IntervalFormat(s); f {
	case FormatSeconds, FormatMinutes, FormatHours, FormatDays:
		return f, nil
	}
	return "", fmt.Errorf("unknown interval format %q (want seconds|minutes|hours|days)", s)
}

// MaxIntervalSeconds is the longest interval whose duration still fits in a
// time.Duration.
const MaxIntervalSeconds = math.MaxInt64 / int64(time.Second)

// ClampSeconds bounds an interval value to [0, MaxIntervalSeconds].
func ClampSeconds(v int64) int64 {
	return min(max(v, 0), MaxIntervalSeconds)
}

// ClampFloatSeconds rounds v to whole seconds within [0, MaxIntervalSeconds].
// NaN counts as zero.
func ClampFloatSeconds(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= float64(MaxIntervalSeconds):
		return MaxIntervalSeconds
	}
	return int64(math.Round(v))
}

// Duration returns the interval as a time.Duration, saturating at the
// bounds of ClampSeconds.
func (i Interval) Duration() time.Duration {
	return time.Duration(ClampSeconds(i.Value)) * time.Second
}

// Interval is one step of a forgetting curve. Value is in seconds and never negative.
type Interval struct {
	Key    string
	Value  int64
	Format IntervalFormat
}

// Display returns the value expressed in the interval's display unit.
func (i Interval) Display() float64 {
	return float64(i.Value) / float64(i.Format.Unit())
}

// Curve is a named forgetting curve: an ordered progression of review intervals.
type Curve struct {
	ID        string
	Title     string
	Intervals []Interval
}

// IntervalAt resolves a 1-based cursor to an interval.
func (c Curve) IntervalAt(cursor int) (Interval, bool) {
	if cursor < 1 || cursor > len(c.Intervals) {
		return Interval{}, false
	}
	return c.Intervals[cursor-1], true
}
