package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/recall/pkg/core"
)

// timeNow is the clock of the CLI.
var timeNow = time.Now

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusMark(s core.Status) string {
	switch s {
	case core.StatusWarningSevere:
		return "!!"
	case core.StatusWarning:
		return "! "
	default:
		return "  "
	}
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatInterval(iv core.Interval) string {
	return strconv.FormatFloat(iv.Display(), 'f', -1, 64) + " " + string(iv.Format)
}

// printNote writes one line for n, indented by depth.
func printNote(w io.Writer, n core.Note, depth int) {
	line := fmt.Sprintf("%s %s%s [%s]", statusMark(n.Status), strings.Repeat("  ", depth), n.Title, shortKey(n.Key))
	if n.Scheduled() {
		line += "  next " + formatWhen(n.NextReviewDate)
	}
	if n.LinkNote != "" {
		line += "  -> " + n.LinkNote
	}
	fmt.Fprintln(w, line)
}

// parseWhen accepts RFC 3339, "2006-01-02 15:04", "2006-01-02" (local time)
// or a duration from now such as "36h".
func parseWhen(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}
