package status_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/status"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	p := status.DefaultPolicy()
	tests := []struct {
		name string
		next time.Time
		want core.Status
	}{
		{"Never scheduled", time.Time{}, core.StatusOK},
		{"In the future", now.Add(time.Hour), core.StatusOK},
		{"Due exactly now", now, core.StatusWarning},
		{"One day late", now.Add(-24 * time.Hour), core.StatusWarning},
		{"Just under two days late", now.Add(-48*time.Hour + time.Second), core.StatusWarning},
		{"Exactly two days late", now.Add(-48 * time.Hour), core.StatusWarningSevere},
		{"Three days late", now.Add(-72 * time.Hour), core.StatusWarningSevere},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Classify(tt.next, now, p))
		})
	}

	assert.Equal(t, core.StatusWarningSevere,
		status.Classify(now.Add(-2*time.Hour), now, status.Policy{SevereAfter: time.Hour}))
}

func forest() []core.Note {
	return []core.Note{
		{Key: "a", Title: "A", Status: core.StatusOK, NextReviewDate: now.Add(-24 * time.Hour), Children: []core.Note{
			{Key: "b", Title: "B", Status: core.StatusOK, NextReviewDate: now.Add(-72 * time.Hour)},
			{Key: "c", Title: "C", Status: core.StatusOK, NextReviewDate: now.Add(time.Hour)},
		}},
		{Key: "d", Title: "D", Status: core.StatusWarning},
	}
}

func TestClassifyTree(t *testing.T) {
	in := forest()
	out, changed, transitions := status.ClassifyTree(in, now, status.DefaultPolicy())
	require.True(t, changed)

	assert.Equal(t, core.StatusWarning, out[0].Status)
	assert.Equal(t, core.StatusWarningSevere, out[0].Children[0].Status)
	assert.Equal(t, core.StatusOK, out[0].Children[1].Status)
	assert.Equal(t, core.StatusOK, out[1].Status)

	// Pre-order, transitions only.
	require.Len(t, transitions, 3)
	assert.Equal(t, "a", transitions[0].Key)
	assert.Equal(t, "warning", transitions[0].Level())
	assert.Equal(t, "b", transitions[1].Key)
	assert.Equal(t, "severe", transitions[1].Level())
	assert.Equal(t, "d", transitions[2].Key)
	assert.Equal(t, core.StatusWarning, transitions[2].From)
	assert.Equal(t, core.StatusOK, transitions[2].To)

	// Input untouched.
	assert.Equal(t, forest(), in)
}

func TestClassifyTreeTransitionOnly(t *testing.T) {
	first, _, transitions := status.ClassifyTree(forest(), now, status.DefaultPolicy())
	require.NotEmpty(t, transitions)

	second, changed, transitions := status.ClassifyTree(first, now, status.DefaultPolicy())
	assert.False(t, changed)
	assert.Empty(t, transitions)
	assert.Equal(t, first, second)
}

func TestClassifyTreeFillsMissingStatus(t *testing.T) {
	in := []core.Note{{Key: "a"}, {Key: "b", NextReviewDate: now.Add(-time.Hour)}}
	out, changed, transitions := status.ClassifyTree(in, now, status.DefaultPolicy())
	require.True(t, changed)
	assert.Equal(t, core.StatusOK, out[0].Status)
	require.Len(t, transitions, 1)
	assert.Equal(t, "b", transitions[0].Key)
}

func TestDue(t *testing.T) {
	out, _, _ := status.ClassifyTree(forest(), now, status.DefaultPolicy())
	due := status.Due(out)
	require.Len(t, due, 2)
	assert.Equal(t, "a", due[0].Key)
	assert.Equal(t, "b", due[1].Key)
}
