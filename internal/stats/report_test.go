package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fennwick/spelldash/internal/model"
)

func TestRenderSummary(t *testing.T) {
	sessions := []model.SessionAggregate{
		{TotalScore: 100, LevelReached: 2, WordsCompleted: 8, RoundsPlayed: 10, Timeouts: 1, AvgResponseMs: 2000},
		{TotalScore: 200, LevelReached: 4, WordsCompleted: 9, RoundsPlayed: 10, Timeouts: 0, AvgResponseMs: 3000},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Avg score: 150.0", "Best score: 200", "Best level: 4", "Accuracy: 85.0%", "Timeouts: 1", "Avg response: 2500ms", "Trend:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestRenderWordTable(t *testing.T) {
	now := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	perf := map[string]model.WordPerformance{
		"dog": {Word: "dog", TimesMistakes: 3, TotalAttempts: 3, LastSeen: now.Add(-48 * time.Hour)},
		"cat": {Word: "cat", TimesCorrectFirstTry: 5, TotalAttempts: 5, LastSeen: now},
	}
	var buf bytes.Buffer
	if err := RenderWordTable(&buf, perf, now, 10); err != nil {
		t.Fatalf("render word table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Word", "Priority", "dog", "cat", "2d ago", "today"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "dog") > strings.Index(out, "cat") {
		t.Fatalf("weakest word must come first:\n%s", out)
	}
}

func TestLastSeenLabel(t *testing.T) {
	now := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		lastSeen time.Time
		want     string
	}{
		{time.Time{}, "never"},
		{now.Add(-time.Hour), "today"},
		{now.Add(-25 * time.Hour), "yesterday"},
		{now.Add(-72 * time.Hour), "3d ago"},
	}
	for _, tc := range cases {
		if got := lastSeenLabel(tc.lastSeen, now); got != tc.want {
			t.Fatalf("lastSeenLabel(%v) = %q, want %q", tc.lastSeen, got, tc.want)
		}
	}
}
