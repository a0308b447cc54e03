package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/scheduler"
)

// RenderSummary prints a summary of the learner's sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalScore, totalRounds, totalWords, totalTimeouts int
	var totalResponseMs float64
	bestScore := 0
	bestLevel := 0
	for _, s := range sessions {
		totalScore += s.TotalScore
		totalRounds += s.RoundsPlayed
		totalWords += s.WordsCompleted
		totalTimeouts += s.Timeouts
		totalResponseMs += s.AvgResponseMs
		if s.TotalScore > bestScore {
			bestScore = s.TotalScore
		}
		if s.LevelReached > bestLevel {
			bestLevel = s.LevelReached
		}
	}
	count := float64(len(sessions))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(sessions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg score: %.1f\n", float64(totalScore)/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best score: %d\n", bestScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best level: %d\n", bestLevel); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy: %.1f%%\n", SessionAccuracy(totalWords, totalRounds)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Timeouts: %d\n", totalTimeouts); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg response: %.0fms\n", totalResponseMs/count); err != nil {
		return err
	}

	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = float64(s.TotalScore)
	}
	if _, err := fmt.Fprintf(w, "Trend: %s\n", Sparkline(scores)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderWordTable prints per-word performance sorted by practice
// priority so the words most in need of work come first.
func RenderWordTable(w io.Writer, perf map[string]model.WordPerformance, now time.Time, top int) error {
	if len(perf) == 0 {
		_, err := fmt.Fprintln(w, "No word stats found.")
		return err
	}
	ranked := SelectWeakWords(perf, now, top)

	if _, err := fmt.Fprintln(w, "Words Needing Practice"); err != nil {
		return err
	}
	cols := []column{
		{title: "Word"},
		{title: "Priority", rightAlign: true},
		{title: "First-try", rightAlign: true},
		{title: "Mistakes", rightAlign: true},
		{title: "Timeouts", rightAlign: true},
		{title: "Attempts", rightAlign: true},
		{title: "Last seen"},
	}
	rows := make([][]string, 0, len(ranked))
	for _, p := range ranked {
		p := p
		rows = append(rows, []string{
			p.Word,
			fmt.Sprintf("%d", scheduler.PriorityScore(&p, now)),
			fmt.Sprintf("%d", p.TimesCorrectFirstTry),
			fmt.Sprintf("%d", p.TimesMistakes),
			fmt.Sprintf("%d", p.TimesTimeout),
			fmt.Sprintf("%d", p.TotalAttempts),
			lastSeenLabel(p.LastSeen, now),
		})
	}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func lastSeenLabel(lastSeen, now time.Time) string {
	if lastSeen.IsZero() {
		return "never"
	}
	days := int(now.Sub(lastSeen).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%dd ago", days)
	}
}
