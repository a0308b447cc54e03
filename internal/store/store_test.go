package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fennwick/spelldash/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "spelldash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestUpsertAndLoadPerformance(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	lastSeen := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	perf := model.WordPerformance{
		Word:                 "Cat",
		TimesCorrectFirstTry: 1,
		TotalAttempts:        1,
		LastSeen:             lastSeen,
	}
	if err := st.UpsertPerformance(ctx, "alice", perf); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	perf.TimesMistakes = 1
	perf.TotalAttempts = 2
	perf.LastSeen = lastSeen.Add(time.Hour)
	if err := st.UpsertPerformance(ctx, "alice", perf); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	loaded, err := st.LoadPerformance(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := loaded["cat"]
	if !ok {
		t.Fatalf("keys must be lowercase-normalized: %+v", loaded)
	}
	if got.TimesCorrectFirstTry != 1 || got.TimesMistakes != 1 || got.TotalAttempts != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.LastSeen.Equal(lastSeen.Add(time.Hour)) {
		t.Fatalf("unexpected last seen: %v", got.LastSeen)
	}

	other, err := st.LoadPerformance(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("learners must not share performance: %+v", other)
	}
}

func TestResetPerformance(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, word := range []string{"cat", "dog"} {
		if err := st.UpsertPerformance(ctx, "alice", model.WordPerformance{Word: word, LastSeen: now}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := st.UpsertPerformance(ctx, "bob", model.WordPerformance{Word: "cat", LastSeen: now}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := st.ResetPerformance(ctx, "alice")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted records, got %d", deleted)
	}
	remaining, err := st.LoadPerformance(ctx, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("reset must not touch other learners: %+v", remaining)
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		startedAt := start.Add(time.Duration(i) * time.Hour)
		endedAt := startedAt.Add(10 * time.Minute)
		record := model.SessionRecord{
			Learner:        "alice",
			StartedAt:      startedAt,
			EndedAt:        endedAt,
			TotalScore:     100 * (i + 1),
			LivesRemaining: 1,
			LevelReached:   2,
			WordsCompleted: 4,
			Rounds: []model.RoundResult{
				{
					Word:           "cat",
					Attempts:       []model.Attempt{{TypedText: "cat", Correct: true, At: startedAt}},
					ScoreEarned:    40,
					ResponseTimeMs: 1000,
					RoundStartedAt: startedAt,
					RoundEndedAt:   startedAt.Add(5 * time.Second),
					Level:          1,
				},
				{
					Word:           "dog",
					ResponseTimeMs: 4800,
					RoundStartedAt: startedAt,
					RoundEndedAt:   startedAt.Add(15 * time.Second),
					Level:          1,
					TimedOut:       true,
				},
			},
		}
		if _, err := st.InsertSession(ctx, record); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{Learner: "alice"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	first := sessions[0]
	if first.TotalScore != 100 || first.RoundsPlayed != 2 || first.Timeouts != 1 {
		t.Fatalf("unexpected first session: %+v", first)
	}
	if first.AvgResponseMs != 2900 {
		t.Fatalf("avg response = %v, want 2900", first.AvgResponseMs)
	}

	since := start.Add(time.Hour)
	filtered, err := st.ListSessions(ctx, model.StatsConfig{Learner: "alice", Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("since filter: expected 2 sessions, got %d", len(filtered))
	}

	none, err := st.ListSessions(ctx, model.StatsConfig{Learner: "bob"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no sessions for bob, got %d", len(none))
	}
}
