package stats

import (
	"testing"
	"time"

	"github.com/fennwick/spelldash/internal/model"
)

func TestSelectWeakWords(t *testing.T) {
	now := time.Now()
	perf := map[string]model.WordPerformance{
		"cat": {Word: "cat", TimesCorrectFirstTry: 10, TotalAttempts: 10, LastSeen: now},
		"dog": {Word: "dog", TimesMistakes: 3, TotalAttempts: 3, LastSeen: now},
		"sun": {Word: "sun", TimesTimeout: 2, TotalAttempts: 2, LastSeen: now},
	}

	ranked := SelectWeakWords(perf, now, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 words, got %d", len(ranked))
	}
	// dog: 100+240+50=390; sun: 100+200+50=350; cat floors at 0.
	if ranked[0].Word != "dog" || ranked[1].Word != "sun" {
		t.Fatalf("unexpected ranking: %s, %s", ranked[0].Word, ranked[1].Word)
	}
}

func TestSelectWeakWordsTiebreak(t *testing.T) {
	now := time.Now()
	perf := map[string]model.WordPerformance{
		"zebra": {Word: "zebra", TimesMistakes: 1, TotalAttempts: 1, LastSeen: now},
		"apple": {Word: "apple", TimesMistakes: 1, TotalAttempts: 1, LastSeen: now},
	}
	ranked := SelectWeakWords(perf, now, 0)
	if len(ranked) != 2 || ranked[0].Word != "apple" || ranked[1].Word != "zebra" {
		t.Fatalf("equal scores must order alphabetically: %+v", ranked)
	}
}

func TestSelectWeakWordsEmpty(t *testing.T) {
	if got := SelectWeakWords(nil, time.Now(), 5); got != nil {
		t.Fatalf("expected nil for empty map, got %+v", got)
	}
}
