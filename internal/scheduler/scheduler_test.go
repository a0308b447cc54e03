package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/words"
)

func TestPriorityScoreUnseen(t *testing.T) {
	if got := PriorityScore(nil, time.Now()); got != 1000 {
		t.Fatalf("unseen word score = %d, want 1000", got)
	}
}

func TestPriorityScoreTimeouts(t *testing.T) {
	perf := &model.WordPerformance{
		Word:          "cat",
		TimesTimeout:  2,
		TotalAttempts: 2,
	}
	if got := PriorityScore(perf, time.Now()); got != 350 {
		t.Fatalf("score = %d, want 350", got)
	}
}

func TestPriorityScoreDecreasesWithMastery(t *testing.T) {
	now := time.Now()
	prev := PriorityScore(&model.WordPerformance{Word: "cat", LastSeen: now}, now)
	for firstTry := 1; firstTry <= 10; firstTry++ {
		perf := &model.WordPerformance{
			Word:                 "cat",
			TimesCorrectFirstTry: firstTry,
			TotalAttempts:        firstTry,
			LastSeen:             now,
		}
		score := PriorityScore(perf, now)
		if score > prev {
			t.Fatalf("score must not increase with mastery: firstTry=%d score=%d prev=%d", firstTry, score, prev)
		}
		if score < 0 {
			t.Fatalf("score must be floored at 0, got %d", score)
		}
		prev = score
	}
	mastered := &model.WordPerformance{
		Word:                 "cat",
		TimesCorrectFirstTry: 10,
		TotalAttempts:        10,
		LastSeen:             now,
	}
	if got := PriorityScore(mastered, now); got != 0 {
		t.Fatalf("heavily mastered word score = %d, want 0", got)
	}
}

func TestPriorityScoreRecencyBonus(t *testing.T) {
	now := time.Now()
	base := &model.WordPerformance{
		Word:                 "cat",
		TimesCorrectFirstTry: 1,
		TotalAttempts:        1,
		LastSeen:             now,
	}
	fresh := PriorityScore(base, now)

	stale := *base
	stale.LastSeen = now.Add(-3 * 24 * time.Hour)
	if got := PriorityScore(&stale, now); got != fresh+9 {
		t.Fatalf("3-day-old word score = %d, want %d", got, fresh+9)
	}

	ancient := *base
	ancient.LastSeen = now.Add(-365 * 24 * time.Hour)
	if got := PriorityScore(&ancient, now); got != fresh+15 {
		t.Fatalf("recency bonus must cap at 15: got %d, want %d", got, fresh+15)
	}
}

func TestNextBeforeInitialize(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	if _, err := s.Next(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestNextEmptySchedule(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	s.Initialize(nil, nil, time.Now())
	if _, err := s.Next(); !errors.Is(err, ErrEmptySchedule) {
		t.Fatalf("expected ErrEmptySchedule, got %v", err)
	}
}

func TestResetClearsOrder(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	s.Initialize([]words.Entry{{Text: "cat"}}, nil, time.Now())
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	s.Reset()
	if _, err := s.Next(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after reset, got %v", err)
	}
}

func TestNextWrapsAround(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	s.Initialize([]words.Entry{{Text: "cat"}, {Text: "dog"}}, nil, time.Now())
	first, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	third, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if third.Text != first.Text {
		t.Fatalf("wrap-around must restart the order: first=%q third=%q", first.Text, third.Text)
	}
}

func TestWeakWordOrderedBeforeMastered(t *testing.T) {
	// Nine unseen words plus dog fill the first bucket; cat's mastery
	// pushes it into the second, so dog always precedes cat.
	now := time.Now()
	entries := []words.Entry{{Text: "dog"}, {Text: "cat"}}
	for i := 0; i < 9; i++ {
		entries = append(entries, words.Entry{Text: fmt.Sprintf("word%d", i)})
	}
	snapshot := map[string]model.WordPerformance{
		"dog": {Word: "dog", TimesMistakes: 3, TotalAttempts: 3, LastSeen: now},
		"cat": {Word: "cat", TimesCorrectFirstTry: 10, TotalAttempts: 10, LastSeen: now},
	}

	dogScore := PriorityScore(ptr(snapshot["dog"]), now)
	catScore := PriorityScore(ptr(snapshot["cat"]), now)
	if dogScore <= catScore {
		t.Fatalf("dog score %d must exceed cat score %d", dogScore, catScore)
	}

	for seed := int64(0); seed < 20; seed++ {
		s := New(rand.New(rand.NewSource(seed)))
		s.Initialize(entries, snapshot, now)
		dogAt, catAt := -1, -1
		for i := 0; i < len(entries); i++ {
			entry, err := s.Next()
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			switch entry.Text {
			case "dog":
				dogAt = i
			case "cat":
				catAt = i
			}
		}
		if dogAt < 0 || catAt < 0 {
			t.Fatalf("seed %d: one cycle must serve every word (dog=%d cat=%d)", seed, dogAt, catAt)
		}
		if dogAt > catAt {
			t.Fatalf("seed %d: dog (index %d) must come before cat (index %d)", seed, dogAt, catAt)
		}
	}
}

func TestCaseInsensitiveLookup(t *testing.T) {
	// Ten unseen words fill the first bucket, so the mastered entry can
	// only land last if its mixed-case text matched the lowercase key.
	now := time.Now()
	entries := []words.Entry{{Text: "Cat"}}
	for i := 0; i < 10; i++ {
		entries = append(entries, words.Entry{Text: fmt.Sprintf("word%d", i)})
	}
	snapshot := map[string]model.WordPerformance{
		"cat": {Word: "cat", TimesCorrectFirstTry: 10, TotalAttempts: 10, LastSeen: now},
	}
	s := New(rand.New(rand.NewSource(1)))
	s.Initialize(entries, snapshot, now)

	var last words.Entry
	for i := 0; i < len(entries); i++ {
		entry, err := s.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		last = entry
	}
	if last.Text != "Cat" {
		t.Fatalf("mastered Cat must sort last, got %q", last.Text)
	}
}

func TestSetServesPerTier(t *testing.T) {
	src := words.Source{
		Easy:   []words.Entry{{Text: "cat"}},
		Medium: []words.Entry{{Text: "planet"}},
		Hard:   []words.Entry{{Text: "labyrinth"}},
	}
	set := NewSet(src, nil, time.Now(), rand.New(rand.NewSource(1)))

	entry, err := set.Next(words.TierMedium)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if entry.Text != "planet" {
		t.Fatalf("medium tier served %q, want planet", entry.Text)
	}
}

func ptr(p model.WordPerformance) *model.WordPerformance {
	return &p
}
