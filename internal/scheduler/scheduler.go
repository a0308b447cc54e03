// Package scheduler orders words for presentation based on past performance.
package scheduler

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/words"
)

// Sentinel errors for the scheduler package.
// Use errors.Is to check: errors.Is(err, scheduler.ErrEmptySchedule)
var (
	ErrEmptySchedule  = errors.New("scheduler: no words configured")
	ErrNotInitialized = errors.New("scheduler: not initialized")
)

const (
	unseenScore = 1000
	bucketSize  = 10
)

// PriorityScore converts one word's history into a practice priority.
// Words without a record score maximum so unseen words surface first;
// timeouts outweigh mistakes, which outweigh the mastery penalty, and a
// recency bonus resurfaces old words. Never negative.
func PriorityScore(perf *model.WordPerformance, now time.Time) int {
	if perf == nil {
		return unseenScore
	}
	score := 100
	score -= 30 * perf.TimesCorrectFirstTry
	score += 100 * perf.TimesTimeout
	score += 80 * perf.TimesMistakes

	total := perf.TotalAttempts
	if total < 1 {
		total = 1
	}
	if perf.TotalAttempts >= 2 && float64(perf.TimesCorrectFirstTry)/float64(total) < 0.5 {
		score += 50
	}
	if !perf.LastSeen.IsZero() {
		days := int(now.Sub(perf.LastSeen).Hours() / 24)
		if days > 1 {
			bonus := 3 * days
			if bonus > 15 {
				bonus = 15
			}
			score += bonus
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Scheduler serves words in a session-long biased order, cycling when
// exhausted. The order is built once per Initialize and never
// reshuffled between wraps.
type Scheduler struct {
	rnd         *rand.Rand
	order       []words.Entry
	cursor      int
	initialized bool
}

// New returns a Scheduler drawing randomness from rnd.
func New(rnd *rand.Rand) *Scheduler {
	return &Scheduler{rnd: rnd}
}

// Initialize builds the session order from the entries and a
// performance snapshot. Lookups are case-insensitive; now drives the
// recency bonus and must be the session start time.
func (s *Scheduler) Initialize(entries []words.Entry, snapshot map[string]model.WordPerformance, now time.Time) {
	s.order = buildOrder(s.rnd, entries, snapshot, now)
	s.cursor = 0
	s.initialized = true
}

// Next returns the entry at the cursor and advances it, wrapping to the
// start when the order is exhausted.
func (s *Scheduler) Next() (words.Entry, error) {
	if !s.initialized {
		return words.Entry{}, ErrNotInitialized
	}
	if len(s.order) == 0 {
		return words.Entry{}, ErrEmptySchedule
	}
	entry := s.order[s.cursor]
	s.cursor = (s.cursor + 1) % len(s.order)
	return entry, nil
}

// Reset clears the session order. Next fails with ErrNotInitialized
// until Initialize is called again.
func (s *Scheduler) Reset() {
	s.order = nil
	s.cursor = 0
	s.initialized = false
}

// buildOrder scores all entries, stable-sorts them descending, then
// shuffles within contiguous buckets of ten so coarse priority ranking
// survives while the in-bucket sequence stays unguessable.
func buildOrder(rnd *rand.Rand, entries []words.Entry, snapshot map[string]model.WordPerformance, now time.Time) []words.Entry {
	type scored struct {
		entry words.Entry
		score int
	}
	items := make([]scored, 0, len(entries))
	for _, entry := range entries {
		var perf *model.WordPerformance
		if p, ok := snapshot[strings.ToLower(entry.Text)]; ok {
			perf = &p
		}
		items = append(items, scored{entry: entry, score: PriorityScore(perf, now)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	order := make([]words.Entry, len(items))
	for i, item := range items {
		order[i] = item.entry
	}
	for start := 0; start < len(order); start += bucketSize {
		end := start + bucketSize
		if end > len(order) {
			end = len(order)
		}
		shuffle(rnd, order[start:end])
	}
	return order
}

// shuffle is an in-place Fisher-Yates over one bucket.
func shuffle(rnd *rand.Rand, bucket []words.Entry) {
	for i := len(bucket) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		bucket[i], bucket[j] = bucket[j], bucket[i]
	}
}

// Set holds one scheduler per difficulty tier, all built from the same
// snapshot at session start. Switching tiers never reshuffles an
// already-built order.
type Set map[words.Tier]*Scheduler

// NewSet builds per-tier schedulers from a word source.
func NewSet(src words.Source, snapshot map[string]model.WordPerformance, now time.Time, rnd *rand.Rand) Set {
	set := Set{}
	for _, tier := range []words.Tier{words.TierEasy, words.TierMedium, words.TierHard} {
		sched := New(rnd)
		sched.Initialize(src.ForTier(tier), snapshot, now)
		set[tier] = sched
	}
	return set
}

// Next serves the next word of the given tier.
func (s Set) Next(tier words.Tier) (words.Entry, error) {
	sched, ok := s[tier]
	if !ok {
		return words.Entry{}, ErrNotInitialized
	}
	return sched.Next()
}
