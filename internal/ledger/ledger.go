// Package ledger accumulates round outcomes into a session record.
package ledger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fennwick/spelldash/internal/model"
)

// Persister is the durable side of the ledger. Implemented by the
// SQLite store; faked in tests.
type Persister interface {
	UpsertPerformance(ctx context.Context, learner string, p model.WordPerformance) error
	InsertSession(ctx context.Context, record model.SessionRecord) (int64, error)
}

// Ledger collects round results for one session and writes them back.
// Persistence failures are logged and swallowed: a learner never loses
// an in-progress round because storage failed.
type Ledger struct {
	persister Persister
	learner   string
	record    model.SessionRecord
	flushed   bool
}

// New starts a ledger for one session.
func New(persister Persister, learner string, startedAt time.Time) *Ledger {
	return &Ledger{
		persister: persister,
		learner:   learner,
		record: model.SessionRecord{
			Learner:   learner,
			StartedAt: startedAt,
		},
	}
}

// AppendRound adds a resolved round to the session record.
func (l *Ledger) AppendRound(result model.RoundResult) {
	l.record.Rounds = append(l.record.Rounds, result)
}

// SavePerformance writes one word's updated performance record through
// to storage immediately, so a crash mid-session loses at most the
// session row, never learned history.
func (l *Ledger) SavePerformance(p model.WordPerformance) {
	if l.persister == nil {
		return
	}
	if err := l.persister.UpsertPerformance(context.Background(), l.learner, p); err != nil {
		logErrf("failed to save word performance: %v\n", err)
	}
}

// Rounds returns the rounds collected so far.
func (l *Ledger) Rounds() []model.RoundResult {
	return l.record.Rounds
}

// Flush writes the session record. Safe to call more than once; only
// the first call persists.
func (l *Ledger) Flush(endedAt time.Time, totalScore, livesRemaining, levelReached, wordsCompleted int) {
	if l.flushed {
		return
	}
	l.flushed = true
	l.record.EndedAt = endedAt
	l.record.TotalScore = totalScore
	l.record.LivesRemaining = livesRemaining
	l.record.LevelReached = levelReached
	l.record.WordsCompleted = wordsCompleted
	if l.persister == nil {
		return
	}
	if _, err := l.persister.InsertSession(context.Background(), l.record); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

// Flushed reports whether the session record has been written.
func (l *Ledger) Flushed() bool {
	return l.flushed
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
