// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fennwick/spelldash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for performance maps and session ledgers.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS word_performance (
			learner TEXT NOT NULL,
			word TEXT NOT NULL,
			correct_first_try INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			timeouts INTEGER NOT NULL,
			total_attempts INTEGER NOT NULL,
			last_seen TEXT NOT NULL,
			PRIMARY KEY (learner, word)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			learner TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			total_score INTEGER NOT NULL,
			lives_remaining INTEGER NOT NULL,
			level_reached INTEGER NOT NULL,
			words_completed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			session_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			word TEXT NOT NULL,
			attempts TEXT NOT NULL,
			score INTEGER NOT NULL,
			speed_multiplier REAL NOT NULL,
			speed_tier TEXT NOT NULL,
			combo_multiplier REAL NOT NULL,
			combo_count INTEGER NOT NULL,
			response_ms INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			level INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_learner ON sessions(learner, ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_word ON rounds(word);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadPerformance returns the learner's full performance map keyed by
// lowercase word.
func (s *Store) LoadPerformance(ctx context.Context, learner string) (map[string]model.WordPerformance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, correct_first_try, mistakes, timeouts, total_attempts, last_seen
		 FROM word_performance WHERE learner = ?`, learner)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	perf := map[string]model.WordPerformance{}
	for rows.Next() {
		var p model.WordPerformance
		var lastSeen string
		if err := rows.Scan(&p.Word, &p.TimesCorrectFirstTry, &p.TimesMistakes, &p.TimesTimeout, &p.TotalAttempts, &lastSeen); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastSeen)
		if err != nil {
			return nil, err
		}
		p.LastSeen = parsed
		perf[strings.ToLower(p.Word)] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perf, nil
}

// UpsertPerformance writes one word's performance record.
func (s *Store) UpsertPerformance(ctx context.Context, learner string, p model.WordPerformance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO word_performance (learner, word, correct_first_try, mistakes, timeouts, total_attempts, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(learner, word) DO UPDATE SET
			correct_first_try = excluded.correct_first_try,
			mistakes = excluded.mistakes,
			timeouts = excluded.timeouts,
			total_attempts = excluded.total_attempts,
			last_seen = excluded.last_seen`,
		learner,
		strings.ToLower(p.Word),
		p.TimesCorrectFirstTry,
		p.TimesMistakes,
		p.TimesTimeout,
		p.TotalAttempts,
		p.LastSeen.Format(time.RFC3339Nano),
	)
	return err
}

// ResetPerformance deletes the learner's performance map. Only an
// explicit learner-initiated reset goes through here.
func (s *Store) ResetPerformance(ctx context.Context, learner string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM word_performance WHERE learner = ?`, learner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type attemptDetail struct {
	TypedText string `json:"typedText"`
	Correct   bool   `json:"correct"`
	At        string `json:"at"`
}

// InsertSession stores a completed session and its rounds in one
// transaction.
func (s *Store) InsertSession(ctx context.Context, record model.SessionRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (learner, started_at, ended_at, total_score, lives_remaining, level_reached, words_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.Learner,
		record.StartedAt.Format(time.RFC3339Nano),
		record.EndedAt.Format(time.RFC3339Nano),
		record.TotalScore,
		record.LivesRemaining,
		record.LevelReached,
		record.WordsCompleted,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(record.Rounds) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO rounds (session_id, seq, word, attempts, score, speed_multiplier, speed_tier, combo_multiplier, combo_count, response_ms, started_at, ended_at, level, timed_out)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, round := range record.Rounds {
			attempts, err := marshalAttempts(round.Attempts)
			if err != nil {
				return 0, err
			}
			if _, err := stmt.ExecContext(ctx,
				id,
				i,
				round.Word,
				attempts,
				round.ScoreEarned,
				round.SpeedMultiplier,
				round.SpeedTier,
				round.ComboMultiplier,
				round.ComboCountAtResolution,
				round.ResponseTimeMs,
				round.RoundStartedAt.Format(time.RFC3339Nano),
				round.RoundEndedAt.Format(time.RFC3339Nano),
				round.Level,
				boolToInt(round.TimedOut),
			); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config,
// oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Learner != "" {
		clauses = append(clauses, "s.learner = ?")
		args = append(args, cfg.Learner)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT s.id, s.ended_at, s.total_score, s.lives_remaining, s.level_reached, s.words_completed,
			COUNT(r.word) AS rounds_played,
			COALESCE(SUM(r.timed_out), 0) AS timeouts,
			COALESCE(AVG(r.response_ms), 0) AS avg_response_ms
		FROM sessions s
		LEFT JOIN rounds r ON r.session_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.TotalScore, &agg.LivesRemaining, &agg.LevelReached, &agg.WordsCompleted, &agg.RoundsPlayed, &agg.Timeouts, &agg.AvgResponseMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func marshalAttempts(attempts []model.Attempt) (string, error) {
	details := make([]attemptDetail, len(attempts))
	for i, a := range attempts {
		details[i] = attemptDetail{
			TypedText: a.TypedText,
			Correct:   a.Correct,
			At:        a.At.Format(time.RFC3339Nano),
		}
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
