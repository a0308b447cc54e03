// Package model defines shared data structures.
package model

import "time"

// Config defines game settings for one session.
type Config struct {
	Learner   string
	WordsPath string
	Mute      bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Learner string
	Since   *time.Time
	Last    int
	Top     int
	Plain   bool
}

// WordPerformance tracks one learner's history with one word.
// The word key is lowercase-normalized. TotalAttempts equals the sum of
// the three outcome buckets after every update.
type WordPerformance struct {
	Word                 string
	TimesCorrectFirstTry int
	TimesMistakes        int
	TimesTimeout         int
	TotalAttempts        int
	LastSeen             time.Time
}

// Attempt records a single typed answer within a round.
type Attempt struct {
	TypedText string
	Correct   bool
	At        time.Time
}

// RoundResult captures one resolved round. Immutable once appended to
// the session ledger.
type RoundResult struct {
	Word                   string
	Attempts               []Attempt
	ScoreEarned            int
	SpeedMultiplier        float64
	SpeedTier              string
	ComboMultiplier        float64
	ComboCountAtResolution int
	ResponseTimeMs         int64
	RoundStartedAt         time.Time
	RoundEndedAt           time.Time
	Level                  int
	TimedOut               bool
}

// SessionRecord is the durable shape of one completed session.
type SessionRecord struct {
	Learner        string
	StartedAt      time.Time
	EndedAt        time.Time
	TotalScore     int
	LivesRemaining int
	LevelReached   int
	WordsCompleted int
	Rounds         []RoundResult
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID      int64
	EndedAt        time.Time
	TotalScore     int
	LivesRemaining int
	LevelReached   int
	WordsCompleted int
	RoundsPlayed   int
	Timeouts       int
	AvgResponseMs  float64
}
