// Package engine drives one game session: the round state machine,
// per-round timing, and the session game state.
package engine

import (
	"strings"
	"time"

	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/scoring"
	"github.com/fennwick/spelldash/internal/words"
)

// Phase identifies where the state machine currently sits.
type Phase int

// Machine phases. A round runs speaking -> waitingInput -> validating
// -> jumping or crashing; crashing may replay the word or end the game,
// and every fifth correct word inserts a levelUp before the next round.
const (
	PhaseIdle Phase = iota
	PhaseSpeaking
	PhaseWaitingInput
	PhaseValidating
	PhaseJumping
	PhaseCrashing
	PhaseLevelUp
	PhaseGameOver
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSpeaking:
		return "speaking"
	case PhaseWaitingInput:
		return "waiting-input"
	case PhaseValidating:
		return "validating"
	case PhaseJumping:
		return "jumping"
	case PhaseCrashing:
		return "crashing"
	case PhaseLevelUp:
		return "level-up"
	case PhaseGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// GameState is the session-scoped mutable state. A fresh instance is
// created per session and owned exclusively by the Machine.
type GameState struct {
	Word              words.Entry
	AttemptsThisRound int
	Score             int
	Lives             int
	Level             int
	WordsCompleted    int
	Combo             int
}

// WordSource serves the next scheduled word for a difficulty tier.
type WordSource interface {
	Next(tier words.Tier) (words.Entry, error)
}

// RoundSink receives round resolutions: the ledger append and the
// performance write-back. Implementations must not block gameplay;
// persistence failures are theirs to log and swallow.
type RoundSink interface {
	AppendRound(model.RoundResult)
	SavePerformance(model.WordPerformance)
}

// Config carries the machine's timing knobs. Zero values take defaults.
type Config struct {
	JumpSettle  time.Duration // feedback hold after a correct answer
	CrashSettle time.Duration // crash animation hold; life loss lands after it
	LevelUpHold time.Duration // celebration hold between levels
	StartLives  int
}

const (
	defaultJumpSettle  = 600 * time.Millisecond
	defaultCrashSettle = 1500 * time.Millisecond
	defaultLevelUpHold = 2 * time.Second
	defaultStartLives  = 3
	wordsPerLevel      = 5
)

func (c Config) withDefaults() Config {
	if c.JumpSettle <= 0 {
		c.JumpSettle = defaultJumpSettle
	}
	if c.CrashSettle <= 0 {
		c.CrashSettle = defaultCrashSettle
	}
	if c.LevelUpHold <= 0 {
		c.LevelUpHold = defaultLevelUpHold
	}
	if c.StartLives <= 0 {
		c.StartLives = defaultStartLives
	}
	return c
}

// Directive tells the host what the new phase needs: narration to
// request, a deadline to arm, or a presentational hold to wait out
// before calling Advance. Seq guards against stale timers: a timer
// armed for an older Seq must be discarded.
type Directive struct {
	Phase    Phase
	Speak    string
	Deadline time.Duration
	Hold     time.Duration
	Seq      uint64
	Outcome  Outcome
	GameOver bool
}

type stagedKind int

const (
	stagedSuccess stagedKind = iota
	stagedTimeout
	stagedFailedAttempt
)

// staging holds a resolution (or failed attempt) between the moment it
// happened and the end of its presentational hold. Score and life-loss
// mutations land only when Advance applies the staging, keeping them
// visually synchronized with the jump/crash animation.
type staging struct {
	kind       stagedKind
	scoreDelta int
	result     *model.RoundResult
	responseMs int64
}

// Machine orchestrates rounds end to end. One round is in flight at a
// time; all suspension points (narration, holds, the deadline) are
// owned by the host, which reports back via NarrationFinished,
// DeadlineExpired and Advance.
type Machine struct {
	cfg   Config
	src   WordSource
	sink  RoundSink
	perf  map[string]model.WordPerformance
	state GameState
	phase Phase
	seq   uint64
	clock *RoundClock

	attempts   []model.Attempt
	roundStart time.Time
	staged     *staging
}

// NewMachine builds a session machine over a word source, a round sink,
// and a snapshot of the learner's performance map. The snapshot is
// copied; the machine owns its copy for the session's lifetime.
func NewMachine(src WordSource, sink RoundSink, snapshot map[string]model.WordPerformance, cfg Config) *Machine {
	cfg = cfg.withDefaults()
	perf := make(map[string]model.WordPerformance, len(snapshot))
	for k, v := range snapshot {
		perf[strings.ToLower(k)] = v
	}
	return &Machine{
		cfg:   cfg,
		src:   src,
		sink:  sink,
		perf:  perf,
		state: GameState{Lives: cfg.StartLives, Level: 1},
		phase: PhaseIdle,
		clock: NewRoundClock(0),
	}
}

// State returns a copy of the current game state.
func (m *Machine) State() GameState {
	return m.state
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Seq returns the current timer guard value.
func (m *Machine) Seq() uint64 {
	return m.seq
}

// Clock exposes the current round clock for rendering.
func (m *Machine) Clock() *RoundClock {
	return m.clock
}

// BeginRound pulls the next scheduled word for the active tier and
// starts narration. An empty schedule is fatal to round start and
// surfaces to the caller.
func (m *Machine) BeginRound(now time.Time) (Directive, error) {
	entry, err := m.src.Next(words.TierForLevel(m.state.Level))
	if err != nil {
		return Directive{}, err
	}
	m.state.Word = entry
	m.attempts = nil
	m.state.AttemptsThisRound = 0
	m.roundStart = now
	return m.speak(now), nil
}

// speak (re)arms narration for the current word. Replays of the same
// word after a crash go through here without advancing the schedule.
func (m *Machine) speak(now time.Time) Directive {
	m.seq++
	m.phase = PhaseSpeaking
	m.clock = NewRoundClock(scoring.DeadlineForLevel(m.state.Level))
	m.clock.StartNarration(now)
	return Directive{Phase: PhaseSpeaking, Speak: m.state.Word.Text, Seq: m.seq}
}

// NarrationFinished moves into waiting-input and arms the deadline.
// Narration failure takes the same path: the visual deadline is the
// true synchronization point, not speech success.
func (m *Machine) NarrationFinished(now time.Time) Directive {
	if m.phase != PhaseSpeaking {
		return m.noop()
	}
	m.clock.FinishNarration(now)
	m.seq++
	m.phase = PhaseWaitingInput
	return Directive{Phase: PhaseWaitingInput, Deadline: m.clock.Deadline(), Seq: m.seq}
}

// Submit processes the single attempt accepted per waiting-input entry.
// It cancels the armed deadline, validates the spelling, and branches
// to jumping or crashing with the matching presentational hold.
func (m *Machine) Submit(text string, now time.Time) Directive {
	if m.phase != PhaseWaitingInput {
		return m.noop()
	}
	m.seq++
	m.clock.Cancel()
	m.phase = PhaseValidating

	typed := strings.TrimSpace(text)
	correct := strings.EqualFold(typed, strings.TrimSpace(m.state.Word.Text))
	m.attempts = append(m.attempts, model.Attempt{TypedText: typed, Correct: correct, At: now})
	m.state.AttemptsThisRound = len(m.attempts)
	responseMs := m.clock.Elapsed(now).Milliseconds()

	if correct {
		return m.resolveSuccess(now, responseMs)
	}
	m.staged = &staging{kind: stagedFailedAttempt, responseMs: responseMs}
	m.phase = PhaseCrashing
	return Directive{
		Phase: PhaseCrashing,
		Hold:  m.cfg.CrashSettle,
		Seq:   m.seq,
		Outcome: Failure{
			Word:      m.state.Word.Text,
			TypedText: typed,
			Final:     m.state.Lives <= 1,
		},
	}
}

func (m *Machine) resolveSuccess(now time.Time, responseMs int64) Directive {
	firstTry := len(m.attempts) == 1

	// Combo advances only on first-try correctness; a retry-based
	// success breaks the streak for the next round. The streak that
	// existed is still captured in the round's history.
	var comboAtResolution int
	if firstTry {
		m.state.Combo++
		comboAtResolution = m.state.Combo
	} else {
		comboAtResolution = m.state.Combo
		m.state.Combo = 0
	}

	speedMult, speedTier := scoring.SpeedTier(responseMs, m.clock.Deadline().Milliseconds())
	comboMult := scoring.ComboMultiplier(m.state.Combo)
	if !firstTry {
		comboMult = 1.0
	}
	score := scoring.FinalScore(scoring.BaseScore(len(m.attempts)), speedMult, comboMult)
	m.state.WordsCompleted++

	result := m.buildResult(now, resultFields{
		score:             score,
		speedMultiplier:   speedMult,
		speedTier:         speedTier,
		comboMultiplier:   comboMult,
		comboAtResolution: comboAtResolution,
		responseMs:        responseMs,
	})
	m.staged = &staging{kind: stagedSuccess, scoreDelta: score, result: &result, responseMs: responseMs}
	m.phase = PhaseJumping
	return Directive{
		Phase: PhaseJumping,
		Hold:  m.cfg.JumpSettle,
		Seq:   m.seq,
		Outcome: Success{
			Word:            m.state.Word.Text,
			Score:           score,
			SpeedTier:       speedTier,
			SpeedMultiplier: speedMult,
			ComboMultiplier: comboMult,
			Combo:           m.state.Combo,
			FirstTry:        firstTry,
		},
	}
}

// DeadlineExpired handles the armed timer firing. Stale timers (wrong
// seq, or the machine already left waiting-input) are discarded. A
// timeout scores zero, resets the combo immediately, and never replays
// the word.
func (m *Machine) DeadlineExpired(seq uint64, now time.Time) Directive {
	if seq != m.seq || m.phase != PhaseWaitingInput {
		return m.noop()
	}
	m.seq++
	comboAtResolution := m.state.Combo
	m.state.Combo = 0

	result := m.buildResult(now, resultFields{
		comboAtResolution: comboAtResolution,
		responseMs:        m.clock.Deadline().Milliseconds(),
		timedOut:          true,
	})
	m.staged = &staging{kind: stagedTimeout, result: &result}
	m.phase = PhaseCrashing
	return Directive{
		Phase:   PhaseCrashing,
		Hold:    m.cfg.CrashSettle,
		Seq:     m.seq,
		Outcome: Timeout{Word: m.state.Word.Text, Final: m.state.Lives <= 1},
	}
}

// Advance applies the staged resolution once its presentational hold
// has elapsed: score lands after the jump settle, life loss after the
// crash animation. It then decides retry vs. advance vs. game over.
func (m *Machine) Advance(now time.Time) (Directive, error) {
	switch m.phase {
	case PhaseLevelUp:
		return m.BeginRound(now)
	case PhaseJumping, PhaseCrashing:
	default:
		return m.noop(), nil
	}

	st := m.staged
	m.staged = nil
	if st == nil {
		return m.noop(), nil
	}

	switch st.kind {
	case stagedSuccess:
		m.state.Score += st.scoreDelta
		m.resolve(*st.result)
		if m.state.WordsCompleted%wordsPerLevel == 0 {
			m.state.Level++
			m.seq++
			m.phase = PhaseLevelUp
			return Directive{Phase: PhaseLevelUp, Hold: m.cfg.LevelUpHold, Seq: m.seq}, nil
		}
		return m.BeginRound(now)

	case stagedTimeout:
		m.resolve(*st.result)
		m.loseLife()
		if m.state.Lives == 0 {
			return m.gameOver(), nil
		}
		// A timed-out word is not retried; move on.
		return m.BeginRound(now)

	default: // stagedFailedAttempt
		m.loseLife()
		if m.state.Lives == 0 {
			comboAtResolution := m.state.Combo
			m.state.Combo = 0
			result := m.buildResult(now, resultFields{
				comboAtResolution: comboAtResolution,
				responseMs:        st.responseMs,
			})
			m.resolve(result)
			return m.gameOver(), nil
		}
		// Replay the same word; the schedule does not advance.
		return m.speak(now), nil
	}
}

// Abort flushes an in-flight round before teardown so no data is
// silently dropped on quit. A staged resolution is written as-is; an
// attempted but unresolved round lands in the mistake bucket; a round
// with no attempts is recorded in the ledger only.
func (m *Machine) Abort(now time.Time) {
	switch m.phase {
	case PhaseIdle, PhaseGameOver, PhaseLevelUp:
		m.phase = PhaseGameOver
		return
	}
	if m.staged != nil && m.staged.result != nil {
		if m.staged.kind == stagedSuccess {
			m.state.Score += m.staged.scoreDelta
		}
		m.resolve(*m.staged.result)
	} else if len(m.attempts) > 0 {
		result := m.buildResult(now, resultFields{comboAtResolution: m.state.Combo})
		m.resolve(result)
	} else if m.state.Word.Text != "" {
		// No attempt was made; no performance bucket fits.
		m.sink.AppendRound(m.buildResult(now, resultFields{comboAtResolution: m.state.Combo}))
	}
	m.staged = nil
	m.seq++
	m.phase = PhaseGameOver
}

func (m *Machine) loseLife() {
	if m.state.Lives > 0 {
		m.state.Lives--
	}
}

func (m *Machine) gameOver() Directive {
	m.seq++
	m.phase = PhaseGameOver
	return Directive{Phase: PhaseGameOver, Seq: m.seq, GameOver: true}
}

func (m *Machine) noop() Directive {
	return Directive{Phase: m.phase, Seq: m.seq}
}

type resultFields struct {
	score             int
	speedMultiplier   float64
	speedTier         string
	comboMultiplier   float64
	comboAtResolution int
	responseMs        int64
	timedOut          bool
}

func (m *Machine) buildResult(endedAt time.Time, f resultFields) model.RoundResult {
	attempts := make([]model.Attempt, len(m.attempts))
	copy(attempts, m.attempts)
	return model.RoundResult{
		Word:                   m.state.Word.Text,
		Attempts:               attempts,
		ScoreEarned:            f.score,
		SpeedMultiplier:        f.speedMultiplier,
		SpeedTier:              f.speedTier,
		ComboMultiplier:        f.comboMultiplier,
		ComboCountAtResolution: f.comboAtResolution,
		ResponseTimeMs:         f.responseMs,
		RoundStartedAt:         m.roundStart,
		RoundEndedAt:           endedAt,
		Level:                  m.state.Level,
		TimedOut:               f.timedOut,
	}
}

// resolve appends the round to the ledger and updates the performance
// bucket: exactly one of timeout, first-try-correct, or mistakes per
// resolved round, keeping TotalAttempts equal to the bucket sum.
func (m *Machine) resolve(result model.RoundResult) {
	m.sink.AppendRound(result)

	key := strings.ToLower(result.Word)
	perf := m.perf[key]
	perf.Word = key
	switch {
	case result.TimedOut:
		perf.TimesTimeout++
	case len(result.Attempts) > 0 && result.Attempts[0].Correct:
		perf.TimesCorrectFirstTry++
	default:
		perf.TimesMistakes++
	}
	perf.TotalAttempts = perf.TimesCorrectFirstTry + perf.TimesMistakes + perf.TimesTimeout
	perf.LastSeen = result.RoundEndedAt
	m.perf[key] = perf
	m.sink.SavePerformance(perf)
}
