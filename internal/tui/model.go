package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fennwick/spelldash/internal/engine"
	"github.com/fennwick/spelldash/internal/ledger"
	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/narrator"
)

const animInterval = 80 * time.Millisecond

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EDEDED")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#949494"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#46A758")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D")).Bold(true)
	speakStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	trackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
	obstacleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
	levelUpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
)

type narrationDoneMsg struct {
	seq uint64
	err error
}

type deadlineMsg struct{ seq uint64 }

type holdDoneMsg struct{ seq uint64 }

type repeatMsg struct{ seq uint64 }

type animTickMsg struct{ seq uint64 }

// Model implements the Bubble Tea game UI around the round machine.
type Model struct {
	cfg         model.Config
	machine     *engine.Machine
	speaker     narrator.Speaker
	repeatAfter time.Duration
	ledger      *ledger.Ledger
	input       textinput.Model

	dir     engine.Directive
	outcome engine.Outcome

	width  int
	height int
	err    error
}

// NewModel constructs a game model. repeatAfter re-narrates the word
// after that much input silence; zero disables auto-repeat.
func NewModel(cfg model.Config, machine *engine.Machine, speaker narrator.Speaker, repeatAfter time.Duration, led *ledger.Ledger) *Model {
	ti := textinput.New()
	ti.Placeholder = "type the word, enter to submit"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "> "
	return &Model{
		cfg:         cfg,
		machine:     machine,
		speaker:     speaker,
		repeatAfter: repeatAfter,
		ledger:      led,
		input:       ti,
	}
}

// Err returns the fatal error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	dir, err := m.machine.BeginRound(time.Now())
	if err != nil {
		m.err = err
		return tea.Quit
	}
	return tea.Batch(textinput.Blink, m.apply(dir))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case narrationDoneMsg:
		if msg.seq != m.dir.Seq {
			return m, nil
		}
		if msg.err != nil {
			// Non-fatal: the visual deadline drives the round.
			logErrf("narration failed: %v\n", msg.err)
		}
		if m.machine.Phase() != engine.PhaseSpeaking {
			// An auto-repeat finished; the round is already under way
			// and the input field must keep what the learner typed.
			return m, nil
		}
		return m, m.apply(m.machine.NarrationFinished(time.Now()))

	case deadlineMsg:
		// The machine discards stale timers by seq.
		return m, m.apply(m.machine.DeadlineExpired(msg.seq, time.Now()))

	case holdDoneMsg:
		if msg.seq != m.dir.Seq {
			return m, nil
		}
		dir, err := m.machine.Advance(time.Now())
		if err != nil {
			m.err = err
			m.teardown(time.Now())
			return m, tea.Quit
		}
		return m, m.apply(dir)

	case repeatMsg:
		if msg.seq != m.dir.Seq || m.machine.Phase() != engine.PhaseWaitingInput {
			return m, nil
		}
		if strings.TrimSpace(m.input.Value()) != "" {
			// Keep the timer armed: the word repeats again if the
			// learner clears the field and goes silent.
			return m, tick(m.repeatAfter, repeatMsg{seq: msg.seq})
		}
		word := m.machine.State().Word.Text
		return m, tea.Batch(
			m.speakCmd(word, msg.seq),
			tick(m.repeatAfter, repeatMsg{seq: msg.seq}),
		)

	case animTickMsg:
		if msg.seq != m.dir.Seq || m.machine.Phase() != engine.PhaseWaitingInput {
			return m, nil
		}
		return m, tick(animInterval, animTickMsg{seq: msg.seq})

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.teardown(time.Now())
		return m, tea.Quit
	case tea.KeyEnter:
		switch m.machine.Phase() {
		case engine.PhaseWaitingInput:
			dir := m.machine.Submit(m.input.Value(), time.Now())
			return m, m.apply(dir)
		case engine.PhaseGameOver:
			return m, tea.Quit
		default:
			return m, nil
		}
	}
	// Typed input reaches the field only while an attempt is accepted;
	// outside waiting-input the capability is disabled, not ignored.
	if m.machine.Phase() != engine.PhaseWaitingInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply installs a new directive and maps it onto commands: narration,
// the deadline timer, presentational holds, and the repeat policy.
func (m *Model) apply(dir engine.Directive) tea.Cmd {
	m.dir = dir
	if dir.Outcome != nil {
		m.outcome = dir.Outcome
	}

	var cmds []tea.Cmd
	if dir.Phase == engine.PhaseWaitingInput {
		m.input.SetValue("")
		cmds = append(cmds, m.input.Focus())
	} else {
		m.input.Blur()
	}
	if dir.Speak != "" && !m.cfg.Mute {
		cmds = append(cmds, m.speakCmd(dir.Speak, dir.Seq))
	} else if dir.Speak != "" {
		// Muted narration completes instantly.
		cmds = append(cmds, func() tea.Msg { return narrationDoneMsg{seq: dir.Seq} })
	}
	if dir.Deadline > 0 {
		cmds = append(cmds,
			tick(dir.Deadline, deadlineMsg{seq: dir.Seq}),
			tick(animInterval, animTickMsg{seq: dir.Seq}),
		)
		if m.repeatAfter > 0 && m.repeatAfter < dir.Deadline {
			cmds = append(cmds, tick(m.repeatAfter, repeatMsg{seq: dir.Seq}))
		}
	}
	if dir.Hold > 0 {
		cmds = append(cmds, tick(dir.Hold, holdDoneMsg{seq: dir.Seq}))
	}
	if dir.GameOver {
		m.finish(time.Now())
	}
	return tea.Batch(cmds...)
}

func (m *Model) speakCmd(text string, seq uint64) tea.Cmd {
	speaker := m.speaker
	return func() tea.Msg {
		err := speaker.Speak(context.Background(), text)
		return narrationDoneMsg{seq: seq, err: err}
	}
}

// teardown flushes an in-flight round and the session before quitting,
// so nothing is silently dropped.
func (m *Model) teardown(now time.Time) {
	m.machine.Abort(now)
	m.finish(now)
}

func (m *Model) finish(now time.Time) {
	state := m.machine.State()
	m.ledger.Flush(now, state.Score, state.Lives, state.Level, state.WordsCompleted)
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return wrongStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderBody(width))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("esc/ctrl+c: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderHeader(width int) string {
	state := m.machine.State()
	header := fmt.Sprintf("spelldash  %s  Level %d  Score %d  Combo %d  %s",
		m.cfg.Learner, state.Level, state.Score, state.Combo, hearts(state.Lives, 3))
	return headerStyle.Render(truncateToWidth(header, width))
}

func (m *Model) renderBody(width int) string {
	state := m.machine.State()
	switch m.machine.Phase() {
	case engine.PhaseSpeaking:
		return speakStyle.Render("♪ Listen...") + "\n" + m.renderHint(width)
	case engine.PhaseWaitingInput, engine.PhaseValidating:
		now := time.Now()
		clock := m.machine.Clock()
		track := renderTrackStyled(width-2, clock.Progress(now))
		remaining := fmt.Sprintf("%.1fs", clock.Remaining(now).Seconds())
		lines := []string{
			m.renderHint(width),
			"",
			track,
			"",
			m.input.View() + "   " + hintStyle.Render(remaining),
		}
		return strings.Join(lines, "\n")
	case engine.PhaseJumping:
		return m.renderOutcome(width)
	case engine.PhaseCrashing:
		return m.renderOutcome(width)
	case engine.PhaseLevelUp:
		return levelUpStyle.Render(fmt.Sprintf("Level %d! The obstacle speeds up.", state.Level))
	case engine.PhaseGameOver:
		return m.renderGameOver()
	default:
		return ""
	}
}

func (m *Model) renderHint(width int) string {
	desc := m.machine.State().Word.Description
	if desc == "" {
		return hintStyle.Render("(no hint)")
	}
	return hintStyle.Render(truncateToWidth("Hint: "+desc, width))
}

func (m *Model) renderOutcome(width int) string {
	switch outcome := m.outcome.(type) {
	case engine.Success:
		line := fmt.Sprintf("Correct! +%d  (%s ×%.2g", outcome.Score, outcome.SpeedTier, outcome.SpeedMultiplier)
		if outcome.ComboMultiplier > 1.0 {
			line += fmt.Sprintf(", combo ×%.2g", outcome.ComboMultiplier)
		}
		line += ")"
		return correctStyle.Render(truncateToWidth(line, width))
	case engine.Failure:
		// The learner sees the correct spelling before re-attempting.
		lines := []string{
			wrongStyle.Render("Crash!"),
			"Your answer:      " + wrongStyle.Render(outcome.TypedText),
			"Correct spelling: " + correctStyle.Render(outcome.Word),
		}
		if !outcome.Final {
			lines = append(lines, hintStyle.Render("Same word again..."))
		}
		return strings.Join(lines, "\n")
	case engine.Timeout:
		lines := []string{
			wrongStyle.Render("Too slow!"),
			"The word was: " + correctStyle.Render(outcome.Word),
		}
		if !outcome.Final {
			lines = append(lines, hintStyle.Render("Moving on..."))
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

func (m *Model) renderGameOver() string {
	state := m.machine.State()
	lines := []string{
		headerStyle.Render("Game over"),
		fmt.Sprintf("Final score:     %d", state.Score),
		fmt.Sprintf("Words completed: %d", state.WordsCompleted),
		fmt.Sprintf("Level reached:   %d", state.Level),
		"",
		footerStyle.Render("Press enter to exit."),
	}
	return strings.Join(lines, "\n")
}

func renderTrackStyled(width int, progress float64) string {
	track := renderTrack(width, progress)
	// Color the obstacle without disturbing column positions.
	idx := strings.IndexRune(track, '#')
	if idx < 0 {
		return trackStyle.Render(track)
	}
	return trackStyle.Render(track[:idx]) + obstacleStyle.Render("#") + trackStyle.Render(track[idx+1:])
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
