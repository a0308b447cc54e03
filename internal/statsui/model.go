// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/scheduler"
	"github.com/fennwick/spelldash/internal/stats"
)

const (
	tabOverview = iota
	tabWords
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EDEDED")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#5FAFD7"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A8A8A8")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#3F3F46"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3F3F46"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#949494"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EDEDED")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BCBCBC"))
)

// Source abstracts the persistence queries the stats UI needs.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	LoadPerformance(ctx context.Context, learner string) (map[string]model.WordPerformance, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	source Source
	cfg    model.StatsConfig

	sessions []model.SessionAggregate
	perf     map[string]model.WordPerformance
	errMsg   string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	wordTable  table.Model
	wordLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a stats UI model.
func NewModel(source Source, cfg model.StatsConfig) *Model {
	m := &Model{
		source: source,
		cfg:    cfg,
		tabs:   []string{"Overview", "Words"},
	}
	m.initInputs()
	m.initWordTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabWords {
				m.wordTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabWords {
				m.wordTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabWords {
				var cmd tea.Cmd
				m.wordTable, cmd = m.wordTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	l := m.computeLayout()
	header := fitLines(m.renderHeader(), m.width, l.header)
	body := fitLines(m.renderBody(l.body), m.width, l.body)
	footer := fitLines(m.renderFooter(), m.width, l.footer)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Learner: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Top words: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initWordTable() {
	m.wordTable = table.New(
		table.WithColumns(wordTableColumns()),
		table.WithHeight(1),
	)
	m.wordTable.SetStyles(wordTableStyles())
}

type layout struct {
	header int
	body   int
	footer int
}

func (m *Model) computeLayout() layout {
	l := layout{
		header: maxInt(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1,
		footer: 1,
	}
	if !m.filterMode && m.errMsg != "" {
		l.footer++
	}
	l.body = maxInt(1, m.height-l.header-l.footer)
	return l
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Learner))
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
	if m.cfg.Top > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.Top))
	} else {
		m.filterInputs[3].SetValue("")
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	body := m.computeLayout().body
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = body
	}
	m.setWordTableSize(m.width, body)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = ((m.activeTab+delta)%count + count) % count
	if m.activeTab == tabWords {
		m.wordTable.Focus()
	} else {
		m.wordTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	learner := m.cfg.Learner
	if learner == "" {
		learner = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	top := "all"
	if m.cfg.Top > 0 {
		top = strconv.Itoa(m.cfg.Top)
	}
	summary := fmt.Sprintf("Settings: learner=%s  since=%s  last=%s  top=%s", learner, since, last, top)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Settings: /  Quit: q"
	return headerStyle.Render(help)
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: q")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabWords {
		switch {
		case len(m.perf) == 0:
			return fitLines("No word stats found.", m.width, height)
		default:
			view := tableMutedStyle.Render(m.wordTable.View())
			return fitLines(view, m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	ctx := context.Background()
	sessions, err := m.source.ListSessions(ctx, m.cfg)
	if err != nil {
		m.setLoadError(err)
		return
	}
	if m.cfg.Last > 0 && len(sessions) > m.cfg.Last {
		sessions = sessions[len(sessions)-m.cfg.Last:]
	}
	perf, err := m.source.LoadPerformance(ctx, m.cfg.Learner)
	if err != nil {
		m.setLoadError(err)
		return
	}
	m.errMsg = ""
	m.sessions = sessions
	m.perf = perf

	width := m.width
	if width <= 0 {
		width = 80
	}
	m.applyWordTable(width, m.computeLayout().body)
	m.renderTabContents()
}

func (m *Model) setLoadError(err error) {
	m.errMsg = err.Error()
	for i := range m.viewports {
		m.viewports[i].SetContent("Failed to load stats.")
	}
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.sessions, width))
}

func renderOverview(sessions []model.SessionAggregate, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(sessions, width)
	trend := renderTrend(sessions, width)
	return strings.TrimRight(summary+"\n\n"+trend, "\n")
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
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
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Avg Score", fmt.Sprintf("%.1f", float64(totalScore)/count)),
		metricCard("Best Score", fmt.Sprintf("%d", bestScore)),
		metricCard("Best Level", fmt.Sprintf("%d", bestLevel)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", stats.SessionAccuracy(totalWords, totalRounds)*100)),
		metricCard("Timeouts", fmt.Sprintf("%d", totalTimeouts)),
		metricCard("Avg Response", fmt.Sprintf("%.0fms", totalResponseMs/count)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	rows := make([]string, 0, (len(cards)+2)/3)
	for i := 0; i < len(cards); i += 3 {
		end := i + 3
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderTrend(sessions []model.SessionAggregate, width int) string {
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = float64(s.TotalScore)
	}
	if len(scores) > width-8 && width > 8 {
		scores = scores[len(scores)-(width-8):]
	}
	return headerStyle.Render("Trend: ") + stats.Sparkline(scores)
}

func wordTableColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 14},
		{Title: "Priority", Width: 8},
		{Title: "First-try", Width: 9},
		{Title: "Mistakes", Width: 8},
		{Title: "Timeouts", Width: 8},
		{Title: "Attempts", Width: 8},
		{Title: "Last seen", Width: 10},
	}
}

func (m *Model) applyWordTable(width, height int) {
	now := time.Now()
	ranked := stats.SelectWeakWords(m.perf, now, m.cfg.Top)
	rows := make([]table.Row, 0, len(ranked))
	for _, p := range ranked {
		p := p
		rows = append(rows, table.Row{
			p.Word,
			strconv.Itoa(scheduler.PriorityScore(&p, now)),
			strconv.Itoa(p.TimesCorrectFirstTry),
			strconv.Itoa(p.TimesMistakes),
			strconv.Itoa(p.TimesTimeout),
			strconv.Itoa(p.TotalAttempts),
			lastSeenLabel(p.LastSeen, now),
		})
	}
	m.wordTable.SetColumns(wordTableColumns())
	m.wordTable.SetRows(rows)
	m.wordLayout.rowCount = len(rows)
	m.wordLayout.width = 0
	m.wordLayout.height = 0
	m.setWordTableSize(width, height)
}

func (m *Model) setWordTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.wordLayout.width == width && m.wordLayout.height == viewportHeight {
		return
	}
	m.wordLayout.width = width
	m.wordLayout.height = viewportHeight
	m.wordTable.SetWidth(width)
	m.wordTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustWordTableHeight(height)
	if m.wordLayout.height != viewportHeight {
		m.wordLayout.height = viewportHeight
		m.wordTable.SetHeight(viewportHeight)
	}
}

func wordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#3F3F46")).
		Foreground(lipgloss.Color("#C9C9C9")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#EDEDED")).
		Bold(true)
	return styles
}

// adjustWordTableHeight nudges the table's inner height until the
// rendered view matches the body height. The table adds its own chrome
// so two correction passes may be needed.
func (m *Model) adjustWordTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.wordTable.Height()
	for pass := 0; pass < 2; pass++ {
		viewHeight := lipgloss.Height(m.wordTable.View())
		if viewHeight == target {
			break
		}
		height = maxInt(1, height+target-viewHeight)
		m.wordTable.SetHeight(height)
	}
	return height
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeFilter()
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.closeFilter()
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) closeFilter() {
	m.filterMode = false
	m.filterError = ""
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	m.filterIndex = ((idx % count) + count) % count
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	return m.filterInputs[m.filterIndex].Focus()
}

func (m *Model) applyFilter() error {
	learner := strings.TrimSpace(m.filterInputs[0].Value())
	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	topInput := strings.TrimSpace(m.filterInputs[3].Value())
	top := 0
	if topInput != "" {
		parsed, err := strconv.Atoi(topInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid top value (use 0 or positive integer)")
		}
		top = parsed
	}

	m.cfg = model.StatsConfig{
		Learner: learner,
		Since:   since,
		Last:    last,
		Top:     top,
		Plain:   m.cfg.Plain,
	}
	return nil
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// padLines right-pads every line of s with spaces to the given width.
func padLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if pad := width - lipgloss.Width(line); pad > 0 {
			lines[i] = line + strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}

// fitLines pads and clips a block of text to exactly width x height so
// stale cells from the previous frame never bleed through.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(padLines(s, width), "\n")
	blank := strings.Repeat(" ", width)
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
