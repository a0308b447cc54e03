// Package main provides the CLI entrypoint for spelldash.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fennwick/spelldash/internal/config"
	"github.com/fennwick/spelldash/internal/engine"
	"github.com/fennwick/spelldash/internal/ledger"
	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/narrator"
	"github.com/fennwick/spelldash/internal/scheduler"
	"github.com/fennwick/spelldash/internal/stats"
	"github.com/fennwick/spelldash/internal/statsui"
	"github.com/fennwick/spelldash/internal/store"
	"github.com/fennwick/spelldash/internal/tui"
	"github.com/fennwick/spelldash/internal/words"
)

const (
	defaultLearner       = "default"
	defaultTTSCommand    = "espeak-ng"
	defaultTTSRate       = 150
	defaultTTSPitch      = 50
	defaultRepeatAfterMs = 5000
	defaultStatsTop      = 10
)

var (
	playLearner     string
	playWords       string
	playMute        bool
	playTTSCommand  string
	playTTSRate     int
	playTTSPitch    int
	playTTSVoice    string
	playRepeatAfter int

	statsLearner string
	statsSince   string
	statsLast    int
	statsTop     int
	statsPlain   bool

	wordsPath string

	resetLearner string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spelldash",
		Short:         "Spelling game with spoken words and a runner dodging obstacles",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playLearner, "learner", defaultLearner, "learner profile name")
	rootCmd.Flags().StringVar(&playWords, "words", "", "word file path (default: built-in list)")
	rootCmd.Flags().BoolVar(&playMute, "mute", false, "disable narration")
	rootCmd.Flags().StringVar(&playTTSCommand, "tts-command", defaultTTSCommand, "text-to-speech command")
	rootCmd.Flags().IntVar(&playTTSRate, "tts-rate", defaultTTSRate, "speech rate (words per minute)")
	rootCmd.Flags().IntVar(&playTTSPitch, "tts-pitch", defaultTTSPitch, "speech pitch (0-99)")
	rootCmd.Flags().StringVar(&playTTSVoice, "tts-voice", "", "speech voice")
	rootCmd.Flags().IntVar(&playRepeatAfter, "repeat-after-ms", defaultRepeatAfterMs, "repeat narration after this much input silence (0 disables)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "learner", &playLearner, fileCfg.Game.Learner)
	applyStringConfig(cmd, "words", &playWords, fileCfg.Game.Words)
	applyStringConfig(cmd, "tts-command", &playTTSCommand, fileCfg.Narration.Command)
	applyIntConfig(cmd, "tts-rate", &playTTSRate, fileCfg.Narration.Rate)
	applyIntConfig(cmd, "tts-pitch", &playTTSPitch, fileCfg.Narration.Pitch)
	applyStringConfig(cmd, "tts-voice", &playTTSVoice, fileCfg.Narration.Voice)
	applyIntConfig(cmd, "repeat-after-ms", &playRepeatAfter, fileCfg.Narration.RepeatAfterMs)
	applyBoolConfig(cmd, "mute", &playMute, fileCfg.Narration.Mute)

	if strings.TrimSpace(playLearner) == "" {
		return fmt.Errorf("--learner must not be empty")
	}
	if playRepeatAfter < 0 {
		return fmt.Errorf("--repeat-after-ms must be >= 0")
	}

	cfg := model.Config{
		Learner:   strings.TrimSpace(playLearner),
		WordsPath: playWords,
		Mute:      playMute,
	}

	src, err := loadWordSource(cfg.WordsPath)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	now := time.Now()
	perf, err := st.LoadPerformance(context.Background(), cfg.Learner)
	if err != nil {
		return fmt.Errorf("failed to load word performance: %w", err)
	}

	rnd := rand.New(rand.NewSource(now.UnixNano()))
	schedules := scheduler.NewSet(src, perf, now, rnd)
	led := ledger.New(st, cfg.Learner, now)
	machine := engine.NewMachine(schedules, led, perf, engine.Config{})

	var speaker narrator.Speaker = narrator.Noop{}
	repeatAfter := time.Duration(0)
	if !cfg.Mute {
		speaker = narrator.NewCommand(narrator.Options{
			Command: playTTSCommand,
			Rate:    playTTSRate,
			Pitch:   playTTSPitch,
			Voice:   playTTSVoice,
		})
		repeatAfter = time.Duration(playRepeatAfter) * time.Millisecond
	}

	gameModel := tui.NewModel(cfg, machine, speaker, repeatAfter, led)
	program := tea.NewProgram(gameModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := gameModel.Err(); err != nil {
		return err
	}
	return nil
}

// loadWordSource resolves the active word source: an explicit path, the
// default XDG word file when present, or the built-in list.
func loadWordSource(path string) (words.Source, error) {
	if path != "" {
		src, err := words.Load(path)
		if err != nil {
			return words.Source{}, fmt.Errorf("failed to load word file %s: %w", path, err)
		}
		return src, nil
	}
	defaultPath := config.DefaultWordsPath()
	if _, err := os.Stat(defaultPath); err == nil {
		src, err := words.Load(defaultPath)
		if err != nil {
			return words.Source{}, fmt.Errorf("failed to load word file %s: %w", defaultPath, err)
		}
		return src, nil
	}
	return words.Default(), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learner stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLearner, "learner", defaultLearner, "learner profile name")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of words needing practice to show")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print plain text instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "learner", &statsLearner, fileCfg.Game.Learner)

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Learner: statsLearner,
		Since:   sinceTime,
		Last:    statsLast,
		Top:     statsTop,
		Plain:   statsPlain,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if cfg.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlainStats(cmd, st, cfg)
	}

	statsModel := statsui.NewModel(st, cfg)
	program := tea.NewProgram(statsModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func runPlainStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	ctx := context.Background()
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	perf, err := st.LoadPerformance(ctx, cfg.Learner)
	if err != nil {
		return fmt.Errorf("failed to load word performance: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderWordTable(out, perf, time.Now(), cfg.Top); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Validate and print the active word file",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().StringVar(&wordsPath, "words", "", "word file path (default: built-in list)")
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "words", &wordsPath, fileCfg.Game.Words)

	src, err := loadWordSource(wordsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tiers := []struct {
		name    string
		entries []words.Entry
	}{
		{"easy", src.Easy},
		{"medium", src.Medium},
		{"hard", src.Hard},
	}
	for _, tier := range tiers {
		if _, err := fmt.Fprintf(out, "[%s] %d words\n", tier.name, len(tier.entries)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, entry := range tier.entries {
			line := "  " + entry.Text
			if entry.Description != "" {
				line += " - " + entry.Description
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete a learner's word performance history",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetLearner, "learner", defaultLearner, "learner profile name")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "learner", &resetLearner, fileCfg.Game.Learner)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	deleted, err := st.ResetPerformance(context.Background(), resetLearner)
	if err != nil {
		return fmt.Errorf("failed to reset performance: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d word records for %q\n", deleted, resetLearner); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# spelldash configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# learner = %q        # Learner profile name
# words = ""          # Word file path (default: built-in list)

[narration]
# command = %q        # Text-to-speech command
# rate = %d           # Speech rate (words per minute)
# pitch = %d          # Speech pitch (0-99)
# voice = ""          # Speech voice
# repeat-after-ms = %d # Repeat narration after input silence (0 disables)
# mute = false        # Disable narration
`,
		defaultLearner,
		defaultTTSCommand,
		defaultTTSRate,
		defaultTTSPitch,
		defaultRepeatAfterMs,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
