// Package narrator speaks words through an external TTS command.
package narrator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Speaker is the narration capability: speak text, return when playback
// completes, fail on synthesis error. Narration failure is never fatal
// to a round.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Options configure the speech command. Zero values take defaults.
type Options struct {
	Command string // TTS command, may include arguments
	Rate    int    // words per minute
	Pitch   int    // 0-99
	Voice   string // voice/language selection
}

const (
	defaultCommand = "espeak-ng"
	defaultRate    = 150
	defaultPitch   = 50
)

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Command) == "" {
		o.Command = defaultCommand
	}
	if o.Rate <= 0 {
		o.Rate = defaultRate
	}
	if o.Pitch <= 0 {
		o.Pitch = defaultPitch
	}
	return o
}

// CommandSpeaker shells out to a TTS program for each narration.
type CommandSpeaker struct {
	opts Options
}

// NewCommand returns a Speaker backed by an external TTS command.
func NewCommand(opts Options) *CommandSpeaker {
	return &CommandSpeaker{opts: opts.withDefaults()}
}

// Speak runs the TTS command and returns once playback finishes.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	argv := s.args(text)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return nil
}

// args builds the full argv for one narration.
func (s *CommandSpeaker) args(text string) []string {
	parts := strings.Fields(s.opts.Command)
	argv := append([]string(nil), parts...)
	argv = append(argv, "-s", strconv.Itoa(s.opts.Rate))
	argv = append(argv, "-p", strconv.Itoa(s.opts.Pitch))
	if s.opts.Voice != "" {
		argv = append(argv, "-v", s.opts.Voice)
	}
	return append(argv, text)
}

// Noop is a silent Speaker for --mute and tests.
type Noop struct{}

// Speak implements Speaker and does nothing.
func (Noop) Speak(context.Context, string) error {
	return nil
}
