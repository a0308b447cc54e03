package tui

import (
	"context"
	"testing"
	"time"

	"github.com/fennwick/spelldash/internal/engine"
	"github.com/fennwick/spelldash/internal/ledger"
	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/narrator"
	"github.com/fennwick/spelldash/internal/words"
)

type stubSource struct {
	entry words.Entry
}

func (s stubSource) Next(words.Tier) (words.Entry, error) {
	return s.entry, nil
}

type stubPersister struct{}

func (stubPersister) UpsertPerformance(context.Context, string, model.WordPerformance) error {
	return nil
}

func (stubPersister) InsertSession(context.Context, model.SessionRecord) (int64, error) {
	return 1, nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	led := ledger.New(stubPersister{}, "default", time.Now())
	machine := engine.NewMachine(
		stubSource{entry: words.Entry{Text: "cat"}},
		led,
		map[string]model.WordPerformance{},
		engine.Config{},
	)
	m := NewModel(model.Config{Learner: "default", Mute: true}, machine, narrator.Noop{}, 5*time.Second, led)
	if cmd := m.Init(); cmd == nil {
		t.Fatal("init must begin the first round")
	}
	if m.machine.Phase() != engine.PhaseSpeaking {
		t.Fatalf("phase after init = %v, want speaking", m.machine.Phase())
	}
	return m
}

func enterWaitingInput(t *testing.T, m *Model) {
	t.Helper()
	m.Update(narrationDoneMsg{seq: m.dir.Seq})
	if m.machine.Phase() != engine.PhaseWaitingInput {
		t.Fatalf("phase = %v, want waiting-input", m.machine.Phase())
	}
}

func TestRepeatNarrationCompletionKeepsTypedInput(t *testing.T) {
	m := newTestModel(t)
	enterWaitingInput(t, m)

	// The learner types while a repeat narration is still playing; its
	// completion must not reset the round or the field.
	m.input.SetValue("ca")
	m.Update(narrationDoneMsg{seq: m.dir.Seq})

	if got := m.input.Value(); got != "ca" {
		t.Fatalf("repeat narration completion erased typed input: field = %q, want %q", got, "ca")
	}
	if m.machine.Phase() != engine.PhaseWaitingInput {
		t.Fatalf("phase = %v, want waiting-input", m.machine.Phase())
	}
}

func TestRepeatTimerStaysArmedWhileTyping(t *testing.T) {
	m := newTestModel(t)
	enterWaitingInput(t, m)

	m.input.SetValue("ca")
	_, cmd := m.Update(repeatMsg{seq: m.dir.Seq})
	if cmd == nil {
		t.Fatal("repeat timer must stay armed while the field is non-empty")
	}
}

func TestStaleRepeatIgnored(t *testing.T) {
	m := newTestModel(t)
	enterWaitingInput(t, m)

	_, cmd := m.Update(repeatMsg{seq: m.dir.Seq + 1})
	if cmd != nil {
		t.Fatal("a repeat armed for an older round must be discarded")
	}
}
