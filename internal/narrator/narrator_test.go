package narrator

import (
	"context"
	"reflect"
	"testing"
)

func TestArgsDefaults(t *testing.T) {
	s := NewCommand(Options{})
	got := s.args("cat")
	want := []string{"espeak-ng", "-s", "150", "-p", "50", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestArgsFullOptions(t *testing.T) {
	s := NewCommand(Options{
		Command: "espeak-ng --stdout",
		Rate:    120,
		Pitch:   60,
		Voice:   "en-us",
	})
	got := s.args("balloon")
	want := []string{"espeak-ng", "--stdout", "-s", "120", "-p", "60", "-v", "en-us", "balloon"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestNoopSpeak(t *testing.T) {
	if err := (Noop{}).Speak(context.Background(), "cat"); err != nil {
		t.Fatalf("noop speak: %v", err)
	}
}
