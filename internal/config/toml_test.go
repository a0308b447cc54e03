package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[game]
learner = "alice"
words = "/tmp/words.json"

[narration]
command = "espeak-ng"
rate = 120
pitch = 60
voice = "en-us"
repeat-after-ms = 4000
mute = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.Learner == nil || *cfg.Game.Learner != "alice" {
		t.Fatalf("unexpected learner: %+v", cfg.Game)
	}
	if cfg.Game.Words == nil || *cfg.Game.Words != "/tmp/words.json" {
		t.Fatalf("unexpected words path: %+v", cfg.Game)
	}
	if cfg.Narration.Rate == nil || *cfg.Narration.Rate != 120 {
		t.Fatalf("unexpected rate: %+v", cfg.Narration)
	}
	if cfg.Narration.RepeatAfterMs == nil || *cfg.Narration.RepeatAfterMs != 4000 {
		t.Fatalf("unexpected repeat-after-ms: %+v", cfg.Narration)
	}
	if cfg.Narration.Mute == nil || !*cfg.Narration.Mute {
		t.Fatalf("unexpected mute: %+v", cfg.Narration)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.Game.Learner != nil || cfg.Narration.Command != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nlearner = \"bob\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.Learner == nil || *cfg.Game.Learner != "bob" {
		t.Fatalf("unexpected learner: %+v", cfg.Game)
	}
	if cfg.Game.Words != nil || cfg.Narration.Rate != nil {
		t.Fatalf("unset values must stay nil: %+v", cfg)
	}
}
