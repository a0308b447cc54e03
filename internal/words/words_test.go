package words

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseEntry(t *testing.T) {
	cases := []struct {
		raw  string
		text string
		desc string
	}{
		{"cat - a small furry pet", "cat", "a small furry pet"},
		{"cat", "cat", ""},
		{" - desc", "- desc", ""},
		{"self-taught - learned alone", "self-taught", "learned alone"},
		{"dash – en dash", "dash", "en dash"},
		{"dash — em dash", "dash", "em dash"},
		{"trailing - ", "trailing", ""},
		{"a - b - c", "a", "b - c"},
	}
	for _, tc := range cases {
		entry := ParseEntry(tc.raw)
		if entry.Text != tc.text || entry.Description != tc.desc {
			t.Fatalf("ParseEntry(%q) = %+v, want text=%q desc=%q", tc.raw, entry, tc.text, tc.desc)
		}
	}
}

func TestTierForLevel(t *testing.T) {
	cases := []struct {
		level int
		tier  Tier
	}{
		{1, TierEasy},
		{3, TierEasy},
		{4, TierMedium},
		{6, TierMedium},
		{7, TierHard},
		{20, TierHard},
	}
	for _, tc := range cases {
		if got := TierForLevel(tc.level); got != tc.tier {
			t.Fatalf("TierForLevel(%d) = %s, want %s", tc.level, got, tc.tier)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.json")
	data := `{
		"easy": ["cat - a small furry pet", "dog"],
		"medium": ["planet - orbits a star"],
		"hard": ["labyrinth"]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write word file: %v", err)
	}

	src, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(src.Easy) != 2 || len(src.Medium) != 1 || len(src.Hard) != 1 {
		t.Fatalf("unexpected tier sizes: %d/%d/%d", len(src.Easy), len(src.Medium), len(src.Hard))
	}
	if src.Easy[0].Text != "cat" || src.Easy[0].Description != "a small furry pet" {
		t.Fatalf("unexpected first easy entry: %+v", src.Easy[0])
	}
	if src.Count() != 4 {
		t.Fatalf("expected 4 entries, got %d", src.Count())
	}
}

func TestLoadFlat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	data := "# comment\ncat - a small furry pet\n\ndog\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write word file: %v", err)
	}

	src, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(src.Easy) != 2 || len(src.Medium) != 2 || len(src.Hard) != 2 {
		t.Fatalf("flat list must serve every tier: %d/%d/%d", len(src.Easy), len(src.Medium), len(src.Hard))
	}
	if src.Easy[1].Text != "dog" {
		t.Fatalf("unexpected second entry: %+v", src.Easy[1])
	}
}

func TestLoadEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatalf("write word file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty word source")
	}
}

func TestDefaultSource(t *testing.T) {
	src := Default()
	if len(src.Easy) == 0 || len(src.Medium) == 0 || len(src.Hard) == 0 {
		t.Fatalf("built-in source must populate every tier: %d/%d/%d", len(src.Easy), len(src.Medium), len(src.Hard))
	}
	for _, tier := range []Tier{TierEasy, TierMedium, TierHard} {
		for _, entry := range src.ForTier(tier) {
			if entry.Text == "" {
				t.Fatalf("built-in %s tier has an empty word", tier)
			}
		}
	}
}
