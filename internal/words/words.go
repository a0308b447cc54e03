// Package words loads and parses word sources.
package words

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tier is a difficulty bracket selecting which word subset is active.
type Tier string

// Difficulty tiers.
const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// TierForLevel maps a game level to its difficulty tier.
func TierForLevel(level int) Tier {
	switch {
	case level <= 3:
		return TierEasy
	case level <= 6:
		return TierMedium
	default:
		return TierHard
	}
}

// Entry is one configured word, optionally with a description hint.
type Entry struct {
	Text        string
	Description string
}

// Dash variants accepted as text/description separators. The separator
// must be surrounded by spaces; the earliest occurrence wins.
var dashSeparators = []string{" - ", " – ", " — "}

// ParseEntry splits a raw configured string into text and description.
// A missing or empty-left separator yields the whole string as literal
// text; an empty right segment yields no description.
func ParseEntry(raw string) Entry {
	splitAt := -1
	sepLen := 0
	for _, sep := range dashSeparators {
		idx := strings.Index(raw, sep)
		if idx >= 0 && (splitAt < 0 || idx < splitAt) {
			splitAt = idx
			sepLen = len(sep)
		}
	}
	if splitAt < 0 {
		return Entry{Text: strings.TrimSpace(raw)}
	}
	text := strings.TrimSpace(raw[:splitAt])
	if text == "" {
		// Malformed input: keep the whole string as literal text.
		return Entry{Text: strings.TrimSpace(raw)}
	}
	desc := strings.TrimSpace(raw[splitAt+sepLen:])
	return Entry{Text: text, Description: desc}
}

// Source holds the parsed word entries per difficulty tier.
type Source struct {
	Easy   []Entry
	Medium []Entry
	Hard   []Entry
}

// ForTier returns the entries of one tier.
func (s Source) ForTier(tier Tier) []Entry {
	switch tier {
	case TierEasy:
		return s.Easy
	case TierMedium:
		return s.Medium
	default:
		return s.Hard
	}
}

// Count returns the total number of entries across tiers.
func (s Source) Count() int {
	return len(s.Easy) + len(s.Medium) + len(s.Hard)
}

type tieredFile struct {
	Easy   []string `json:"easy"`
	Medium []string `json:"medium"`
	Hard   []string `json:"hard"`
}

// Load reads a word source from disk. A .json file must carry
// {easy, medium, hard} string arrays; any other extension is read as a
// flat one-word-per-line list shared by all tiers.
func Load(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSON(data)
	}
	return parseFlat(data)
}

// Default returns the embedded word source used when no word file is
// configured.
func Default() Source {
	src, err := parseJSON(defaultWords)
	if err != nil {
		// The embedded file is validated by tests; treat corruption
		// as a programming error.
		panic(fmt.Sprintf("embedded word source: %v", err))
	}
	return src
}

func parseJSON(data []byte) (Source, error) {
	var file tieredFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Source{}, fmt.Errorf("failed to decode word source: %w", err)
	}
	src := Source{
		Easy:   parseAll(file.Easy),
		Medium: parseAll(file.Medium),
		Hard:   parseAll(file.Hard),
	}
	if src.Count() == 0 {
		return Source{}, fmt.Errorf("word source is empty")
	}
	return src, nil
}

func parseFlat(data []byte) (Source, error) {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, ParseEntry(line))
	}
	if err := scanner.Err(); err != nil {
		return Source{}, err
	}
	if len(entries) == 0 {
		return Source{}, fmt.Errorf("word source is empty")
	}
	// A flat list serves every tier.
	return Source{Easy: entries, Medium: entries, Hard: entries}, nil
}

func parseAll(raw []string) []Entry {
	entries := make([]Entry, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, ParseEntry(line))
	}
	return entries
}
