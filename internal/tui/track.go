// Package tui provides the Bubble Tea game interface.
package tui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	minTrackWidth = 16
	runnerCol     = 2
)

// renderTrack draws the runner and the approaching obstacle. progress
// is the elapsed fraction of the deadline; at 1.0 the obstacle has
// reached the runner's fixed position.
func renderTrack(width int, progress float64) string {
	if width < minTrackWidth {
		width = minTrackWidth
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	track := make([]rune, width)
	for i := range track {
		track[i] = '.'
	}
	span := width - 1 - runnerCol
	obstacleCol := runnerCol + int(math.Round(float64(span)*(1-progress)))
	if obstacleCol < runnerCol {
		obstacleCol = runnerCol
	}
	track[obstacleCol] = '#'
	if obstacleCol != runnerCol {
		track[runnerCol] = '@'
	}
	return string(track)
}

// truncateToWidth clips a line to the given display width.
func truncateToWidth(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

// hearts renders the remaining lives.
func hearts(lives, max int) string {
	var b strings.Builder
	for i := 0; i < max; i++ {
		if i < lives {
			b.WriteString("♥")
		} else {
			b.WriteString("♡")
		}
	}
	return b.String()
}
