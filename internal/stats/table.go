package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type column struct {
	title      string
	rightAlign bool
}

// formatTable lays out rows under the column titles, sizing each column
// to its widest cell. Ragged rows are padded with empty cells.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range rows {
		for i := range cols {
			if w := runewidth.StringWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = alignCell(col.title, widths[i], col.rightAlign)
	}
	lines = append(lines, strings.Join(titles, " "))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = alignCell(cellAt(row, i), widths[i], col.rightAlign)
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func alignCell(value string, width int, rightAlign bool) string {
	pad := width - runewidth.StringWidth(value)
	if pad <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", pad) + value
	}
	return value + strings.Repeat(" ", pad)
}
