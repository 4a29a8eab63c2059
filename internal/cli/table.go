package cli

import (
	"strings"
)

// Table is a plain-text table formatter with dynamic column widths and
// optional per-column word wrapping.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int // Maximum width per column index (0 = no limit)
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		rows:      make([][]string, 0),
		padding:   2, // 2 spaces between columns
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth sets a maximum width for a specific column.
// Text longer than this is wrapped onto continuation lines.
func (t *Table) SetColumnMaxWidth(col, maxWidth int) {
	t.maxWidths[col] = maxWidth
}

// AddRow adds a row to the table. Missing cells are padded with empty
// strings; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Wrap cells that exceed their column's max width.
	wrapped := make([][][]string, len(t.rows))
	for i, row := range t.rows {
		wrapped[i] = make([][]string, len(row))
		for col, cell := range row {
			if limit := t.maxWidths[col]; limit > 0 {
				wrapped[i][col] = wrapText(cell, limit)
			} else {
				wrapped[i][col] = []string{cell}
			}
		}
	}

	// Column widths start at the header width and grow to the widest line,
	// capped at the column's max width.
	widths := make([]int, len(t.headers))
	for col, h := range t.headers {
		widths[col] = len(h)
	}
	for _, row := range wrapped {
		for col, lines := range row {
			for _, line := range lines {
				if len(line) > widths[col] {
					widths[col] = len(line)
				}
			}
			if limit := t.maxWidths[col]; limit > 0 && widths[col] > limit {
				widths[col] = limit
			}
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var b strings.Builder

	// Header and separator.
	for col, h := range t.headers {
		if col > 0 {
			b.WriteString(gap)
		}
		b.WriteString(padRight(h, widths[col]))
	}
	b.WriteString("\n")
	for col, w := range widths {
		if col > 0 {
			b.WriteString(gap)
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")

	// Data rows; a wrapped cell spills onto continuation lines.
	for _, row := range wrapped {
		lineCount := 1
		for _, lines := range row {
			if len(lines) > lineCount {
				lineCount = len(lines)
			}
		}

		for line := 0; line < lineCount; line++ {
			for col := range t.headers {
				if col > 0 {
					b.WriteString(gap)
				}
				cell := ""
				if col < len(row) && line < len(row[col]) {
					cell = row[col][line]
				}
				b.WriteString(padRight(cell, widths[col]))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// padRight pads a string with spaces on the right to reach the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// wrapText wraps text to fit within width, breaking at word boundaries.
// Words longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		// Split words that cannot fit on any line.
		for len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}

		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}

	return lines
}
