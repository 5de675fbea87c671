package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	csvtable "csvview/internal/table"
)

// SimpleTable renders static rows for non-interactive output.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string

	// MaxWidth caps the total line width; 0 means unlimited.
	MaxWidth int
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// TableFromView fills a SimpleTable with one page of a View.
func TableFromView(v csvtable.View, maxWidth int) *SimpleTable {
	t := NewSimpleTable(v.Source, append([]string{rowNumberTitle}, v.Headers...))
	t.MaxWidth = maxWidth
	for _, row := range gridRows(v) {
		t.AddRow(row...)
	}
	return t
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// widths measures each column and shrinks the widest until the table fits MaxWidth.
func (t *SimpleTable) widths() []int {
	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], runewidth.StringWidth(cleanCell(cell)))
			}
		}
	}
	if t.MaxWidth <= 0 {
		return colWidths
	}

	// Each column carries one space of padding either side plus a separator.
	budget := t.MaxWidth - 3*len(colWidths) + 1
	for total(colWidths) > budget {
		widest := 0
		for i, w := range colWidths {
			if w > colWidths[widest] {
				widest = i
			}
		}
		if colWidths[widest] <= 3 {
			break
		}
		colWidths[widest]--
	}
	return colWidths
}

func total(ws []int) int {
	n := 0
	for _, w := range ws {
		n += w
	}
	return n
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Headers) == 0 {
		return ""
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	colWidths := t.widths()
	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sepStyle := styles.Muted

	cell := func(style lipgloss.Style, s string, w int) string {
		s = truncateCell(cleanCell(s), w)
		return style.Render(s + strings.Repeat(" ", w-runewidth.StringWidth(s)))
	}

	for i, h := range t.Headers {
		sb.WriteString(cell(headerStyle, h, colWidths[i]))
		if i < len(t.Headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	lineWidth := total(colWidths) + 3*len(colWidths) - 1
	sb.WriteString(sepStyle.Render(strings.Repeat("-", lineWidth)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i := range t.Headers {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			sb.WriteString(cell(rowStyle, v, colWidths[i]))
			if i < len(t.Headers)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
