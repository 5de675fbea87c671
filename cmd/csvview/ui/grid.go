package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/mattn/go-runewidth"

	csvtable "csvview/internal/table"
)

const rowNumberTitle = "#"

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// cleanCell flattens a value onto one line for grid display.
func cleanCell(s string) string {
	return cellReplacer.Replace(s)
}

// truncateCell shortens s to width display cells.
func truncateCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// gridColumns sizes one column per header plus a leading row number column.
// Widths fit the widest cell on the page, capped at maxWidth.
func gridColumns(v csvtable.View, maxWidth int) []table.Column {
	cols := make([]table.Column, 0, len(v.Headers)+1)

	numWidth := len(strconv.Itoa(max(v.LastIndex(), 1)))
	cols = append(cols, table.Column{Title: rowNumberTitle, Width: max(numWidth, len(rowNumberTitle))})

	for i, h := range v.Headers {
		w := runewidth.StringWidth(h)
		for _, row := range v.Rows {
			if i < len(row) {
				w = max(w, runewidth.StringWidth(cleanCell(row[i])))
			}
		}
		if maxWidth > 0 {
			w = min(w, maxWidth)
		}
		cols = append(cols, table.Column{Title: truncateCell(h, max(w, 1)), Width: max(w, 1)})
	}
	return cols
}

// gridRows converts the page into table rows prefixed by their 1-based position.
func gridRows(v csvtable.View) []table.Row {
	rows := make([]table.Row, 0, len(v.Rows))
	for i, r := range v.Rows {
		row := make(table.Row, 0, len(v.Headers)+1)
		row = append(row, strconv.Itoa(v.FirstIndex+i))
		for j := range v.Headers {
			cell := ""
			if j < len(r) {
				cell = cleanCell(r[j])
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows
}
