package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	csvtable "csvview/internal/table"
)

// renderPageBar draws fast/prev controls, the current page-number block and
// next/fast controls. Disabled controls are dimmed.
func renderPageBar(v csvtable.View, s Styles) string {
	if !v.Controls.HasData {
		return ""
	}

	control := func(label string, enabled bool) string {
		if enabled {
			return s.Control.Render(label)
		}
		return s.Disabled.Render(label)
	}

	parts := []string{
		control("«", v.Controls.CanFastPrev),
		control("‹", v.Controls.CanPrev),
	}
	if len(v.PageNumbers) > 0 && v.PageNumbers[0] > 1 {
		parts = append(parts, s.Muted.Render("…"))
	}
	for _, n := range v.PageNumbers {
		label := strconv.Itoa(n)
		if n == v.Page {
			parts = append(parts, s.PageActive.Render(label))
		} else {
			parts = append(parts, s.PageInactive.Render(label))
		}
	}
	if last := len(v.PageNumbers); last > 0 && v.PageNumbers[last-1] < v.TotalPages {
		parts = append(parts, s.Muted.Render("…"))
	}
	parts = append(parts,
		control("›", v.Controls.CanNext),
		control("»", v.Controls.CanFastNext),
	)
	return strings.Join(parts, "")
}

// RangeSummary describes which rows the page shows.
func RangeSummary(v csvtable.View) string {
	if v.FilteredCount == 0 {
		if v.Query != "" {
			return fmt.Sprintf("No rows match %q", v.Query)
		}
		return "No rows"
	}
	s := fmt.Sprintf("Rows %s–%s of %s",
		humanize.Comma(int64(v.FirstIndex)),
		humanize.Comma(int64(v.LastIndex())),
		humanize.Comma(int64(v.FilteredCount)))
	if v.Query != "" {
		s += fmt.Sprintf(" (filtered from %s)", humanize.Comma(int64(v.TotalRecords)))
	}
	return s + fmt.Sprintf(" · page %d/%d", v.Page, v.TotalPages)
}
