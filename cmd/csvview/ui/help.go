package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# csvview

Browse a CSV file page by page. The last file you opened is kept locally
and restored the next time csvview starts.

## Table

| Key | Action |
|-----|--------|
| ↑ ↓ / k j | Move the row cursor |
| enter | Show every field of the selected row |
| ← → / h l | Previous / next page |
| [ ] / pgup pgdn | Jump back / ahead %d pages |
| 1-9, 0 | Go to a page in the current block (0 is the tenth) |
| g / G | First / last page |
| / | Search all columns (case-insensitive) |
| o | Open another CSV file |
| ? | Toggle this help |
| q | Quit |

## Row details

| Key | Action |
|-----|--------|
| ↑ ↓ / k j | Select a field |
| c / y / enter | Copy the selected value |
| esc | Close |

## Search

Typing filters rows live and returns to page 1. ` + "`enter`" + ` keeps the
filter and returns to the table, ` + "`esc`" + ` clears it.
`

var helpCache = NewRenderCache(16)

// renderHelp renders the help page with glamour, cached per width and theme.
func renderHelp(width, jump int, dark bool) (string, error) {
	if width < 20 {
		width = 20
	}
	md := fmt.Sprintf(helpMarkdown, jump)
	key := ComputeKey(md, width, dark)
	return helpCache.GetOrCompute(key, func() (string, error) {
		style := "light"
		if dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("help renderer: %w", err)
		}
		return r.Render(md)
	})
}
