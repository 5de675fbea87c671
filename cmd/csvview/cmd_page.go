package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"csvview/cmd/csvview/ui"
)

var (
	pageNum   int
	pageQuery string
	pageWidth int
	pageJSON  bool
)

var errNoData = errors.New("no CSV loaded: pass a file or open one in the viewer first")

// pageCmd prints one page without the interactive viewer.
var pageCmd = &cobra.Command{
	Use:   "page [file]",
	Short: "Print one page of a CSV file (or the saved one) as a table",
	Long: `Print a single page as plain text for pipes and scripts.

Without a file the last saved CSV is used. A file given here is read but
not saved, so it does not replace what the viewer restores.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPage,
}

func runPage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Only the restore path needs the store.
	a, err := openApp(cfg, len(args) == 0)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		res, err := a.loader.LoadFile(ctx, args[0])
		if err != nil {
			return err
		}
		a.ctrl.Load(res.Dataset)
		logger.Debug("Loaded file", zap.String("path", res.Path), zap.Int("rows", res.Dataset.Len()))
	} else {
		res, ok, err := a.loader.Restore(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNoData
		}
		a.ctrl.Load(res.Dataset)
		logger.Debug("Restored saved CSV", zap.String("source", res.Dataset.Source))
	}

	if pageQuery != "" {
		a.ctrl.SetQuery(pageQuery)
	}
	a.ctrl.GoTo(pageNum)
	v := a.ctrl.Snapshot()

	out := cmd.OutOrStdout()
	if pageJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	width := pageWidth
	if width == 0 {
		width = terminalWidth()
	}
	fmt.Fprint(out, ui.TableFromView(v, width).View(ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))))
	fmt.Fprintln(out, ui.RangeSummary(v))
	return nil
}

// terminalWidth returns stdout's width, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
