package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"csvview/cmd/csvview/ui"
)

// searchDebounce keeps typing responsive on large files.
const searchDebounce = 120 * time.Millisecond

// runView starts the interactive viewer.
func runView(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	m := ui.NewModel(ctx, ui.Options{
		Controller:     a.ctrl,
		Loader:         a.loader,
		Path:           path,
		Theme:          cfg.UI.Theme,
		CopyFeedback:   cfg.UI.GetCopyFeedback(),
		MaxColumnWidth: cfg.UI.MaxColumnWidth,
		SearchDebounce: searchDebounce,
		Watch:          cfg.Watch.Enabled && !noWatch,
		WatchDebounce:  cfg.GetWatchDebounce(),
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(ui.Model); ok {
		fm.Close()
	}
	return err
}
