package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"csvview/internal/loader"
	"csvview/internal/server"
)

var (
	serveAddr string
	serveOpen bool
)

// serveCmd exposes the viewer to a browser.
var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the viewer over HTTP for a browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	path := ""
	if len(args) == 1 {
		res, err := a.loader.LoadFile(ctx, args[0])
		if err != nil {
			return err
		}
		a.ctrl.Load(res.Dataset)
		path = res.Path
		fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
	} else if res, ok, err := a.loader.Restore(ctx); err != nil {
		logger.Warn("Restore failed", zap.Error(err))
	} else if ok {
		a.ctrl.Load(res.Dataset)
		fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(a.ctrl, a.loader, a.clearer(), server.Options{MaxUpload: cfg.Server.MaxUpload})
	ln, err := server.Listen(addr)
	if err != nil {
		return err
	}
	url := server.URL(ln)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (Ctrl+C to stop)\n", url)

	if serveOpen || cfg.Server.OpenBrowser {
		if err := browser.OpenURL(url); err != nil {
			logger.Warn("Could not open browser", zap.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})

	if path != "" && cfg.Watch.Enabled && !noWatch {
		w, err := loader.NewWatcher(path, cfg.GetWatchDebounce())
		if err != nil {
			logger.Warn("Cannot watch file", zap.String("path", path), zap.Error(err))
		} else {
			if err := w.Start(gctx); err != nil {
				w.Stop()
				return err
			}
			g.Go(func() error {
				<-gctx.Done()
				w.Stop()
				return nil
			})
			g.Go(func() error {
				return reloadOnChange(gctx, w, a.loader, srv)
			})
		}
	}

	return g.Wait()
}

// reloadOnChange reloads the watched file into srv until the watcher stops.
// Changes are ignored once a file has been uploaded.
func reloadOnChange(ctx context.Context, w *loader.Watcher, l *loader.Loader, srv *server.Server) error {
	for change := range w.Events() {
		if change.Removed {
			logger.Warn("Watched file removed; keeping loaded data", zap.String("path", change.Path))
			continue
		}
		res, err := l.LoadFile(ctx, change.Path)
		if err != nil {
			logger.Warn("Reload failed; keeping loaded data", zap.Error(err))
			continue
		}
		if !srv.Reload(res.Dataset) {
			logger.Info("Skipping reload; uploaded data is being served", zap.String("path", w.Path()))
			continue
		}
		logger.Info("Reloaded", zap.String("summary", res.Summary()))
	}
	return nil
}
