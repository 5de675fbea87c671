// Package loader reads CSV files, parses them and persists the raw text.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"csvview/internal/dataset"
	"csvview/internal/logging"
	"csvview/internal/store"
)

// Persister is the subset of store.Store the loader needs.
type Persister interface {
	SaveCSV(ctx context.Context, source, text string, meta store.Meta) (store.Snapshot, error)
	LoadCSV(ctx context.Context) (store.Snapshot, bool, error)
}

// Options configure a Loader.
type Options struct {
	// Delimiter forces a separator; zero auto-detects.
	Delimiter rune
}

// Result describes one completed load.
type Result struct {
	Dataset  *dataset.Dataset
	Path     string // absolute path, empty for uploads and restores
	Size     int64
	Elapsed  time.Duration
	Restored bool

	// SaveErr is set when persisting failed; the load itself still succeeded.
	SaveErr error
}

// Summary is a one-line human description of the result.
func (r *Result) Summary() string {
	verb := "Loaded"
	if r.Restored {
		verb = "Restored"
	}
	return fmt.Sprintf("%s %s: %d rows, %d columns (%s)",
		verb, r.Dataset.Source, r.Dataset.Len(), len(r.Dataset.Headers), humanize.Bytes(uint64(r.Size)))
}

// Loader ties file reads, parsing and persistence together.
type Loader struct {
	store Persister
	opts  Options
}

// New creates a loader. A nil store disables persistence.
func New(p Persister, opts Options) *Loader {
	return &Loader{store: p, opts: opts}
}

// LoadFile reads and parses the CSV at path, then saves its text.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		logging.Get(logging.CategoryLoader).Error("Failed to read %s: %v", abs, err)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	res, err := l.LoadBytes(ctx, filepath.Base(abs), data)
	if err != nil {
		return nil, err
	}
	res.Path = abs
	return res, nil
}

// LoadBytes parses data as CSV named source, then saves its text.
func (l *Loader) LoadBytes(ctx context.Context, source string, data []byte) (*Result, error) {
	start := time.Now()
	text := string(data)

	ds, err := dataset.ParseString(text, dataset.Options{Source: source, Delimiter: l.opts.Delimiter})
	if err != nil {
		logging.Get(logging.CategoryLoader).Error("Failed to parse %s: %v", source, err)
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	res := &Result{Dataset: ds, Size: int64(len(data))}
	res.SaveErr = l.persist(ctx, source, text, ds)
	res.Elapsed = time.Since(start)

	logging.Loader("%s in %v", res.Summary(), res.Elapsed)
	return res, nil
}

func (l *Loader) persist(ctx context.Context, source, text string, ds *dataset.Dataset) error {
	if l.store == nil {
		return nil
	}
	meta := store.Meta{Delimiter: string(ds.Delimiter), RowCount: ds.Len()}
	if _, err := l.store.SaveCSV(ctx, source, text, meta); err != nil {
		if errors.Is(err, store.ErrTooLarge) {
			logging.LoaderWarn("Data too large to save locally: %v", err)
		} else {
			logging.Get(logging.CategoryLoader).Error("Failed to persist %s: %v", source, err)
		}
		return err
	}
	return nil
}

// Restore parses the last saved CSV. The bool is false when nothing was saved.
func (l *Loader) Restore(ctx context.Context) (*Result, bool, error) {
	if l.store == nil {
		return nil, false, nil
	}

	start := time.Now()
	snap, ok, err := l.store.LoadCSV(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("restore: %w", err)
	}
	if !ok {
		logging.LoaderDebug("No saved CSV to restore")
		return nil, false, nil
	}

	delim := l.opts.Delimiter
	if delim == 0 && snap.Delimiter != "" {
		delim = []rune(snap.Delimiter)[0]
	}
	ds, err := dataset.ParseString(snap.Content, dataset.Options{Source: snap.Source, Delimiter: delim})
	if err != nil {
		return nil, false, fmt.Errorf("restore: parse %s: %w", snap.Source, err)
	}

	res := &Result{Dataset: ds, Size: snap.Size, Restored: true, Elapsed: time.Since(start)}
	logging.Loader("%s in %v", res.Summary(), res.Elapsed)
	return res, true, nil
}
