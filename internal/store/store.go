// Package store persists the most recently loaded CSV text in SQLite so the
// viewer can restore it on the next start.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"csvview/internal/logging"
)

// CSVKey is the slot that holds the last loaded file.
const CSVKey = "csvText"

var (
	// ErrTooLarge is returned when text exceeds the configured limit.
	ErrTooLarge = errors.New("csv too large to save locally")
	// ErrNotFound is returned when a slot has never been written.
	ErrNotFound = errors.New("snapshot not found")
)

// Snapshot is one persisted CSV text plus its metadata.
type Snapshot struct {
	ID        string
	Key       string
	Source    string
	Content   string
	Size      int64
	Delimiter string
	RowCount  int
	LoadedAt  time.Time
}

// Options configure a Store.
type Options struct {
	// MaxBytes rejects larger texts with ErrTooLarge; 0 disables the check.
	MaxBytes int64
}

// Store is the SQLite-backed snapshot store.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	opts   Options
	nowFn  func() time.Time
	idFn   func() string
	closed bool
}

// Open initializes the SQLite database at the given path.
// ":memory:" opens a private in-memory database.
func Open(path string, opts Options) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	logging.Store("Opening store at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.StoreError("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
		}
	}

	s := &Store{
		db:    db,
		path:  path,
		opts:  opts,
		nowFn: time.Now,
		idFn:  func() string { return uuid.NewString() },
	}
	if err := s.initialize(); err != nil {
		logging.StoreError("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logging.Store("Store ready")
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		size INTEGER NOT NULL,
		loaded_at DATETIME NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	logging.Store("Closing store database connection")
	return s.db.Close()
}

// SaveCSV stores text as the current CSV, replacing any previous one.
func (s *Store) SaveCSV(ctx context.Context, source, text string, meta Meta) (Snapshot, error) {
	return s.Save(ctx, CSVKey, source, text, meta)
}

// LoadCSV returns the current CSV. The bool is false when nothing was saved.
func (s *Store) LoadCSV(ctx context.Context) (Snapshot, bool, error) {
	snap, err := s.Load(ctx, CSVKey)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Clear removes the current CSV.
func (s *Store) Clear(ctx context.Context) error {
	return s.Delete(ctx, CSVKey)
}

// Meta carries optional parse details recorded alongside the text.
type Meta struct {
	Delimiter string
	RowCount  int
}

// Save upserts text under key.
func (s *Store) Save(ctx context.Context, key, source, text string, meta Meta) (Snapshot, error) {
	size := int64(len(text))
	if s.opts.MaxBytes > 0 && size > s.opts.MaxBytes {
		logging.Get(logging.CategoryStore).Warn("Refusing to save %s: %d bytes exceeds limit %d", key, size, s.opts.MaxBytes)
		return Snapshot{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, s.opts.MaxBytes)
	}

	snap := Snapshot{
		ID:        s.idFn(),
		Key:       key,
		Source:    source,
		Content:   text,
		Size:      size,
		Delimiter: meta.Delimiter,
		RowCount:  meta.RowCount,
		LoadedAt:  s.nowFn().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, id, source, content, size, delimiter, row_count, loaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   id = excluded.id,
		   source = excluded.source,
		   content = excluded.content,
		   size = excluded.size,
		   delimiter = excluded.delimiter,
		   row_count = excluded.row_count,
		   loaded_at = excluded.loaded_at`,
		snap.Key, snap.ID, snap.Source, snap.Content, snap.Size, snap.Delimiter, snap.RowCount, snap.LoadedAt,
	)
	if err != nil {
		logging.StoreError("Failed to save snapshot %s: %v", key, err)
		return Snapshot{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	logging.StoreDebug("Saved snapshot key=%s id=%s size=%d", key, snap.ID, size)
	return snap, nil
}

// Load reads the snapshot under key.
func (s *Store) Load(ctx context.Context, key string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT key, id, source, content, size, delimiter, row_count, loaded_at
		 FROM snapshots WHERE key = ?`, key,
	).Scan(&snap.Key, &snap.ID, &snap.Source, &snap.Content, &snap.Size, &snap.Delimiter, &snap.RowCount, &snap.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		logging.StoreError("Failed to load snapshot %s: %v", key, err)
		return Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes the snapshot under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	logging.StoreDebug("Deleted snapshot key=%s", key)
	return nil
}
