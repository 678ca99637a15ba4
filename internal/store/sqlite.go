// ABOUTME: SQLite implementation of stride persistence using modernc.org/sqlite
// ABOUTME: Serializes every operation through a single worker bound to one database handle

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore provides durable storage for goals, conversations and
// messages. All operations - including open, migration and close - are
// funneled through one worker goroutine that owns the database handle, so
// no two operations ever interleave and callers observe their own writes.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	jobs chan job
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

type job struct {
	fn    func(db *sql.DB) error
	reply chan error
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path,
// applies any pending schema migrations, and starts the serializing worker.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %v", ErrConnectionFailed, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrConnectionFailed, err)
	}

	// One connection per handle; the worker serializes access anyway.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better read concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", ErrConnectionFailed, err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		jobs:   make(chan job),
		done:   make(chan struct{}),
	}
	go s.run()

	if err := s.do(s.migrate); err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// run is the store worker. It executes submitted jobs one at a time, in
// submission order, until the job channel is closed.
func (s *SQLiteStore) run() {
	defer close(s.done)
	for j := range s.jobs {
		j.reply <- j.fn(s.db)
	}
}

// do submits a job to the worker and blocks until it has completed.
func (s *SQLiteStore) do(fn func(db *sql.DB) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: store is closed", ErrConnectionFailed)
	}
	j := job{fn: fn, reply: make(chan error, 1)}
	s.jobs <- j
	s.mu.Unlock()
	return <-j.reply
}

// Close stops the worker after any queued operations finish and closes the
// database handle. Close is idempotent.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	<-s.done
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// nullString converts an empty string to NULL for optional columns
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
