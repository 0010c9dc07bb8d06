// Package store provides the local persistence layer. It is the source
// of truth while the app runs: every entity is created and mutated only
// through these operations, and each committed mutation is announced to
// an optional notifier so the sync layer can mirror it remotely.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nooksapp/nooks/internal/db"
	"github.com/nooksapp/nooks/internal/events"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Mutation describes a committed local store mutation.
type Mutation struct {
	Op     string // "upsert" or "delete"
	Entity string // "bucket" or "task"
	ID     int64
}

// Notifier receives mutation announcements after commit. Implementations
// must not block: the local write has already succeeded and its caller
// is not waiting on the mirror.
type Notifier interface {
	Notify(m Mutation)
}

// Store is the root store that provides access to domain-specific stores.
type Store struct {
	db       *db.DB
	notifier Notifier

	Buckets *BucketStore
	Tasks   *TaskStore
	Prefs   *PrefStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Buckets = &BucketStore{store: s}
	s.Tasks = &TaskStore{store: s}
	s.Prefs = &PrefStore{store: s}
	return s
}

// SetNotifier installs the mutation notifier. Pass nil to detach.
func (s *Store) SetNotifier(n Notifier) {
	s.notifier = n
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// withTx executes fn within a transaction. If fn returns nil, the
// transaction is committed and any mutations recorded by fn are
// announced to the notifier; otherwise the transaction is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx, ew *events.Writer) (muts []Mutation, err error)) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	muts, err := fn(tx, ew)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if s.notifier != nil {
		for _, m := range muts {
			s.notifier.Notify(m)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Older rows may carry full RFC3339 timestamps
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
