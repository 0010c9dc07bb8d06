package events

import (
	"path/filepath"
	"testing"

	"github.com/nooksapp/nooks/internal/db"
)

func setupDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestLogMutationAndRecent(t *testing.T) {
	database := setupDB(t)
	w := NewWriter(database.DB)

	if err := w.LogMutation(nil, "task", 1, "task.created", map[string]interface{}{"title": "a"}); err != nil {
		t.Fatal(err)
	}
	if err := w.LogMutation(nil, "task", 1, "task.updated", nil); err != nil {
		t.Fatal(err)
	}

	entries, err := w.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("%d entries", len(entries))
	}
	// Newest first.
	if entries[0].Op != "task.updated" {
		t.Errorf("first entry = %s", entries[0].Op)
	}
	if entries[0].Payload != nil {
		t.Error("nil payload map should write NULL")
	}
	if entries[1].Payload == nil {
		t.Error("payload lost")
	}
}

func TestLogMutationInsideTransaction(t *testing.T) {
	database := setupDB(t)
	w := NewWriter(database.DB)

	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.LogMutation(tx, "bucket", 2, "bucket.created", nil); err != nil {
		t.Fatal(err)
	}

	// Rolled back journal rows vanish with the transaction.
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}
	entries, err := w.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries after rollback", len(entries))
	}
}
