package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	applied, err := database.MigrateWithInfo()
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) == 0 {
		t.Fatal("no migrations applied on fresh database")
	}

	// Second run applies nothing.
	applied, err = database.MigrateWithInfo()
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 0 {
		t.Errorf("re-applied %v", applied)
	}

	if err := database.RequiresMigrationError(); err != nil {
		t.Errorf("migrated database reports pending: %v", err)
	}
}

func TestMigrationStatusFreshDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	applied, pending, err := database.MigrationStatus()
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 0 || len(pending) == 0 {
		t.Errorf("applied=%v pending=%v", applied, pending)
	}

	if err := database.RequiresMigrationError(); err == nil {
		t.Error("fresh database should require migration")
	}
}
