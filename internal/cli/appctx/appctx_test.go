package appctx

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/db"
)

func testCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().String("db", "", "")
	return cmd
}

func migratedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBootstrapOpensStore(t *testing.T) {
	t.Setenv("NOOKS_DB_PATH", migratedDB(t))
	t.Setenv("NOOKS_REMOTE_URL", "")
	t.Setenv("NOOKS_ACCOUNT_ID", "")

	app, err := Bootstrap(testCmd(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if app.Store == nil || app.DB == nil {
		t.Fatal("store not wired")
	}
	if app.Session.Active() {
		t.Error("session active without account config")
	}
	if app.Remote != nil {
		t.Error("remote set without configuration")
	}
}

func TestBootstrapRejectsUnmigratedDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")
	database, err := db.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	database.Close()
	t.Setenv("NOOKS_DB_PATH", path)

	if _, err := Bootstrap(testCmd(), DefaultOptions()); err == nil {
		t.Fatal("expected migration error for fresh database")
	}
}

func TestBootstrapNeedsRemote(t *testing.T) {
	t.Setenv("NOOKS_DB_PATH", migratedDB(t))
	t.Setenv("NOOKS_REMOTE_URL", "")

	if _, err := Bootstrap(testCmd(), WithRemote()); err == nil {
		t.Fatal("expected error when remote is required but unconfigured")
	}
}

func TestBootstrapDBFlagOverride(t *testing.T) {
	flagPath := migratedDB(t)
	t.Setenv("NOOKS_DB_PATH", filepath.Join(t.TempDir(), "ignored.db"))

	cmd := testCmd()
	if err := cmd.PersistentFlags().Set("db", flagPath); err != nil {
		t.Fatal(err)
	}

	app, err := Bootstrap(cmd, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if app.Config.DBPath != flagPath {
		t.Errorf("db path = %s, want %s", app.Config.DBPath, flagPath)
	}
}
