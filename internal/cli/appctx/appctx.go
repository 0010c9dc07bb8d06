// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, database opening, and sync wiring to
// reduce boilerplate across commands.
package appctx

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/nooksapp/nooks/internal/config"
	"github.com/nooksapp/nooks/internal/db"
	"github.com/nooksapp/nooks/internal/remote"
	"github.com/nooksapp/nooks/internal/store"
	"github.com/nooksapp/nooks/internal/syncer"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// DB is the opened database connection (nil if NeedsDB is false)
	DB *db.DB

	// Store wraps DB with the local persistence operations
	Store *store.Store

	// Session is the signed-in account, possibly inactive
	Session syncer.Session

	// Remote is the remote store client (nil when no remote is configured
	// and NeedsRemote is false)
	Remote remote.Client

	// SyncLog receives sync-layer diagnostics
	SyncLog *log.Logger

	propagator *syncer.Propagator
}

// Close releases resources held by the App. The propagator is drained
// first so queued mirror writes get their chance before the process
// exits. Safe to call multiple times.
func (a *App) Close() {
	if a.propagator != nil {
		a.propagator.Close()
		a.propagator = nil
	}
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB indicates whether to open the database.
	NeedsDB bool

	// NeedsRemote indicates whether a configured remote is required.
	// Without it, Remote is still set when configuration allows.
	NeedsRemote bool

	// Mirror indicates whether local mutations should be mirrored to the
	// remote store. Requires NeedsDB; silently skipped when no remote is
	// configured or no account is signed in.
	Mirror bool
}

// DefaultOptions returns default options (DB only, no sync wiring).
func DefaultOptions() Options {
	return Options{NeedsDB: true}
}

// WithMirror returns options for mutating commands whose writes should
// be mirrored remotely when possible.
func WithMirror() Options {
	return Options{NeedsDB: true, Mirror: true}
}

// WithRemote returns options for commands that talk to the remote store
// directly and cannot run without it.
func WithRemote() Options {
	return Options{NeedsDB: true, NeedsRemote: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// It loads config, opens the database, and wires the sync layer per the
// options. Resources are released when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	app := &App{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Override DB path from --db flag if provided
	if dbFlag := cmd.Flag("db"); dbFlag != nil {
		if dbPath := dbFlag.Value.String(); dbPath != "" {
			app.Config.DBPath = dbPath
		}
	}

	accountID, email := cfg.Session()
	app.Session = syncer.Session{AccountID: accountID, Email: email}
	app.SyncLog = syncer.NewLogger(cfg.SyncLogPath)

	if opts.NeedsDB {
		database, err := db.Open(app.Config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := database.RequiresMigrationError(); err != nil {
			database.Close()
			return nil, err
		}
		app.DB = database
		app.Store = store.New(database)
	}

	if cfg.RemoteBaseURL != "" {
		app.Remote = remote.NewHTTPClient(cfg.RemoteBaseURL, cfg.RemoteToken)
	} else if opts.NeedsRemote {
		app.Close()
		return nil, fmt.Errorf("no remote configured (set NOOKS_REMOTE_URL)")
	}

	if opts.Mirror && app.Remote != nil && app.Session.Active() {
		if app.Store == nil {
			app.Close()
			return nil, fmt.Errorf("mirroring requires database (set NeedsDB: true)")
		}
		app.propagator = syncer.NewPropagator(app.Remote, app.Store, app.SyncLog)
		app.Store.SetNotifier(app.propagator.Bind(app.Session))
	}

	return app, nil
}

// RequireSession returns the active session or an error telling the
// user how to sign in.
func (a *App) RequireSession() (syncer.Session, error) {
	if !a.Session.Active() {
		return syncer.Session{}, fmt.Errorf("no account configured (set NOOKS_ACCOUNT_ID and NOOKS_ACCOUNT_EMAIL)")
	}
	return a.Session, nil
}
