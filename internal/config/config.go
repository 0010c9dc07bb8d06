package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath        string `yaml:"db_path"`
	RemoteBaseURL string `yaml:"remote_base_url"`
	RemoteToken   string `yaml:"remote_token"`
	AccountID     string `yaml:"account_id"`
	AccountEmail  string `yaml:"account_email"`
	BackupDir     string `yaml:"backup_dir"`
	SyncLogPath   string `yaml:"sync_log_path"`
	LogLevel      string `yaml:"log_level"`
	Output        string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/nooks/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Output:   "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/nooks/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil {
		// YAML config is optional, so we don't fail if it doesn't exist
	}

	// Override with environment variables
	if dbPath := getEnvOrFile("NOOKS_DB_PATH", "NOOKS_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if base := os.Getenv("NOOKS_REMOTE_URL"); base != "" {
		cfg.RemoteBaseURL = base
	}
	if token := getEnvOrFile("NOOKS_REMOTE_TOKEN", "NOOKS_REMOTE_TOKEN_FILE"); token != "" {
		cfg.RemoteToken = token
	}
	if accountID := os.Getenv("NOOKS_ACCOUNT_ID"); accountID != "" {
		cfg.AccountID = accountID
	}
	if email := os.Getenv("NOOKS_ACCOUNT_EMAIL"); email != "" {
		cfg.AccountEmail = email
	}
	if backupDir := os.Getenv("NOOKS_BACKUP_DIR"); backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if logPath := os.Getenv("NOOKS_SYNC_LOG"); logPath != "" {
		cfg.SyncLogPath = logPath
	}
	if logLevel := os.Getenv("NOOKS_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("NOOKS_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".nooks/nooks.db"); err == nil {
			cfg.DBPath = ".nooks/nooks.db"
		} else {
			// Fall back to user-global database
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "nooks", "nooks.db")
		}
	}

	if cfg.BackupDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.BackupDir = filepath.Join(homeDir, ".local", "share", "nooks", "backups")
	}

	if cfg.SyncLogPath == "" {
		cfg.SyncLogPath = filepath.Join(filepath.Dir(cfg.DBPath), "sync.log")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/nooks/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "nooks", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// Session reports whether a signed-in account is configured, returning
// the account id and email. Both may be empty when the device has never
// signed in.
func (c *Config) Session() (accountID, email string) {
	return c.AccountID, c.AccountEmail
}
