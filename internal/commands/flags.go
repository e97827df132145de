package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/folio/internal/core/config"
	"github.com/colonyops/folio/internal/data/db"
	"github.com/colonyops/folio/internal/data/stores"
)

type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	DataDir      string
	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "folio", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "folio")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/folio/folio.log
// On Linux: $XDG_STATE_HOME/folio/folio.log (defaults to ~/.local/state/folio/folio.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "folio", "folio.log")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "folio", "folio.log")
	}
	return filepath.Join(home, ".local", "state", "folio", "folio.log")
}

// openProgress opens the progress database. A corrupt database file is moved
// aside once and a fresh one created in its place.
func openProgress(cfg *config.Config) (*db.DB, *stores.ProgressStore, error) {
	opts := db.DefaultOpenOptions()
	opts.MaxOpenConns = cfg.Database.MaxOpenConns
	opts.MaxIdleConns = cfg.Database.MaxIdleConns
	opts.BusyTimeout = cfg.Database.BusyTimeout

	database, err := db.Open(cfg.DataDir, opts)
	if err != nil && stores.IsCorruptionError(err) {
		log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("progress database is corrupt, recreating")
		if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
			return nil, nil, fmt.Errorf("recover database: %w", rerr)
		}
		database, err = db.Open(cfg.DataDir, opts)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	return database, stores.NewProgressStore(database), nil
}
