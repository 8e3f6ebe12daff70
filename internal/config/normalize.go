package config

import (
	"path/filepath"
	"strings"

	"agentevals/internal/agent/call"
	"agentevals/internal/session"
)

// Defaults applied by Normalize.
const (
	DefaultModel       = "gpt-4.1-mini"
	DefaultResultsDir  = "results"
	DefaultHistoryFile = "history.json"
	DefaultServerAddr  = "127.0.0.1:5001"
)

// DefaultSessionDir holds file sessions when no store is configured.
var DefaultSessionDir = filepath.Join(ConfigDirName, "sessions")

// Default returns a normalized config with no file behind it.
func Default() Config {
	cfg := Config{}
	Normalize(&cfg)
	return cfg
}

// Normalize fills defaults in place.
func Normalize(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	if strings.TrimSpace(cfg.ResultsDir) == "" {
		cfg.ResultsDir = DefaultResultsDir
	}
	if strings.TrimSpace(cfg.HistoryPath) == "" {
		cfg.HistoryPath = filepath.Join(cfg.ResultsDir, DefaultHistoryFile)
	}
	cfg.Session.Type = strings.ToLower(strings.TrimSpace(cfg.Session.Type))
	if cfg.Session.Type == "" {
		cfg.Session.Type = session.TypeFile
		if strings.TrimSpace(cfg.Session.Dir) == "" {
			cfg.Session.Dir = DefaultSessionDir
		}
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = call.DefaultMaxTurns
	}
}

// ResolvePaths makes relative file paths absolute against root.
func ResolvePaths(cfg *Config, root string) {
	if root == "" {
		return
	}
	for _, p := range []*string{
		&cfg.Datasets.Routing,
		&cfg.Datasets.Tool,
		&cfg.ResultsDir,
		&cfg.HistoryPath,
		&cfg.Session.Dir,
		&cfg.DuckDB.Path,
	} {
		*p = resolvePath(root, *p)
	}
	if cfg.Session.Type == session.TypeSQLite && !strings.Contains(cfg.Session.DSN, ":") {
		cfg.Session.DSN = resolvePath(root, cfg.Session.DSN)
	}
}

func resolvePath(root, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == ":memory:" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(root, value)
}
