package config

import (
	"agentevals/internal/logging"
	"agentevals/internal/session"
)

// Config is the parsed .agentevals/config.yml.
type Config struct {
	Version         int            `yaml:"version"`
	Model           string         `yaml:"model"`
	Provider        ProviderConfig `yaml:"provider"`
	Datasets        DatasetsConfig `yaml:"datasets"`
	ResultsDir      string         `yaml:"results_dir"`
	HistoryPath     string         `yaml:"history_path"`
	Session         session.Config `yaml:"session"`
	Server          ServerConfig   `yaml:"server"`
	Log             logging.Config `yaml:"log"`
	DuckDB          DuckDBConfig   `yaml:"duckdb"`
	MaxTurns        int            `yaml:"max_turns"`
	ContinueOnError bool           `yaml:"continue_on_error"`
}

// ProviderConfig selects the model provider. Empty fields fall back to
// LLM_PROVIDER and LLM_API_KEY.
type ProviderConfig struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// DatasetsConfig overrides the embedded datasets with CSV paths.
type DatasetsConfig struct {
	Routing string `yaml:"routing"`
	Tool    string `yaml:"tool"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DuckDBConfig struct {
	Path string `yaml:"path"`
}
