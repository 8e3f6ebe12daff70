package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
model: "gpt-4.1-mini"

provider:
  name: "openai"
  api_key_env: "OPENAI_API_KEY"

# CSV overrides for the built-in datasets.
# datasets:
#   routing: "evals/routing_dataset.csv"
#   tool: "evals/tool_call_dataset.csv"

results_dir: "results"
history_path: "results/history.json"

session:
  type: "file"
  dir: ".agentevals/sessions"

server:
  addr: "127.0.0.1:5001"

log:
  level: "warn"
  format: "console"

max_turns: 10
continue_on_error: false
`

// DefaultConfigYAML returns the document written by Scaffold.
func DefaultConfigYAML() string {
	return defaultConfig
}

// Scaffold writes a starter config file, refusing to overwrite one.
func Scaffold(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
