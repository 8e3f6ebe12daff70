package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"agentevals/internal/config"
)

// resolveConfigPath normalizes a config path or finds it from CWD.
func resolveConfigPath(configPath string) (string, error) {
	if strings.TrimSpace(configPath) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}

// loadConfig loads an explicit config, the nearest discovered one, or the
// defaults when no config file exists.
func loadConfig(configPath string) (config.Config, error) {
	explicit := ""
	if strings.TrimSpace(configPath) != "" {
		abs, err := resolveConfigPath(configPath)
		if err != nil {
			return config.Config{}, err
		}
		explicit = abs
	}
	cfg, _, err := config.Discover("", explicit)
	return cfg, err
}
