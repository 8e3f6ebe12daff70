package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Layout of the per-project config directory.
const (
	ConfigDirName  = ".agentevals"
	ConfigFileName = "config.yml"
)

// ErrConfigNotFound is returned when no config file exists up the tree.
var ErrConfigNotFound = errors.New("config not found")

// ConfigPath returns <root>/.agentevals/config.yml.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// ProjectRoot returns the directory relative config paths resolve against:
// the parent of .agentevals/, or the file's own directory for a config kept
// anywhere else.
func ProjectRoot(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) != ConfigDirName {
		return dir
	}
	return filepath.Dir(dir)
}

// FindConfigPath returns the nearest config at or above startDir, which
// defaults to the working directory.
func FindConfigPath(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := ConfigPath(dir)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return "", fmt.Errorf("config path %q is a directory", candidate)
		case err == nil:
			return candidate, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("stat config path %q: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("%w: no %s at or above %s", ErrConfigNotFound, filepath.Join(ConfigDirName, ConfigFileName), start)
		}
	}
}
