package config

import (
	"fmt"
	"os"
	"strings"

	"agentevals/internal/agent"
	"agentevals/internal/logging"
	"agentevals/internal/session"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// Validate checks a normalized config and the files it references.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	switch cfg.Provider.Name {
	case "", agent.ProviderOpenRouter, agent.ProviderOpenAI:
	default:
		collector.add("provider.name", fmt.Sprintf("unsupported provider %q", cfg.Provider.Name))
	}
	if cfg.MaxTurns < 0 {
		collector.add("max_turns", "must be >= 0")
	}
	validateDatasets(cfg, collector)
	validateSession(cfg, collector)
	validateLog(cfg, collector)
	return collector.result()
}

func validateDatasets(cfg *Config, collector *issueCollector) {
	for field, path := range map[string]string{
		"datasets.routing": cfg.Datasets.Routing,
		"datasets.tool":    cfg.Datasets.Tool,
	} {
		if strings.TrimSpace(path) == "" {
			continue
		}
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			collector.add(field, fmt.Sprintf("file %q does not exist", path))
		case err != nil:
			collector.add(field, fmt.Sprintf("stat %q: %v", path, err))
		case info.IsDir():
			collector.add(field, fmt.Sprintf("%q is a directory", path))
		}
	}
}

func validateSession(cfg *Config, collector *issueCollector) {
	switch cfg.Session.Type {
	case session.TypeMemory:
	case session.TypeFile:
		if strings.TrimSpace(cfg.Session.Dir) == "" {
			collector.add("session.dir", "is required for file sessions")
		}
	case session.TypeRedis:
		if strings.TrimSpace(cfg.Session.Redis.Addr) == "" {
			collector.add("session.redis.addr", "is required for redis sessions")
		}
		if cfg.Session.Redis.TTL < 0 {
			collector.add("session.redis.ttl", "must be >= 0")
		}
	case session.TypeSQLite:
		if strings.TrimSpace(cfg.Session.DSN) == "" {
			collector.add("session.dsn", "is required for sqlite sessions")
		}
	default:
		collector.add("session.type", fmt.Sprintf("unsupported type %q", cfg.Session.Type))
	}
}

func validateLog(cfg *Config, collector *issueCollector) {
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		collector.add("log.level", err.Error())
	}
	if !logging.ValidFormat(cfg.Log.Format) {
		collector.add("log.format", fmt.Sprintf("unsupported format %q", cfg.Log.Format))
	}
}
