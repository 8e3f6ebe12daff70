package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"agentevals/internal/agent"
	"agentevals/internal/agent/agenttest"
	"agentevals/internal/app"
	"agentevals/internal/config"
	"agentevals/internal/testutil"
)

const testConfigYAML = `version: 1
results_dir: "results"
session:
  type: "memory"
log:
  level: "error"
`

// writeTestConfig creates <root>/.agentevals/config.yml and returns its path.
func writeTestConfig(t *testing.T, root, body string) string {
	t.Helper()
	path := config.ConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// stubProvider routes every request through a model that never calls tools.
func stubProvider(t *testing.T) {
	t.Helper()
	useProvider(t, func(context.Context, agent.Prompt) ([]agent.StreamEvent, error) {
		return []agent.StreamEvent{agenttest.Message("How can I help?")}, nil
	})
}

func useProvider(t *testing.T, fn agenttest.Func) {
	t.Helper()
	clock := testutil.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	original := appOptions
	appOptions = func() []app.Option {
		return []app.Option{
			app.WithProviderFactory(func(string) (agent.Provider, error) { return fn, nil }),
			app.WithClock(clock.Stepping(time.Second)),
			app.WithCommit(func(context.Context) string { return "0123456789abcdef" }),
		}
	}
	t.Cleanup(func() { appOptions = original })
}
