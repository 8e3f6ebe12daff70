// Package vcs reads best-effort git provenance for evaluation runs.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// UnknownCommit is recorded when the commit cannot be determined.
const UnknownCommit = "unknown"

// lookupTimeout bounds each git invocation.
const lookupTimeout = 5 * time.Second

// gitRunner executes git commands.
type gitRunner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// execGitRunner invokes git via the system binary.
type execGitRunner struct{}

// Run executes a git command and returns trimmed stdout.
func (execGitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "no stderr"
		}
		return "", fmt.Errorf("git %s: %w (%s)", strings.Join(args, " "), err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client resolves provenance in a working directory.
type Client struct {
	runner gitRunner
	dir    string
}

// NewClient constructs a client for dir with an optional runner override.
// An empty dir uses the process working directory.
func NewClient(dir string, runner gitRunner) Client {
	if runner == nil {
		runner = execGitRunner{}
	}
	return Client{runner: runner, dir: dir}
}

// Commit returns the HEAD commit hash.
func (c Client) Commit(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	commit, err := c.runner.Run(ctx, c.dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if commit == "" {
		return "", fmt.Errorf("resolve HEAD: empty output")
	}
	return commit, nil
}

// CommitOrUnknown returns the HEAD commit, or UnknownCommit on any failure.
func (c Client) CommitOrUnknown(ctx context.Context) string {
	commit, err := c.Commit(ctx)
	if err != nil {
		return UnknownCommit
	}
	return commit
}

// RepoRoot returns the top-level directory of the enclosing work tree.
func (c Client) RepoRoot(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	root, err := c.runner.Run(ctx, c.dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("resolve repo root: %w", err)
	}
	if root == "" {
		return "", fmt.Errorf("resolve repo root: empty output")
	}
	return root, nil
}
