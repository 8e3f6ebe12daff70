package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootHelpListsEveryCommand(t *testing.T) {
	var out, err bytes.Buffer
	if code := Run([]string{"help"}, &out, &err); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if err.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", err.String())
	}
	output := out.String()
	if !strings.Contains(output, "agentevals <command> [options]") {
		t.Fatalf("expected usage header, got %q", output)
	}
	want := []string{"eval-handoff", "eval-tool", "history", "stats", "examples", "serve", "validate", "init"}
	if len(commands) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(commands))
	}
	for _, name := range want {
		if findCommand(name) == nil || !strings.Contains(output, name) {
			t.Fatalf("expected command %q in usage", name)
		}
	}
}

func TestNoArgsShowsUsage(t *testing.T) {
	var out, err bytes.Buffer
	if code := Run(nil, &out, &err); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if err.Len() != 0 || !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected usage on stdout, got stdout=%q stderr=%q", out.String(), err.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	var out, err bytes.Buffer
	if code := Run([]string{"eval-billing"}, &out, &err); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(err.String(), "Unknown command: eval-billing") || !strings.Contains(err.String(), "Usage:") {
		t.Fatalf("unexpected stderr %q", err.String())
	}
}

func TestCommandHelp(t *testing.T) {
	for _, cmd := range commands {
		for _, flag := range []string{"--help", "-h"} {
			var out, err bytes.Buffer
			if code := Run([]string{cmd.Name, flag}, &out, &err); code != ExitOK {
				t.Fatalf("%s %s: expected exit %d, got %d", cmd.Name, flag, ExitOK, code)
			}
			if err.Len() != 0 {
				t.Fatalf("%s: expected no stderr output, got %q", cmd.Name, err.String())
			}
			for _, line := range cmd.Usage {
				if !strings.Contains(out.String(), line) {
					t.Fatalf("%s: expected usage line %q", cmd.Name, line)
				}
			}
		}
	}
}
