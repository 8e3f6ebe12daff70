package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddGitignoreEntries(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("node_modules\nresults"), 0o644); err != nil {
		t.Fatalf("seed .gitignore: %v", err)
	}

	added, err := addGitignoreEntries(root, filepath.Join(root, "results"), "out/csv", "./out/csv")
	if err != nil {
		t.Fatalf("add entries: %v", err)
	}
	if len(added) != 1 || added[0] != "out/csv" {
		t.Fatalf("unexpected added entries %v", added)
	}
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		t.Fatalf("read .gitignore: %v", err)
	}
	if string(data) != "node_modules\nresults\nout/csv\n" {
		t.Fatalf("unexpected .gitignore %q", data)
	}

	added, err = addGitignoreEntries(root, "out/csv")
	if err != nil || added != nil {
		t.Fatalf("expected no-op, got %v (%v)", added, err)
	}
}

func TestAddGitignoreEntriesRejectsOutsidePaths(t *testing.T) {
	root := t.TempDir()
	for _, path := range []string{"", ".", "../elsewhere", filepath.Dir(root)} {
		if _, err := addGitignoreEntries(root, path); err == nil {
			t.Fatalf("expected error for %q", path)
		}
	}
}
