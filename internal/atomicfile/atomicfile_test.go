package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	if err := WriteJSON(path, []string{"a", "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err=%v", err)
	}
	var got []string
	found, err := ReadJSON(path, &got)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	var got []string
	found, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &got)
	if err != nil || found {
		t.Fatalf("expected missing file to be reported as not found, found=%v err=%v", found, err)
	}
}

func TestWriteFileRequiresPath(t *testing.T) {
	if err := WriteFile("", []byte("x")); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("write second: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected replaced content, got %q", data)
	}
}
