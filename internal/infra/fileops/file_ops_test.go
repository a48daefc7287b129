package fileops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.py")
	if err := WriteFile(path, []byte("print(1)\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "print(1)\n" {
		t.Fatalf("unexpected content: %q", data)
	}
	if DirExists(path) {
		t.Fatalf("expected a regular file at %s", path)
	}
}

func TestDirEmpty(t *testing.T) {
	dir := t.TempDir()
	empty, err := DirEmpty(dir)
	if err != nil || !empty {
		t.Fatalf("expected empty dir, got %v %v", empty, err)
	}
	if err := WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	empty, err = DirEmpty(dir)
	if err != nil || empty {
		t.Fatalf("expected non-empty dir, got %v %v", empty, err)
	}
	if _, err := DirEmpty(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestRemoveDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := RemoveDir(dir); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if DirExists(dir) {
		t.Fatalf("expected dir removed")
	}
	if err := RemoveDir(""); err != nil {
		t.Fatalf("empty path must be a no-op: %v", err)
	}
}
