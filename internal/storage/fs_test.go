package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/terminalart/internal/checksum"
)

func tempSpool(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempSpool(t)
	content := []byte("id: 1\nusername: anon\ntext: hi\n")
	if err := s.Write("1.yaml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("1.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempSpool(t)
	if err := s.Write("2025/01/7.yaml", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("2025/01/7.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempSpool(t)
	_ = s.Write("3.yaml", []byte("bye"))
	if err := s.Delete("3.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("3.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempSpool(t)
	_ = s.Write("1.yaml", []byte("a"))
	_ = s.Write("sub/2.yaml", []byte("b"))
	_ = s.Write("readme.txt", []byte("not a record"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Path == "1.yaml" && it.Checksum != checksum.Sum([]byte("a")) {
			t.Errorf("checksum = %q", it.Checksum)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempSpool(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.yaml",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempSpool(t)
	_ = s.Write("4.yaml", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("4.yaml", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("4.yaml")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".spool-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "spool-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
