package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOSFilesystemManager_Open(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	t.Run("reads regular file", func(t *testing.T) {
		rc, err := m.Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(data) != "{}\n" {
			t.Errorf("content = %q, want %q", data, "{}\n")
		}
	})

	t.Run("rejects directory", func(t *testing.T) {
		if _, err := m.Open(dir); err == nil {
			t.Error("Open() expected error for directory")
		}
	})

	t.Run("missing file is not-exist", func(t *testing.T) {
		_, err := m.Open(filepath.Join(dir, "missing.jsonl"))
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Open() error = %v, want ErrNotExist", err)
		}
	})
}

func TestOSFilesystemManager_WriteFile(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := m.MkdirAll(filepath.Dir(path)); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := m.WriteFile(path, []byte("first version")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := m.WriteFile(path, []byte("v2")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("content = %q, want %q (content must be fully replaced)", got, "v2")
	}
}

func TestOSFilesystemManager_CopyFile(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()
	src := filepath.Join(dir, "main.py")
	dst := src + ".backup"

	if err := os.WriteFile(src, []byte("print('old')"), 0600); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("setting times: %v", err)
	}

	if err := m.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading copy: %v", err)
	}
	if string(got) != "print('old')" {
		t.Errorf("copy content = %q", got)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat copy: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("copy mode = %v, want %v", info.Mode().Perm(), os.FileMode(0600))
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("copy mtime = %v, want %v", info.ModTime(), mtime)
	}

	t.Run("missing source fails", func(t *testing.T) {
		if err := m.CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "x")); err == nil {
			t.Error("CopyFile() expected error for missing source")
		}
	})
}

func TestOSFilesystemManager_ReadDir(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.jsonl"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	entries, err := m.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Name() != "a.jsonl" {
		t.Errorf("entries not sorted by name: %v", entries)
	}

	if _, err := m.ReadDir(filepath.Join(dir, "missing")); !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("ReadDir() missing dir error = %v, want ErrNotExist", err)
	}
}
