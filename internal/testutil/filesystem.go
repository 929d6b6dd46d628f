package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"salvage-go/internal/salvage"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Individual operations can be made to fail with FailOn.
type MockFilesystemManager struct {
	files    map[string]*MockFile
	failures map[string]error
	writes   int
}

// NewMockFilesystemManager creates a new mock filesystem containing only "/".
func NewMockFilesystemManager() *MockFilesystemManager {
	m := &MockFilesystemManager{
		files:    make(map[string]*MockFile),
		failures: make(map[string]error),
	}
	m.files["/"] = &MockFile{Permissions: 0755, IsDirectory: true}
	return m
}

// AddFile adds a file to the mock filesystem, creating parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	path = filepath.Clean(path)
	m.addDirs(filepath.Dir(path))
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddDirectory adds a directory and its parents to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.addDirs(filepath.Clean(path))
}

// FailOn makes operation op ("open", "readdir", "stat", "mkdir", "copy",
// "write") fail with err for path. For "copy" the path is the source.
func (m *MockFilesystemManager) FailOn(op, path string, err error) {
	m.failures[op+":"+filepath.Clean(path)] = err
}

// ReadFile returns the content stored at path.
func (m *MockFilesystemManager) ReadFile(path string) ([]byte, bool) {
	f, ok := m.files[filepath.Clean(path)]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return f.Content, true
}

// Exists reports whether anything is stored at path.
func (m *MockFilesystemManager) Exists(path string) bool {
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// Mutations counts the successful mkdir, copy and write calls.
func (m *MockFilesystemManager) Mutations() int {
	return m.writes
}

// Paths returns every stored path, sorted.
func (m *MockFilesystemManager) Paths() []string {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockFilesystemManager) addDirs(path string) {
	for {
		if f, ok := m.files[path]; ok && f.IsDirectory {
			return
		}
		m.files[path] = &MockFile{Permissions: 0755, ModTime: time.Now(), IsDirectory: true}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

func (m *MockFilesystemManager) failure(op, path string) error {
	return m.failures[op+":"+filepath.Clean(path)]
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	if err := m.failure("open", path); err != nil {
		return nil, err
	}
	file, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) ReadDir(path string) ([]fs.DirEntry, error) {
	if err := m.failure("readdir", path); err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	dir, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}
	if !dir.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", path)
	}

	var entries []fs.DirEntry
	for p, f := range m.files {
		if p == path || filepath.Dir(p) != path {
			continue
		}
		entries = append(entries, fs.FileInfoToDirEntry(newMockFileInfo(p, f)))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	if err := m.failure("stat", path); err != nil {
		return nil, err
	}
	file, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return newMockFileInfo(path, file), nil
}

func (m *MockFilesystemManager) MkdirAll(path string) error {
	if err := m.failure("mkdir", path); err != nil {
		return err
	}
	path = filepath.Clean(path)
	if f, ok := m.files[path]; ok && !f.IsDirectory {
		return fmt.Errorf("mkdir %s: not a directory", path)
	}
	m.addDirs(path)
	m.writes++
	return nil
}

func (m *MockFilesystemManager) CopyFile(src, dst string) error {
	if err := m.failure("copy", src); err != nil {
		return err
	}
	file, ok := m.files[filepath.Clean(src)]
	if !ok || file.IsDirectory {
		return &fs.PathError{Op: "copy", Path: src, Err: fs.ErrNotExist}
	}
	cp := *file
	cp.Content = append([]byte(nil), file.Content...)
	m.files[filepath.Clean(dst)] = &cp
	m.writes++
	return nil
}

func (m *MockFilesystemManager) WriteFile(path string, data []byte) error {
	if err := m.failure("write", path); err != nil {
		return err
	}
	path = filepath.Clean(path)
	if _, ok := m.files[filepath.Dir(path)]; !ok {
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrNotExist}
	}
	if f, ok := m.files[path]; ok {
		if f.IsDirectory {
			return fmt.Errorf("write %s: is a directory", path)
		}
		f.Content = append([]byte(nil), data...)
		f.ModTime = time.Now()
	} else {
		m.files[path] = &MockFile{Content: append([]byte(nil), data...), Permissions: 0644, ModTime: time.Now()}
	}
	m.writes++
	return nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile
}

func newMockFileInfo(path string, f *MockFile) *mockFileInfo {
	mode := f.Permissions
	if f.IsDirectory {
		mode |= fs.ModeDir
	}
	return &mockFileInfo{
		name:     filepath.Base(path),
		size:     int64(len(f.Content)),
		mode:     mode,
		modTime:  f.ModTime,
		isDir:    f.IsDirectory,
		mockFile: f,
	}
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ salvage.FilesystemManager = (*MockFilesystemManager)(nil)
