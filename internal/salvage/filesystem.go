package salvage

import (
	"io"
	"io/fs"
)

// FilesystemManager provides the disk access used by the scanner, aggregator
// and recovery engine. It abstracts file access to enable testing without
// touching the real filesystem.
type FilesystemManager interface {
	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// ReadDir lists the entries of a directory, sorted by name.
	ReadDir(path string) ([]fs.DirEntry, error)

	// Stat returns fresh file info for a path.
	// A missing path returns an error satisfying errors.Is(err, fs.ErrNotExist).
	Stat(path string) (fs.FileInfo, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// CopyFile copies src to dst, preserving permissions and file times
	// where the platform supports it.
	CopyFile(src, dst string) error

	// WriteFile replaces the contents of path with data, creating it if needed.
	WriteFile(path string, data []byte) error
}

// PathFilter decides whether a recovered file path should be left out of the
// resolved file set.
type PathFilter interface {
	Match(path string) bool
}
