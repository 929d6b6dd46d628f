//go:build linux

package fs

import (
	"io/fs"
	"syscall"
	"time"
)

// accessTime extracts the atime of a file, falling back to its mtime when
// the platform stat data is unavailable.
func accessTime(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(stat.Atim.Sec), int64(stat.Atim.Nsec))
}
