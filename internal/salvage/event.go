package salvage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Operation identifies the assistant tool that produced a file event.
type Operation string

const (
	OpWrite     Operation = "Write"
	OpRead      Operation = "Read"
	OpEdit      Operation = "Edit"
	OpMultiEdit Operation = "MultiEdit"
)

// Size thresholds for SizeSeverity.
const (
	mediumSizeThreshold = 10 * 1024
	highSizeThreshold   = 100 * 1024
)

// SizeSeverity buckets a file by size for display.
type SizeSeverity int

const (
	SizeLow SizeSeverity = iota
	SizeMedium
	SizeHigh
)

func (s SizeSeverity) String() string {
	switch s {
	case SizeHigh:
		return "high"
	case SizeMedium:
		return "medium"
	default:
		return "low"
	}
}

// displayMarkers are the conventional project roots used by RelativePath.
var displayMarkers = map[string]bool{
	"src": true, "lib": true, "app": true, "components": true, "pages": true,
	"api": true, "utils": true, "tests": true, "docs": true,
}

var fileTypes = map[string]string{
	".py":         "Python",
	".js":         "JavaScript",
	".ts":         "TypeScript",
	".jsx":        "React",
	".tsx":        "React TS",
	".html":       "HTML",
	".css":        "CSS",
	".scss":       "SCSS",
	".json":       "JSON",
	".yaml":       "YAML",
	".yml":        "YAML",
	".toml":       "TOML",
	".md":         "Markdown",
	".txt":        "Text",
	".sql":        "SQL",
	".sh":         "Shell",
	".dockerfile": "Docker",
	".rs":         "Rust",
	".go":         "Go",
	".java":       "Java",
	".php":        "PHP",
	".rb":         "Ruby",
	".c":          "C",
	".cpp":        "C++",
	".h":          "Header",
}

// FileEvent is one observed full-content file operation from a conversation log.
type FileEvent struct {
	Path           string
	Content        string
	Operation      Operation
	Timestamp      time.Time
	ConversationID string
	ProjectName    string
	SizeBytes      int64

	// VersionCount is display metadata set by ResolveVersions. It holds the
	// number of events seen for Path when there was more than one, else 0.
	VersionCount int
}

// NewFileEvent creates a FileEvent, deriving SizeBytes from content.
func NewFileEvent(path, content string, op Operation, ts time.Time, conversationID, projectName string) FileEvent {
	return FileEvent{
		Path:           path,
		Content:        content,
		Operation:      op,
		Timestamp:      ts,
		ConversationID: conversationID,
		ProjectName:    projectName,
		SizeBytes:      int64(len(content)),
	}
}

// FileName returns the last element of Path.
func (e FileEvent) FileName() string {
	return filepath.Base(e.Path)
}

// Extension returns the lower-cased file suffix, or "" for names without one.
// Leading-dot names such as ".bashrc" have no suffix.
func (e FileEvent) Extension() string {
	name := e.FileName()
	ext := filepath.Ext(name)
	if ext == "." || ext == name {
		return ""
	}
	return strings.ToLower(ext)
}

// FileType returns a human-readable type for the file extension, or "Other".
func (e FileEvent) FileType() string {
	if t, ok := fileTypes[e.Extension()]; ok {
		return t
	}
	return "Other"
}

// SizeHuman returns SizeBytes formatted as B, KB or MB.
func (e FileEvent) SizeHuman() string {
	return FormatSize(e.SizeBytes)
}

// SizeSeverity buckets the file: over 100KB is high, over 10KB medium.
func (e FileEvent) SizeSeverity() SizeSeverity {
	switch {
	case e.SizeBytes > highSizeThreshold:
		return SizeHigh
	case e.SizeBytes > mediumSizeThreshold:
		return SizeMedium
	default:
		return SizeLow
	}
}

// TimestampHuman formats Timestamp as "2006-01-02 15:04:05".
func (e FileEvent) TimestampHuman() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// PreviewLines returns up to the first five lines of Content.
func (e FileEvent) PreviewLines() []string {
	lines := strings.Split(e.Content, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	return lines
}

// LineCount returns the number of newline-separated lines in Content.
func (e FileEvent) LineCount() int {
	return strings.Count(e.Content, "\n") + 1
}

// HasVersions reports whether more than one version of Path was observed.
func (e FileEvent) HasVersions() bool {
	return e.VersionCount > 1
}

// RelativePath guesses a project-relative path for display. It keeps the path
// from the first conventional root marker (src, lib, app, ...) found after the
// first segment; otherwise it falls back to the last three segments, the last
// two, or the bare name. The guess can collide or truncate oddly on unusual
// layouts.
func (e FileEvent) RelativePath() string {
	parts := pathParts(e.Path)
	for i, part := range parts {
		if i > 0 && displayMarkers[part] {
			return filepath.Join(parts[i:]...)
		}
	}
	switch {
	case len(parts) > 3:
		return filepath.Join(parts[len(parts)-3:]...)
	case len(parts) > 1:
		return filepath.Join(parts[len(parts)-2:]...)
	}
	return e.FileName()
}

// FormatSize renders a byte count as "512B", "1.5KB" or "2.0MB".
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
}

// pathParts splits a path into its segments. An absolute path keeps its root
// separator as the first segment.
func pathParts(p string) []string {
	if p == "" {
		return nil
	}
	p = filepath.Clean(p)
	var parts []string
	if filepath.IsAbs(p) {
		parts = append(parts, string(filepath.Separator))
	}
	for _, seg := range strings.Split(p, string(filepath.Separator)) {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}
