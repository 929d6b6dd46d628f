package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"salvage-go/internal/salvage"
)

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // true = match against trailing sub-paths; false = match against each path segment
}

// IgnoreMatcher checks recovered file paths against a set of ignore patterns.
// Patterns without '/' match any single path segment, so "node_modules"
// ignores everything below a node_modules directory and "*.lock" ignores lock
// files anywhere. Patterns with '/' match against any trailing sub-path, so
// "node_modules/*" matches "/home/me/app/node_modules/x.js".
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		raw = strings.TrimPrefix(filepath.ToSlash(raw), "/")
		patterns = append(patterns, ignorePattern{
			pattern:   raw,
			matchPath: strings.Contains(raw, "/"),
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Len returns the number of usable patterns.
func (m *IgnoreMatcher) Len() int {
	return len(m.patterns)
}

// Match reports whether the given path should be ignored.
func (m *IgnoreMatcher) Match(p string) bool {
	if len(m.patterns) == 0 || p == "" {
		return false
	}

	normalized := strings.Trim(filepath.ToSlash(p), "/")
	segments := strings.Split(normalized, "/")

	for _, ip := range m.patterns {
		var matched bool
		if ip.matchPath {
			matched = matchSuffix(ip.pattern, normalized)
		} else {
			matched = matchAnySegment(ip.pattern, segments)
		}
		if matched {
			return true
		}
	}
	return false
}

func matchAnySegment(pattern string, segments []string) bool {
	for _, seg := range segments {
		if matchGlob(pattern, seg) {
			return true
		}
	}
	return false
}

// matchSuffix tries pattern against every trailing sub-path of a
// slash-separated path.
func matchSuffix(pattern, normalized string) bool {
	rest := normalized
	for {
		if matchGlob(pattern, rest) {
			return true
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
	}
}

func matchGlob(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	if err != nil {
		// malformed pattern
		return false
	}
	return matched
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}

var _ salvage.PathFilter = (*IgnoreMatcher)(nil)
