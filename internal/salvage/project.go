package salvage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrProjectsDirNotFound means the configured projects root does not exist.
	// Nothing can be scanned.
	ErrProjectsDirNotFound = errors.New("projects directory not found")

	// ErrProjectNotFound means no project matched a lookup query.
	ErrProjectNotFound = errors.New("no matching project")
)

// AmbiguousProjectError is returned by FindProject when a partial query
// matches more than one project.
type AmbiguousProjectError struct {
	Query      string
	Candidates []string // project directories, sorted
}

func (e *AmbiguousProjectError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = ProjectName(filepath.Base(c))
	}
	return fmt.Sprintf("multiple projects match %q: %s", e.Query, strings.Join(names, ", "))
}

// ProjectSummary aggregates the recoverable files of one project.
type ProjectSummary struct {
	Name              string
	Path              string
	ConversationCount int
	FileCount         int
	TotalSizeBytes    int64
	LatestActivity    time.Time // zero when the project has no events
	FileTypes         map[string]int
}

// HasActivity reports whether any event was seen.
func (p *ProjectSummary) HasActivity() bool {
	return !p.LatestActivity.IsZero()
}

// SizeHuman returns TotalSizeBytes formatted as B, KB or MB.
func (p *ProjectSummary) SizeHuman() string {
	return FormatSize(p.TotalSizeBytes)
}

// FileBreakdown lists the three most common file types, e.g.
// "4 Python, 2 Go, 1 Markdown, 3 other".
func (p *ProjectSummary) FileBreakdown() string {
	return TypeBreakdown(p.FileTypes, 3)
}

// TypeBreakdown renders the top n entries of a type histogram, ordered by
// count then name, followed by the remainder as "N other".
func TypeBreakdown(types map[string]int, n int) string {
	if len(types) == 0 {
		return ""
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if types[names[i]] != types[names[j]] {
			return types[names[i]] > types[names[j]]
		}
		return names[i] < names[j]
	})

	var parts []string
	others := 0
	for i, name := range names {
		if i < n {
			parts = append(parts, fmt.Sprintf("%d %s", types[name], name))
			continue
		}
		others += types[name]
	}
	if others > 0 {
		parts = append(parts, fmt.Sprintf("%d other", others))
	}
	return strings.Join(parts, ", ")
}

// ProjectName turns a project directory name into a display name.
// Directories named like "-Users-me-code-myproject" reduce to their last
// hyphen-separated segment; anything else is used verbatim. The result is
// cosmetic and not guaranteed to be unique.
func ProjectName(dirName string) string {
	if strings.HasPrefix(dirName, "-") {
		parts := strings.Split(dirName, "-")
		return parts[len(parts)-1]
	}
	return dirName
}

// Aggregator discovers projects under a root directory and merges the file
// events of their conversation logs.
type Aggregator struct {
	root    string
	scanner *ConversationScanner
	fsmgr   FilesystemManager
	filter  PathFilter
	logger  Logger
}

// NewAggregator creates an Aggregator over root. filter may be nil.
func NewAggregator(root string, scanner *ConversationScanner, fsmgr FilesystemManager, filter PathFilter, logger Logger) *Aggregator {
	return &Aggregator{
		root:    root,
		scanner: scanner,
		fsmgr:   fsmgr,
		filter:  filter,
		logger:  logger,
	}
}

// Root returns the projects root directory.
func (a *Aggregator) Root() string {
	return a.root
}

// FindProjects returns the immediate subdirectories of the root that hold at
// least one conversation log, sorted by path.
func (a *Aggregator) FindProjects() ([]string, error) {
	entries, err := a.fsmgr.ReadDir(a.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrProjectsDirNotFound, a.root)
		}
		return nil, fmt.Errorf("reading projects directory: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		dir := filepath.Join(a.root, entry.Name())
		if !a.isDir(entry, dir) {
			continue
		}
		logs, err := a.ConversationLogs(dir)
		if err != nil {
			a.logger.Warn("cannot list project", "project", entry.Name(), "error", err)
			continue
		}
		if len(logs) > 0 {
			projects = append(projects, dir)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// isDir follows symlinks so linked project directories are discovered too.
func (a *Aggregator) isDir(entry fs.DirEntry, fullPath string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := a.fsmgr.Stat(fullPath)
	return err == nil && info.IsDir()
}

// FindProject looks a project up by display name: an exact match wins,
// otherwise a single case-insensitive substring match.
func (a *Aggregator) FindProject(query string) (string, error) {
	projects, err := a.FindProjects()
	if err != nil {
		return "", err
	}

	for _, p := range projects {
		if ProjectName(filepath.Base(p)) == query {
			return p, nil
		}
	}

	var matches []string
	lower := strings.ToLower(query)
	for _, p := range projects {
		if strings.Contains(strings.ToLower(ProjectName(filepath.Base(p))), lower) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrProjectNotFound, query)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousProjectError{Query: query, Candidates: matches}
	}
}

// ConversationLogs returns the conversation logs in projectDir, sorted.
func (a *Aggregator) ConversationLogs(projectDir string) ([]string, error) {
	entries, err := a.fsmgr.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("reading project directory: %w", err)
	}
	var logs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ConversationLogExt {
			continue
		}
		logs = append(logs, filepath.Join(projectDir, entry.Name()))
	}
	sort.Strings(logs)
	return logs, nil
}

// scanProject scans every log in projectDir. A log that fails is reported as
// a warning and contributes nothing; the remaining logs are still scanned.
func (a *Aggregator) scanProject(projectDir string) ([]string, [][]FileEvent, error) {
	logs, err := a.ConversationLogs(projectDir)
	if err != nil {
		return nil, nil, err
	}
	perLog := make([][]FileEvent, 0, len(logs))
	for _, logPath := range logs {
		events, err := a.scanner.ScanAll(logPath)
		if err != nil {
			a.logger.Warn("error scanning conversation", "log", filepath.Base(logPath), "error", err)
			continue
		}
		perLog = append(perLog, events)
	}
	return logs, perLog, nil
}

// Summarize computes a ProjectSummary over every event in projectDir.
// Versions are not merged: each observed event counts.
func (a *Aggregator) Summarize(projectDir string) (*ProjectSummary, error) {
	logs, perLog, err := a.scanProject(projectDir)
	if err != nil {
		return nil, err
	}

	summary := &ProjectSummary{
		Name:              ProjectName(filepath.Base(projectDir)),
		Path:              projectDir,
		ConversationCount: len(logs),
		FileTypes:         make(map[string]int),
	}
	for _, events := range perLog {
		for _, ev := range events {
			summary.FileCount++
			summary.TotalSizeBytes += ev.SizeBytes
			summary.FileTypes[ev.FileType()]++
			if ev.Timestamp.After(summary.LatestActivity) {
				summary.LatestActivity = ev.Timestamp
			}
		}
	}
	return summary, nil
}

// ResolveFiles scans projectDir and returns one canonical event per path,
// newest first. Paths matched by the aggregator's filter are dropped.
func (a *Aggregator) ResolveFiles(projectDir string) ([]FileEvent, error) {
	_, perLog, err := a.scanProject(projectDir)
	if err != nil {
		return nil, err
	}

	var all []FileEvent
	for _, events := range perLog {
		for _, ev := range events {
			if a.filter != nil && a.filter.Match(ev.Path) {
				continue
			}
			all = append(all, ev)
		}
	}
	files := ResolveVersions(all)
	a.logger.Debug("resolved files", "project", filepath.Base(projectDir), "events", len(all), "files", len(files))
	return files, nil
}

// ResolveVersions groups events by exact path and keeps the newest event of
// each group. Ties on timestamp keep the first event encountered. The kept
// event's VersionCount is the group size when the group has more than one
// member. The result is sorted newest first.
func ResolveVersions(events []FileEvent) []FileEvent {
	index := make(map[string]int)
	var canonical []FileEvent
	var counts []int

	for _, ev := range events {
		i, seen := index[ev.Path]
		if !seen {
			index[ev.Path] = len(canonical)
			canonical = append(canonical, ev)
			counts = append(counts, 1)
			continue
		}
		counts[i]++
		if ev.Timestamp.After(canonical[i].Timestamp) {
			canonical[i] = ev
		}
	}

	for i := range canonical {
		canonical[i].VersionCount = 0
		if counts[i] > 1 {
			canonical[i].VersionCount = counts[i]
		}
	}

	sort.SliceStable(canonical, func(i, j int) bool {
		return canonical[i].Timestamp.After(canonical[j].Timestamp)
	})
	return canonical
}

// FilterByType keeps events whose FileType matches fileType, ignoring case.
// An empty fileType keeps everything.
func FilterByType(events []FileEvent, fileType string) []FileEvent {
	if fileType == "" {
		return events
	}
	var out []FileEvent
	for _, ev := range events {
		if strings.EqualFold(ev.FileType(), fileType) {
			out = append(out, ev)
		}
	}
	return out
}
