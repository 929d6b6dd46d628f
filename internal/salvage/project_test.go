package salvage_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvage-go/internal/salvage"
	"salvage-go/internal/testutil"
)

const projectsRoot = "/home/me/.claude/projects"

type prefixFilter string

func (p prefixFilter) Match(path string) bool {
	return len(path) >= len(p) && path[:len(p)] == string(p)
}

func newTestAggregator(fsmgr salvage.FilesystemManager, filter salvage.PathFilter) *salvage.Aggregator {
	return salvage.NewAggregator(projectsRoot, newTestScanner(fsmgr), fsmgr, filter, salvage.NewNopLogger())
}

func at(minute int) time.Time {
	return time.Date(2025, 6, 1, 10, minute, 0, 0, time.UTC)
}

func event(path string, ts time.Time) salvage.FileEvent {
	return salvage.NewFileEvent(path, "content of "+path, salvage.OpWrite, ts, "c", "p")
}

func TestProjectName(t *testing.T) {
	cases := map[string]string{
		"-Users-me-code-myproject": "myproject",
		"-home-dev-api":            "api",
		"plainname":                "plainname",
		"with-dash":                "with-dash",
		"-":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, salvage.ProjectName(in), in)
	}
}

func TestAggregator_FindProjects(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile(projectsRoot+"/-Users-me-zeta/a.jsonl", nil)
	fsmgr.AddFile(projectsRoot+"/-Users-me-alpha/b.jsonl", nil)
	fsmgr.AddFile(projectsRoot+"/-Users-me-empty/notes.txt", nil)
	fsmgr.AddDirectory(projectsRoot + "/-Users-me-bare")
	fsmgr.AddFile(projectsRoot+"/stray.jsonl", nil)

	projects, err := newTestAggregator(fsmgr, nil).FindProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{
		projectsRoot + "/-Users-me-alpha",
		projectsRoot + "/-Users-me-zeta",
	}, projects)
}

func TestAggregator_FindProjectsMissingRoot(t *testing.T) {
	_, err := newTestAggregator(testutil.NewMockFilesystemManager(), nil).FindProjects()
	require.Error(t, err)
	assert.ErrorIs(t, err, salvage.ErrProjectsDirNotFound)
}

func TestAggregator_FindProject(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	for _, dir := range []string{"-Users-me-api", "-Users-me-api-gateway", "-Users-me-webapp", "-Users-me-webapp2"} {
		fsmgr.AddFile(projectsRoot+"/"+dir+"/c.jsonl", nil)
	}
	agg := newTestAggregator(fsmgr, nil)

	t.Run("exact match wins over substring", func(t *testing.T) {
		got, err := agg.FindProject("webapp")
		require.NoError(t, err)
		assert.Equal(t, projectsRoot+"/-Users-me-webapp", got)
	})

	t.Run("unique case-insensitive substring", func(t *testing.T) {
		got, err := agg.FindProject("GATE")
		require.NoError(t, err)
		assert.Equal(t, projectsRoot+"/-Users-me-api-gateway", got)
	})

	t.Run("ambiguous substring", func(t *testing.T) {
		_, err := agg.FindProject("web")
		var ambiguous *salvage.AmbiguousProjectError
		require.ErrorAs(t, err, &ambiguous)
		assert.Len(t, ambiguous.Candidates, 2)
		assert.Contains(t, err.Error(), "webapp, webapp2")
	})

	t.Run("no match", func(t *testing.T) {
		_, err := agg.FindProject("mobile")
		assert.ErrorIs(t, err, salvage.ErrProjectNotFound)
	})
}

func TestAggregator_Summarize(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	dir := projectsRoot + "/-Users-me-webapp"
	addLog(t, fsmgr, dir+"/one.jsonl",
		testutil.WriteRecord(t, "2025-06-01T10:00:00Z", "/code/webapp/src/a.py", "12345"),
		testutil.WriteRecord(t, "2025-06-01T11:00:00Z", "/code/webapp/src/a.py", "1234567"),
		testutil.EditRecord(t, "2025-06-01T11:30:00Z", "/code/webapp/src/a.py"),
	)
	addLog(t, fsmgr, dir+"/two.jsonl",
		testutil.ReadRecord(t, "2025-06-02T09:00:00Z", "/code/webapp/README.md", "# x"),
	)
	addLog(t, fsmgr, dir+"/broken.jsonl", "irrelevant")
	fsmgr.FailOn("open", dir+"/broken.jsonl", errors.New("i/o error"))

	summary, err := newTestAggregator(fsmgr, nil).Summarize(dir)
	require.NoError(t, err)

	assert.Equal(t, "webapp", summary.Name)
	assert.Equal(t, dir, summary.Path)
	assert.Equal(t, 3, summary.ConversationCount)
	assert.Equal(t, 3, summary.FileCount)
	assert.Equal(t, int64(15), summary.TotalSizeBytes)
	assert.Equal(t, map[string]int{"Python": 2, "Markdown": 1}, summary.FileTypes)
	assert.True(t, summary.HasActivity())
	assert.True(t, summary.LatestActivity.Equal(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2 Python, 1 Markdown", summary.FileBreakdown())
	assert.Equal(t, "15B", summary.SizeHuman())
}

func TestAggregator_SummarizeEmptyProject(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	dir := projectsRoot + "/quiet"
	addLog(t, fsmgr, dir+"/c.jsonl", `{"type":"summary"}`)

	summary, err := newTestAggregator(fsmgr, nil).Summarize(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.FileCount)
	assert.False(t, summary.HasActivity())
	assert.Equal(t, "", summary.FileBreakdown())
}

func TestAggregator_ResolveFiles(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	dir := projectsRoot + "/-Users-me-webapp"
	addLog(t, fsmgr, dir+"/a.jsonl",
		testutil.WriteRecord(t, "2025-06-01T10:00:00Z", "/code/webapp/src/x.py", "old"),
		testutil.WriteRecord(t, "2025-06-01T10:00:00Z", "/code/webapp/node_modules/m/index.js", "vendored"),
	)
	addLog(t, fsmgr, dir+"/b.jsonl",
		testutil.ReadRecord(t, "2025-06-01T10:01:00Z", "/code/webapp/src/x.py", "new"),
		testutil.WriteRecord(t, "2025-06-01T09:00:00Z", "/code/webapp/src/y.py", "y"),
	)

	agg := newTestAggregator(fsmgr, prefixFilter("/code/webapp/node_modules/"))
	files, err := agg.ResolveFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "/code/webapp/src/x.py", files[0].Path)
	assert.Equal(t, "new", files[0].Content)
	assert.Equal(t, 2, files[0].VersionCount)
	assert.True(t, files[0].HasVersions())
	assert.Equal(t, "/code/webapp/src/y.py", files[1].Path)
	assert.Equal(t, 0, files[1].VersionCount)

	again, err := agg.ResolveFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, files, again)
}

func TestResolveVersions(t *testing.T) {
	t.Run("newest timestamp wins", func(t *testing.T) {
		events := []salvage.FileEvent{
			event("/p/a.go", at(5)),
			event("/p/a.go", at(9)),
			event("/p/a.go", at(1)),
		}
		got := salvage.ResolveVersions(events)
		require.Len(t, got, 1)
		assert.True(t, got[0].Timestamp.Equal(at(9)))
		assert.Equal(t, 3, got[0].VersionCount)
	})

	t.Run("tie keeps first encountered", func(t *testing.T) {
		first := salvage.NewFileEvent("/p/a.go", "first", salvage.OpWrite, at(3), "c1", "p")
		second := salvage.NewFileEvent("/p/a.go", "second", salvage.OpRead, at(3), "c2", "p")
		got := salvage.ResolveVersions([]salvage.FileEvent{first, second})
		require.Len(t, got, 1)
		assert.Equal(t, "first", got[0].Content)
		assert.Equal(t, 2, got[0].VersionCount)
	})

	t.Run("sorted newest first", func(t *testing.T) {
		got := salvage.ResolveVersions([]salvage.FileEvent{
			event("/p/old.go", at(1)),
			event("/p/new.go", at(7)),
			event("/p/mid.go", at(4)),
		})
		var paths []string
		for _, ev := range got {
			paths = append(paths, ev.Path)
			assert.Equal(t, 0, ev.VersionCount)
		}
		assert.Equal(t, []string{"/p/new.go", "/p/mid.go", "/p/old.go"}, paths)
	})

	t.Run("paths are compared exactly", func(t *testing.T) {
		got := salvage.ResolveVersions([]salvage.FileEvent{
			event("/p/A.go", at(1)),
			event("/p/a.go", at(2)),
			event("/p/./a.go", at(3)),
		})
		assert.Len(t, got, 3)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := salvage.ResolveVersions([]salvage.FileEvent{
			event("/p/a.go", at(1)),
			event("/p/a.go", at(2)),
			event("/p/b.go", at(2)),
		})
		twice := salvage.ResolveVersions(once)
		require.Len(t, twice, len(once))
		for i := range once {
			assert.Equal(t, once[i].Path, twice[i].Path)
			assert.True(t, once[i].Timestamp.Equal(twice[i].Timestamp))
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, salvage.ResolveVersions(nil))
	})
}

func TestFilterByType(t *testing.T) {
	events := []salvage.FileEvent{
		event("/p/a.py", at(1)),
		event("/p/b.go", at(1)),
		event("/p/c.py", at(1)),
	}
	assert.Len(t, salvage.FilterByType(events, "python"), 2)
	assert.Len(t, salvage.FilterByType(events, "Go"), 1)
	assert.Empty(t, salvage.FilterByType(events, "Rust"))
	assert.Len(t, salvage.FilterByType(events, ""), 3)
}

func TestTypeBreakdown(t *testing.T) {
	types := map[string]int{"Python": 4, "Go": 2, "Markdown": 2, "YAML": 1, "JSON": 1}
	assert.Equal(t, "4 Python, 2 Go, 2 Markdown, 2 other", salvage.TypeBreakdown(types, 3))
	assert.Equal(t, "4 Python, 6 other", salvage.TypeBreakdown(types, 1))
	assert.Equal(t, "", salvage.TypeBreakdown(nil, 3))
}
