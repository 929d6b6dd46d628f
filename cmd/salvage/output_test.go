package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"salvage-go/internal/salvage"
)

func TestDisplayPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/main.go", "src/main.go"},
		{strings.Repeat("a", 60), strings.Repeat("a", 60)},
		{
			"webapp/src/components/very/deeply/nested/directory/structure/Button.tsx",
			"...ply/nested/directory/structure/Button.tsx",
		},
		{
			"short/" + strings.Repeat("n", 70) + ".go",
			"short/" + strings.Repeat("n", 70) + ".go",
		},
	}
	for _, tt := range tests {
		if got := displayPath(tt.in); got != tt.want {
			t.Errorf("displayPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 37); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate(strings.Repeat("x", 40), 37); got != strings.Repeat("x", 37)+"..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("truncate() cut inside a rune: %q", got)
	}
}

func TestFileTypeLabel(t *testing.T) {
	ev := salvage.NewFileEvent("/p/a.py", "x", salvage.OpWrite, time.Now(), "c", "p")
	if got := fileTypeLabel(ev); got != "Python" {
		t.Errorf("fileTypeLabel() = %q, want %q", got, "Python")
	}
	ev.VersionCount = 3
	if got := fileTypeLabel(ev); got != "Python (3v)" {
		t.Errorf("fileTypeLabel() = %q, want %q", got, "Python (3v)")
	}
}

func TestShortConversation(t *testing.T) {
	if got := shortConversation("3f2a9c1d-aaaa-bbbb"); got != "3f2a9c1d..." {
		t.Errorf("shortConversation() = %q", got)
	}
	if got := shortConversation("abc"); got != "abc" {
		t.Errorf("shortConversation() = %q", got)
	}
}

func TestPrintReport(t *testing.T) {
	ok := salvage.NewFileEvent("/p/a.py", "12345", salvage.OpWrite, time.Now(), "c", "p")
	bad := salvage.NewFileEvent("/p/b.go", "x", salvage.OpWrite, time.Now(), "c", "p")
	report := salvage.Summarize([]salvage.RecoveryOutcome{
		{Event: ok, Success: true, BackupCreated: true},
		{Event: bad, Error: "writing file: disk full"},
	})

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"1 succeeded, 1 failed",
		"Recovered 5B across 1 file types",
		"Created 1 backup files",
		"b.go: writing file: disk full",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestDescribeTarget(t *testing.T) {
	if got := describeTarget(salvage.RecoveryOptions{}); got != "their original locations" {
		t.Errorf("describeTarget(in place) = %q", got)
	}
	if got := describeTarget(salvage.RecoveryOptions{TargetDir: "/out"}); got != "/out" {
		t.Errorf("describeTarget() = %q", got)
	}
}
