package main

import (
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"salvage-go/internal/salvage"
)

const (
	maxDisplayPath   = 60
	maxPreviewLength = 37
	maxListPath      = 80
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printProjects(w io.Writer, summaries []*salvage.ProjectSummary) {
	tw := newTable(w)
	fmt.Fprintln(tw, "PROJECT\tCONVERSATIONS\tFILES\tTYPES\tSIZE\tLAST ACTIVITY")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			s.Name, s.ConversationCount, s.FileCount, s.FileBreakdown(), s.SizeHuman(), lastActivity(s))
	}
	tw.Flush()
}

func lastActivity(s *salvage.ProjectSummary) string {
	if !s.HasActivity() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", s.LatestActivity.Format("2006-01-02"), humanize.Time(s.LatestActivity))
}

func printScanSummary(w io.Writer, files []salvage.FileEvent) {
	types := make(map[string]int)
	versioned := 0
	for _, f := range files {
		types[f.FileType()]++
		if f.HasVersions() {
			versioned++
		}
	}
	fmt.Fprintf(w, "Found %d recoverable files (%s total)\n", len(files), totalSize(files))
	fmt.Fprintf(w, "File types: %s\n", salvage.TypeBreakdown(types, 3))
	if versioned > 0 {
		fmt.Fprintf(w, "%d files have multiple versions\n", versioned)
	}
	fmt.Fprintln(w)
}

func printFiles(w io.Writer, files []salvage.FileEvent, preview bool) {
	tw := newTable(w)
	header := "#\tFILE\tTYPE\tOPERATION\tSIZE\t"
	if preview {
		header += "PREVIEW\t"
	}
	fmt.Fprintln(tw, header+"DATE\tCONVERSATION")

	for i, f := range files {
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t", i+1, displayPath(f.RelativePath()), fileTypeLabel(f), f.Operation, f.SizeHuman())
		if preview {
			row += firstLine(f) + "\t"
		}
		fmt.Fprintf(tw, "%s%s\t%s\n", row, f.TimestampHuman(), shortConversation(f.ConversationID))
	}
	tw.Flush()
}

// fileTypeLabel appends a version marker such as " (3v)" to the file type.
func fileTypeLabel(f salvage.FileEvent) string {
	if !f.HasVersions() {
		return f.FileType()
	}
	return fmt.Sprintf("%s (%dv)", f.FileType(), f.VersionCount)
}

// displayPath shortens long paths by keeping the file name and the tail of
// its directory.
func displayPath(p string) string {
	if len(p) <= maxDisplayPath {
		return p
	}
	dir, name := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	if len(dir) > 40 {
		dir = "..." + dir[len(dir)-30:]
	}
	return dir + "/" + name
}

func firstLine(f salvage.FileEvent) string {
	lines := f.PreviewLines()
	if len(lines) == 0 {
		return ""
	}
	return truncate(lines[0], maxPreviewLength)
}

// truncate cuts s to n runes and marks the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func shortConversation(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func printSelectionList(w io.Writer, files []salvage.FileEvent) {
	for i, f := range files {
		p := f.Path
		if len(p) > maxListPath {
			p = "..." + p[len(p)-(maxListPath-3):]
		}
		fmt.Fprintf(w, "  %2d. %s (%s, %s)\n", i+1, p, f.SizeHuman(), f.Operation)
	}
}

func printPreview(w io.Writer, p *salvage.RecoveryPreview) {
	fmt.Fprintf(w, "Would recover %d files (%s):\n\n", p.TotalFiles, p.SizeHuman())
	tw := newTable(w)
	fmt.Fprintln(tw, "FILE\tTARGET\tSIZE\tSTATUS")
	for _, e := range p.Entries {
		status := "new"
		if e.Overwrite {
			status = "overwrite"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Event.FileName(), e.TargetPath, e.Event.SizeHuman(), status)
	}
	tw.Flush()
}

func printReport(w io.Writer, r *salvage.RecoveryReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Recovery complete: %d succeeded, %d failed\n", r.Succeeded, r.Failed)
	if r.Succeeded > 0 {
		fmt.Fprintf(w, "Recovered %s across %d file types\n", salvage.FormatSize(r.RecoveredBytes), len(r.FileTypes))
		fmt.Fprintf(w, "Types: %s\n", salvage.TypeBreakdown(r.FileTypes, 3))
		if r.BackupsCreated > 0 {
			fmt.Fprintf(w, "Created %d backup files\n", r.BackupsCreated)
		}
	}
	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "Failed recoveries:")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.Event.FileName(), f.Error)
		}
	}
}

func totalSize(files []salvage.FileEvent) string {
	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	return salvage.FormatSize(total)
}

func describeTarget(opts salvage.RecoveryOptions) string {
	if opts.TargetDir == "" {
		return "their original locations"
	}
	return opts.TargetDir
}
