package salvage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// BackupSuffix is appended to a target path to name its backup copy.
const BackupSuffix = ".backup"

// errOverwriteDeclined is the reason recorded when the Confirmer says no.
const errOverwriteDeclined = "overwrite declined"

// recoveryMarkers are the project roots used by RecoveryRelativePath. They
// differ from the display markers used by FileEvent.RelativePath.
var recoveryMarkers = map[string]bool{
	"src": true, "lib": true, "app": true, ".claude": true, "tests": true, "docs": true,
}

// RecoveryOptions controls where recovered files are written.
type RecoveryOptions struct {
	// TargetDir is the output directory. Empty means in place: each file is
	// written back to its original path.
	TargetDir string
	// PreserveStructure keeps a guessed project-relative path under TargetDir
	// instead of writing every file flat into it.
	PreserveStructure bool
	// Force overwrites existing files without consulting the Confirmer.
	Force bool
}

// RecoveryOutcome is the result of recovering one FileEvent.
type RecoveryOutcome struct {
	Event         FileEvent
	Success       bool
	TargetPath    string
	Error         string
	Declined      bool
	WasExisting   bool
	BackupCreated bool
}

// PreviewEntry describes what recovery would do for one event.
type PreviewEntry struct {
	Event      FileEvent
	TargetPath string
	Overwrite  bool
}

// RecoveryPreview is the dry-run result of Preview.
type RecoveryPreview struct {
	Entries    []PreviewEntry
	TotalFiles int
	TotalBytes int64
}

// SizeHuman returns TotalBytes formatted as B, KB or MB.
func (p *RecoveryPreview) SizeHuman() string {
	return FormatSize(p.TotalBytes)
}

// Recoverer writes resolved file events back to disk.
type Recoverer struct {
	fsmgr   FilesystemManager
	confirm Confirmer
	logger  Logger
	backups bool
}

// NewRecoverer creates a Recoverer. When backups is true, an existing file is
// copied to a ".backup" sibling before it is overwritten. A nil confirm
// declines every overwrite.
func NewRecoverer(fsmgr FilesystemManager, confirm Confirmer, logger Logger, backups bool) *Recoverer {
	if confirm == nil {
		confirm = NeverConfirm
	}
	return &Recoverer{
		fsmgr:   fsmgr,
		confirm: confirm,
		logger:  logger,
		backups: backups,
	}
}

// RecoveryRelativePath guesses the path to recreate under a target directory.
// It keeps the path from one segment before the first root marker (src, lib,
// app, .claude, tests, docs) found after the first segment, so the project
// directory name survives. Without a marker only the file name is kept. The
// result is always relative.
func RecoveryRelativePath(path string) string {
	parts := pathParts(path)
	for i, part := range parts {
		if i > 0 && recoveryMarkers[part] {
			rel := filepath.Join(parts[i-1:]...)
			return strings.TrimPrefix(rel, string(filepath.Separator))
		}
	}
	return filepath.Base(path)
}

// TargetPath resolves where ev would be written under opts.
func (r *Recoverer) TargetPath(ev FileEvent, opts RecoveryOptions) string {
	switch {
	case opts.TargetDir == "":
		return ev.Path
	case opts.PreserveStructure:
		return filepath.Join(opts.TargetDir, RecoveryRelativePath(ev.Path))
	default:
		return filepath.Join(opts.TargetDir, filepath.Base(ev.Path))
	}
}

// exists reports whether something is at path. Errors other than not-exist
// are returned so the caller does not write blind.
func (r *Recoverer) exists(path string) (bool, error) {
	_, err := r.fsmgr.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RecoverFile writes ev to target. An existing target is only replaced when
// force is set or the Confirmer agrees, and is first copied to a backup when
// backups are enabled. Failures are reported in the outcome, never returned.
func (r *Recoverer) RecoverFile(ev FileEvent, target string, force bool) RecoveryOutcome {
	out := RecoveryOutcome{Event: ev, TargetPath: target}

	existing, err := r.exists(target)
	if err != nil {
		out.Error = fmt.Sprintf("checking target: %v", err)
		return out
	}
	out.WasExisting = existing

	if existing && !force && !r.confirm.ConfirmOverwrite(target) {
		out.Declined = true
		out.Error = errOverwriteDeclined
		return out
	}

	if err := r.fsmgr.MkdirAll(filepath.Dir(target)); err != nil {
		out.Error = fmt.Sprintf("creating parent directory: %v", err)
		return out
	}

	if existing && r.backups {
		backupPath := target + BackupSuffix
		if err := r.fsmgr.CopyFile(target, backupPath); err != nil {
			out.Error = fmt.Sprintf("creating backup: %v", err)
			return out
		}
		out.BackupCreated = true
		r.logger.Info("backup created", "path", backupPath)
	}

	if err := r.fsmgr.WriteFile(target, []byte(ev.Content)); err != nil {
		out.Error = fmt.Sprintf("writing file: %v", err)
		return out
	}

	out.Success = true
	r.logger.Info("file recovered", "path", target, "size", ev.SizeBytes)
	return out
}

// RecoverAll recovers every event in order and returns one outcome per event.
// A failure on one file never stops the batch.
func (r *Recoverer) RecoverAll(events []FileEvent, opts RecoveryOptions) []RecoveryOutcome {
	outcomes := make([]RecoveryOutcome, 0, len(events))
	for _, ev := range events {
		out := r.RecoverFile(ev, r.TargetPath(ev, opts), opts.Force)
		if !out.Success && !out.Declined {
			r.logger.Warn("failed to recover file", "path", ev.Path, "error", out.Error)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// Preview resolves targets and checks for existing files without writing
// anything.
func (r *Recoverer) Preview(events []FileEvent, opts RecoveryOptions) *RecoveryPreview {
	p := &RecoveryPreview{Entries: make([]PreviewEntry, 0, len(events))}
	for _, ev := range events {
		target := r.TargetPath(ev, opts)
		_, err := r.fsmgr.Stat(target)
		p.Entries = append(p.Entries, PreviewEntry{
			Event:      ev,
			TargetPath: target,
			Overwrite:  err == nil,
		})
		p.TotalFiles++
		p.TotalBytes += ev.SizeBytes
	}
	return p
}

// RecoveryReport aggregates a batch of outcomes for display.
type RecoveryReport struct {
	Succeeded      int
	Failed         int
	Declined       int
	BackupsCreated int
	RecoveredBytes int64
	FileTypes      map[string]int
	Failures       []RecoveryOutcome
}

// Summarize tallies outcomes. Declined overwrites count as failed and are
// also counted separately.
func Summarize(outcomes []RecoveryOutcome) *RecoveryReport {
	rep := &RecoveryReport{FileTypes: make(map[string]int)}
	for _, out := range outcomes {
		if !out.Success {
			rep.Failed++
			if out.Declined {
				rep.Declined++
			}
			rep.Failures = append(rep.Failures, out)
			continue
		}
		rep.Succeeded++
		rep.RecoveredBytes += out.Event.SizeBytes
		rep.FileTypes[out.Event.FileType()]++
		if out.BackupCreated {
			rep.BackupsCreated++
		}
	}
	return rep
}
