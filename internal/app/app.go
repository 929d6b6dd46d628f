package app

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"salvage-go/internal/config"
	"salvage-go/internal/fs"
	"salvage-go/internal/salvage"
)

// SalvageApp is the application layer between the CLI and the salvage engine.
// It constructs all dependencies from config, exposes the high-level
// operations the commands need, and closes the run log on Close.
type SalvageApp struct {
	cfg        *config.Config
	fsmgr      salvage.FilesystemManager
	aggregator *salvage.Aggregator
	recoverer  *salvage.Recoverer
	logger     salvage.Logger
	clock      salvage.Clock
	run        *Run
	logFile    *os.File
}

// NewSalvageApp creates a fully wired SalvageApp from the given config.
// command names the CLI command being run and params its main argument; both
// are logged with the run. confirm is asked before existing files are
// overwritten; nil declines every overwrite. The caller must call Close.
func NewSalvageApp(cfg *config.Config, command, params string, confirm salvage.Confirmer) (*SalvageApp, error) {
	logDir, err := config.ExpandHome(cfg.LogDir)
	if err != nil {
		return nil, err
	}

	clock := salvage.RealClock{}
	run := NewRun(command, params, salvage.UUIDGenerator{}, clock)
	logger, logFile, err := newLogger(logDir, run.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := newSalvageApp(cfg, fs.NewOSFilesystemManager(), confirm, &slogAdapter{l: logger}, clock, run)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

func newSalvageApp(cfg *config.Config, fsmgr salvage.FilesystemManager, confirm salvage.Confirmer, logger salvage.Logger, clock salvage.Clock, run *Run) (*SalvageApp, error) {
	projectsDir, err := cfg.ProjectsDir()
	if err != nil {
		return nil, fmt.Errorf("resolving projects directory: %w", err)
	}

	filter, err := newIgnoreMatcher(cfg.Scan)
	if err != nil {
		return nil, err
	}

	scanner := salvage.NewConversationScanner(fsmgr, salvage.NewExtractor(clock), logger)
	agg := salvage.NewAggregator(projectsDir, scanner, fsmgr, filter, logger)
	rec := salvage.NewRecoverer(fsmgr, confirm, logger, cfg.Recovery.Backups)

	logger.Info("run started", "command", run.Command, "params", run.Parameters, "projects", projectsDir)

	return &SalvageApp{
		cfg:        cfg,
		fsmgr:      fsmgr,
		aggregator: agg,
		recoverer:  rec,
		logger:     logger,
		clock:      clock,
		run:        run,
	}, nil
}

// newIgnoreMatcher combines the configured patterns with those of the
// optional ignore file.
func newIgnoreMatcher(scan config.ScanConfig) (*fs.IgnoreMatcher, error) {
	patterns := append([]string{}, scan.Ignore...)
	if scan.IgnoreFile != "" {
		path, err := config.ExpandHome(scan.IgnoreFile)
		if err != nil {
			return nil, err
		}
		fromFile, err := fs.ParseIgnoreFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading ignore file: %w", err)
		}
		patterns = append(patterns, fromFile...)
	}
	return fs.NewIgnoreMatcher(patterns), nil
}

// Run returns the record of the current invocation.
func (a *SalvageApp) Run() *Run {
	return a.run
}

// ProjectsDir returns the directory projects are discovered in.
func (a *SalvageApp) ProjectsDir() string {
	return a.aggregator.Root()
}

// Projects summarizes every project, most recently active first. A project
// that cannot be read is logged and left out.
func (a *SalvageApp) Projects() ([]*salvage.ProjectSummary, error) {
	dirs, err := a.aggregator.FindProjects()
	if err != nil {
		return nil, a.fail(err)
	}

	summaries := make([]*salvage.ProjectSummary, 0, len(dirs))
	for _, dir := range dirs {
		s, err := a.aggregator.Summarize(dir)
		if err != nil {
			a.logger.Warn("cannot summarize project", "project", dir, "error", err)
			continue
		}
		summaries = append(summaries, s)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LatestActivity.After(summaries[j].LatestActivity)
	})
	return summaries, nil
}

// FindProject resolves a project query to its directory. See
// salvage.Aggregator.FindProject for the matching rules. An ambiguous query
// does not fail the run, since the caller may still ask the user to choose.
func (a *SalvageApp) FindProject(query string) (string, error) {
	dir, err := a.aggregator.FindProject(query)
	var ambiguous *salvage.AmbiguousProjectError
	if err != nil && !errors.As(err, &ambiguous) {
		return "", a.fail(err)
	}
	return dir, err
}

// Files returns the latest version of every recoverable file in projectDir,
// newest first, optionally restricted to one file type.
func (a *SalvageApp) Files(projectDir, fileType string) ([]salvage.FileEvent, error) {
	files, err := a.aggregator.ResolveFiles(projectDir)
	if err != nil {
		return nil, a.fail(fmt.Errorf("scanning project: %w", err))
	}
	return salvage.FilterByType(files, fileType), nil
}

// RecoveryOptions returns the configured recovery defaults. A "~" in the
// target directory is expanded.
func (a *SalvageApp) RecoveryOptions() (salvage.RecoveryOptions, error) {
	target, err := config.ExpandHome(a.cfg.Recovery.TargetDir)
	if err != nil {
		return salvage.RecoveryOptions{}, err
	}
	return salvage.RecoveryOptions{
		TargetDir:         target,
		PreserveStructure: a.cfg.Recovery.PreserveStructure,
		Force:             a.cfg.Recovery.Force,
	}, nil
}

// Preview reports where files would be written without touching the disk.
func (a *SalvageApp) Preview(files []salvage.FileEvent, opts salvage.RecoveryOptions) *salvage.RecoveryPreview {
	return a.recoverer.Preview(files, opts)
}

// Recover writes files according to opts and summarizes the outcomes.
func (a *SalvageApp) Recover(files []salvage.FileEvent, opts salvage.RecoveryOptions) *salvage.RecoveryReport {
	a.logger.Info("recovery started", "files", len(files), "target", opts.TargetDir,
		"preserve_structure", opts.PreserveStructure, "force", opts.Force)

	report := salvage.Summarize(a.recoverer.RecoverAll(files, opts))

	a.logger.Info("recovery finished", "succeeded", report.Succeeded, "failed", report.Failed,
		"declined", report.Declined, "backups", report.BackupsCreated)
	if report.Failed > 0 {
		a.run.Finish(RunPartial, a.clock)
	}
	return report
}

// fail marks the run as failed and returns err unchanged.
func (a *SalvageApp) fail(err error) error {
	a.run.Finish(RunError, a.clock)
	return err
}

// Close finalizes the run record, logs it, and closes the log file.
func (a *SalvageApp) Close() error {
	a.run.Finish(RunSuccess, a.clock)
	a.logger.Info("run finished", "command", a.run.Command, "status", a.run.Status, "duration", a.run.Duration())

	if a.logFile == nil {
		return nil
	}
	if err := a.logFile.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}
