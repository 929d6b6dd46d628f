package salvage

import (
	"bufio"
	"bytes"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// ConversationLogExt is the file extension of conversation logs.
const ConversationLogExt = ".jsonl"

// maxLineSize bounds a single log record. Write records embed whole files.
const maxLineSize = 64 * 1024 * 1024

// ConversationScanner streams one conversation log through an Extractor.
type ConversationScanner struct {
	fsmgr     FilesystemManager
	extractor *Extractor
	logger    Logger
}

// NewConversationScanner creates a scanner reading logs through fsmgr.
func NewConversationScanner(fsmgr FilesystemManager, extractor *Extractor, logger Logger) *ConversationScanner {
	return &ConversationScanner{
		fsmgr:     fsmgr,
		extractor: extractor,
		logger:    logger,
	}
}

// SourceFor derives the conversation ID and project name for a log path.
func SourceFor(logPath string) Source {
	base := filepath.Base(logPath)
	return Source{
		ConversationID: strings.TrimSuffix(base, filepath.Ext(base)),
		ProjectName:    ProjectName(filepath.Base(filepath.Dir(logPath))),
	}
}

// Scan reads the log at logPath in a single forward pass and yields its file
// events. Lines that are not valid JSON objects are skipped. An open or read
// failure is yielded once as a non-nil error and ends the sequence. Each range
// over the returned sequence re-reads the file from the top.
func (s *ConversationScanner) Scan(logPath string) iter.Seq2[FileEvent, error] {
	return func(yield func(FileEvent, error) bool) {
		f, err := s.fsmgr.Open(logPath)
		if err != nil {
			yield(FileEvent{}, fmt.Errorf("opening conversation log: %w", err))
			return
		}
		defer f.Close()

		src := SourceFor(logPath)
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		lineNo, skipped := 0, 0
		for scanner.Scan() {
			lineNo++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			if !gjson.ValidBytes(line) {
				skipped++
				s.logger.Debug("skipping malformed line", "log", logPath, "line", lineNo)
				continue
			}
			record := gjson.ParseBytes(line)
			if !record.IsObject() {
				skipped++
				s.logger.Debug("skipping non-object record", "log", logPath, "line", lineNo)
				continue
			}
			for ev := range s.extractor.Extract(record, src) {
				if !yield(ev, nil) {
					return
				}
			}
		}
		if skipped > 0 {
			s.logger.Warn("skipped malformed lines", "log", logPath, "count", skipped)
		}
		if err := scanner.Err(); err != nil {
			yield(FileEvent{}, fmt.Errorf("reading %s line %d: %w", filepath.Base(logPath), lineNo+1, err))
		}
	}
}

// ScanAll drains Scan into a slice. On error the events read so far are
// returned alongside it.
func (s *ConversationScanner) ScanAll(logPath string) ([]FileEvent, error) {
	var events []FileEvent
	for ev, err := range s.Scan(logPath) {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
