package salvage

import (
	"iter"
	"time"

	"github.com/tidwall/gjson"
)

// Record type discriminators in conversation logs.
const (
	recordTypeAssistant = "assistant"
	recordTypeUser      = "user"
	blockTypeToolUse    = "tool_use"
	resultTypeText      = "text"
)

// Source identifies the conversation log that a record came from.
type Source struct {
	ConversationID string
	ProjectName    string
}

// Extractor turns raw log records into FileEvents.
type Extractor struct {
	clock Clock
}

// NewExtractor creates an Extractor. clock supplies the fallback instant for
// records with a missing or malformed timestamp.
func NewExtractor(clock Clock) *Extractor {
	return &Extractor{clock: clock}
}

// ExtractLine validates one raw log line and extracts its events.
// Invalid JSON and non-object values yield an empty sequence.
func (x *Extractor) ExtractLine(line []byte, src Source) iter.Seq[FileEvent] {
	if !gjson.ValidBytes(line) {
		return emptySeq
	}
	return x.Extract(gjson.ParseBytes(line), src)
}

// Extract yields the full-content file events carried by one log record:
// Write tool uses in assistant messages and file tool results in user
// messages. Missing or mistyped fields at any depth yield nothing.
func (x *Extractor) Extract(record gjson.Result, src Source) iter.Seq[FileEvent] {
	if !record.IsObject() {
		return emptySeq
	}
	return func(yield func(FileEvent) bool) {
		switch record.Get("type").String() {
		case recordTypeAssistant:
			content := record.Get("message.content")
			if !content.IsArray() {
				return
			}
			ts := ParseTimestamp(record.Get("timestamp").String(), x.clock)
			for _, block := range content.Array() {
				if !block.IsObject() || block.Get("type").String() != blockTypeToolUse {
					continue
				}
				ev, ok := x.fromToolUse(block, ts, src)
				if !ok {
					continue
				}
				if !yield(ev) {
					return
				}
			}
		case recordTypeUser:
			if ev, ok := x.fromToolResult(record, src); ok {
				yield(ev)
			}
		}
	}
}

// fromToolUse handles a single tool_use block. Only Write carries full
// content; Edit and MultiEdit would need diff application and are skipped.
func (x *Extractor) fromToolUse(block gjson.Result, ts time.Time, src Source) (FileEvent, bool) {
	switch Operation(block.Get("name").String()) {
	case OpWrite:
		input := block.Get("input")
		if !input.IsObject() {
			return FileEvent{}, false
		}
		path, okPath := stringField(input, "file_path")
		content, okContent := stringField(input, "content")
		if !okPath || !okContent {
			return FileEvent{}, false
		}
		return NewFileEvent(path, content, OpWrite, ts, src.ConversationID, src.ProjectName), true
	case OpEdit, OpMultiEdit:
		return FileEvent{}, false
	default:
		return FileEvent{}, false
	}
}

// fromToolResult handles the toolUseResult payload of a user record.
func (x *Extractor) fromToolResult(record gjson.Result, src Source) (FileEvent, bool) {
	result := record.Get("toolUseResult")
	if !result.IsObject() || result.Get("type").String() != resultTypeText {
		return FileEvent{}, false
	}
	file := result.Get("file")
	if !file.IsObject() {
		return FileEvent{}, false
	}
	path, okPath := stringField(file, "filePath")
	content, okContent := stringField(file, "content")
	if !okPath || !okContent {
		return FileEvent{}, false
	}
	ts := ParseTimestamp(record.Get("timestamp").String(), x.clock)
	return NewFileEvent(path, content, OpRead, ts, src.ConversationID, src.ProjectName), true
}

// stringField returns obj[key] when it is present and a JSON string.
func stringField(obj gjson.Result, key string) (string, bool) {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

func emptySeq(func(FileEvent) bool) {}
