package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteLines writes raw lines to path, one per line, creating parent directories.
func WriteLines(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating log directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("writing log: %v", err)
	}
}

// WriteRecord returns the JSON line for an assistant message that invokes the
// Write tool.
func WriteRecord(t *testing.T, timestamp, filePath, content string) string {
	t.Helper()
	return mustJSON(t, map[string]any{
		"type":      "assistant",
		"timestamp": timestamp,
		"message": map[string]any{
			"role": "assistant",
			"content": []any{
				map[string]any{
					"type":  "tool_use",
					"id":    "toolu_write",
					"name":  "Write",
					"input": map[string]any{"file_path": filePath, "content": content},
				},
			},
		},
	})
}

// EditRecord returns the JSON line for an assistant message that invokes the
// Edit tool.
func EditRecord(t *testing.T, timestamp, filePath string) string {
	t.Helper()
	return mustJSON(t, map[string]any{
		"type":      "assistant",
		"timestamp": timestamp,
		"message": map[string]any{
			"role": "assistant",
			"content": []any{
				map[string]any{
					"type": "tool_use",
					"id":   "toolu_edit",
					"name": "Edit",
					"input": map[string]any{
						"file_path":  filePath,
						"old_string": "a",
						"new_string": "b",
					},
				},
			},
		},
	})
}

// ReadRecord returns the JSON line for a user message carrying a Read tool
// result.
func ReadRecord(t *testing.T, timestamp, filePath, content string) string {
	t.Helper()
	return mustJSON(t, map[string]any{
		"type":      "user",
		"timestamp": timestamp,
		"message": map[string]any{
			"role":    "user",
			"content": []any{map[string]any{"type": "tool_result", "tool_use_id": "toolu_read"}},
		},
		"toolUseResult": map[string]any{
			"type": "text",
			"file": map[string]any{
				"filePath":   filePath,
				"content":    content,
				"numLines":   strings.Count(content, "\n") + 1,
				"startLine":  1,
				"totalLines": strings.Count(content, "\n") + 1,
			},
		},
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(data)
}
