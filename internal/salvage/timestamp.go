package salvage

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order after RFC 3339. Layouts without a zone
// are interpreted as UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as written in conversation logs.
// A trailing "Z" means UTC. It never fails: empty or malformed input yields
// clock.Now() so one bad timestamp cannot abort a scan.
func ParseTimestamp(raw string, clock Clock) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return clock.Now()
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return clock.Now()
}
