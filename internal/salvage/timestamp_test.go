package salvage_test

import (
	"testing"
	"time"

	"salvage-go/internal/salvage"
	"salvage-go/internal/testutil"
)

func TestParseTimestamp(t *testing.T) {
	clock := testutil.FixedClock()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "trailing Z is UTC",
			raw:  "2025-07-01T09:15:30Z",
			want: time.Date(2025, 7, 1, 9, 15, 30, 0, time.UTC),
		},
		{
			name: "fractional seconds with Z",
			raw:  "2025-07-01T09:15:30.123Z",
			want: time.Date(2025, 7, 1, 9, 15, 30, 123000000, time.UTC),
		},
		{
			name: "explicit offset",
			raw:  "2025-07-01T11:15:30+02:00",
			want: time.Date(2025, 7, 1, 9, 15, 30, 0, time.UTC),
		},
		{
			name: "space separator",
			raw:  "2025-07-01 09:15:30",
			want: time.Date(2025, 7, 1, 9, 15, 30, 0, time.UTC),
		},
		{
			name: "no offset is UTC",
			raw:  "2025-07-01T09:15:30.5",
			want: time.Date(2025, 7, 1, 9, 15, 30, 500000000, time.UTC),
		},
		{
			name: "bare date",
			raw:  "2025-07-01",
			want: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "empty string falls back to now",
			raw:  "",
			want: clock.Now(),
		},
		{
			name: "garbage falls back to now",
			raw:  "yesterday-ish",
			want: clock.Now(),
		},
		{
			name: "out of range falls back to now",
			raw:  "2025-13-45T99:00:00Z",
			want: clock.Now(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := salvage.ParseTimestamp(tt.raw, clock)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_realClockFallback(t *testing.T) {
	before := time.Now()
	got := salvage.ParseTimestamp("", salvage.RealClock{})
	if got.Before(before) || got.After(time.Now()) {
		t.Errorf("ParseTimestamp(\"\") = %v, want current time", got)
	}
}
