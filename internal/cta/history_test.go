package cta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHistory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want History
	}{
		{"empty", "", nil},
		{"single entry", "s:0", History{{Code: "s", Day: 0}}},
		{"multiple entries", "s:0-t:1-e:3", History{{"s", 0}, {"t", 1}, {"e", 3}}},
		{"malformed entries skipped", "s:0-bogus-:2-t:x-e:3", History{{"s", 0}, {"e", 3}}},
		{"garbage", "garbage", nil},
		{"negative day skipped", "s:-1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHistory(tt.raw))
		})
	}
}

func TestHistoryCodesAndContains(t *testing.T) {
	h := ParseHistory("s:0-t:1-s:2-e:3")

	assert.Equal(t, []string{"s", "t", "e"}, h.Codes())
	assert.True(t, h.Contains("t"))
	assert.False(t, h.Contains("m"))
	assert.Equal(t, "s:0-t:1-s:2-e:3", h.String())
}

func TestAppendEntry(t *testing.T) {
	assert.Equal(t, "e:2", AppendEntry("", Entry{Code: "e", Day: 2}))
	assert.Equal(t, "s:0-t:1-e:2", AppendEntry("s:0-t:1", Entry{Code: "e", Day: 2}))
}

func TestDayIndex(t *testing.T) {
	install := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{day - time.Nanosecond, 0},
		{day, 1},
		{2*day + time.Hour, 2},
		{3 * day, 3},
		{30 * day, 3},
		{-day, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DayIndex(install, install.Add(tt.elapsed)), tt.elapsed.String())
	}
}
