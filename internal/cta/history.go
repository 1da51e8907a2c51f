package cta

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	entrySeparator = "-"
	fieldSeparator = ":"
	MaxDayIndex    = 3
	dayDuration    = 24 * time.Hour
)

// Entry records that a CTA was shown on a given day since install.
type Entry struct {
	Code string
	Day  int
}

func (e Entry) String() string {
	return e.Code + fieldSeparator + strconv.Itoa(e.Day)
}

// History is the ordered onboarding dialog journey, stored as
// "<code>:<day>" entries joined by "-".
type History []Entry

// ParseHistory decodes a stored journey. Entries that cannot be decoded are
// skipped, so malformed content degrades to a shorter (possibly empty) history.
func ParseHistory(raw string) History {
	if raw == "" {
		return nil
	}
	var h History
	for _, part := range strings.Split(raw, entrySeparator) {
		code, day, ok := strings.Cut(part, fieldSeparator)
		if !ok || code == "" {
			continue
		}
		d, err := strconv.Atoi(day)
		if err != nil || d < 0 {
			continue
		}
		h = append(h, Entry{Code: code, Day: d})
	}
	return h
}

func (h History) String() string {
	return strings.Join(lo.Map(h, func(e Entry, _ int) string { return e.String() }), entrySeparator)
}

// Codes returns the distinct codes present in the history, in first-seen order.
func (h History) Codes() []string {
	return lo.Uniq(lo.Map(h, func(e Entry, _ int) string { return e.Code }))
}

// Contains reports whether any entry carries code, regardless of its day.
func (h History) Contains(code string) bool {
	return lo.ContainsBy(h, func(e Entry) bool { return e.Code == code })
}

// AppendEntry appends entry to a raw journey string without re-encoding the
// existing content.
func AppendEntry(raw string, entry Entry) string {
	if raw == "" {
		return entry.String()
	}
	return raw + entrySeparator + entry.String()
}

// DayIndex returns the number of whole days between install and now, clamped
// to [0, MaxDayIndex].
func DayIndex(install, now time.Time) int {
	days := int(now.Sub(install) / dayDuration)
	return lo.Clamp(days, 0, MaxDayIndex)
}
