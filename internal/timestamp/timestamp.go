// Package timestamp renders Unix second counts in the fixed UTC layout
// shared by every rendered artifact.
package timestamp

import "time"

const (
	minuteLayout = "2006.01.02 15:04"
	secondLayout = "2006.01.02 15:04:05"
)

// Format returns sec as "YYYY.MM.DD HH:MM" in UTC.
func Format(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(minuteLayout)
}

// FormatSeconds returns sec as "YYYY.MM.DD HH:MM:SS" in UTC.
func FormatSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(secondLayout)
}

// Parse accepts either layout produced by this package and returns the
// Unix second count. Strings in any other shape are rejected.
func Parse(s string) (int64, bool) {
	for _, layout := range []string{secondLayout, minuteLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}
