package interpreter

import (
	"strings"
	"time"
)

// datePhrases maps relative-date phrases to day offsets, scanned in this
// order with first match winning. "next week" and "next month" are fixed
// 7- and 30-day offsets rather than calendar arithmetic; that matches
// the product's established behavior.
var datePhrases = []struct {
	phrase string
	days   int
}{
	{"today", 0},
	{"tomorrow", 1},
	{"next week", 7},
	{"in 2 days", 2},
	{"in 3 days", 3},
	{"next month", 30},
}

// ExtractDueDate scans task text for a relative-date phrase. On a match
// it returns the resolved timestamp and the text with the phrase removed
// (lower-cased, trimmed); on no match it returns nil and the original
// text unchanged.
func ExtractDueDate(text string, now time.Time) (*time.Time, string) {
	lower := strings.ToLower(text)
	for _, p := range datePhrases {
		if strings.Contains(lower, p.phrase) {
			due := now.AddDate(0, 0, p.days)
			remaining := strings.TrimSpace(strings.ReplaceAll(lower, p.phrase, ""))
			return &due, remaining
		}
	}
	return nil, text
}
