package loader

import (
	"strconv"
	"strings"
	"time"
)

// parseNumber coerces a cell to a float, tolerating currency symbols,
// spaces and both thousand-separator conventions. Unparseable cells become
// 0 — a bad cell degrades one row, never the batch.
func parseNumber(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	// Whichever of . and , comes last is the decimal separator. A lone
	// trailing comma group can still be thousands ("1,234,567"), so a comma
	// only counts as decimal when it appears exactly once.
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	if lastComma > lastDot && strings.Count(s, ",") == 1 {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		f = -f
	}
	return f
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate parses a cell day-first, with an ISO fallback. Failures become
// the zero time ("unknown date"): the line stays in totals but never enters
// a date-windowed view.
func parseDate(val string) time.Time {
	s := strings.TrimSpace(val)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
