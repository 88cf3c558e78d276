package ventas

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode canonicalizes a salesperson, customer or product code so the
// same identifier joins across sources despite formatting drift: "007",
// " 7 " and "7.0" all become "7". Codes that do not parse as numbers are
// trimmed with case preserved. Every join key in the engine goes through
// this on both sides.
func NormalizeCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	compact := strings.Join(strings.Fields(s), "")
	if f, err := strconv.ParseFloat(compact, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return strconv.FormatInt(int64(math.Round(f)), 10)
	}
	return s
}

// isNumericCode reports whether a canonical code came from a numeric parse.
func isNumericCode(code string) bool {
	if code == "" {
		return false
	}
	_, err := strconv.ParseInt(code, 10, 64)
	return err == nil
}

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeName flattens a display name for matching: accents stripped,
// uppercased, punctuation and runs of whitespace collapsed.
func normalizeName(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
