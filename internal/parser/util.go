package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Number with optional sign and thousands separators: "1 250", "12.500", "-300", "3,000".
const numberExpr = `([-+]\s?)?(\d{1,3}(?:[.,\x{00A0}\x{202F} ]\d{3})+|\d+)`

var (
	milesPattern = regexp.MustCompile(`(?i)(?:^|[^\d.,])` + numberExpr + `\s*(?:miles|meilen|millas|miglia|milhas|mijlen)\b`)
	xpPattern    = regexp.MustCompile(`(?i)(?:^|[^\d.,])` + numberExpr + `\s*XP\b`)
	uxpPattern   = regexp.MustCompile(`(?i)(?:^|[^\d.,])` + numberExpr + `\s*UXP\b`)
)

// quantities holds the first Miles / XP / UXP figures found on a line.
type quantities struct {
	Miles    int
	XP       int
	UXP      int
	HasMiles bool
	HasXP    bool
	HasUXP   bool
}

func (q quantities) any() bool {
	return q.HasMiles || q.HasXP || q.HasUXP
}

// extractQuantities reads "<N> Miles", "<N> XP" and "<N> UXP" from a line.
func extractQuantities(line string) quantities {
	var q quantities
	q.Miles, q.HasMiles = findQuantity(milesPattern, line)
	q.XP, q.HasXP = findQuantity(xpPattern, line)
	q.UXP, q.HasUXP = findQuantity(uxpPattern, line)
	return q
}

func findQuantity(re *regexp.Regexp, line string) (int, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := parseQuantity(m[1] + m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseQuantity converts "1 250", "-1.250" or "+3,000" to an int.
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u2212", "-") // minus sign
	line = strings.ReplaceAll(line, "\u2013", "-")
	line = strings.ReplaceAll(line, "\u2014", "-")
	return strings.Join(strings.Fields(line), " ")
}

// fold lowercases s and strips diacritics so "Févr." and "fevr." compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// containsAny reports whether folded text contains any of the (already folded) needles.
func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// indexAny returns the position and length of the first needle found in text.
func indexAny(text string, needles []string) (int, int) {
	best, length := -1, 0
	for _, needle := range needles {
		if idx := strings.Index(text, needle); idx >= 0 && (best < 0 || idx < best) {
			best, length = idx, len(needle)
		}
	}
	return best, length
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
