package parser

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 1950
	maxYear = 2100

	// dateProbeWindow is the most words a date may span ("10 de octubre de 2025").
	dateProbeWindow = 5
)

// monthNames lists full month names per language, January first.
var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	"nl": {"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"},
	"fr": {"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	"de": {"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	"es": {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	"it": {"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
	"pt": {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
}

// monthAbbreviations are the short forms exports print, keyed by month.
var monthAbbreviations = map[time.Month][]string{
	time.January:   {"jan", "janv", "ene", "gen"},
	time.February:  {"feb", "fév", "févr", "fev", "fevr"},
	time.March:     {"mar", "mrt", "mrz", "mär"},
	time.April:     {"apr", "avr", "abr"},
	time.May:       {"may", "mei", "mai", "mag"},
	time.June:      {"jun", "giu"},
	time.July:      {"jul", "juil", "lug"},
	time.August:    {"aug", "aoû", "ago"},
	time.September: {"sep", "sept", "set"},
	time.October:   {"oct", "okt", "ott", "out"},
	time.November:  {"nov"},
	time.December:  {"dec", "déc", "dez", "dic"},
}

// dateFillers may sit between date parts ("10 de octubre de 2025").
var dateFillers = map[string]bool{
	"de": true, "del": true, "di": true, "of": true, "the": true, "van": true, "le": true, "el": true,
}

var (
	monthLookup    = map[string]time.Month{} // folded full names and abbreviations
	monthFullNames = map[string]time.Month{} // folded full names, for prefix matching
	monthSpellings []string                  // every spelling, longest first, for the segmenter
)

func init() {
	seen := map[string]bool{}
	addSpelling := func(s string) {
		if !seen[s] {
			seen[s] = true
			monthSpellings = append(monthSpellings, s)
		}
	}
	for _, names := range monthNames {
		for i, name := range names {
			m := time.Month(i + 1)
			f := fold(name)
			monthLookup[f] = m
			monthFullNames[f] = m
			addSpelling(strings.ToLower(name))
			addSpelling(f)
		}
	}
	for m, abbrs := range monthAbbreviations {
		for _, a := range abbrs {
			monthLookup[fold(a)] = m
			addSpelling(a)
			addSpelling(fold(a))
		}
	}
	sort.Slice(monthSpellings, func(i, j int) bool {
		if len(monthSpellings[i]) != len(monthSpellings[j]) {
			return len(monthSpellings[i]) > len(monthSpellings[j])
		}
		return monthSpellings[i] < monthSpellings[j]
	})
}

// lookupMonth resolves a month word in any supported language.
func lookupMonth(word string) (time.Month, bool) {
	f := strings.TrimRight(fold(word), ".")
	if m, ok := monthLookup[f]; ok {
		return m, true
	}
	if len(f) < 3 {
		return 0, false
	}
	// prefix fallback ("sept", "dezem"): only when every matching name agrees
	var found time.Month
	for name, m := range monthFullNames {
		if !strings.HasPrefix(name, f) {
			continue
		}
		if found != 0 && found != m {
			return 0, false
		}
		found = m
	}
	return found, found != 0
}

// ParseDate resolves a day/month/year date from a token sequence such as
// ["08/10/2025"], ["10", "Oct", "2025"] or ["10", "de", "octubre", "de", "2025"].
// It returns ok=false rather than guessing when any part is missing or invalid.
func ParseDate(tokens []string) (time.Time, bool) {
	cleaned := cleanDateTokens(tokens)
	if len(cleaned) == 0 {
		return time.Time{}, false
	}
	if len(cleaned) == 1 {
		if t, ok := parseNumericDate(cleaned[0]); ok {
			return t, true
		}
	}
	return parseTextDate(cleaned)
}

// DateAtStart probes the first 1..5 words of line for a date, shortest first,
// and returns it together with the rest of the line.
func DateAtStart(line string) (time.Time, string, bool) {
	fields := strings.Fields(line)
	for n := 1; n <= dateProbeWindow && n <= len(fields); n++ {
		if t, ok := ParseDate(fields[:n]); ok {
			return t, strings.Join(fields[n:], " "), true
		}
	}
	return time.Time{}, "", false
}

func cleanDateTokens(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, ",;:()[]")
		// "10-Oct-2025" style: split text dates on dashes and slashes
		if strings.ContainsAny(tok, "-/") && strings.IndexFunc(tok, isLetter) >= 0 {
			for _, part := range strings.FieldsFunc(tok, func(r rune) bool { return r == '-' || r == '/' }) {
				out = append(out, part)
			}
			continue
		}
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

// parseNumericDate handles "2025-10-08", "08/10/2025", "08.10.2025" and "10/31/2025".
func parseNumericDate(tok string) (time.Time, bool) {
	tok = strings.TrimRight(tok, ".")
	parts := strings.FieldsFunc(tok, func(r rune) bool { return r == '/' || r == '.' || r == '-' })
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var n [3]int
	for i, p := range parts {
		if !isDigits(p) || len(p) > 4 {
			return time.Time{}, false
		}
		n[i], _ = strconv.Atoi(p)
	}

	var year, month, day int
	switch {
	case len(parts[0]) == 4 || n[0] > 31:
		// a component above 31 cannot be a day: year first (ISO)
		year, month, day = n[0], n[1], n[2]
	default:
		year = n[2]
		if len(parts[2]) <= 2 {
			year += 2000
		}
		if n[1] > 12 && n[0] <= 12 {
			month, day = n[0], n[1]
		} else {
			// ambiguous dates default to day-first
			day, month = n[0], n[1]
		}
	}
	return makeDate(year, month, day)
}

type dateNumber struct {
	value  int
	digits int
}

func parseTextDate(tokens []string) (time.Time, bool) {
	var month time.Month
	var nums []dateNumber
	for _, tok := range tokens {
		word := strings.TrimRight(fold(tok), ".")
		if word == "" {
			return time.Time{}, false
		}
		if isDigits(word) {
			if len(word) > 4 {
				return time.Time{}, false
			}
			v, _ := strconv.Atoi(word)
			nums = append(nums, dateNumber{value: v, digits: len(word)})
			continue
		}
		if v, ok := ordinalDay(word); ok {
			nums = append(nums, dateNumber{value: v, digits: 2})
			continue
		}
		if dateFillers[word] {
			continue
		}
		if m, ok := lookupMonth(word); ok && month == 0 {
			month = m
			continue
		}
		return time.Time{}, false
	}
	if month == 0 || len(nums) != 2 {
		return time.Time{}, false
	}

	day, year := nums[0], nums[1]
	if day.digits == 4 || day.value > 31 {
		day, year = year, day
	}
	y := year.value
	if year.digits <= 2 {
		y += 2000
	}
	return makeDate(y, int(month), day.value)
}

// ordinalDay accepts "1st", "2nd", "1er", "3e", "15th".
func ordinalDay(word string) (int, bool) {
	for _, suffix := range []string{"st", "nd", "rd", "th", "er", "e", "º", "o"} {
		if strings.HasSuffix(word, suffix) {
			num := strings.TrimSuffix(word, suffix)
			if isDigits(num) && len(num) <= 2 {
				v, _ := strconv.Atoi(num)
				return v, true
			}
		}
	}
	return 0, false
}

func makeDate(year, month, day int) (time.Time, bool) {
	if year < minYear || year > maxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// 31 April rolls over into May
		return time.Time{}, false
	}
	return t, true
}
