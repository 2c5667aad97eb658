package parser

import (
	"regexp"
	"sort"
	"strings"
)

// rawLine is a logical line and the offset it started at in the source text.
type rawLine struct {
	text string
	pos  int
}

type breakKind int

const (
	breakDate breakKind = iota
	breakStructural
	breakFlightDate
)

type breakPoint struct {
	pos  int
	kind breakKind
}

// Flight-date markers: the text right before the true flight date inside a trip block.
var flightDateMarkers = []string{
	"flown on", "flight date", "credited on", "flight on",
	"gevlogen op", "vluchtdatum", "bijgeschreven op",
	"vol effectue le", "date du vol", "credite le", "vole le",
	"geflogen am", "flugdatum", "gutgeschrieben am",
	"volado el", "fecha del vuelo", "acreditado el",
	"volato il", "data del volo", "accreditato il",
	"voado em", "data do voo", "creditado em",
}

var tripMarkers = []string{
	"my trip", "trip to", "mijn reis", "reis naar", "mon voyage", "voyage a",
	"meine reise", "reise nach", "mi viaje", "viaje a", "il mio viaggio", "viaggio a",
	"minha viagem", "viagem para",
}

var safMarkers = []string{
	"sustainable aviation fuel", "saf bonus", "saf-bonus", "bonus saf", "saf contribution",
	"duurzame vliegtuigbrandstof", "carburant d'aviation durable", "carburant durable",
	"nachhaltiger flugkraftstoff", "nachhaltiges flugbenzin", "combustible sostenible",
	"carburante sostenibile", "combustivel sustentavel",
}

var hotelStayMarkers = []string{
	"hotel stay", "hotelverblijf", "sejour a l'hotel", "hotelaufenthalt",
	"estancia en hotel", "soggiorno in hotel", "estadia em hotel",
}

var (
	routePattern       = regexp.MustCompile(`\b[A-Z]{3} ?[-–—>] ?[A-Z]{3}\b`)
	isoDatePattern     = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`)
	numericDatePattern = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`)
	textDatePattern    *regexp.Regexp
	monthFirstPattern  *regexp.Regexp
)

func init() {
	quoted := make([]string, len(monthSpellings))
	for i, s := range monthSpellings {
		quoted[i] = regexp.QuoteMeta(s)
	}
	alt := strings.Join(quoted, "|")
	textDatePattern = regexp.MustCompile(`(?i)\b\d{1,2}(?:\.|er|st|nd|rd|th)? (?:de )?(?:` + alt + `)\.?(?: de)? \d{4}\b`)
	monthFirstPattern = regexp.MustCompile(`(?i)\b(?:` + alt + `)\.? \d{1,2},? \d{4}\b`)
}

// Segment splits extracted export text into logical lines. Text from PDF
// extraction tends to run together, so breaks are inserted before anything that
// opens a transaction or a trip sub-line. Segmenting already segmented text is
// a no-op.
func Segment(text string) []string {
	raw := segment(text)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = l.text
	}
	return lines
}

func segment(text string) []rawLine {
	var lines []rawLine
	offset := 0
	for _, physical := range strings.Split(text, "\n") {
		line := normalizeLine(physical)
		start := offset
		offset += len(physical) + 1
		if line == "" {
			continue
		}

		segStart := 0
		for _, bp := range findBreaks(line) {
			if bp.pos <= segStart {
				continue
			}
			fragment := line[segStart:bp.pos]
			if !shouldBreak(fragment, bp.kind) {
				continue
			}
			if t := strings.TrimSpace(fragment); t != "" {
				lines = append(lines, rawLine{text: t, pos: start + segStart})
			}
			segStart = bp.pos
		}
		if t := strings.TrimSpace(line[segStart:]); t != "" {
			lines = append(lines, rawLine{text: t, pos: start + segStart})
		}
	}
	return lines
}

// shouldBreak decides whether a candidate break ends fragment.
func shouldBreak(fragment string, kind breakKind) bool {
	switch kind {
	case breakDate:
		// "Flown on 08 Oct 2025": keep the marker and its date together
		f := strings.TrimSpace(fold(fragment))
		for _, m := range flightDateMarkers {
			if strings.HasSuffix(f, m) {
				return false
			}
		}
		return true
	default:
		// "10 Oct 2025 My trip to ...": the date opens this very line
		return !isDateOnly(fragment)
	}
}

func isDateOnly(fragment string) bool {
	fields := strings.Fields(fragment)
	if len(fields) == 0 || len(fields) > dateProbeWindow {
		return false
	}
	_, ok := ParseDate(fields)
	return ok
}

// opensLeg reports whether the route at loc starts a flight segment: either a
// flight number follows it, or a partner airline name does. A route named in
// any other transaction ("Reward ticket AMS-NCE -25 000 Miles") stays put.
func opensLeg(line string, loc []int) bool {
	if m := legPattern.FindStringIndex(line[loc[0]:]); m != nil && m[0] == 0 {
		return true
	}
	_, ok := partnerCode(line[loc[1]:])
	return ok
}

// findBreaks returns candidate break positions in line, sorted and de-duplicated.
func findBreaks(line string) []breakPoint {
	var points []breakPoint
	for _, re := range []*regexp.Regexp{textDatePattern, monthFirstPattern, isoDatePattern, numericDatePattern} {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			if _, ok := ParseDate(strings.Fields(line[loc[0]:loc[1]])); ok {
				points = append(points, breakPoint{pos: loc[0], kind: breakDate})
			}
		}
	}
	for _, loc := range routePattern.FindAllStringIndex(line, -1) {
		if opensLeg(line, loc) {
			points = append(points, breakPoint{pos: loc[0], kind: breakStructural})
		}
	}

	// Markers are searched in the folded line; folding only drops combining
	// marks, so offsets maps folded positions back into line.
	folded, offsets := foldWithOffsets(line)
	type span struct {
		start, end int
		kind       breakKind
	}
	var spans []span
	for _, group := range []struct {
		markers []string
		kind    breakKind
	}{
		{tripMarkers, breakStructural},
		{safMarkers, breakStructural},
		{hotelStayMarkers, breakStructural},
		{flightDateMarkers, breakFlightDate},
	} {
		for _, m := range group.markers {
			for _, idx := range indexAll(folded, m) {
				if idx == 0 || folded[idx-1] == ' ' {
					spans = append(spans, span{start: idx, end: idx + len(m), kind: group.kind})
				}
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	covered := -1
	for _, sp := range spans {
		// "my trip to": the inner "trip to" is part of the same marker
		if sp.start < covered {
			continue
		}
		points = append(points, breakPoint{pos: offsets[sp.start], kind: sp.kind})
		covered = sp.end
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].pos != points[j].pos {
			return points[i].pos < points[j].pos
		}
		return points[i].kind < points[j].kind
	})
	out := points[:0]
	for i, p := range points {
		if i > 0 && p.pos == out[len(out)-1].pos {
			continue
		}
		out = append(out, p)
	}
	return out
}

func indexAll(s, sub string) []int {
	var idx []int
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			break
		}
		idx = append(idx, from+i)
		from += i + len(sub)
	}
	return idx
}

// foldWithOffsets folds line rune by rune and records, for every byte of the
// folded string, the byte offset of the rune it came from in line.
func foldWithOffsets(line string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(line)+1)
	for i, r := range line {
		var f string
		if r < 0x80 {
			f = strings.ToLower(string(r))
		} else {
			f = fold(string(r))
		}
		b.WriteString(f)
		for range len(f) {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(line))
	return b.String(), offsets
}
