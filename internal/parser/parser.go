package parser

import (
	"sort"
	"strings"
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// Debug line results.
const (
	ResultHeader          = "header"
	ResultTrip            = "trip"
	ResultLeg             = "leg"
	ResultEarning         = "earning"
	ResultRequalification = "requalification"
	ResultContinuation    = "continuation"
	ResultSkipped         = "skipped"
)

// languageMarkers are words that only show up in one language's exports.
var languageMarkers = map[string][]string{
	"en": {"my trip", "flown on", "miles", "statement", "balance", "level", "subscription"},
	"nl": {"mijn reis", "gevlogen op", "mijlen", "overzicht", "saldo", "niveau bereikt", "bijgeschreven"},
	"fr": {"mon voyage", "vol effectue", "solde", "releve", "statut", "credite le", "miles prime"},
	"de": {"meine reise", "geflogen am", "meilen", "kontostand", "gutgeschrieben", "erreicht"},
	"es": {"mi viaje", "volado el", "millas", "saldo de", "nivel", "acreditado"},
	"it": {"il mio viaggio", "volato il", "miglia", "estratto", "livello", "accreditato"},
	"pt": {"minha viagem", "voado em", "milhas", "extrato", "creditado em", "nivel"},
}

var languageOrder = []string{"en", "nl", "fr", "de", "es", "it", "pt"}

// statusWords mark the header line that names the member's current tier.
var statusWords = []string{
	"status", "level", "niveau", "statut", "nivel", "livello", "tier", "member",
	"membre", "mitglied", "miembro", "socio", "lid",
}

// Parse turns the text of a loyalty activity export into structured records.
// It never fails: unrecognised lines are skipped and show up in DebugLines.
func Parse(text string) *models.ParseResult {
	lines := Segment(text)
	result := &models.ParseResult{
		Flights:          []models.FlightLeg{},
		Earnings:         []models.MonthlyEarning{},
		Requalifications: []models.RequalificationEvent{},
		Language:         DetectLanguage(text),
	}

	requals := newRequalDetector()
	earnings := newEarningBook()
	var headerTier *models.Tier
	inHeader := true

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		c, ok := Classify(line)
		if !ok {
			res := ResultContinuation
			if inHeader {
				res = ResultHeader
				readHeader(line, result, &headerTier)
			}
			result.DebugLines = append(result.DebugLines, models.DebugLine{LineNum: i + 1, Text: line, Result: res})
			continue
		}
		inHeader = false
		trackDate(result, c.Date)

		debug := models.DebugLine{LineNum: i + 1, Text: line, HasDate: true, Kind: c.Kind.String()}
		switch {
		case c.Kind == KindTrip:
			legs, consumed := extractTrip(lines, i, c)
			debug.Result = ResultTrip
			result.DebugLines = append(result.DebugLines, debug)
			for k := 1; k <= consumed; k++ {
				res := ResultContinuation
				if legPattern.MatchString(lines[i+k]) || routePattern.MatchString(lines[i+k]) {
					res = ResultLeg
				}
				result.DebugLines = append(result.DebugLines, models.DebugLine{LineNum: i + k + 1, Text: lines[i+k], Result: res})
			}
			for _, leg := range legs {
				trackDate(result, leg.Date)
			}
			result.Flights = append(result.Flights, legs...)
			i += consumed
			continue
		case c.Kind.IsRequalification():
			requals.observe(c, lines, i)
			debug.Result = ResultRequalification
		default:
			if cat, ok := c.Kind.Category(); ok && c.quantities.any() {
				earnings.add(c.Date, cat, c.Miles(), c.XP())
				debug.Result = ResultEarning
			} else {
				debug.Result = ResultSkipped
			}
		}
		result.DebugLines = append(result.DebugLines, debug)
	}

	sort.SliceStable(result.Flights, func(i, j int) bool {
		return result.Flights[i].Date.Before(result.Flights[j].Date)
	})
	result.Earnings = earnings.result()
	result.Requalifications = requals.result()

	result.DetectedTier = headerTier
	if result.DetectedTier == nil {
		for k := len(result.Requalifications) - 1; k >= 0; k-- {
			if t := result.Requalifications[k].ToStatus; t != nil {
				tier := *t
				result.DetectedTier = &tier
				break
			}
		}
	}
	return result
}

// ParsePages parses the text of every page of an export as one document.
func ParsePages(pages []string) *models.ParseResult {
	return Parse(strings.Join(pages, "\n"))
}

// readHeader picks the current tier and balances out of the lines above the
// first transaction.
func readHeader(line string, result *models.ParseResult, tier **models.Tier) {
	folded := fold(line)
	if *tier == nil && containsAny(folded, statusWords) {
		if t, ok := findTier(folded); ok {
			*tier = &t
		}
	}
	q := extractQuantities(line)
	if q.HasMiles && result.Totals.Miles == 0 {
		result.Totals.Miles = q.Miles
	}
	if q.HasXP && result.Totals.XP == 0 {
		result.Totals.XP = q.XP
	}
	if q.HasUXP && result.Totals.UXP == 0 {
		result.Totals.UXP = q.UXP
	}
}

func trackDate(result *models.ParseResult, d time.Time) {
	if d.IsZero() {
		return
	}
	if result.OldestDate == nil || d.Before(*result.OldestDate) {
		t := d
		result.OldestDate = &t
	}
	if result.NewestDate == nil || d.After(*result.NewestDate) {
		t := d
		result.NewestDate = &t
	}
}

// DetectLanguage guesses the export language from marker phrases. It
// returns "" when nothing matches.
func DetectLanguage(text string) string {
	folded := fold(text)
	best, bestScore := "", 0
	for _, lang := range languageOrder {
		score := 0
		for _, m := range languageMarkers[lang] {
			score += strings.Count(folded, m)
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}
	return best
}

// earningBook aggregates earning lines per month and category.
type earningBook struct {
	entries map[string]*models.MonthlyEarning
}

func newEarningBook() *earningBook {
	return &earningBook{entries: make(map[string]*models.MonthlyEarning)}
}

func (b *earningBook) add(date time.Time, cat models.Category, miles, xp int) {
	month := models.MonthKey(date)
	key := month + "|" + string(cat)
	e, ok := b.entries[key]
	if !ok {
		e = &models.MonthlyEarning{Month: month, Category: cat}
		b.entries[key] = e
	}
	e.Miles += miles
	e.BonusXP += xp
	e.Count++
}

func (b *earningBook) result() []models.MonthlyEarning {
	order := make(map[models.Category]int, len(models.Categories))
	for i, c := range models.Categories {
		order[c] = i
	}
	out := make([]models.MonthlyEarning, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return order[out[i].Category] < order[out[j].Category]
	})
	return out
}
