package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

const (
	maxTripLines       = 40 // lines scanned after a trip header
	legAmountLookahead = 4  // lines probed for a leg's figures when its own line has none
	flightDateAfter    = 3  // lines after a leg searched for its flight-date marker
	flightDateBefore   = 2  // lines before a leg searched when nothing follows it
	partnerNameLookup  = 1  // lines after a bare route searched for the operating airline
)

var legPattern = regexp.MustCompile(`\b([A-Z]{3}) ?[-–—>] ?([A-Z]{3}) ([A-Z][A-Z0-9]|[0-9][A-Z]) ?(\d{1,4})\b`)

// uxpCarriers are the only airlines that award Ultimate XP.
var uxpCarriers = map[string]bool{"AF": true, "KL": true}

// partnerAirlines maps operating airline names to their codes for legs printed without a flight number.
var partnerAirlines = []struct {
	name string
	code string
}{
	{"kenya airways", "KQ"},
	{"virgin atlantic", "VS"},
	{"china eastern", "MU"},
	{"china airlines", "CI"},
	{"korean air", "KE"},
	{"vietnam airlines", "VN"},
	{"middle east airlines", "ME"},
	{"czech airlines", "OK"},
	{"garuda", "GA"},
	{"aeromexico", "AM"},
	{"air europa", "UX"},
	{"tarom", "RO"},
	{"saudia", "SV"},
	{"xiamen", "MF"},
	{"transavia", "HV"},
	{"air france", "AF"},
	{"klm", "KL"},
	{"delta", "DL"},
}

var rewardMarkers = []string{
	"reward ticket", "award ticket", "billet prime", "prijsticket", "beloningsticket",
	"pramienticket", "billete premio", "biglietto premio", "bilhete premio",
}

// extractTrip expands the trip block that starts at lines[start] into flight
// legs. It returns the legs and the number of lines after the header that
// belong to the block.
func extractTrip(lines []string, start int, header Classification) ([]models.FlightLeg, int) {
	end := start + 1
	limit := min(len(lines), start+1+maxTripLines)
	for end < limit && !opensTransaction(lines[end]) {
		end++
	}
	block := lines[start+1 : end]

	paidWithCash := !containsAny(fold(header.Description), rewardMarkers)
	for _, line := range block {
		if containsAny(fold(line), rewardMarkers) {
			paidWithCash = false
		}
	}

	var legs []models.FlightLeg
	var legLines []int
	safXP, safMiles := 0, 0
	for j, line := range block {
		if isSAFLine(line) {
			q := extractQuantities(line)
			safXP += q.XP
			safMiles += q.Miles
			continue
		}
		leg, rest, ok := matchLeg(block, j, len(legs))
		if !ok {
			continue
		}
		q := extractQuantities(rest)
		if !q.HasMiles && !q.HasXP {
			q = probeLegAmounts(block, j)
		}
		leg.Miles = q.Miles
		leg.XP = q.XP
		if uxpCarriers[leg.Airline] {
			uxp := q.UXP
			leg.UXP = &uxp
		}
		leg.PostingDate = header.Date
		leg.PaidWithCash = paidWithCash
		legs = append(legs, leg)
		legLines = append(legLines, j)
	}

	resolveFlightDates(block, legs, legLines, header.Date)
	if len(legs) > 0 {
		// SAF is reported once per trip
		legs[0].SafXP = safXP
		legs[0].SafMiles = safMiles
	}
	return legs, len(block)
}

// opensTransaction reports whether line starts a new dated transaction.
func opensTransaction(line string) bool {
	_, _, ok := DateAtStart(line)
	return ok
}

func isSAFLine(line string) bool {
	f := fold(line)
	return containsAny(f, safMarkers) || strings.HasPrefix(f, "saf ")
}

// matchLeg recognises "AMS-BCN KL1673 ..." or a bare route operated by a
// named partner airline. rest is the text after the route and flight number.
func matchLeg(block []string, j, index int) (models.FlightLeg, string, bool) {
	line := block[j]
	if m := legPattern.FindStringSubmatchIndex(line); m != nil {
		airline := line[m[6]:m[7]]
		return models.FlightLeg{
			Origin:       line[m[2]:m[3]],
			Destination:  line[m[4]:m[5]],
			Airline:      airline,
			FlightNumber: airline + line[m[8]:m[9]],
		}, line[m[1]:], true
	}

	loc := routePattern.FindStringIndex(line)
	if loc == nil {
		return models.FlightLeg{}, "", false
	}
	code, ok := partnerCode(line[loc[1]:])
	for k := 1; !ok && k <= partnerNameLookup && j+k < len(block); k++ {
		if routePattern.MatchString(block[j+k]) {
			break
		}
		code, ok = partnerCode(block[j+k])
	}
	if !ok {
		return models.FlightLeg{}, "", false
	}
	route := strings.NewReplacer(" ", "", "–", "-", "—", "-", ">", "-").Replace(line[loc[0]:loc[1]])
	parts := strings.SplitN(route, "-", 2)
	if len(parts) != 2 {
		return models.FlightLeg{}, "", false
	}
	return models.FlightLeg{
		Origin:       parts[0],
		Destination:  parts[1],
		Airline:      code,
		FlightNumber: fmt.Sprintf("%s*%d", code, index+1),
	}, line[loc[1]:], true
}

func partnerCode(text string) (string, bool) {
	f := fold(text)
	for _, p := range partnerAirlines {
		if strings.Contains(f, p.name) {
			return p.code, true
		}
	}
	return "", false
}

// probeLegAmounts looks a few lines past a leg for its Miles/XP figures.
func probeLegAmounts(block []string, j int) quantities {
	for k := 1; k <= legAmountLookahead && j+k < len(block); k++ {
		line := block[j+k]
		if routePattern.MatchString(line) || isSAFLine(line) {
			break
		}
		if q := extractQuantities(line); q.HasMiles || q.HasXP {
			return q
		}
	}
	return quantities{}
}

// resolveFlightDates assigns every leg the "flown on <date>" marker nearest
// to it: after the leg, or before it when the block prints markers ahead of
// their legs. A marker is used at most once and legs without one keep the
// posting date.
func resolveFlightDates(block []string, legs []models.FlightLeg, legLines []int, posting time.Time) {
	markers := map[int]time.Time{}
	for i, line := range block {
		if t, ok := flightDateMarker(line); ok {
			markers[i] = t
		}
	}
	markersFirst := false
	if len(legLines) > 0 {
		for i := range markers {
			if i < legLines[0] {
				markersFirst = true
			}
		}
	}

	claimed := map[int]bool{}
	for k, j := range legLines {
		next := len(block)
		if k+1 < len(legLines) {
			next = legLines[k+1]
		}
		prev := -1
		if k > 0 {
			prev = legLines[k-1]
		}

		after := func() (int, bool) {
			for i := j; i <= j+flightDateAfter && i < next; i++ {
				if _, ok := markers[i]; ok && !claimed[i] {
					return i, true
				}
			}
			return 0, false
		}
		before := func() (int, bool) {
			for i := j - 1; i >= j-flightDateBefore && i > prev; i-- {
				if _, ok := markers[i]; ok && !claimed[i] {
					return i, true
				}
			}
			return 0, false
		}

		first, second := after, before
		if markersFirst {
			first, second = before, after
		}
		legs[k].Date = posting
		if i, ok := first(); ok {
			claimed[i] = true
			legs[k].Date = markers[i]
		} else if i, ok := second(); ok {
			claimed[i] = true
			legs[k].Date = markers[i]
		}
	}
}

func flightDateMarker(line string) (time.Time, bool) {
	f := fold(line)
	idx, n := indexAny(f, flightDateMarkers)
	if idx < 0 {
		return time.Time{}, false
	}
	t, _, ok := DateAtStart(strings.TrimLeft(f[idx+n:], " :"))
	return t, ok
}
