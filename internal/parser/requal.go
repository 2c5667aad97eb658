package parser

import (
	"sort"
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// requalTierLookahead is how many lines after a deduction are searched for the new tier.
const requalTierLookahead = 4

// requalDetector collects tier-change signals into one event per date.
type requalDetector struct {
	events map[string]*models.RequalificationEvent
}

func newRequalDetector() *requalDetector {
	return &requalDetector{events: make(map[string]*models.RequalificationEvent)}
}

// event returns the record for date, creating it on first use.
func (d *requalDetector) event(date time.Time) *models.RequalificationEvent {
	key := date.Format("2006-01-02")
	if ev, ok := d.events[key]; ok {
		return ev
	}
	ev := &models.RequalificationEvent{Date: date}
	d.events[key] = ev
	return ev
}

// observe records the classified line lines[i].
func (d *requalDetector) observe(c Classification, lines []string, i int) {
	folded := fold(c.Description)
	switch c.Kind {
	case KindXPDeduction:
		ev := d.event(c.Date)
		if ev.XPDeducted == nil && c.quantities.HasXP {
			ev.XPDeducted = intPtr(abs(c.XP()))
		}
		if tier, ok := findTier(folded); ok {
			setTier(ev, tier)
		}
		d.scanFollowing(ev, lines, i)
	case KindLevelReached:
		if tier, ok := findTier(folded); ok {
			setTier(d.event(c.Date), tier)
		}
	case KindRollover:
		ev := d.event(c.Date)
		if ev.RolloverXP == nil && c.quantities.HasXP {
			ev.RolloverXP = intPtr(abs(c.XP()))
		}
	case KindRequalification:
		tier, hasTier := findTier(folded)
		key := c.Date.Format("2006-01-02")
		if _, exists := d.events[key]; exists && !hasTier {
			return
		}
		ev := d.event(c.Date)
		if hasTier {
			setTier(ev, tier)
		}
	}
}

// scanFollowing reads the undated lines after a deduction for the tier
// reached and a carried-over XP figure.
func (d *requalDetector) scanFollowing(ev *models.RequalificationEvent, lines []string, i int) {
	for k := 1; k <= requalTierLookahead && i+k < len(lines); k++ {
		line := lines[i+k]
		if opensTransaction(line) {
			return
		}
		folded := fold(line)
		if tier, ok := findTier(folded); ok {
			setTier(ev, tier)
		}
		if containsAny(folded, rolloverWords) && ev.RolloverXP == nil {
			if q := extractQuantities(line); q.HasXP {
				ev.RolloverXP = intPtr(abs(q.XP))
			}
		}
	}
}

// result returns the events ordered by date.
func (d *requalDetector) result() []models.RequalificationEvent {
	out := make([]models.RequalificationEvent, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func setTier(ev *models.RequalificationEvent, tier models.Tier) {
	if ev.ToStatus == nil {
		ev.ToStatus = &tier
	}
}

func intPtr(v int) *int { return &v }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
