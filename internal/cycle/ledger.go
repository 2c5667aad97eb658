package cycle

import (
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// monthTotals is everything credited to one calendar month.
type monthTotals struct {
	xp               int
	projectedXP      int
	uxp              int
	projectedUXP     int
	flights          int
	projectedFlights int
	correction       *int
}

// monthBook holds the actual and projected series keyed by YYYY-MM.
type monthBook struct {
	months map[string]*monthTotals
	first  time.Time
	last   time.Time
}

// newMonthBook splits the input into the actual series (flown, not
// scheduled, on or before today, plus earnings and corrections) and the
// projected series (everything).
func newMonthBook(in Input, today time.Time) *monthBook {
	b := &monthBook{months: make(map[string]*monthTotals)}

	for _, f := range in.Flights {
		if f.Date.IsZero() {
			continue
		}
		m := b.at(f.Date)
		xp, uxp := f.TotalXP(), f.UXPValue()
		m.projectedXP += xp
		m.projectedUXP += uxp
		m.projectedFlights++
		if !f.Scheduled && !f.Date.After(today) {
			m.xp += xp
			m.uxp += uxp
			m.flights++
		}
	}

	for _, e := range in.Earnings {
		t, ok := models.ParseMonthKey(e.Month)
		if !ok || e.BonusXP == 0 {
			continue
		}
		m := b.at(t)
		m.xp += e.BonusXP
		m.projectedXP += e.BonusXP
	}

	for key, c := range in.Corrections {
		t, ok := models.ParseMonthKey(key)
		if !ok {
			continue
		}
		m := b.at(t)
		m.xp += c.XP
		m.projectedXP += c.XP
		m.uxp += c.UXP
		m.projectedUXP += c.UXP
		xp := c.XP
		if m.correction != nil {
			xp += *m.correction
		}
		m.correction = &xp
	}
	return b
}

func (b *monthBook) at(t time.Time) *monthTotals {
	month := monthStart(t)
	key := models.MonthKey(month)
	m, ok := b.months[key]
	if !ok {
		m = &monthTotals{}
		b.months[key] = m
		if b.first.IsZero() || month.Before(b.first) {
			b.first = month
		}
		if month.After(b.last) {
			b.last = month
		}
	}
	return m
}

func (b *monthBook) get(month time.Time) monthTotals {
	if m, ok := b.months[models.MonthKey(month)]; ok {
		return *m
	}
	return monthTotals{}
}

func (b *monthBook) empty() bool {
	return len(b.months) == 0
}

// projection is a cycle's running totals, one series at a time.
type projection struct {
	rows      []models.MonthRow
	actual    int
	projected int
	uxp       int
	projUXP   int
}

// row appends the ledger row for month on top of the running totals.
func (p *projection) row(month time.Time, m monthTotals) models.MonthRow {
	p.actual += m.xp
	p.projected += m.projectedXP
	p.uxp += m.uxp
	p.projUXP += m.projectedUXP
	r := models.MonthRow{
		Month:                 models.MonthKey(month),
		XP:                    m.xp,
		ProjectedXP:           m.projectedXP,
		CumulativeXP:          p.actual,
		ProjectedCumulativeXP: p.projected,
		UXP:                   m.uxp,
		ProjectedUXP:          m.projectedUXP,
		FlightCount:           m.flights,
		ProjectedFlightCount:  m.projectedFlights,
		Correction:            m.correction,
	}
	p.rows = append(p.rows, r)
	return r
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
