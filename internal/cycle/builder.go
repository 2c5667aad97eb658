// Package cycle turns flights, earnings and manual corrections into the
// chain of qualification cycles with a month-by-month XP ledger.
package cycle

import (
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

const (
	cycleMonths = 12
	maxCycles   = 60
)

// Input is everything the engine needs to build a cycle chain.
type Input struct {
	Settings    models.CycleSettings
	Flights     []models.FlightLeg
	Earnings    []models.MonthlyEarning
	Corrections map[string]models.Correction // keyed by YYYY-MM
	Today       time.Time                    // zero means now
}

// carry is what one cycle hands to the next.
type carry struct {
	tier        models.Tier
	rollover    int
	projected   int
	uxpRollover int
}

// Build derives the chain of qualification cycles. It never fails: missing
// settings are defaulted and the chain always holds at least one cycle.
//
// The chain follows the projected series: a cycle ends early in the month
// its projected XP reach the next tier, otherwise after twelve months. The
// chain is extended until it covers both today and the last month with data.
func Build(in Input) []models.QualificationCycle {
	today := in.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	book := newMonthBook(in, today)
	settings := normalizeSettings(in.Settings, book, today)
	start, _ := models.ParseMonthKey(settings.CycleStartMonth)

	horizon := monthStart(today)
	if book.last.After(horizon) {
		horizon = book.last
	}

	c := carry{
		tier:      settings.StartingStatus,
		rollover:  settings.StartingXP,
		projected: settings.StartingXP,
	}
	if settings.StartingUXP != nil {
		c.uxpRollover = *settings.StartingUXP
	}

	var cycles []models.QualificationCycle
	for len(cycles) < maxCycles {
		qc := buildCycle(start, c, book, settings.UltimateCycleType)
		cycles = append(cycles, qc)
		if qc.End.After(horizon) {
			break
		}
		start = qc.End
		c = carry{
			tier:        qc.ProjectedEndTier,
			rollover:    qc.RolloverOut,
			projected:   qc.ProjectedRolloverOut,
			uxpRollover: qc.Ultimate.RolloverOut,
		}
	}
	return cycles
}

// buildCycle projects one cycle starting at start with the carried state.
func buildCycle(start time.Time, c carry, book *monthBook, cycleType models.UltimateCycleType) models.QualificationCycle {
	tier := c.tier
	target := targetFor(tier)
	p := projection{actual: c.rollover, projected: c.projected}

	levelUp, actualCrossed := false, false
	end := start.AddDate(0, cycleMonths, 0)
	for m := 0; m < cycleMonths; m++ {
		month := start.AddDate(0, m, 0)
		r := p.row(month, book.get(month))
		if tier.IsTop() {
			continue
		}
		if r.CumulativeXP >= target {
			actualCrossed = true
		}
		if r.ProjectedCumulativeXP >= target {
			levelUp = true
			end = month.AddDate(0, 1, 0)
			break
		}
	}

	qc := models.QualificationCycle{
		Start:               start,
		End:                 end,
		StartTier:           tier,
		Threshold:           target,
		RolloverIn:          c.rollover,
		ProjectedRolloverIn: c.projected,
		ActualXP:            p.actual,
		ProjectedXP:         p.projected,
		Months:              p.rows,
		EndedByLevelUp:      levelUp,
		LevelUpIsActual:     levelUp && actualCrossed,
	}

	// projected side drives the chain
	projMet := levelUp || (tier.IsTop() && p.projected >= target)
	if levelUp {
		qc.ProjectedEndTier = models.TierForXP(p.projected)
		qc.Threshold = qc.ProjectedEndTier.Threshold()
	} else {
		qc.ProjectedEndTier = models.MinTier(tier, models.TierForXP(p.projected))
	}
	if projMet {
		qc.ProjectedRolloverOut = rolloverOver(p.projected, qc.Threshold)
	}

	// actual side
	actualMet := actualCrossed || (tier.IsTop() && p.actual >= target)
	if actualCrossed {
		qc.EndTier = models.TierForXP(p.actual)
	} else {
		qc.EndTier = models.MinTier(tier, models.TierForXP(p.actual))
	}
	if actualMet {
		qc.RolloverOut = rolloverOver(p.actual, qc.Threshold)
	}

	platinum := tier == models.TierPlatinum || qc.EndTier == models.TierPlatinum
	qc.Ultimate, qc.IsUltimateTrack = EvaluateUltimate(platinum, c.uxpRollover, p.uxp, p.projUXP, cycleType)
	return qc
}

// targetFor is the XP a cycle is measured against: the next tier's
// threshold, or Platinum's own threshold to keep it.
func targetFor(tier models.Tier) int {
	if tier.IsTop() {
		return tier.Threshold()
	}
	return tier.Next().Threshold()
}

// rolloverOver is the surplus of xp above the cycle's threshold, capped.
// Actual and projected XP are measured against the same threshold.
func rolloverOver(xp, threshold int) int {
	return min(models.RolloverCap, max(0, xp-threshold))
}
