package cycle

import (
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// normalizeSettings fills in defaults for anything missing or invalid.
func normalizeSettings(s models.CycleSettings, book *monthBook, today time.Time) models.CycleSettings {
	if !s.StartingStatus.Valid() {
		s.StartingStatus = models.TierExplorer
	}
	if s.StartingXP < 0 {
		s.StartingXP = 0
	}
	if s.StartingUXP != nil && *s.StartingUXP < 0 {
		s.StartingUXP = nil
	}
	if _, ok := models.ParseMonthKey(s.CycleStartMonth); !ok {
		if book.empty() {
			s.CycleStartMonth = models.MonthKey(today)
		} else {
			s.CycleStartMonth = models.MonthKey(book.first)
		}
	}
	if s.UltimateCycleType != models.UltimateReset {
		s.UltimateCycleType = models.UltimateQualification
	}
	return s
}

// SuggestSettings derives starting settings from an import. The latest
// requalification that names a tier marks the start of the current cycle;
// without one the detected tier and the oldest transaction month are used.
func SuggestSettings(r *models.ParseResult) models.CycleSettings {
	s := models.CycleSettings{
		StartingStatus:    models.TierExplorer,
		UltimateCycleType: models.UltimateQualification,
	}
	if r == nil {
		return s
	}

	for i := len(r.Requalifications) - 1; i >= 0; i-- {
		ev := r.Requalifications[i]
		if ev.ToStatus == nil {
			continue
		}
		s.CycleStartMonth = models.MonthKey(ev.Date)
		s.StartingStatus = *ev.ToStatus
		if ev.RolloverXP != nil {
			s.StartingXP = *ev.RolloverXP
		}
		return s
	}

	if r.DetectedTier != nil {
		s.StartingStatus = *r.DetectedTier
	}
	if r.OldestDate != nil {
		s.CycleStartMonth = models.MonthKey(*r.OldestDate)
	}
	return s
}
