package cycle

import "github.com/insightdelivered/xp-ledger/internal/models"

// EvaluateUltimate works out the UXP side of a cycle. platinum reports
// whether the member holds the top base tier during the cycle; earned and
// projected are the cycle's own actual and projected UXP.
//
// Counted UXP stop at the combined cap and the rest is reported as waste.
// The track needs Platinum and at least the Ultimate threshold in counted
// UXP; only then does the surplus carry into the next cycle.
func EvaluateUltimate(platinum bool, rolloverIn, earned, projected int, cycleType models.UltimateCycleType) (models.UltimateSummary, bool) {
	total := rolloverIn + earned
	s := models.UltimateSummary{
		RolloverIn: rolloverIn,
		Earned:     earned,
		Projected:  projected,
		Total:      total,
		Counted:    min(total, models.UltimateCombinedCap),
		Waste:      max(0, total-models.UltimateCombinedCap),
	}
	track := platinum && s.Counted >= models.UltimateThreshold
	if track && cycleType != models.UltimateReset {
		s.RolloverOut = min(models.UltimateRolloverCap, s.Counted-models.UltimateThreshold)
	}
	return s, track
}
