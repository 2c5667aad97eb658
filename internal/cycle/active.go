package cycle

import (
	"time"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// ActiveCycle returns the index of the cycle containing today, else the first
// cycle that starts after today, else the last one. It returns -1 for an
// empty chain.
func ActiveCycle(cycles []models.QualificationCycle, today time.Time) int {
	if len(cycles) == 0 {
		return -1
	}
	for i, c := range cycles {
		if c.Contains(today) {
			return i
		}
	}
	for i, c := range cycles {
		if c.Start.After(today) {
			return i
		}
	}
	return len(cycles) - 1
}
