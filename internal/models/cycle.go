package models

import "time"

// UltimateCycleType selects how UXP carry across qualification cycles.
type UltimateCycleType string

const (
	// UltimateQualification rolls surplus UXP over together with the XP cycle.
	UltimateQualification UltimateCycleType = "qualification"
	// UltimateReset discards UXP at every cycle end.
	UltimateReset UltimateCycleType = "reset"
)

// CycleSettings is the user-supplied starting point of the cycle chain.
type CycleSettings struct {
	CycleStartMonth   string            `json:"cycleStartMonth"` // YYYY-MM
	StartingStatus    Tier              `json:"startingStatus"`
	StartingXP        int               `json:"startingXP"`
	StartingUXP       *int              `json:"startingUXP,omitempty"`
	UltimateCycleType UltimateCycleType `json:"ultimateCycleType,omitempty"`
}

// Correction is a manual month-level adjustment entered by the user.
type Correction struct {
	XP   int    `json:"xp"`
	UXP  int    `json:"uxp"`
	Note string `json:"note,omitempty"`
}

// MonthRow is one month of a cycle's ledger.
type MonthRow struct {
	Month                 string `json:"month"`
	XP                    int    `json:"xp"`
	ProjectedXP           int    `json:"projectedXp"`
	CumulativeXP          int    `json:"cumulativeXp"`
	ProjectedCumulativeXP int    `json:"projectedCumulativeXp"`
	UXP                   int    `json:"uxp"`
	ProjectedUXP          int    `json:"projectedUxp"`
	FlightCount           int    `json:"flightCount"`
	ProjectedFlightCount  int    `json:"projectedFlightCount"`
	Correction            *int   `json:"correction,omitempty"`
}

// UltimateSummary is the UXP side of a cycle.
type UltimateSummary struct {
	RolloverIn  int `json:"rolloverIn"`
	Earned      int `json:"earned"`
	Projected   int `json:"projected"`
	Total       int `json:"total"`
	Counted     int `json:"counted"`
	Waste       int `json:"waste"`
	RolloverOut int `json:"rolloverOut"`
}

// QualificationCycle is one (at most) 12-month tier period.
type QualificationCycle struct {
	Start                time.Time       `json:"start"`
	End                  time.Time       `json:"end"` // exclusive
	StartTier            Tier            `json:"startTier"`
	EndTier              Tier            `json:"endTier"`
	ProjectedEndTier     Tier            `json:"projectedEndTier"`
	Threshold            int             `json:"threshold"`
	RolloverIn           int             `json:"rolloverIn"`
	RolloverOut          int             `json:"rolloverOut"`
	ProjectedRolloverIn  int             `json:"projectedRolloverIn"`
	ProjectedRolloverOut int             `json:"projectedRolloverOut"`
	ActualXP             int             `json:"actualXp"`
	ProjectedXP          int             `json:"projectedXp"`
	Months               []MonthRow      `json:"months"`
	EndedByLevelUp       bool            `json:"endedByLevelUp"`
	LevelUpIsActual      bool            `json:"levelUpIsActual"`
	IsUltimateTrack      bool            `json:"isUltimateTrack"`
	Ultimate             UltimateSummary `json:"ultimate"`
}

// Contains reports whether t falls within [Start, End).
func (c QualificationCycle) Contains(t time.Time) bool {
	return !t.Before(c.Start) && t.Before(c.End)
}
