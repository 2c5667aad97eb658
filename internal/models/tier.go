package models

import "strings"

// Tier is a base loyalty level.
type Tier string

const (
	TierExplorer Tier = "Explorer"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// Tiers is the ladder from lowest to highest.
var Tiers = []Tier{TierExplorer, TierSilver, TierGold, TierPlatinum}

const (
	// RolloverCap is the most XP that can be carried into a new cycle.
	RolloverCap = 300

	UltimateThreshold   = 900
	UltimateRolloverCap = 900
	UltimateCombinedCap = UltimateThreshold + UltimateRolloverCap
)

var tierThresholds = map[Tier]int{
	TierExplorer: 0,
	TierSilver:   100,
	TierGold:     180,
	TierPlatinum: 300,
}

// Threshold returns the XP needed to reach or keep t.
func (t Tier) Threshold() int {
	return tierThresholds[t.orDefault()]
}

// Rank returns the position of t on the ladder (Explorer = 0).
func (t Tier) Rank() int {
	t = t.orDefault()
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return 0
}

// Next returns the tier above t, or t itself at the top.
func (t Tier) Next() Tier {
	r := t.Rank()
	if r+1 < len(Tiers) {
		return Tiers[r+1]
	}
	return Tiers[r]
}

// IsTop reports whether t is the highest base tier.
func (t Tier) IsTop() bool {
	return t.Rank() == len(Tiers)-1
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := tierThresholds[t]
	return ok
}

func (t Tier) orDefault() Tier {
	if t.Valid() {
		return t
	}
	return TierExplorer
}

// TierForXP returns the highest tier whose threshold xp reaches.
func TierForXP(xp int) Tier {
	best := TierExplorer
	for _, t := range Tiers {
		if xp >= t.Threshold() {
			best = t
		}
	}
	return best
}

// ParseTier accepts a tier name in any casing; unknown names yield ok=false.
func ParseTier(s string) (Tier, bool) {
	s = strings.TrimSpace(s)
	for _, t := range Tiers {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// MaxTier returns the higher of a and b.
func MaxTier(a, b Tier) Tier {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// MinTier returns the lower of a and b.
func MinTier(a, b Tier) Tier {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}
