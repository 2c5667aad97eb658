package models

import (
	"sort"
	"time"
)

// Category is the closed set of buckets a monthly point deposit can fall into.
type Category string

const (
	CategorySubscription Category = "subscription"
	CategoryCardSpend    Category = "card_spend"
	CategoryHotel        Category = "hotel"
	CategoryShopping     Category = "shopping"
	CategoryPartner      Category = "partner_transfer"
	CategoryBonusXP      Category = "bonus_xp"
	CategoryDebit        Category = "debit"
	CategoryOther        Category = "uncategorized"
)

// Categories lists every Category in display order.
var Categories = []Category{
	CategorySubscription,
	CategoryCardSpend,
	CategoryHotel,
	CategoryShopping,
	CategoryPartner,
	CategoryBonusXP,
	CategoryDebit,
	CategoryOther,
}

// FlightLeg is a single flown (or booked) flight segment.
type FlightLeg struct {
	Date         time.Time `json:"date"`
	PostingDate  time.Time `json:"postingDate"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	FlightNumber string    `json:"flightNumber"`
	Airline      string    `json:"airline"`
	Miles        int       `json:"miles"`
	XP           int       `json:"xp"`
	UXP          *int      `json:"uxp,omitempty"` // only accrues on AF and KL
	SafXP        int       `json:"safXp"`
	SafMiles     int       `json:"safMiles"`
	PaidWithCash bool      `json:"paidWithCash"`
	Scheduled    bool      `json:"scheduled"`
}

// TotalXP returns the leg's XP including any SAF bonus.
func (f FlightLeg) TotalXP() int {
	return f.XP + f.SafXP
}

// UXPValue returns the leg's UXP, or 0 for carriers that don't award it.
func (f FlightLeg) UXPValue() int {
	if f.UXP == nil {
		return 0
	}
	return *f.UXP
}

// Route returns "ORIGIN-DESTINATION".
func (f FlightLeg) Route() string {
	return f.Origin + "-" + f.Destination
}

// MonthlyEarning aggregates all deposits of one category in one month.
type MonthlyEarning struct {
	Month    string   `json:"month"` // YYYY-MM
	Category Category `json:"category"`
	Miles    int      `json:"miles"` // negative for debits
	BonusXP  int      `json:"bonusXp"`
	Count    int      `json:"count"`
}

// RequalificationEvent is a tier change or XP counter reset reported by the export.
type RequalificationEvent struct {
	Date       time.Time `json:"date"`
	ToStatus   *Tier     `json:"toStatus,omitempty"`
	XPDeducted *int      `json:"xpDeducted,omitempty"`
	RolloverXP *int      `json:"rolloverXp,omitempty"`
}

// Totals are the balances printed in the export header.
type Totals struct {
	Miles int `json:"miles"`
	XP    int `json:"xp"`
	UXP   int `json:"uxp"`
}

// DebugLine captures what the parser did with each logical line.
type DebugLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	HasDate bool   `json:"hasDate"`
	Result  string `json:"result"` // "header", "trip", "leg", "earning", "requalification", "continuation", "skipped"
	Kind    string `json:"kind,omitempty"`
}

// ParseResult is everything recognised in one activity export.
type ParseResult struct {
	Flights          []FlightLeg            `json:"flights"`
	Earnings         []MonthlyEarning       `json:"earnings"`
	DetectedTier     *Tier                  `json:"detectedTier,omitempty"`
	Totals           Totals                 `json:"totals"`
	OldestDate       *time.Time             `json:"oldestDate,omitempty"`
	NewestDate       *time.Time             `json:"newestDate,omitempty"`
	Requalifications []RequalificationEvent `json:"requalifications"`
	Language         string                 `json:"language,omitempty"`
	DebugLines       []DebugLine            `json:"debugLines,omitempty"`
}

// Empty reports whether nothing usable was recognised.
func (r *ParseResult) Empty() bool {
	return len(r.Flights) == 0 && len(r.Earnings) == 0
}

// EarningsByMonth groups the monthly earnings by their month key, in month order.
func (r *ParseResult) EarningsByMonth() ([]string, map[string][]MonthlyEarning) {
	grouped := make(map[string][]MonthlyEarning)
	var months []string
	for _, e := range r.Earnings {
		if _, ok := grouped[e.Month]; !ok {
			months = append(months, e.Month)
		}
		grouped[e.Month] = append(grouped[e.Month], e)
	}
	sort.Strings(months)
	return months, grouped
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey parses a YYYY-MM key into the first day of that month (UTC).
func ParseMonthKey(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
