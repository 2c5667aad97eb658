package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

const englishExport = `Flying Blue activity overview
Status: Gold
Balance 12 500 Miles 150 XP 40 UXP
12 Oct 2025 My trip to Barcelona
AMS-BCN KL1673 625 Miles 10 XP 10 UXP
Flown on 08 Oct 2025
BCN-AMS KL1674 625 Miles 10 XP 10 UXP
Flown on 11 Oct 2025
Sustainable Aviation Fuel 150 Miles 15 XP
08 Oct 2025 XP counter -300 XP
08 Oct 2025 Platinum level reached
05 Oct 2025 American Express 1 200 Miles
20 Oct 2025 American Express 800 Miles
15 Sep 2025 Flying Blue subscription 2 000 Miles
03 Sep 2025 Bonus XP promotion 15 XP
01 Sep 2025 Reward ticket Nice -25 000 Miles`

func TestParse(t *testing.T) {
	result := Parse(englishExport)

	assert.Equal(t, "en", result.Language)
	assert.False(t, result.Empty())

	require.NotNil(t, result.DetectedTier)
	assert.Equal(t, models.TierGold, *result.DetectedTier, "header tier wins over requalification")
	assert.Equal(t, models.Totals{Miles: 12500, XP: 150, UXP: 40}, result.Totals)

	require.Len(t, result.Flights, 2)
	assert.Equal(t, "KL1673", result.Flights[0].FlightNumber)
	assert.Equal(t, "KL1674", result.Flights[1].FlightNumber)
	assert.Equal(t, 15, result.Flights[0].SafXP)

	require.Len(t, result.Requalifications, 1)
	assert.Equal(t, models.TierPlatinum, *result.Requalifications[0].ToStatus)

	require.NotNil(t, result.OldestDate)
	require.NotNil(t, result.NewestDate)
	assert.Equal(t, "2025-09-01", result.OldestDate.Format("2006-01-02"))
	assert.Equal(t, "2025-10-20", result.NewestDate.Format("2006-01-02"))

	want := []models.MonthlyEarning{
		{Month: "2025-09", Category: models.CategorySubscription, Miles: 2000, Count: 1},
		{Month: "2025-09", Category: models.CategoryBonusXP, BonusXP: 15, Count: 1},
		{Month: "2025-09", Category: models.CategoryDebit, Miles: -25000, Count: 1},
		{Month: "2025-10", Category: models.CategoryCardSpend, Miles: 2000, Count: 2},
	}
	assert.Equal(t, want, result.Earnings)
}

func TestParseDebugLines(t *testing.T) {
	result := Parse(englishExport)

	results := map[string]int{}
	for _, l := range result.DebugLines {
		results[l.Result]++
	}
	assert.Equal(t, 3, results[ResultHeader])
	assert.Equal(t, 1, results[ResultTrip])
	assert.Equal(t, 2, results[ResultLeg])
	assert.Equal(t, 2, results[ResultRequalification])
	assert.Equal(t, 5, results[ResultEarning])
	assert.Equal(t, 1, result.DebugLines[0].LineNum)
}

func TestParseFallsBackToRequalificationTier(t *testing.T) {
	result := Parse("Flying Blue\n08 Oct 2025 XP counter -300 XP\n08 Oct 2025 Platinum level reached")
	require.NotNil(t, result.DetectedTier)
	assert.Equal(t, models.TierPlatinum, *result.DetectedTier)
}

func TestParseNothingRecognised(t *testing.T) {
	for _, text := range []string{"", "hello world", "\n\n\n", "Statement of account\nno rows"} {
		result := Parse(text)
		assert.True(t, result.Empty(), text)
		assert.Nil(t, result.DetectedTier)
		assert.NotNil(t, result.Flights)
		assert.NotNil(t, result.Earnings)
	}
}

func TestParsePages(t *testing.T) {
	pages := []string{
		"Status: Silver\n14 Sep 2025 Hertz 300 Miles",
		"15 Sep 2025 Hertz 200 Miles",
	}
	result := ParsePages(pages)
	require.Len(t, result.Earnings, 1)
	assert.Equal(t, 500, result.Earnings[0].Miles)
	assert.Equal(t, 2, result.Earnings[0].Count)
	assert.Equal(t, models.TierSilver, *result.DetectedTier)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", englishExport, "en"},
		{"dutch", "05 mei 2025 Mijn reis naar Nice\nGevlogen op 02 mei 2025\n900 Mijlen 15 XP", "nl"},
		{"french", "3 févr. 2025 Mon voyage à Lisbonne\nVol effectué le 3 févr. 2025", "fr"},
		{"german", "3 März 2025 Meine Reise nach Rom\nGeflogen am 2 März 2025 800 Meilen", "de"},
		{"none", "12345", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestParseKeepsRouteInsideTransaction(t *testing.T) {
	result := Parse("Status: Gold\n08 Sep 2025 Reward ticket AMS-NCE -25 000 Miles\n10 Sep 2025 Amazon 250 Miles")

	assert.Empty(t, result.Flights)
	want := []models.MonthlyEarning{
		{Month: "2025-09", Category: models.CategoryShopping, Miles: 250, Count: 1},
		{Month: "2025-09", Category: models.CategoryDebit, Miles: -25000, Count: 1},
	}
	assert.ElementsMatch(t, want, result.Earnings)

	total := 0
	for _, e := range result.Earnings {
		total += e.Miles
	}
	assert.Equal(t, -24750, total)
}

func TestParseSkipsLinesWithoutFigures(t *testing.T) {
	result := Parse("Status: Silver\n01 Jan 2025 Statement period\n31 Jan 2025 End of overview")

	assert.True(t, result.Empty())
	assert.Empty(t, result.Earnings)
	for _, l := range result.DebugLines[1:] {
		assert.Equal(t, ResultSkipped, l.Result, l.Text)
	}
}

func TestParseEarningsAccountForEveryFigure(t *testing.T) {
	text := `Status: Gold
02 Jan 2025 Flying Blue subscription 2 000 Miles
05 Jan 2025 American Express 1 250 Miles
07 Jan 2025 Hotel stay Marriott 500 Miles
09 Jan 2025 Amazon 120 Miles
11 Jan 2025 Bonus XP promotion 15 XP
14 Jan 2025 Hertz car rental 300 Miles
20 Jan 2025 Reward ticket AMS-LIS -18 000 Miles
22 Feb 2025 Miles adjustment 75 Miles
23 Feb 2025 Goodwill gesture 40 Miles 5 XP
28 Feb 2025 Correction -30 Miles`

	result := Parse(text)

	var rawMiles, rawXP int
	for _, l := range result.DebugLines {
		if l.Result != ResultEarning {
			continue
		}
		c, ok := Classify(l.Text)
		require.True(t, ok, l.Text)
		rawMiles += c.Miles()
		rawXP += c.XP()
	}

	var miles, xp, count int
	for _, e := range result.Earnings {
		miles += e.Miles
		xp += e.BonusXP
		count += e.Count
	}
	assert.Equal(t, 10, count, "every dated line with a figure lands in one category")
	assert.Equal(t, rawMiles, miles)
	assert.Equal(t, rawXP, xp)
	assert.Equal(t, 2000+1250+500+120+300-18000+75+40-30, miles)
	assert.Equal(t, 20, xp)
}
