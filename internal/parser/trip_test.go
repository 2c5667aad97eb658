package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripBlock(t *testing.T, text string) ([]string, Classification) {
	t.Helper()
	lines := Segment(text)
	require.NotEmpty(t, lines)
	header, ok := Classify(lines[0])
	require.True(t, ok)
	require.Equal(t, KindTrip, header.Kind)
	return lines, header
}

func TestExtractTripSAF(t *testing.T) {
	text := `12 Oct 2025 My trip to Barcelona
AMS-BCN KL1673 625 Miles 10 XP 10 UXP
Flown on 08 Oct 2025
BCN-AMS KL1674 625 Miles 10 XP 10 UXP
Flown on 11 Oct 2025
Sustainable Aviation Fuel 150 Miles 15 XP
13 Oct 2025 Amazon 250 Miles`

	lines, header := tripBlock(t, text)
	legs, consumed := extractTrip(lines, 0, header)

	require.Len(t, legs, 2)
	assert.Equal(t, 5, consumed)

	first, second := legs[0], legs[1]
	assert.Equal(t, "AMS", first.Origin)
	assert.Equal(t, "BCN", first.Destination)
	assert.Equal(t, "KL1673", first.FlightNumber)
	assert.Equal(t, "KL", first.Airline)
	assert.Equal(t, 625, first.Miles)
	assert.Equal(t, 10, first.XP)
	assert.Equal(t, "2025-10-08", first.Date.Format("2006-01-02"))
	assert.Equal(t, "2025-10-12", first.PostingDate.Format("2006-01-02"))
	require.NotNil(t, first.UXP)
	assert.Equal(t, 10, *first.UXP)
	assert.True(t, first.PaidWithCash)

	assert.Equal(t, 15, first.SafXP)
	assert.Equal(t, 150, first.SafMiles)
	assert.Equal(t, 0, second.SafXP)
	assert.Equal(t, 0, second.SafMiles)
	assert.Equal(t, 25, first.TotalXP())
	assert.Equal(t, "2025-10-11", second.Date.Format("2006-01-02"))
}

func TestExtractTripAmountsOnFollowingLine(t *testing.T) {
	text := `05 May 2025 Mijn reis naar Nice
AMS-NCE KL1263
Gevlogen op 02 mei 2025
900 Mijlen 15 XP`

	lines, header := tripBlock(t, text)
	legs, _ := extractTrip(lines, 0, header)

	require.Len(t, legs, 1)
	assert.Equal(t, 900, legs[0].Miles)
	assert.Equal(t, 15, legs[0].XP)
	assert.Equal(t, "2025-05-02", legs[0].Date.Format("2006-01-02"))
}

func TestExtractTripPartnerAndReward(t *testing.T) {
	text := `20 Jun 2025 My trip to New York
Reward ticket
JFK-AMS Delta Air Lines 3 500 Miles 48 XP
Flight date 18 Jun 2025
AMS-JFK KL641 3 500 Miles 48 XP`

	lines, header := tripBlock(t, text)
	legs, _ := extractTrip(lines, 0, header)

	require.Len(t, legs, 2)
	partner := legs[0]
	assert.Equal(t, "DL", partner.Airline)
	assert.Equal(t, "DL*1", partner.FlightNumber)
	assert.Nil(t, partner.UXP)
	assert.Equal(t, 48, partner.XP)
	assert.Equal(t, "2025-06-18", partner.Date.Format("2006-01-02"))
	assert.False(t, partner.PaidWithCash)

	assert.Equal(t, "KL641", legs[1].FlightNumber)
	assert.Equal(t, "2025-06-20", legs[1].Date.Format("2006-01-02"))
	assert.False(t, legs[1].PaidWithCash)
}

func TestExtractTripBounded(t *testing.T) {
	text := "01 Jan 2025 My trip to Rome\nAMS-FCO KL1605 800 Miles 10 XP\n"
	for range maxTripLines + 10 {
		text += "filler line\n"
	}

	lines, header := tripBlock(t, text)
	legs, consumed := extractTrip(lines, 0, header)
	assert.Len(t, legs, 1)
	assert.Equal(t, maxTripLines, consumed)
}
