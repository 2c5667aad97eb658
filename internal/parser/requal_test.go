package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

func TestRequalificationMerge(t *testing.T) {
	text := `08 Oct 2025 XP counter -300 XP
Qualification period ended
New period started
08 Oct 2025 Platinum level reached
08 Oct 2025 Surplus XP carried over 45 XP`

	result := Parse(text)

	require.Len(t, result.Requalifications, 1)
	ev := result.Requalifications[0]
	assert.Equal(t, "2025-10-08", ev.Date.Format("2006-01-02"))
	require.NotNil(t, ev.ToStatus)
	assert.Equal(t, models.TierPlatinum, *ev.ToStatus)
	require.NotNil(t, ev.XPDeducted)
	assert.Equal(t, 300, *ev.XPDeducted)
	require.NotNil(t, ev.RolloverXP)
	assert.Equal(t, 45, *ev.RolloverXP)
}

func TestRequalificationTierOnFollowingLine(t *testing.T) {
	text := `01 Mar 2025 XP-teller -180 XP
Nieuw niveau: Goud
Overschot 12 XP
02 Mar 2025 Amazon 100 Miles`

	result := Parse(text)

	require.Len(t, result.Requalifications, 1)
	ev := result.Requalifications[0]
	require.NotNil(t, ev.ToStatus)
	assert.Equal(t, models.TierGold, *ev.ToStatus)
	require.NotNil(t, ev.RolloverXP)
	assert.Equal(t, 12, *ev.RolloverXP)
}

func TestRequalificationLegacy(t *testing.T) {
	t.Run("creates a bare event", func(t *testing.T) {
		result := Parse("15 Mar 2020 Status requalification")
		require.Len(t, result.Requalifications, 1)
		assert.Nil(t, result.Requalifications[0].ToStatus)
	})

	t.Run("fills a missing tier only", func(t *testing.T) {
		result := Parse("15 Mar 2020 XP counter -100 XP\n15 Mar 2020 Silver status renewed")
		require.Len(t, result.Requalifications, 1)
		ev := result.Requalifications[0]
		require.NotNil(t, ev.ToStatus)
		assert.Equal(t, models.TierSilver, *ev.ToStatus)
		assert.Equal(t, 100, *ev.XPDeducted)
	})

	t.Run("events stay separate per date", func(t *testing.T) {
		result := Parse("15 Mar 2020 Status requalification\n15 Mar 2021 Status requalification")
		require.Len(t, result.Requalifications, 2)
		assert.True(t, result.Requalifications[0].Date.Before(result.Requalifications[1].Date))
	})
}

func TestRequalificationTierThreeLinesLater(t *testing.T) {
	text := `08 Oct 2025 XP counter -300 XP
Qualification period ended
New period started
Platinum reached
10 Oct 2025 Amazon 100 Miles`

	result := Parse(text)

	require.Len(t, result.Requalifications, 1)
	ev := result.Requalifications[0]
	assert.Equal(t, "2025-10-08", ev.Date.Format("2006-01-02"))
	require.NotNil(t, ev.ToStatus)
	assert.Equal(t, models.TierPlatinum, *ev.ToStatus)
	require.NotNil(t, ev.XPDeducted)
	assert.Equal(t, 300, *ev.XPDeducted)
	assert.Nil(t, ev.RolloverXP)
}
