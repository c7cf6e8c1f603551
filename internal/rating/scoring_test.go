package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreWinnerFlatBonuses(t *testing.T) {
	cfg := Config{
		MinRating:           0,
		MaxRating:           3000,
		BasePoints:          2,
		ParticipationBonus:  0,
		EnablePositionBonus: true,
		FirstPlaceBonus:     8,
		MinPlayersForRating: 2,
	}
	in := ResultInput{
		Position:      1,
		TotalPlayers:  50,
		CurrentRating: 1000,
	}

	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 10, breakdown.TotalChange)
	assert.Equal(t, 1010, breakdown.NewRating)
	assert.Equal(t, 8, breakdown.PositionBonus)
}

func TestScoreIsPure(t *testing.T) {
	cfg := Defaults()
	in := ResultInput{
		Position:        3,
		TotalPlayers:    40,
		CurrentRating:   1200,
		Rebuys:          2,
		Addons:          1,
		PrizeAmount:     500,
		PayoutStructure: []int{1000, 700, 500, 300},
	}

	first, err := Score(cfg, in)
	require.NoError(t, err)
	second, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreStaysWithinBounds(t *testing.T) {
	cfg := Defaults()
	cfg.FieldSizeModifier = true
	cfg.BuyInModifier = true
	cfg.ProgressiveScaling = true

	for position := 1; position <= 100; position++ {
		in := ResultInput{
			Position:        position,
			TotalPlayers:    100,
			CurrentRating:   2990,
			Rebuys:          3,
			Addons:          2,
			PrizeAmount:     10000,
			BuyIn:           250,
			PayoutStructure: []int{5000, 3000, 2000},
		}
		breakdown, err := Score(cfg, in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, breakdown.NewRating, cfg.MinRating)
		assert.LessOrEqual(t, breakdown.NewRating, cfg.MaxRating)
	}
}

func TestScoreMonotoneInPosition(t *testing.T) {
	cfg := Defaults()

	prev := -1 << 30
	for position := 20; position >= 1; position-- {
		in := ResultInput{
			Position:      position,
			TotalPlayers:  20,
			CurrentRating: 1000,
		}
		breakdown, err := Score(cfg, in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, breakdown.TotalChange, prev,
			"position %d must not score below position %d", position, position+1)
		prev = breakdown.TotalChange
	}
}

func TestScoreClampAtCeiling(t *testing.T) {
	cfg := Defaults()
	in := ResultInput{
		Position:      1,
		TotalPlayers:  30,
		CurrentRating: cfg.MaxRating,
	}

	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 0, breakdown.TotalChange)
	assert.Equal(t, cfg.MaxRating, breakdown.NewRating)
}

func TestScoreNeverDropsBelowFloor(t *testing.T) {
	cfg := Defaults()
	cfg.MinRating = 800
	cfg.LateEntryPenalty = 0.5

	in := ResultInput{
		Position:      40,
		TotalPlayers:  40,
		CurrentRating: 800,
		LateEntry:     true,
	}
	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, breakdown.NewRating, 800)
}

func TestScoreBubble(t *testing.T) {
	cfg := Defaults()
	cfg.BubbleBonus = 3

	in := ResultInput{
		Position:        9,
		TotalPlayers:    40,
		CurrentRating:   1000,
		PayoutStructure: []int{800, 500, 300, 200, 150, 120, 100, 80},
	}
	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 3, breakdown.BubbleBonus)
	assert.Equal(t, 0, breakdown.PrizePoints)
}

func TestScorePrizeClamped(t *testing.T) {
	cfg := Defaults()
	cfg.PrizeCoefficient = 0.001
	cfg.MinPrizePoints = 2
	cfg.MaxPrizePoints = 25

	in := ResultInput{
		Position:        1,
		TotalPlayers:    50,
		CurrentRating:   1000,
		PrizeAmount:     100000,
		PayoutStructure: []int{100000},
	}
	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 25, breakdown.PrizePoints)

	in.PrizeAmount = 100
	in.PayoutStructure = []int{100}
	breakdown, err = Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 2, breakdown.PrizePoints)
}

func TestScoreMarginalDoubleRebuyRate(t *testing.T) {
	cfg := Defaults()
	cfg.RebuyMultiplier = 1
	cfg.DoubleRebuyMultiplier = 3
	cfg.AddonMultiplier = 2

	in := ResultInput{
		Position:      10,
		TotalPlayers:  20,
		CurrentRating: 1000,
		Rebuys:        3,
		Addons:        1,
	}
	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	// first rebuy at 1, two marginal rebuys at 3, one addon at 2
	assert.Equal(t, 9, breakdown.RebuyAddonPoints)
}

func TestScoreBuyInTiersOverrideLogFormula(t *testing.T) {
	cfg := Defaults()
	cfg.BuyInModifier = true
	cfg.BuyInTiers = []BuyInTier{
		{Min: 0, Max: 50, Multiplier: 1},
		{Min: 51, Max: 200, Multiplier: 1.5},
		{Min: 201, Max: 0, Multiplier: 2},
	}

	in := ResultInput{
		Position:      1,
		TotalPlayers:  20,
		CurrentRating: 1000,
		BuyIn:         100,
	}
	tiered, err := Score(cfg, in)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, tiered.Breakdown["buy_in_factor"], 1e-9)

	cfg.BuyInTiers = nil
	logBased, err := Score(cfg, in)
	require.NoError(t, err)
	assert.NotEqual(t, tiered.Breakdown["buy_in_factor"], logBased.Breakdown["buy_in_factor"])
}

func TestScoreHeadsUpBonusRequiresTwoPlayerField(t *testing.T) {
	cfg := Defaults()
	cfg.HeadsUpBonus = 7

	// Runner-up in a full field: flat second-place bonus plus the
	// top-10% and top-25% bands, no heads-up share.
	in := ResultInput{Position: 2, TotalPlayers: 50, CurrentRating: 1000}
	breakdown, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 8, breakdown.PositionBonus)

	// The same finish in a two-handed event earns it.
	in.TotalPlayers = 2
	breakdown, err = Score(cfg, in)
	require.NoError(t, err)
	assert.Equal(t, 12, breakdown.PositionBonus)
}

func TestScoreFieldSizeBreakpointsOverrideLogFormula(t *testing.T) {
	cfg := Defaults()
	cfg.FieldSizeModifier = true
	cfg.FieldSizeBreakpoints = []int{50, 100, 500}

	in := ResultInput{
		Position:      5,
		TotalPlayers:  120,
		CurrentRating: 1000,
	}
	stepped, err := Score(cfg, in)
	require.NoError(t, err)
	// Two breakpoints reached out of three.
	assert.InDelta(t, 1.5, stepped.Breakdown["field_size_factor"], 1e-9)

	in.TotalPlayers = 30
	small, err := Score(cfg, in)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, small.Breakdown["field_size_factor"], 1e-9)

	cfg.FieldSizeBreakpoints = nil
	in.TotalPlayers = 120
	logBased, err := Score(cfg, in)
	require.NoError(t, err)
	assert.NotEqual(t, stepped.Breakdown["field_size_factor"], logBased.Breakdown["field_size_factor"])
}

func TestScoreEventTypeScalar(t *testing.T) {
	cfg := Defaults()
	cfg.EventTypes.Turbo = 0.5

	in := ResultInput{
		Position:      1,
		TotalPlayers:  20,
		CurrentRating: 1000,
		EventType:     "turbo",
	}
	turbo, err := Score(cfg, in)
	require.NoError(t, err)

	in.EventType = ""
	regular, err := Score(cfg, in)
	require.NoError(t, err)
	assert.Less(t, turbo.TotalChange, regular.TotalChange)
}

func TestScoreRejectsMalformedInput(t *testing.T) {
	cfg := Defaults()

	cases := []ResultInput{
		{Position: 1, TotalPlayers: 1, CurrentRating: 1000},
		{Position: 0, TotalPlayers: 10, CurrentRating: 1000},
		{Position: 11, TotalPlayers: 10, CurrentRating: 1000},
		{Position: 2, TotalPlayers: 10, CurrentRating: 1000, Rebuys: -1},
		{Position: 2, TotalPlayers: 10, CurrentRating: 1000, PrizeAmount: -5},
	}
	for _, in := range cases {
		_, err := Score(cfg, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestScoreProgressiveScalingDampensHighRatings(t *testing.T) {
	cfg := Defaults()
	cfg.ProgressiveScaling = true
	cfg.HighRatingDampening = 0.5

	high := ResultInput{Position: 1, TotalPlayers: 20, CurrentRating: 1500}
	low := ResultInput{Position: 1, TotalPlayers: 20, CurrentRating: 900}

	highScore, err := Score(cfg, high)
	require.NoError(t, err)
	lowScore, err := Score(cfg, low)
	require.NoError(t, err)
	assert.Less(t, highScore.TotalChange, lowScore.TotalChange)
}
