package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func adjusterConfig() Config {
	cfg := Defaults()
	cfg.RatingConfidenceFactor = 0.5
	cfg.VolatilityControl = 1
	return cfg
}

func TestAdjustTrustsNewResultWithoutHistory(t *testing.T) {
	adjuster := NewAdjuster(adjusterConfig())

	got := adjuster.Adjust(1000, 1040, HistorySample{})
	assert.Equal(t, 1040, got)
}

func TestAdjustShrinksSignFlipOnSmallSample(t *testing.T) {
	adjuster := NewAdjuster(adjusterConfig())

	hist := HistorySample{
		Results: []HistoryResult{
			{Position: 15, RatingDelta: -12},
			{Position: 18, RatingDelta: -8},
			{Position: 12, RatingDelta: -10},
		},
	}
	// A +40 proposal against a clearly negative trend gets pulled back.
	got := adjuster.Adjust(1000, 1040, hist)
	assert.Less(t, got, 1040)
	assert.Greater(t, got, 1000)
}

func TestAdjustTrustsAgreeingResult(t *testing.T) {
	adjuster := NewAdjuster(adjusterConfig())

	hist := HistorySample{
		Results: []HistoryResult{
			{Position: 2, RatingDelta: 10},
			{Position: 3, RatingDelta: 8},
		},
	}
	got := adjuster.Adjust(1000, 1040, hist)
	assert.Equal(t, 1040, got)
}

func TestAdjustTrustsLargeSample(t *testing.T) {
	adjuster := NewAdjuster(adjusterConfig())

	var results []HistoryResult
	for i := 0; i < 15; i++ {
		results = append(results, HistoryResult{Position: 10, RatingDelta: -5})
	}
	// Sample is past the small-sample threshold: no smoothing even on a
	// sign flip.
	got := adjuster.Adjust(1000, 1040, HistorySample{Results: results})
	assert.Equal(t, 1040, got)
}

func TestAdjustVolatilityZeroDisablesSmoothing(t *testing.T) {
	cfg := adjusterConfig()
	cfg.VolatilityControl = 0
	adjuster := NewAdjuster(cfg)

	hist := HistorySample{
		Results: []HistoryResult{
			{Position: 15, RatingDelta: -12},
			{Position: 18, RatingDelta: -8},
		},
	}
	got := adjuster.Adjust(1000, 1040, hist)
	assert.Equal(t, 1040, got)
}

func TestAdjustSkillGapShrinksGainAgainstWeakerField(t *testing.T) {
	cfg := adjusterConfig()
	cfg.SkillGapAdjustment = true
	adjuster := NewAdjuster(cfg)

	hist := HistorySample{
		Results:         []HistoryResult{{Position: 1, RatingDelta: 20}},
		OpponentRatings: []int{1200},
	}
	// 1800-rated player beating a 1200-average field gains less than
	// the raw proposal.
	got := adjuster.Adjust(1800, 1840, hist)
	assert.Less(t, got, 1840)
	assert.GreaterOrEqual(t, got, 1800)
}

func TestAdjustSkillGapSoftensLossAgainstStrongerField(t *testing.T) {
	cfg := adjusterConfig()
	cfg.SkillGapAdjustment = true
	adjuster := NewAdjuster(cfg)

	hist := HistorySample{
		Results:         []HistoryResult{{Position: 20, RatingDelta: -15}},
		OpponentRatings: []int{1800},
	}
	got := adjuster.Adjust(1200, 1160, hist)
	assert.Greater(t, got, 1160)
	assert.LessOrEqual(t, got, 1200)
}
