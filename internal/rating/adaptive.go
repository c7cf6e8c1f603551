package rating

import "math"

const (
	// Sample size at which a new result is trusted fully.
	fullTrustSampleSize = 20
	// Below this sample size a sign-flipping result is smoothed toward
	// the recent trend.
	smallSampleSize = 10
	// The classic Elo logistic constant: a gap of 400 halves the
	// adjustment weight.
	skillGapScale = 400.0
)

// Adjuster smooths single-result volatility: a rating proposal that
// contradicts a short recent trend is shrunk toward that trend, and
// optionally scaled by the strength gap to the field. It never clamps;
// callers re-apply the profile bounds.
type Adjuster struct {
	confidenceFactor float64
	skillGap         bool
	volatility       float64
}

func NewAdjuster(cfg Config) Adjuster {
	return Adjuster{
		confidenceFactor: cfg.RatingConfidenceFactor,
		skillGap:         cfg.SkillGapAdjustment,
		volatility:       cfg.VolatilityControl,
	}
}

// Adjust blends proposedRating against the participant's recent history.
// With no history the proposal is returned untouched (new players are
// trusted fully; thin data is not an error).
func (a Adjuster) Adjust(currentRating, proposedRating int, hist HistorySample) int {
	n := len(hist.Results)
	if n == 0 {
		return proposedRating
	}

	proposedDelta := float64(proposedRating - currentRating)
	meanDelta := meanHistoryDelta(hist.Results)

	adjusted := proposedDelta
	if n < smallSampleSize && signsDisagree(proposedDelta, meanDelta) {
		// Trust in the new result grows with sample size; the trend
		// weight is damped by volatility control (0 disables smoothing).
		trust := a.confidenceFactor + (1-a.confidenceFactor)*math.Min(1, float64(n)/fullTrustSampleSize)
		trendWeight := (1 - trust) * a.volatility
		adjusted = proposedDelta*(1-trendWeight) + meanDelta*trendWeight
	}

	if a.skillGap && len(hist.OpponentRatings) > 0 {
		adjusted *= a.skillGapFactor(currentRating, adjusted, hist.OpponentRatings)
	}

	return currentRating + int(math.Round(adjusted))
}

// skillGapFactor shrinks gains earned against much weaker fields and
// penalties taken against much stronger ones.
func (a Adjuster) skillGapFactor(currentRating int, delta float64, opponents []int) float64 {
	gap := float64(currentRating) - meanInt(opponents)
	switch {
	case delta > 0 && gap > 0:
		return 1 / (1 + gap/skillGapScale)
	case delta < 0 && gap < 0:
		return 1 / (1 - gap/skillGapScale)
	default:
		return 1
	}
}

func meanHistoryDelta(results []HistoryResult) float64 {
	sum := 0.0
	for _, r := range results {
		sum += float64(r.RatingDelta)
	}
	return sum / float64(len(results))
}

func meanInt(values []int) float64 {
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

func signsDisagree(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}
