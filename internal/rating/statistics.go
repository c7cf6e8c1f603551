package rating

import "math"

const (
	// Guard against a zero standard error blowing the z score up.
	stderrEpsilon = 1e-9
	// Confidence at or above this marks a change as significant.
	significanceThreshold = 0.8
	// Standard deviations from the population mean before a rating is
	// flagged as an outlier.
	anomalyZThreshold = 3.0
	// Populations smaller than this yield no anomalies.
	anomalyMinPopulation = 5
)

// Significance is the statistical weight of one rating change.
type Significance struct {
	ConfidenceLevel float64
	IsSignificant   bool
}

// Significance estimates how distinguishable a rating change is from
// noise, given the sample variance and size of the participant's recent
// deltas. The z score is mapped through a saturating curve so confidence
// stays in [0,1].
func (Statistics) Significance(oldRating, newRating int, sampleVariance float64, sampleSize int) Significance {
	if sampleSize < 1 {
		sampleSize = 1
	}
	stderr := math.Sqrt(sampleVariance / float64(sampleSize))
	z := math.Abs(float64(newRating-oldRating)) / math.Max(stderr, stderrEpsilon)

	confidence := 1 - math.Exp(-z/2)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Significance{
		ConfidenceLevel: confidence,
		IsSignificant:   confidence >= significanceThreshold,
	}
}

// Statistics groups the pure population-level routines. Stateless; the
// zero value is ready to use.
type Statistics struct{}

// DetectAnomalies flags ratings further than anomalyZThreshold standard
// deviations from the population mean. Small populations produce no
// anomalies: there is not enough sample to call anything an outlier.
func (Statistics) DetectAnomalies(ratings []float64) []float64 {
	if len(ratings) < anomalyMinPopulation {
		return nil
	}

	mean := 0.0
	for _, r := range ratings {
		mean += r
	}
	mean /= float64(len(ratings))

	variance := 0.0
	for _, r := range ratings {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(ratings))
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return nil
	}

	var outliers []float64
	for _, r := range ratings {
		if math.Abs(r-mean)/stddev > anomalyZThreshold {
			outliers = append(outliers, r)
		}
	}
	return outliers
}

// SampleVariance is the variance of a participant's recent rating
// deltas, fed into Significance by the batch applier.
func SampleVariance(results []HistoryResult) float64 {
	if len(results) < 2 {
		return 0
	}
	mean := meanHistoryDelta(results)
	sum := 0.0
	for _, r := range results {
		diff := float64(r.RatingDelta) - mean
		sum += diff * diff
	}
	return sum / float64(len(results)-1)
}
