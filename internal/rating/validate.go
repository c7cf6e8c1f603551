package rating

import "fmt"

// ValidationReport separates blocking errors from advisory warnings. A
// profile with any error must never reach the scoring pass.
type ValidationReport struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the config may be used for computation.
func (r ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

const (
	healthErrorDeduction   = 25
	healthWarningDeduction = 5
)

// Validate checks a config for internal consistency. Errors block usage;
// warnings flag configurations that are legal but likely unintended.
func Validate(cfg Config) ValidationReport {
	var report ValidationReport

	if cfg.MinRating >= cfg.MaxRating {
		report.Errors = append(report.Errors,
			fmt.Sprintf("min_rating %d must be below max_rating %d", cfg.MinRating, cfg.MaxRating))
	}
	for name, v := range map[string]float64{
		"rebuy_multiplier":          cfg.RebuyMultiplier,
		"addon_multiplier":          cfg.AddonMultiplier,
		"double_rebuy_multiplier":   cfg.DoubleRebuyMultiplier,
		"high_rating_dampening":     cfg.HighRatingDampening,
		"prize_distribution_weight": cfg.PrizeDistributionWeight,
		"decay_rate":                cfg.DecayRate,
	} {
		if v < 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("%s must not be negative", name))
		}
	}
	if cfg.PrizeCoefficient < 0 || cfg.PrizeCoefficient > 1 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("prize_coefficient %.4f must be within [0,1]", cfg.PrizeCoefficient))
	}
	if cfg.LateEntryPenalty < 0 || cfg.LateEntryPenalty > 1 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("late_entry_penalty %.2f must be within [0,1]", cfg.LateEntryPenalty))
	}
	if cfg.RatingConfidenceFactor < 0 || cfg.RatingConfidenceFactor > 1 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("rating_confidence_factor %.2f must be within [0,1]", cfg.RatingConfidenceFactor))
	}
	if cfg.VolatilityControl < 0 || cfg.VolatilityControl > 1 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("volatility_control %.2f must be within [0,1]", cfg.VolatilityControl))
	}
	if cfg.MinPlayersForRating < 2 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("min_players_for_rating %d must be at least 2", cfg.MinPlayersForRating))
	}
	if cfg.MinPrizePoints > cfg.MaxPrizePoints {
		report.Errors = append(report.Errors,
			fmt.Sprintf("min_prize_points %d exceeds max_prize_points %d, inverting the prize clamp",
				cfg.MinPrizePoints, cfg.MaxPrizePoints))
	}
	report.Errors = append(report.Errors, validateBuyInTiers(cfg.BuyInTiers)...)
	report.Errors = append(report.Errors, validateFieldSizeBreakpoints(cfg.FieldSizeBreakpoints)...)

	if cfg.BasePoints < 1 || cfg.BasePoints > 5 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("base_points %d is outside the recommended [1,5] band", cfg.BasePoints))
	}
	if cfg.PrizeCoefficient > 0.005 {
		report.Warnings = append(report.Warnings,
			"prize_coefficient above 0.005 is likely to dominate all other terms")
	}
	if sum := bonusCeiling(cfg); sum > cfg.MaxRating-cfg.MinRating {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("position bonuses sum to %d, exceeding the rating range for small fields", sum))
	}
	if cfg.ProgressiveScaling && cfg.VolatilityControl == 0 {
		report.Warnings = append(report.Warnings,
			"progressive_scaling without volatility_control leaves scaling undamped")
	}
	if cfg.EnablePositionBonus &&
		(cfg.SecondPlaceBonus > cfg.FirstPlaceBonus || cfg.ThirdPlaceBonus > cfg.SecondPlaceBonus && cfg.SecondPlaceBonus > 0) {
		report.Warnings = append(report.Warnings,
			"per-place bonuses are not monotone: a worse finish can outscore a better one")
	}

	return report
}

// validateBuyInTiers requires an ascending, contiguous cover of [0, inf):
// first tier starts at 0, each next tier starts right after the previous
// one ends, last tier is unbounded (Max == 0). Empty tiers are fine; the
// log formula covers everything then.
func validateBuyInTiers(tiers []BuyInTier) []string {
	if len(tiers) == 0 {
		return nil
	}
	var errs []string
	if tiers[0].Min != 0 {
		errs = append(errs, "buy_in_tiers must start at 0")
	}
	for i, tier := range tiers {
		if tier.Multiplier < 0 {
			errs = append(errs, fmt.Sprintf("buy_in_tiers[%d] multiplier must not be negative", i))
		}
		last := i == len(tiers)-1
		if last {
			if tier.Max != 0 {
				errs = append(errs, "last buy_in_tier must be unbounded (max 0)")
			}
			continue
		}
		if tier.Max < tier.Min {
			errs = append(errs, fmt.Sprintf("buy_in_tiers[%d] has max below min", i))
		}
		if tiers[i+1].Min != tier.Max+1 {
			errs = append(errs, fmt.Sprintf("buy_in_tiers[%d] and [%d] leave a gap or overlap", i, i+1))
		}
	}
	return errs
}

// validateFieldSizeBreakpoints requires a strictly ascending list of
// positive thresholds. Empty is fine; the log curve covers everything
// then.
func validateFieldSizeBreakpoints(breakpoints []int) []string {
	var errs []string
	for i, breakpoint := range breakpoints {
		if breakpoint < 2 {
			errs = append(errs, fmt.Sprintf("field_size_breakpoints[%d] must be at least 2", i))
		}
		if i > 0 && breakpoint <= breakpoints[i-1] {
			errs = append(errs, fmt.Sprintf("field_size_breakpoints[%d] must be above [%d]", i, i-1))
		}
	}
	return errs
}

// bonusCeiling is the largest position bonus a single winner could
// collect, used for the small-field warning.
func bonusCeiling(cfg Config) int {
	return cfg.FirstPlaceBonus + cfg.SecondPlaceBonus + cfg.ThirdPlaceBonus +
		cfg.Top3Bonus + cfg.Top10PercentBonus + cfg.Top25PercentBonus +
		cfg.ITMBonus + cfg.BubbleBonus + cfg.HeadsUpBonus
}

// HealthScore grades a config 0-100: start at 100, deduct a large fixed
// amount per error and a small one per warning, floored at 0.
func HealthScore(cfg Config) int {
	report := Validate(cfg)
	score := 100 - len(report.Errors)*healthErrorDeduction - len(report.Warnings)*healthWarningDeduction
	if score < 0 {
		score = 0
	}
	return score
}

// SuggestImprovements returns human-readable nudges derived from the
// validation rules. Advisory only; the config is never mutated.
func SuggestImprovements(cfg Config) []string {
	var suggestions []string
	if cfg.BasePoints < 1 || cfg.BasePoints > 5 {
		suggestions = append(suggestions, "clamp base_points into [1,5] so one result cannot swamp the history window")
	}
	if cfg.PrizeCoefficient > 0.005 {
		suggestions = append(suggestions, "reduce prize_coefficient to 0.005 or below so prize points stay comparable to position bonuses")
	}
	if cfg.ProgressiveScaling && cfg.VolatilityControl == 0 {
		suggestions = append(suggestions, "set volatility_control above 0 when progressive_scaling is on, otherwise scaled results are undamped")
	}
	if cfg.MinPrizePoints > cfg.MaxPrizePoints {
		suggestions = append(suggestions, "raise max_prize_points above min_prize_points; inverted clamp bounds make prize points meaningless")
	}
	if !cfg.EnablePositionBonus {
		suggestions = append(suggestions, "enable the position bonus so finishing order, not only prize money, moves the rating")
	}
	return suggestions
}
