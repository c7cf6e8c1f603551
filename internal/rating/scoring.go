package rating

import (
	"fmt"
	"math"
)

// Score runs the full scoring pass for one finalized result. It is pure
// and deterministic: same config and input always produce the same
// breakdown.
//
// Pass order: base terms, rebuy/addon bonuses, prize conversion,
// position bonuses, bubble bonus, field-size modifier, buy-in modifier,
// event-type scalar, late-entry penalty, progressive scaling, clamp.
// The clamp is authoritative: TotalChange is derived from the clamped
// NewRating, so a participant already at MaxRating gains nothing.
//
// Rebuy policy: the first rebuy earns RebuyMultiplier; every rebuy
// beyond the first earns DoubleRebuyMultiplier instead (marginal rate,
// not a flat switch).
//
// Position bonus precedence: first place earns FirstPlaceBonus only.
// Second and third earn their flat per-place bonus when configured,
// falling back to the coarse Top3Bonus otherwise. Percentage bands
// (top 10%, top 25%), the ITM bonus and the heads-up bonus are additive
// on top for every qualifying position; their qualification sets are
// nested by position, which keeps the pass monotone in finish.
func Score(cfg Config, in ResultInput) (ScoreBreakdown, error) {
	if err := validateInput(in); err != nil {
		return ScoreBreakdown{}, err
	}

	detail := make(map[string]float64, 16)

	base := cfg.BasePoints + cfg.ParticipationBonus
	detail["base_points"] = float64(cfg.BasePoints)
	detail["participation_bonus"] = float64(cfg.ParticipationBonus)

	rebuyAddon := rebuyAddonPoints(cfg, in)
	detail["rebuy_addon_points"] = float64(rebuyAddon)

	prize := prizePoints(cfg, in)
	detail["prize_points"] = float64(prize)

	posBonus := 0
	if cfg.EnablePositionBonus {
		posBonus = positionBonus(cfg, in)
	}
	detail["position_bonus"] = float64(posBonus)

	bubble := 0
	if in.OnBubble() {
		bubble = cfg.BubbleBonus
	}
	detail["bubble_bonus"] = float64(bubble)

	total := base + rebuyAddon + prize + posBonus + bubble
	detail["subtotal"] = float64(total)

	if cfg.FieldSizeModifier {
		factor := fieldSizeFactor(cfg, in.TotalPlayers)
		total = int(math.Floor(float64(total) * factor))
		detail["field_size_factor"] = factor
	}

	if cfg.BuyInModifier {
		factor := buyInFactor(cfg, in.BuyIn)
		total = int(math.Floor(float64(total) * factor))
		detail["buy_in_factor"] = factor
	}

	if factor := eventTypeFactor(cfg.EventTypes, in.EventType); factor != 1 {
		total = int(math.Floor(float64(total) * factor))
		detail["event_type_factor"] = factor
	}

	if in.LateEntry && cfg.LateEntryPenalty > 0 {
		total = int(math.Floor(float64(total) * (1 - cfg.LateEntryPenalty)))
		detail["late_entry_penalty"] = cfg.LateEntryPenalty
	}

	if cfg.ProgressiveScaling && in.CurrentRating > progressiveScalingThreshold {
		total = int(math.Floor(float64(total) * cfg.HighRatingDampening))
		detail["high_rating_dampening"] = cfg.HighRatingDampening
	}

	newRating := clamp(in.CurrentRating+total, cfg.MinRating, cfg.MaxRating)
	change := newRating - in.CurrentRating
	detail["total_change"] = float64(change)
	detail["new_rating"] = float64(newRating)

	return ScoreBreakdown{
		BasePoints:       base,
		RebuyAddonPoints: rebuyAddon,
		PrizePoints:      prize,
		PositionBonus:    posBonus,
		BubbleBonus:      bubble,
		TotalChange:      change,
		NewRating:        newRating,
		Breakdown:        detail,
	}, nil
}

func validateInput(in ResultInput) error {
	switch {
	case in.TotalPlayers < 2:
		return fmt.Errorf("%w: total players %d", ErrInvalidInput, in.TotalPlayers)
	case in.Position < 1 || in.Position > in.TotalPlayers:
		return fmt.Errorf("%w: position %d of %d", ErrInvalidInput, in.Position, in.TotalPlayers)
	case in.Rebuys < 0 || in.Addons < 0:
		return fmt.Errorf("%w: negative rebuys/addons", ErrInvalidInput)
	case in.PrizeAmount < 0 || in.BuyIn < 0:
		return fmt.Errorf("%w: negative prize or buy-in", ErrInvalidInput)
	}
	return nil
}

func rebuyAddonPoints(cfg Config, in ResultInput) int {
	points := 0.0
	if in.Rebuys > 0 {
		points += cfg.RebuyMultiplier
		if in.Rebuys > 1 {
			points += float64(in.Rebuys-1) * cfg.DoubleRebuyMultiplier
		}
	}
	points += float64(in.Addons) * cfg.AddonMultiplier
	return int(math.Floor(points))
}

func prizePoints(cfg Config, in ResultInput) int {
	if !in.InTheMoney() {
		return 0
	}
	raw := int(math.Floor(float64(in.PrizeAmount) * cfg.PrizeCoefficient * cfg.PrizeDistributionWeight))
	return clamp(raw, cfg.MinPrizePoints, cfg.MaxPrizePoints)
}

func positionBonus(cfg Config, in ResultInput) int {
	bonus := 0
	switch in.Position {
	case 1:
		bonus += cfg.FirstPlaceBonus
	case 2:
		if cfg.SecondPlaceBonus > 0 {
			bonus += cfg.SecondPlaceBonus
		} else {
			bonus += cfg.Top3Bonus
		}
	case 3:
		if cfg.ThirdPlaceBonus > 0 {
			bonus += cfg.ThirdPlaceBonus
		} else {
			bonus += cfg.Top3Bonus
		}
	}

	if in.Position <= bandCutoff(in.TotalPlayers, 0.10) {
		bonus += cfg.Top10PercentBonus
	}
	if in.Position <= bandCutoff(in.TotalPlayers, 0.25) {
		bonus += cfg.Top25PercentBonus
	}
	if in.InTheMoney() {
		bonus += cfg.ITMBonus
	}
	// Heads-up means the whole event was two-handed, not reaching the
	// final two of a larger field.
	if in.TotalPlayers == 2 {
		bonus += cfg.HeadsUpBonus
	}
	return bonus
}

// bandCutoff is the worst position still inside the given top fraction
// of the field, never below first place.
func bandCutoff(totalPlayers int, fraction float64) int {
	cutoff := int(math.Floor(float64(totalPlayers) * fraction))
	if cutoff < 1 {
		cutoff = 1
	}
	return cutoff
}

// fieldSizeFactor prefers the configured breakpoint list: the factor
// starts at 0.5 and gains 0.5 for every breakpoint the field reaches,
// so a field below the first breakpoint is damped and each threshold
// crossed scales rewards up a step. The log curve is the fallback when
// no breakpoints are present.
func fieldSizeFactor(cfg Config, totalPlayers int) float64 {
	if len(cfg.FieldSizeBreakpoints) > 0 {
		factor := 0.5
		for _, breakpoint := range cfg.FieldSizeBreakpoints {
			if totalPlayers >= breakpoint {
				factor += 0.5
			}
		}
		return factor
	}
	return math.Log10(float64(totalPlayers)) / 2
}

// buyInFactor prefers the configured tier table; the log curve is the
// fallback when no tiers are present.
func buyInFactor(cfg Config, buyIn int) float64 {
	if len(cfg.BuyInTiers) > 0 {
		for _, tier := range cfg.BuyInTiers {
			if buyIn >= tier.Min && (tier.Max == 0 || buyIn <= tier.Max) {
				return tier.Multiplier
			}
		}
		// Tiers are validated to cover [0, inf); unreachable for a
		// valid config, but never scale by zero on a bad one.
		return 1
	}
	if buyIn < 1 {
		buyIn = 1
	}
	return math.Log10(float64(buyIn)) / 3
}

func eventTypeFactor(m EventTypeModifiers, eventType string) float64 {
	factor := 1.0
	switch eventType {
	case "turbo":
		factor = m.Turbo
	case "deepstack":
		factor = m.Deepstack
	case "freeroll":
		factor = m.Freeroll
	case "guarantee":
		factor = m.Guarantee
	case "satellite":
		factor = m.Satellite
	case "knockout":
		factor = m.Knockout
	}
	if factor <= 0 {
		return 1
	}
	return factor
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
