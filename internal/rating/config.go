package rating

import "time"

// BuyInTier maps a buy-in range to a flat multiplier. Tiers are ordered
// ascending and must cover [0, inf) without gaps or overlaps; the last
// tier uses Max = 0 to mean "unbounded".
type BuyInTier struct {
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Multiplier float64 `json:"multiplier"`
}

// EventTypeModifiers scales the final delta per tournament format.
type EventTypeModifiers struct {
	Turbo     float64 `json:"turbo"`
	Deepstack float64 `json:"deepstack"`
	Freeroll  float64 `json:"freeroll"`
	Guarantee float64 `json:"guarantee"`
	Satellite float64 `json:"satellite"`
	Knockout  float64 `json:"knockout"`
}

// Weights blends multiple signals in callers that combine them. Unused by
// the base scoring pass.
type Weights struct {
	Position    float64 `json:"position"`
	Prize       float64 `json:"prize"`
	FieldSize   float64 `json:"field_size"`
	BuyIn       float64 `json:"buy_in"`
	Duration    float64 `json:"duration"`
	Performance float64 `json:"performance"`
}

// Config holds every tunable coefficient of the scoring formula. It is
// immutable during computation: loaded from a stored profile, merged over
// Defaults, validated once, then only read.
type Config struct {
	ProfileID string   `json:"profile_id"`
	Name      string   `json:"name"`
	EventTags []string `json:"event_tags"`

	MinRating int `json:"min_rating"`
	MaxRating int `json:"max_rating"`

	BasePoints         int `json:"base_points"`
	ParticipationBonus int `json:"participation_bonus"`

	RebuyMultiplier       float64 `json:"rebuy_multiplier"`
	AddonMultiplier       float64 `json:"addon_multiplier"`
	DoubleRebuyMultiplier float64 `json:"double_rebuy_multiplier"`
	LateEntryPenalty      float64 `json:"late_entry_penalty"`

	PrizeCoefficient        float64 `json:"prize_coefficient"`
	MinPrizePoints          int     `json:"min_prize_points"`
	MaxPrizePoints          int     `json:"max_prize_points"`
	PrizeDistributionWeight float64 `json:"prize_distribution_weight"`

	EnablePositionBonus bool `json:"enable_position_bonus"`
	FirstPlaceBonus     int  `json:"first_place_bonus"`
	SecondPlaceBonus    int  `json:"second_place_bonus"`
	ThirdPlaceBonus     int  `json:"third_place_bonus"`
	Top3Bonus           int  `json:"top3_bonus"`
	Top10PercentBonus   int  `json:"top10_percent_bonus"`
	Top25PercentBonus   int  `json:"top25_percent_bonus"`
	ITMBonus            int  `json:"itm_bonus"`
	BubbleBonus         int  `json:"bubble_bonus"`
	HeadsUpBonus        int  `json:"heads_up_bonus"`

	FieldSizeModifier    bool        `json:"field_size_modifier"`
	FieldSizeBreakpoints []int       `json:"field_size_breakpoints"`
	BuyInModifier        bool        `json:"buy_in_modifier"`
	BuyInTiers           []BuyInTier `json:"buy_in_tiers"`

	EventTypes EventTypeModifiers `json:"event_types"`

	ProgressiveScaling     bool    `json:"progressive_scaling"`
	HighRatingDampening    float64 `json:"high_rating_dampening"`
	SkillGapAdjustment     bool    `json:"skill_gap_adjustment"`
	RatingConfidenceFactor float64 `json:"rating_confidence_factor"`
	VolatilityControl      float64 `json:"volatility_control"`

	MinPlayersForRating int     `json:"min_players_for_rating"`
	AutoApply           bool    `json:"auto_apply"`
	RequireConfirmation bool    `json:"require_confirmation"`
	RatingDecay         bool    `json:"rating_decay"`
	DecayRate           float64 `json:"decay_rate"`

	Weights Weights `json:"weights"`
}

// Rating threshold above which progressive scaling dampens further gains.
const progressiveScalingThreshold = 1000

// Defaults returns the baseline profile. Stored profiles are merged over
// this at load time so a partial profile never leaves a field silently
// zeroed mid-computation.
func Defaults() Config {
	return Config{
		ProfileID: "default",
		Name:      "Default",

		MinRating: 0,
		MaxRating: 3000,

		BasePoints:         2,
		ParticipationBonus: 1,

		RebuyMultiplier:       1,
		AddonMultiplier:       1,
		DoubleRebuyMultiplier: 2,
		LateEntryPenalty:      0,

		PrizeCoefficient:        0.001,
		MinPrizePoints:          0,
		MaxPrizePoints:          50,
		PrizeDistributionWeight: 1,

		EnablePositionBonus: true,
		FirstPlaceBonus:     8,
		SecondPlaceBonus:    5,
		ThirdPlaceBonus:     3,
		Top3Bonus:           4,
		Top10PercentBonus:   2,
		Top25PercentBonus:   1,
		ITMBonus:            1,
		BubbleBonus:         1,
		HeadsUpBonus:        2,

		FieldSizeModifier: false,
		BuyInModifier:     false,

		EventTypes: EventTypeModifiers{
			Turbo:     1,
			Deepstack: 1,
			Freeroll:  1,
			Guarantee: 1,
			Satellite: 1,
			Knockout:  1,
		},

		ProgressiveScaling:     false,
		HighRatingDampening:    0.8,
		SkillGapAdjustment:     false,
		RatingConfidenceFactor: 0.5,
		VolatilityControl:      0.5,

		MinPlayersForRating: 2,
		AutoApply:           true,
		RequireConfirmation: false,
		RatingDecay:         false,
		DecayRate:           0.01,

		Weights: Weights{
			Position:    1,
			Prize:       1,
			FieldSize:   1,
			BuyIn:       1,
			Duration:    0,
			Performance: 1,
		},
	}
}

// ResultInput is one participant's finalized result in one tournament.
// Position is 1-based, 1 = winner. Constructed fresh per computation.
type ResultInput struct {
	Position        int
	TotalPlayers    int
	CurrentRating   int
	Rebuys          int
	Addons          int
	PrizeAmount     int
	TotalPrizePool  int
	BuyIn           int
	PayoutStructure []int
	Duration        time.Duration
	EventType       string
	LateEntry       bool
}

// InTheMoney reports whether the finishing position received a payout.
func (in ResultInput) InTheMoney() bool {
	return in.Position <= len(in.PayoutStructure) && in.PrizeAmount > 0
}

// OnBubble reports whether the participant finished first outside the
// paid places.
func (in ResultInput) OnBubble() bool {
	return len(in.PayoutStructure) > 0 && in.Position == len(in.PayoutStructure)+1
}

// ScoreBreakdown is the audit record of one scoring pass. Every
// intermediate term appears in Breakdown keyed by its step name.
type ScoreBreakdown struct {
	BasePoints       int
	RebuyAddonPoints int
	PrizePoints      int
	PositionBonus    int
	BubbleBonus      int
	TotalChange      int
	NewRating        int
	Breakdown        map[string]float64
}

// HistoryResult is one past finish in a participant's bounded window,
// most recent first.
type HistoryResult struct {
	Position    int
	RatingDelta int
}

// HistorySample is a read-only snapshot of a participant's recent
// results plus the mean opponent ratings observed across the window.
type HistorySample struct {
	Results         []HistoryResult
	OpponentRatings []int
}

// AdvancedResult is the cached/returned unit for one participant: the
// clamped rating, its delta, and how statistically distinguishable the
// change is from noise.
type AdvancedResult struct {
	NewRating       int
	RatingChange    int
	ConfidenceLevel float64
	Breakdown       *ScoreBreakdown
}
