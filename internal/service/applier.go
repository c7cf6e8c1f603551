package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tourney-rating/internal/constants"
	"tourney-rating/internal/domain"
	"tourney-rating/internal/metrics"
	"tourney-rating/internal/rating"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PlayerStore is the slice of the persistence port the applier needs for
// participants.
type PlayerStore interface {
	Get(ctx context.Context, playerID string) (*domain.Player, error)
	UpdateRating(ctx context.Context, playerID string, ratingValue int, eventAt time.Time) error
	RatingSnapshot(ctx context.Context) ([]float64, error)
}

// TournamentStore loads finalized tournaments and their results.
type TournamentStore interface {
	Get(ctx context.Context, tournamentID string) (*domain.Tournament, error)
	GetResults(ctx context.Context, tournamentID string) ([]domain.TournamentResult, error)
	MarkApplied(ctx context.Context, tournamentID string) error
}

// HistoryStore reads bounded, most-recent-first history snapshots and
// appends new entries.
type HistoryStore interface {
	Append(ctx context.Context, record domain.RatingHistory) error
	Recent(ctx context.Context, playerID string, window int) (rating.HistorySample, error)
	Exists(ctx context.Context, playerID, tournamentID string) (bool, error)
}

// ConfigSource supplies the validated active profile.
type ConfigSource interface {
	Active(ctx context.Context) (rating.Config, error)
}

// ParticipantOutcome is one entry of the structured apply report.
// Failures are data here, not log lines: a retry only needs the entries
// whose Error is set.
type ParticipantOutcome struct {
	PlayerID     string  `json:"player_id"`
	Position     int     `json:"position"`
	OldRating    int     `json:"old_rating"`
	NewRating    int     `json:"new_rating"`
	RatingChange int     `json:"rating_change"`
	Confidence   float64 `json:"confidence"`
	Error        string  `json:"error,omitempty"`
}

// ApplyReport is the complete picture of one batch: what was updated,
// what failed, and why the event may have been skipped.
type ApplyReport struct {
	TournamentID string               `json:"tournament_id"`
	Success      bool                 `json:"success"`
	UpdatedCount int                  `json:"updated_count"`
	Skipped      bool                 `json:"skipped"`
	SkipReason   string               `json:"skip_reason,omitempty"`
	Participants []ParticipantOutcome `json:"participants"`
}

// Applier runs the per-tournament batch: score, adjust, attach
// significance and persist, one participant at a time over a bounded
// worker pool. Participant updates are independent; one failed write
// never aborts the rest.
type Applier struct {
	profiles    ConfigSource
	players     PlayerStore
	tournaments TournamentStore
	history     HistoryStore
	cache       *rating.Cache
	metrics     *metrics.System
	stats       rating.Statistics
	workers     int
	logger      zerolog.Logger
}

func NewApplier(
	profiles ConfigSource,
	players PlayerStore,
	tournaments TournamentStore,
	history HistoryStore,
	cache *rating.Cache,
	system *metrics.System,
	workers int,
	logger zerolog.Logger,
) *Applier {
	if workers < 1 {
		workers = constants.ApplyWorkers
	}
	return &Applier{
		profiles:    profiles,
		players:     players,
		tournaments: tournaments,
		history:     history,
		cache:       cache,
		metrics:     system,
		workers:     workers,
		logger:      logger,
	}
}

// ApplyTournament computes and persists a new rating for every
// participant of one finalized tournament.
//
// A field smaller than min_players_for_rating is not an error: the
// event is excluded from rating and reported as zero updates. A failure
// to reach the profile or tournament data aborts the whole batch before
// any participant is touched, since no meaningful work can start.
func (a *Applier) ApplyTournament(ctx context.Context, tournamentID string) (*ApplyReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ApplyTimeout)
	defer cancel()

	cfg, err := a.profiles.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot apply %s: %w", tournamentID, err)
	}

	tournament, err := a.tournaments.Get(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
	}
	results, err := a.tournaments.GetResults(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for %s: %w", tournamentID, err)
	}

	report := &ApplyReport{TournamentID: tournamentID}

	if len(results) < cfg.MinPlayersForRating {
		report.Success = true
		report.Skipped = true
		report.SkipReason = fmt.Sprintf("field of %d is below min_players_for_rating %d",
			len(results), cfg.MinPlayersForRating)
		a.logger.Info().
			Str("tournament_id", tournamentID).
			Int("field_size", len(results)).
			Int("min_players", cfg.MinPlayersForRating).
			Msg("tournament excluded from rating")
		return report, nil
	}

	participants, fieldMean, loadOutcomes := a.loadParticipants(ctx, results)
	report.Participants = append(report.Participants, loadOutcomes...)

	adjuster := rating.NewAdjuster(cfg)
	eventAt := tournament.FinalizedAt
	if eventAt.IsZero() {
		eventAt = time.Now()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, p := range participants {
		g.Go(func() error {
			outcome := a.applyParticipant(gctx, cfg, adjuster, tournament, p, fieldMean, eventAt)
			mu.Lock()
			report.Participants = append(report.Participants, outcome)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are report entries.
	_ = g.Wait()

	for _, outcome := range report.Participants {
		if outcome.Error == "" {
			report.UpdatedCount++
		}
	}
	report.Success = report.UpdatedCount == len(results)

	if report.Success {
		if err := a.tournaments.MarkApplied(ctx, tournamentID); err != nil {
			a.logger.Warn().Err(err).Str("tournament_id", tournamentID).Msg("failed to mark tournament applied")
		}
		// Finalized: memoized entries for this event are no longer
		// needed and must not leak into the next one.
		a.cache.Clear()
	}

	a.logger.Info().
		Str("tournament_id", tournamentID).
		Int("updated", report.UpdatedCount).
		Int("field_size", len(results)).
		Bool("success", report.Success).
		Msg("tournament applied")
	return report, nil
}

type participant struct {
	result domain.TournamentResult
	player domain.Player
}

// loadParticipants resolves every result row to a player record and
// computes the field's mean rating. Unresolvable players become failed
// report entries rather than aborting the batch.
func (a *Applier) loadParticipants(ctx context.Context, results []domain.TournamentResult) ([]participant, int, []ParticipantOutcome) {
	var participants []participant
	var failed []ParticipantOutcome
	sum := 0

	for _, res := range results {
		player, err := a.players.Get(ctx, res.PlayerID)
		if err != nil {
			a.logger.Error().Err(err).Str("player_id", res.PlayerID).Msg("failed to load participant")
			failed = append(failed, ParticipantOutcome{
				PlayerID: res.PlayerID,
				Position: res.Position,
				Error:    fmt.Sprintf("load player: %v", err),
			})
			continue
		}
		participants = append(participants, participant{result: res, player: *player})
		sum += player.Rating
	}

	fieldMean := 0
	if len(participants) > 0 {
		fieldMean = sum / len(participants)
	}
	return participants, fieldMean, failed
}

func (a *Applier) applyParticipant(
	ctx context.Context,
	cfg rating.Config,
	adjuster rating.Adjuster,
	tournament *domain.Tournament,
	p participant,
	fieldMean int,
	eventAt time.Time,
) ParticipantOutcome {
	outcome := ParticipantOutcome{
		PlayerID:  p.result.PlayerID,
		Position:  p.result.Position,
		OldRating: p.player.Rating,
	}

	key := rating.CacheKey{
		PlayerID:     p.result.PlayerID,
		Position:     p.result.Position,
		TotalPlayers: tournament.FieldSize,
		BuyIn:        tournament.BuyIn,
	}

	result, ok := a.cache.Get(key)
	if !ok {
		computed, err := a.compute(ctx, cfg, adjuster, tournament, p, fieldMean)
		if err != nil {
			outcome.Error = fmt.Sprintf("compute: %v", err)
			return outcome
		}
		result = computed
		a.cache.Put(key, result)
	}

	outcome.NewRating = result.NewRating
	outcome.RatingChange = result.RatingChange
	outcome.Confidence = result.ConfidenceLevel

	if err := a.persist(ctx, tournament, p, result, fieldMean, eventAt); err != nil {
		a.logger.Error().Err(err).
			Str("player_id", p.result.PlayerID).
			Str("tournament_id", tournament.TournamentID).
			Msg("failed to persist participant rating")
		outcome.Error = fmt.Sprintf("persist: %v", err)
		return outcome
	}

	return outcome
}

// compute runs the pure pipeline for one participant: score, smooth
// against recent history, re-clamp, attach significance.
func (a *Applier) compute(
	ctx context.Context,
	cfg rating.Config,
	adjuster rating.Adjuster,
	tournament *domain.Tournament,
	p participant,
	fieldMean int,
) (rating.AdvancedResult, error) {
	start := time.Now()

	input := rating.ResultInput{
		Position:        p.result.Position,
		TotalPlayers:    tournament.FieldSize,
		CurrentRating:   p.player.Rating,
		Rebuys:          p.result.Rebuys,
		Addons:          p.result.Addons,
		PrizeAmount:     p.result.PrizeAmount,
		TotalPrizePool:  tournament.PrizePool,
		BuyIn:           tournament.BuyIn,
		PayoutStructure: tournament.Payouts,
		Duration:        p.result.Duration,
		EventType:       tournament.EventType,
		LateEntry:       p.result.LateEntry,
	}

	breakdown, err := rating.Score(cfg, input)
	if err != nil {
		return rating.AdvancedResult{}, err
	}

	hist, err := a.history.Recent(ctx, p.result.PlayerID, constants.HistoryWindowSize)
	if err != nil {
		return rating.AdvancedResult{}, fmt.Errorf("load history: %w", err)
	}
	// The current field's strength counts as observed opposition even
	// before this event lands in the history table.
	if fieldMean > 0 {
		hist.OpponentRatings = append(hist.OpponentRatings, fieldMean)
	}

	adjusted := adjuster.Adjust(p.player.Rating, breakdown.NewRating, hist)
	// The adjuster does not know the profile bounds; re-clamp here.
	if adjusted < cfg.MinRating {
		adjusted = cfg.MinRating
	}
	if adjusted > cfg.MaxRating {
		adjusted = cfg.MaxRating
	}

	significance := a.stats.Significance(p.player.Rating, adjusted,
		rating.SampleVariance(hist.Results), len(hist.Results))

	a.metrics.RecordCalculation(time.Since(start))

	return rating.AdvancedResult{
		NewRating:       adjusted,
		RatingChange:    adjusted - p.player.Rating,
		ConfidenceLevel: significance.ConfidenceLevel,
		Breakdown:       &breakdown,
	}, nil
}

func (a *Applier) persist(
	ctx context.Context,
	tournament *domain.Tournament,
	p participant,
	result rating.AdvancedResult,
	fieldMean int,
	eventAt time.Time,
) error {
	// A retry after partial failure re-processes every participant;
	// those already written for this event are left untouched.
	applied, err := a.history.Exists(ctx, p.result.PlayerID, tournament.TournamentID)
	if err != nil {
		return fmt.Errorf("check history: %w", err)
	}
	if applied {
		return nil
	}

	if err := a.players.UpdateRating(ctx, p.result.PlayerID, result.NewRating, eventAt); err != nil {
		return err
	}

	record := domain.RatingHistory{
		PlayerID:     p.result.PlayerID,
		TournamentID: tournament.TournamentID,
		Position:     p.result.Position,
		RatingDelta:  result.RatingChange,
		RatingAfter:  result.NewRating,
		Confidence:   result.ConfidenceLevel,
		OpponentMean: fieldMean,
		Date:         eventAt,
		CreatedAt:    time.Now(),
	}
	if err := a.history.Append(ctx, record); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// DetectAnomalies flags outlier ratings across the whole population.
func (a *Applier) DetectAnomalies(ctx context.Context) ([]float64, error) {
	snapshot, err := a.players.RatingSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating snapshot: %w", err)
	}
	return a.stats.DetectAnomalies(snapshot), nil
}

// Metrics exposes the observability snapshot, cache counters included.
func (a *Applier) Metrics() metrics.Snapshot {
	hits, misses := a.cache.Counts()
	return a.metrics.Read(hits, misses)
}
