package service

import (
	"context"
	"fmt"
	"time"

	"tourney-rating/internal/api"
	"tourney-rating/internal/constants"
	"tourney-rating/internal/domain"
	"tourney-rating/internal/repository"

	"github.com/rs/zerolog"
)

// SyncService pulls finalized tournaments and their results from the
// upstream directory into local storage, where the applier consumes
// them. Positions arrive already finalized and validated upstream; they
// are stored as-is.
type SyncService struct {
	client      *api.DirectoryClient
	players     *repository.PlayerRepository
	tournaments *repository.TournamentRepository
	logger      zerolog.Logger
}

func NewSyncService(
	client *api.DirectoryClient,
	players *repository.PlayerRepository,
	tournaments *repository.TournamentRepository,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{client: client, players: players, tournaments: tournaments, logger: logger}
}

// ImportTournament fetches one tournament and its finalized results and
// upserts everything locally. Unknown players are created with the
// default starting rating.
func (s *SyncService) ImportTournament(ctx context.Context, tournamentID string) error {
	if !s.client.Enabled() {
		return fmt.Errorf("upstream sync is not configured")
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.UpstreamAPITimeout)
	defer cancel()

	payload, err := s.client.GetTournament(apiCtx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to fetch tournament %s: %w", tournamentID, err)
	}
	results, err := s.client.GetResults(apiCtx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to fetch results for %s: %w", tournamentID, err)
	}

	tournament := &domain.Tournament{
		TournamentID: payload.ID,
		Name:         payload.Name,
		EventType:    payload.EventType,
		BuyIn:        payload.BuyIn,
		PrizePool:    payload.PrizePool,
		FieldSize:    payload.FieldSize,
		Payouts:      payload.Payouts,
		Status:       payload.Status,
		StartedAt:    parseUpstreamTime(payload.StartedAt),
		FinalizedAt:  parseUpstreamTime(payload.FinalizedAt),
	}
	if err := s.tournaments.Upsert(ctx, tournament); err != nil {
		return err
	}

	records := make([]domain.TournamentResult, 0, len(results))
	for _, res := range results {
		if err := s.ensurePlayer(ctx, res.PlayerID, res.PlayerName); err != nil {
			return err
		}
		records = append(records, domain.TournamentResult{
			TournamentID: payload.ID,
			PlayerID:     res.PlayerID,
			Position:     res.Position,
			Rebuys:       res.Rebuys,
			Addons:       res.Addons,
			PrizeAmount:  res.PrizeAmount,
			LateEntry:    res.LateEntry,
			Duration:     time.Duration(res.DurationSeconds) * time.Second,
		})
	}
	if err := s.tournaments.UpsertResultsBatch(ctx, records); err != nil {
		return err
	}

	s.logger.Info().
		Str("tournament_id", payload.ID).
		Int("results", len(records)).
		Msg("tournament imported")
	return nil
}

func (s *SyncService) ensurePlayer(ctx context.Context, playerID, name string) error {
	if _, err := s.players.Get(ctx, playerID); err == nil {
		return nil
	}
	return s.players.Upsert(ctx, &domain.Player{
		PlayerID: playerID,
		Name:     name,
		Rating:   constants.DefaultStartingRating,
	})
}

func parseUpstreamTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
