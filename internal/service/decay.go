package service

import (
	"context"
	"math"
	"time"

	"tourney-rating/internal/constants"
	"tourney-rating/internal/domain"

	"github.com/rs/zerolog"
)

// IdlePlayerStore is the slice of the persistence port the decay pass
// needs.
type IdlePlayerStore interface {
	IdleSince(ctx context.Context, cutoff time.Time) ([]domain.Player, error)
	SetRating(ctx context.Context, playerID string, ratingValue int) error
}

// DecayService slowly pulls idle players' ratings toward the profile
// floor. A no-op unless the active profile enables rating_decay.
type DecayService struct {
	profiles ConfigSource
	players  IdlePlayerStore
	logger   zerolog.Logger
}

func NewDecayService(profiles ConfigSource, players IdlePlayerStore, logger zerolog.Logger) *DecayService {
	return &DecayService{profiles: profiles, players: players, logger: logger}
}

// Run decays every player idle longer than the threshold by decay_rate
// of their distance to the floor. Returns how many players were decayed.
func (s *DecayService) Run(ctx context.Context) (int, error) {
	cfg, err := s.profiles.Active(ctx)
	if err != nil {
		return 0, err
	}
	if !cfg.RatingDecay || cfg.DecayRate <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-constants.DecayIdleThreshold)
	idle, err := s.players.IdleSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	decayed := 0
	for _, player := range idle {
		distance := player.Rating - cfg.MinRating
		if distance <= 0 {
			continue
		}
		drop := int(math.Floor(float64(distance) * cfg.DecayRate))
		if drop < 1 {
			drop = 1
		}
		newRating := player.Rating - drop
		if newRating < cfg.MinRating {
			newRating = cfg.MinRating
		}

		if err := s.players.SetRating(ctx, player.PlayerID, newRating); err != nil {
			s.logger.Error().Err(err).Str("player_id", player.PlayerID).Msg("failed to decay rating")
			continue
		}
		decayed++
		s.logger.Debug().
			Str("player_id", player.PlayerID).
			Int("old_rating", player.Rating).
			Int("new_rating", newRating).
			Msg("rating decayed")
	}

	s.logger.Info().Int("decayed", decayed).Int("idle", len(idle)).Msg("decay pass completed")
	return decayed, nil
}
