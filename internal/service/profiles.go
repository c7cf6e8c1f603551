package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"tourney-rating/internal/config"
	"tourney-rating/internal/rating"
	"tourney-rating/internal/repository"

	"github.com/rs/zerolog"
)

// ProfileService loads the active rating profile, validates it once, and
// hands the immutable config to everything downstream. An invalid
// profile is rejected outright; fields are never silently defaulted or
// repaired mid-computation.
type ProfileService struct {
	repo   *repository.ProfileRepository
	cache  *rating.Cache
	cfg    *config.Config
	logger zerolog.Logger

	mu     sync.RWMutex
	active *rating.Config
}

func NewProfileService(repo *repository.ProfileRepository, cache *rating.Cache, cfg *config.Config, logger zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// Active returns the validated active profile, loading it on first use.
func (s *ProfileService) Active(ctx context.Context) (rating.Config, error) {
	s.mu.RLock()
	if s.active != nil {
		cfg := *s.active
		s.mu.RUnlock()
		return cfg, nil
	}
	s.mu.RUnlock()

	return s.Reload(ctx)
}

// Reload re-reads and re-validates the active profile and clears the
// rating cache, since memoized results computed under the old profile
// are no longer valid.
func (s *ProfileService) Reload(ctx context.Context) (rating.Config, error) {
	cfg, err := s.repo.Get(ctx, s.cfg.ActiveProfileID)
	if err != nil {
		return rating.Config{}, fmt.Errorf("failed to load active profile: %w", err)
	}

	report := rating.Validate(cfg)
	for _, warning := range report.Warnings {
		s.logger.Warn().Str("profile_id", cfg.ProfileID).Str("warning", warning).Msg("profile warning")
	}
	if !report.Valid() {
		s.logger.Error().
			Str("profile_id", cfg.ProfileID).
			Strs("errors", report.Errors).
			Msg("active profile rejected")
		return rating.Config{}, fmt.Errorf("%w: %s", rating.ErrConfigInvalid, strings.Join(report.Errors, "; "))
	}

	s.mu.Lock()
	s.active = &cfg
	s.mu.Unlock()
	s.cache.Clear()

	s.logger.Info().
		Str("profile_id", cfg.ProfileID).
		Int("health_score", rating.HealthScore(cfg)).
		Msg("active profile loaded")
	return cfg, nil
}

// Evaluation is the advisory view of a candidate profile: blocking
// errors, warnings, a 0-100 health score and human-readable nudges.
type Evaluation struct {
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	HealthScore int      `json:"health_score"`
	Suggestions []string `json:"suggestions"`
}

// Evaluate parses a candidate profile JSON (merged over defaults, same
// as load) and reports on it without storing or activating anything.
func (s *ProfileService) Evaluate(configJSON []byte) (Evaluation, error) {
	cfg := rating.Defaults()
	if err := json.Unmarshal(configJSON, &cfg); err != nil {
		return Evaluation{}, fmt.Errorf("failed to decode profile: %w", err)
	}

	report := rating.Validate(cfg)
	return Evaluation{
		Errors:      report.Errors,
		Warnings:    report.Warnings,
		HealthScore: rating.HealthScore(cfg),
		Suggestions: rating.SuggestImprovements(cfg),
	}, nil
}
