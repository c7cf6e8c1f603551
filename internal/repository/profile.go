package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tourney-rating/internal/domain"
	"tourney-rating/internal/rating"

	"github.com/rs/zerolog"
)

type ProfileRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProfileRepository(sqlDB *sql.DB, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{db: sqlDB, logger: logger}
}

// Get loads one stored profile and merges its JSON over rating.Defaults,
// so a partial profile never leaves a coefficient silently zeroed. The
// result is NOT validated here; the profile service owns rejection.
func (r *ProfileRepository) Get(ctx context.Context, profileID string) (rating.Config, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT config_json FROM rating_profiles WHERE profile_id = ?", profileID)

	var configJSON string
	if err := row.Scan(&configJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rating.Config{}, fmt.Errorf("profile %s: %w", profileID, rating.ErrProfileNotFound)
		}
		return rating.Config{}, fmt.Errorf("failed to load profile %s: %w", profileID, err)
	}

	cfg := rating.Defaults()
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return rating.Config{}, fmt.Errorf("failed to decode profile %s: %w", profileID, err)
	}
	cfg.ProfileID = profileID
	return cfg, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domain.RatingProfile) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rating_profiles (profile_id, name, config_json, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		profile.ProfileID, profile.Name, profile.ConfigJSON, profile.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.ProfileID, err)
	}
	return nil
}

// EnsureDefault seeds the default profile row on first start so a fresh
// database is immediately usable.
func (r *ProfileRepository) EnsureDefault(ctx context.Context) error {
	cfg := rating.Defaults()
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode default profile: %w", err)
	}
	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rating_profiles (profile_id, name, config_json, active, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT (profile_id) DO NOTHING`,
		cfg.ProfileID, cfg.Name, string(configJSON), now, now)
	if err != nil {
		return fmt.Errorf("failed to seed default profile: %w", err)
	}
	return nil
}
