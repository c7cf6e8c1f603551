package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tourney-rating/internal/domain"
	"tourney-rating/internal/rating"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type HistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{db: sqlDB, logger: logger}
}

func (r *HistoryRepository) Append(ctx context.Context, record domain.RatingHistory) error {
	id := record.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rating_history (id, player_id, tournament_id, position,
			rating_delta, rating_after, confidence, opponent_mean, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, record.PlayerID, record.TournamentID, record.Position,
		record.RatingDelta, record.RatingAfter, record.Confidence,
		record.OpponentMean, record.Date, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append rating history for %s: %w", record.PlayerID, err)
	}
	return nil
}

// Recent returns the participant's bounded history window as the pure
// core consumes it: results most-recent-first plus the mean opponent
// rating observed in each of those events.
func (r *HistoryRepository) Recent(ctx context.Context, playerID string, window int) (rating.HistorySample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT position, rating_delta, opponent_mean
		FROM rating_history
		WHERE player_id = ?
		ORDER BY date DESC
		LIMIT ?`, playerID, window)
	if err != nil {
		return rating.HistorySample{}, fmt.Errorf("failed to load history for %s: %w", playerID, err)
	}
	defer rows.Close()

	var sample rating.HistorySample
	for rows.Next() {
		var result rating.HistoryResult
		var opponentMean int
		if err := rows.Scan(&result.Position, &result.RatingDelta, &opponentMean); err != nil {
			return rating.HistorySample{}, err
		}
		sample.Results = append(sample.Results, result)
		if opponentMean > 0 {
			sample.OpponentRatings = append(sample.OpponentRatings, opponentMean)
		}
	}
	return sample, rows.Err()
}

// Exists reports whether a history entry is already recorded for this
// player and tournament, the idempotency check for batch retries.
func (r *HistoryRepository) Exists(ctx context.Context, playerID, tournamentID string) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM rating_history WHERE player_id = ? AND tournament_id = ?",
		playerID, tournamentID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check history for %s: %w", playerID, err)
	}
	return count > 0, nil
}

func (r *HistoryRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.RatingHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, player_id, tournament_id, position, rating_delta, rating_after,
		       confidence, opponent_mean, date, created_at
		FROM rating_history
		WHERE player_id = ?
		ORDER BY date DESC
		LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for %s: %w", playerID, err)
	}
	defer rows.Close()

	var records []domain.RatingHistory
	for rows.Next() {
		var rec domain.RatingHistory
		err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.TournamentID, &rec.Position,
			&rec.RatingDelta, &rec.RatingAfter, &rec.Confidence, &rec.OpponentMean,
			&rec.Date, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
