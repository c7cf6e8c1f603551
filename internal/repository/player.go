package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tourney-rating/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = "player_id, name, rating, events_rated, last_event_at, created_at, updated_at"

func (r *PlayerRepository) Get(ctx context.Context, playerID string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE player_id = ?", playerID)
	return scanPlayer(row)
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (player_id, name, rating, events_rated, last_event_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			name = excluded.name,
			rating = excluded.rating,
			events_rated = excluded.events_rated,
			last_event_at = excluded.last_event_at,
			updated_at = excluded.updated_at`,
		player.PlayerID, player.Name, player.Rating, player.EventsRated,
		player.LastEventAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.PlayerID, err)
	}
	return nil
}

// UpdateRating writes the post-apply rating and bumps the rated-event
// counter in one statement, the single persistence write of the apply
// pipeline.
func (r *PlayerRepository) UpdateRating(ctx context.Context, playerID string, rating int, eventAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET rating = ?, events_rated = events_rated + 1, last_event_at = ?, updated_at = ?
		WHERE player_id = ?`,
		rating, eventAt, time.Now(), playerID)
	if err != nil {
		return fmt.Errorf("failed to update rating for %s: %w", playerID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s: %w", playerID, err)
	}
	if affected == 0 {
		return fmt.Errorf("player %s not found: %w", playerID, sql.ErrNoRows)
	}
	return nil
}

// RatingSnapshot returns every player's current rating, the population
// input for anomaly detection.
func (r *PlayerRepository) RatingSnapshot(ctx context.Context) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT rating FROM players")
	if err != nil {
		return nil, fmt.Errorf("failed to read rating snapshot: %w", err)
	}
	defer rows.Close()

	var ratings []float64
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, float64(rating))
	}
	return ratings, rows.Err()
}

// IdleSince returns players whose last rated event is older than the
// cutoff, candidates for rating decay.
func (r *PlayerRepository) IdleSince(ctx context.Context, cutoff time.Time) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE last_event_at < ? AND events_rated > 0", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list idle players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		player, err := scanPlayerRows(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func (r *PlayerRepository) SetRating(ctx context.Context, playerID string, rating int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE players SET rating = ?, updated_at = ? WHERE player_id = ?",
		rating, time.Now(), playerID)
	if err != nil {
		return fmt.Errorf("failed to set rating for %s: %w", playerID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row *sql.Row) (*domain.Player, error) {
	return scanPlayerRows(row)
}

func scanPlayerRows(row rowScanner) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.PlayerID, &p.Name, &p.Rating, &p.EventsRated,
		&p.LastEventAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
