package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tourney-rating/internal/constants"
	"tourney-rating/internal/domain"

	"github.com/rs/zerolog"
)

type TournamentRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTournamentRepository(sqlDB *sql.DB, logger zerolog.Logger) *TournamentRepository {
	return &TournamentRepository{db: sqlDB, logger: logger}
}

func (r *TournamentRepository) Get(ctx context.Context, tournamentID string) (*domain.Tournament, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT tournament_id, name, event_type, buy_in, prize_pool, field_size,
		       payouts, status, started_at, finalized_at, created_at, updated_at
		FROM tournaments WHERE tournament_id = ?`, tournamentID)

	var t domain.Tournament
	var payoutsJSON string
	err := row.Scan(&t.TournamentID, &t.Name, &t.EventType, &t.BuyIn, &t.PrizePool,
		&t.FieldSize, &payoutsJSON, &t.Status, &t.StartedAt, &t.FinalizedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payoutsJSON), &t.Payouts); err != nil {
		return nil, fmt.Errorf("failed to decode payouts for %s: %w", tournamentID, err)
	}
	return &t, nil
}

func (r *TournamentRepository) Upsert(ctx context.Context, t *domain.Tournament) error {
	payoutsJSON, err := json.Marshal(t.Payouts)
	if err != nil {
		return fmt.Errorf("failed to encode payouts: %w", err)
	}
	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tournaments (tournament_id, name, event_type, buy_in, prize_pool,
			field_size, payouts, status, started_at, finalized_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tournament_id) DO UPDATE SET
			name = excluded.name,
			event_type = excluded.event_type,
			buy_in = excluded.buy_in,
			prize_pool = excluded.prize_pool,
			field_size = excluded.field_size,
			payouts = excluded.payouts,
			status = excluded.status,
			started_at = excluded.started_at,
			finalized_at = excluded.finalized_at,
			updated_at = excluded.updated_at`,
		t.TournamentID, t.Name, t.EventType, t.BuyIn, t.PrizePool, t.FieldSize,
		string(payoutsJSON), t.Status, t.StartedAt, t.FinalizedAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert tournament %s: %w", t.TournamentID, err)
	}
	return nil
}

func (r *TournamentRepository) GetResults(ctx context.Context, tournamentID string) ([]domain.TournamentResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tournament_id, player_id, position, rebuys, addons, prize_amount,
		       late_entry, duration_seconds, created_at, updated_at
		FROM tournament_results
		WHERE tournament_id = ?
		ORDER BY position ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var results []domain.TournamentResult
	for rows.Next() {
		var res domain.TournamentResult
		var durationSeconds int64
		err := rows.Scan(&res.TournamentID, &res.PlayerID, &res.Position, &res.Rebuys,
			&res.Addons, &res.PrizeAmount, &res.LateEntry, &durationSeconds,
			&res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			return nil, err
		}
		res.Duration = time.Duration(durationSeconds) * time.Second
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *TournamentRepository) UpsertResultsBatch(ctx context.Context, results []domain.TournamentResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tournament_results (tournament_id, player_id, position, rebuys,
			addons, prize_amount, late_entry, duration_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tournament_id, player_id) DO UPDATE SET
			position = excluded.position,
			rebuys = excluded.rebuys,
			addons = excluded.addons,
			prize_amount = excluded.prize_amount,
			late_entry = excluded.late_entry,
			duration_seconds = excluded.duration_seconds,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare result upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i := 0; i < len(results); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(results) {
			end = len(results)
		}

		for _, res := range results[i:end] {
			_, err := stmt.ExecContext(ctx,
				res.TournamentID, res.PlayerID, res.Position, res.Rebuys, res.Addons,
				res.PrizeAmount, res.LateEntry, int64(res.Duration.Seconds()), now, now)
			if err != nil {
				return fmt.Errorf("failed to upsert result %s/%s: %w", res.TournamentID, res.PlayerID, err)
			}
		}
	}

	return tx.Commit()
}

// MarkApplied flips the tournament to "applied" so a retry can tell a
// finished batch from a pending one.
func (r *TournamentRepository) MarkApplied(ctx context.Context, tournamentID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE tournaments SET status = 'applied', updated_at = ? WHERE tournament_id = ?",
		time.Now(), tournamentID)
	if err != nil {
		return fmt.Errorf("failed to mark tournament %s applied: %w", tournamentID, err)
	}
	return nil
}
