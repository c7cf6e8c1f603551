package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tourney-rating/internal/domain"
	"tourney-rating/internal/metrics"
	"tourney-rating/internal/rating"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfigSource struct {
	cfg rating.Config
	err error
}

func (f *fakeConfigSource) Active(context.Context) (rating.Config, error) {
	return f.cfg, f.err
}

type fakePlayerStore struct {
	mu      sync.Mutex
	players map[string]*domain.Player
	failOn  map[string]bool
	updated map[string]int
}

func (f *fakePlayerStore) Get(_ context.Context, playerID string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[playerID]
	if !ok {
		return nil, errors.New("player not found")
	}
	copied := *player
	return &copied, nil
}

func (f *fakePlayerStore) UpdateRating(_ context.Context, playerID string, ratingValue int, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[playerID] {
		return errors.New("disk full")
	}
	f.updated[playerID] = ratingValue
	return nil
}

func (f *fakePlayerStore) RatingSnapshot(context.Context) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ratings []float64
	for _, p := range f.players {
		ratings = append(ratings, float64(p.Rating))
	}
	return ratings, nil
}

type fakeTournamentStore struct {
	tournament *domain.Tournament
	results    []domain.TournamentResult
	getErr     error
	applied    bool
}

func (f *fakeTournamentStore) Get(_ context.Context, tournamentID string) (*domain.Tournament, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.tournament, nil
}

func (f *fakeTournamentStore) GetResults(context.Context, string) ([]domain.TournamentResult, error) {
	return f.results, nil
}

func (f *fakeTournamentStore) MarkApplied(context.Context, string) error {
	f.applied = true
	return nil
}

type fakeHistoryStore struct {
	mu       sync.Mutex
	appended []domain.RatingHistory
}

func (f *fakeHistoryStore) Append(_ context.Context, record domain.RatingHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, record)
	return nil
}

func (f *fakeHistoryStore) Recent(context.Context, string, int) (rating.HistorySample, error) {
	return rating.HistorySample{}, nil
}

func (f *fakeHistoryStore) Exists(_ context.Context, playerID, tournamentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.appended {
		if rec.PlayerID == playerID && rec.TournamentID == tournamentID {
			return true, nil
		}
	}
	return false, nil
}

func testFixture(fieldSize int) (*fakePlayerStore, *fakeTournamentStore, *fakeHistoryStore) {
	players := &fakePlayerStore{
		players: make(map[string]*domain.Player),
		failOn:  make(map[string]bool),
		updated: make(map[string]int),
	}
	var results []domain.TournamentResult
	for i := 1; i <= fieldSize; i++ {
		id := fmt.Sprintf("p%d", i)
		players.players[id] = &domain.Player{PlayerID: id, Name: id, Rating: 1000}
		results = append(results, domain.TournamentResult{
			TournamentID: "t1",
			PlayerID:     id,
			Position:     i,
		})
	}
	tournaments := &fakeTournamentStore{
		tournament: &domain.Tournament{
			TournamentID: "t1",
			FieldSize:    fieldSize,
			Payouts:      []int{500, 300, 200},
			FinalizedAt:  time.Now(),
		},
		results: results,
	}
	return players, tournaments, &fakeHistoryStore{}
}

func newTestApplier(players *fakePlayerStore, tournaments *fakeTournamentStore, history *fakeHistoryStore, cfg rating.Config) *Applier {
	return NewApplier(
		&fakeConfigSource{cfg: cfg},
		players, tournaments, history,
		rating.NewCache(), metrics.NewSystem(), 4, zerolog.Nop(),
	)
}

func TestApplyTournamentUpdatesEveryParticipant(t *testing.T) {
	players, tournaments, history := testFixture(10)
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	report, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 10, report.UpdatedCount)
	assert.Len(t, report.Participants, 10)
	assert.Len(t, history.appended, 10)
	assert.True(t, tournaments.applied)

	for _, outcome := range report.Participants {
		assert.Empty(t, outcome.Error)
		assert.GreaterOrEqual(t, outcome.NewRating, rating.Defaults().MinRating)
		assert.LessOrEqual(t, outcome.NewRating, rating.Defaults().MaxRating)
	}
}

func TestApplyTournamentPartialFailure(t *testing.T) {
	players, tournaments, history := testFixture(10)
	players.failOn["p7"] = true
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	report, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 9, report.UpdatedCount)
	assert.False(t, tournaments.applied)

	var failed []ParticipantOutcome
	for _, outcome := range report.Participants {
		if outcome.Error != "" {
			failed = append(failed, outcome)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "p7", failed[0].PlayerID)
	assert.NotContains(t, players.updated, "p7")
}

func TestApplyTournamentRetryOnlyWritesFailedParticipants(t *testing.T) {
	players, tournaments, history := testFixture(10)
	players.failOn["p7"] = true
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	_, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, history.appended, 9)

	players.failOn["p7"] = false
	report, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.True(t, tournaments.applied)
	// The nine participants written on the first pass are not written
	// again.
	assert.Len(t, history.appended, 10)
}

func TestApplyTournamentSkipsSmallField(t *testing.T) {
	players, tournaments, history := testFixture(3)
	cfg := rating.Defaults()
	cfg.MinPlayersForRating = 5
	applier := newTestApplier(players, tournaments, history, cfg)

	report, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.True(t, report.Skipped)
	assert.Zero(t, report.UpdatedCount)
	assert.Empty(t, players.updated)
	assert.Empty(t, history.appended)
}

func TestApplyTournamentRejectsInvalidConfig(t *testing.T) {
	players, tournaments, history := testFixture(5)
	applier := NewApplier(
		&fakeConfigSource{err: rating.ErrConfigInvalid},
		players, tournaments, history,
		rating.NewCache(), metrics.NewSystem(), 4, zerolog.Nop(),
	)

	_, err := applier.ApplyTournament(context.Background(), "t1")
	require.ErrorIs(t, err, rating.ErrConfigInvalid)
	assert.Empty(t, players.updated)
}

func TestApplyTournamentAbortsWhenPortUnavailable(t *testing.T) {
	players, tournaments, history := testFixture(5)
	tournaments.getErr = errors.New("connection refused")
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	_, err := applier.ApplyTournament(context.Background(), "t1")
	require.Error(t, err)
	assert.Empty(t, players.updated)
}

func TestApplyTournamentReportsUnknownPlayers(t *testing.T) {
	players, tournaments, history := testFixture(6)
	delete(players.players, "p3")
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	report, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 5, report.UpdatedCount)
	assert.Len(t, report.Participants, 6)
}

func TestApplierMetrics(t *testing.T) {
	players, tournaments, history := testFixture(4)
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	_, err := applier.ApplyTournament(context.Background(), "t1")
	require.NoError(t, err)

	snap := applier.Metrics()
	assert.Equal(t, uint64(4), snap.TotalCalculations)
	assert.Greater(t, snap.AvgCalculationTime, time.Duration(0))
}

func TestDetectAnomaliesUsesSnapshot(t *testing.T) {
	// Large enough population that one extreme value cannot hide by
	// inflating the standard deviation itself.
	players, tournaments, history := testFixture(12)
	players.players["p1"].Rating = 50000
	applier := newTestApplier(players, tournaments, history, rating.Defaults())

	outliers, err := applier.DetectAnomalies(context.Background())
	require.NoError(t, err)
	assert.Contains(t, outliers, 50000.0)
}
